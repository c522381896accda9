package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// “Service” groups the app’s secrets in the OS keychain.
	KeyringService = "remotejobs"
	KeyringAccount = "groq-api-key"

	EnvAPIKey = "GROQ_API_KEY"
)

// GetAPIKey resolves the classification service key: OS keychain first,
// GROQ_API_KEY environment variable second. Headless machines rarely
// have a keychain, so the env path is a first-class fallback.
func GetAPIKey() (string, error) {
	pw, err := keyring.Get(KeyringService, KeyringAccount)
	if err == nil && strings.TrimSpace(pw) != "" {
		return strings.TrimSpace(pw), nil
	}

	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		return v, nil
	}

	return "", errors.New("API key not found (set it in the keychain or via GROQ_API_KEY)")
}

func SetAPIKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("API key is empty")
	}
	return keyring.Set(KeyringService, KeyringAccount, strings.TrimSpace(key))
}

func DeleteAPIKey() error {
	return keyring.Delete(KeyringService, KeyringAccount)
}
