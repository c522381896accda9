package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// EnsureUserConfig makes sure a config file exists in the data dir.
// An existing file wins; otherwise defaultPath is copied in; if even
// that is missing, a minimal config is written so a bare checkout can
// still run on built-in defaults.
func EnsureUserConfig(dataDir string, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	src, err := os.Open(defaultPath)
	if errors.Is(err, os.ErrNotExist) {
		if werr := os.WriteFile(userPath, []byte(minimalConfig), 0o644); werr != nil {
			return "", werr
		}
		return userPath, nil
	}
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(userPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return userPath, nil
}

const minimalConfig = `app:
  data_dir: "."
scraping:
  sites: [jemepropose]
`
