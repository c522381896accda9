package semantic

import (
	"errors"
	"fmt"
	"strings"
)

// ServiceError wraps a failure of the external classification service
// and records whether it is worth retrying. Only rate-limit-class
// failures are; everything else falls straight through to the fallback.
type ServiceError struct {
	Retryable bool
	Err       error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("classification service: %v", e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

func retryable(err error) bool {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// isRateLimitText matches the service's rate-limit signatures in error
// bodies that arrive without a usable status code.
func isRateLimitText(s string) bool {
	l := strings.ToLower(s)
	return strings.Contains(l, "rate_limit") ||
		strings.Contains(l, "429") ||
		strings.Contains(l, "too many requests")
}
