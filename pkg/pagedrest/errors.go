package pagedrest

import (
	"errors"
	"fmt"
	"net/http"
)

// Configuration errors. All of them match errors.Is(err, ErrInvalidConfig).
var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrConfigRequired   = fmt.Errorf("%w: config is required", ErrInvalidConfig)
	ErrUserRequired     = fmt.Errorf("%w: user is required", ErrInvalidConfig)
	ErrPasswordRequired = fmt.Errorf("%w: password is required", ErrInvalidConfig)
	ErrInvalidURL       = fmt.Errorf("%w: invalid URL", ErrInvalidConfig)
)

// Transport errors.
var (
	ErrUnexpectedPayload = errors.New("response body is not a JSON object")
)

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int    `json:"status_code"`
	Method     string `json:"method"`
	Path       string `json:"path"`
	Body       string `json:"body,omitempty"`
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}

	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}

	return 0
}

// IsNotFound checks if the error is a 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized checks if the error is a 401 response.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsForbidden checks if the error is a 403 response.
func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

// IsConfigurationError reports whether err came from config validation.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
