package clickup

import (
	"errors"
	"fmt"
)

// ErrNoCredential is returned when neither an OAuth token nor an API key is available
var ErrNoCredential = errors.New("no ClickUp credential configured")

// APIError is a non-2xx response from the ClickUp API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("clickup API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("clickup API error (%d): %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from the ClickUp API
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
