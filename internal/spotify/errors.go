package spotify

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedResponse marks a response that could not be decoded or is
// missing a required field.
var ErrMalformedResponse = errors.New("malformed provider response")

// APIError is a non-2xx response from the Web API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("spotify api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("spotify api: status %d: %s", e.StatusCode, e.Message)
}

// Unauthorized reports whether the access token was rejected.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsUnauthorized reports whether err is an APIError for a rejected token.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = payload.Error.Message
	}
	return apiErr
}

func malformed(what string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrMalformedResponse, what)
	}
	return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, what, err)
}
