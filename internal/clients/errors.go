package clients

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from the shop API.
type APIError struct {
	Status  int
	Message string
	// Data is the decoded error body, nil when the body was not JSON.
	Data map[string]any
}

func (e *APIError) Error() string { return e.Message }

// BodyMessage returns the message field of the error body, if the API sent one.
func (e *APIError) BodyMessage() string {
	if e.Data == nil {
		return ""
	}
	if m, ok := e.Data["message"].(string); ok {
		return strings.TrimSpace(m)
	}
	return ""
}

// NetworkError is a request that never produced an HTTP response: dial/TLS failure,
// timeout, cancelled context, or an open circuit breaker.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *NetworkError) Unwrap() error { return e.Err }

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("API Error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return apiErr
	}
	apiErr.Data = data
	if m := apiErr.BodyMessage(); m != "" {
		apiErr.Message = m
	}
	return apiErr
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an *APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}
