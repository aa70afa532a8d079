package model

// ErrorResponse is the JSON body of every non-2xx response the storefront writes itself.
type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlationId,omitempty"`
}
