// Package apierror defines the envelope every non-2xx response body uses.
// Handlers never serialize raw errors; they wrap a client-safe message here,
// which keeps SQL errors and file paths out of responses.
package apierror

// APIError carries a single human-readable detail line.
type APIError struct {
	Detail string `json:"detail"`
}

// New wraps msg in the envelope.
func New(msg string) *APIError { return &APIError{Detail: msg} }

// ValidationError extends the envelope with the per-field tag map returned
// on 422s.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

// NewValidation builds the envelope for a failed request-body validation.
func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}
