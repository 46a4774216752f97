package models

import "net/http"

// Error kinds exposed to clients.
const (
	KindValidation     = "validation_error"
	KindAuthentication = "authentication_error"
	KindNotFound       = "not_found"
	KindExpired        = "expired"
	KindConflict       = "conflict"
	KindRateLimited    = "rate_limited"
	KindStorage        = "storage_error"
	KindUnconfigured   = "unconfigured"
)

// APIError is the single error type services return. Only the HTTP layer
// renders it to a response; Status never leaks into the JSON body.
type APIError struct {
	Status  int            `json:"-"`
	Kind    string         `json:"error"`
	Message string         `json:"message"`
	Details []string       `json:"details,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func (e *APIError) Error() string {
	return e.Kind + ": " + e.Message
}

func NewValidationError(message string, details ...string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Kind: KindValidation, Message: message, Details: details}
}

func NewAuthenticationError(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Kind: KindAuthentication, Message: message}
}

func NewNotFoundError(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Kind: KindNotFound, Message: message}
}

// NewExpiredError carries the stale record's expiry in Meta so the admin UI
// can show when the content lapsed.
func NewExpiredError(message string, meta map[string]any) *APIError {
	return &APIError{Status: http.StatusGone, Kind: KindExpired, Message: message, Meta: meta}
}

func NewConflictError(message string) *APIError {
	return &APIError{Status: http.StatusConflict, Kind: KindConflict, Message: message}
}

func NewRateLimitError(message string) *APIError {
	return &APIError{Status: http.StatusTooManyRequests, Kind: KindRateLimited, Message: message}
}

func NewStorageError(message string) *APIError {
	return &APIError{Status: http.StatusInternalServerError, Kind: KindStorage, Message: message}
}
