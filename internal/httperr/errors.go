package httperr

const (
	TypeInternalError    = "internal_error"
	TypeInvalidJSON      = "invalid_json"
	TypeInvalidQuery     = "invalid_query"
	TypeValidationFailed = "validation_failed"
)

// ErrorResponse is the JSON error body shared by all HTTP surfaces.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
