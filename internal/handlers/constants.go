package handlers

const (
	ErrInvalidRequestBody  = "Invalid request body"
	ErrAuthRequired        = "Authentication required"
	ErrForbidden           = "Forbidden"
	ErrInvalidCSRFToken    = "Invalid CSRF token"
	ErrInternalServerError = "Internal server error"
)
