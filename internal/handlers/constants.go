package handlers

const (
	ErrInvalidRequest      = "Invalid request body"
	ErrInvalidID           = "Invalid id"
	ErrInternalServerError = "Internal server error"
	ErrConfigMissing       = "Content generation is not configured"
	ErrRateLimited         = "Too many requests, slow down"

	CodeConfigMissing = "config_missing"

	requestIDHeader = "X-Request-ID"

	maxBodyBytes = 1 << 20
)
