package ports

import "errors"

// Standard application-level errors.
// Adapters wrap underlying infrastructure errors with these so the rest
// of the system can branch with errors.Is instead of string matching.
var (
	// General errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Conflict is returned when an update raced a concurrent writer: the
	// caller's version no longer matches the stored one and the write was
	// rejected instead of silently overwriting.
	ErrConflict = errors.New("stale update: entity version mismatch")

	// Database errors
	ErrDuplicateEntry = errors.New("database record already exists")
	ErrDBConnection   = errors.New("database connection error")
	ErrQueryFailed    = errors.New("database query failed")
	ErrUpdateFailed   = errors.New("database update failed")
	ErrDeleteFailed   = errors.New("database delete failed")
)
