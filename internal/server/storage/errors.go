package storage

import "errors"

// Common storage errors
var (
	// ErrAttemptsNotFound indicates that no failed attempts are recorded for the client
	ErrAttemptsNotFound = errors.New("attempts not found")

	// ErrInvalidKey indicates that the client key is empty
	ErrInvalidKey = errors.New("invalid client key")
)
