package storage

import "errors"

// Storage errors shared by all adapters.
var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
