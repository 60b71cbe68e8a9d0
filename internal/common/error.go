// Package common defines sentinel errors shared by the daybook storage,
// service and transport layers. Callers should use errors.Is to match them.
package common

import "errors"

var (
	// Storage engine errors.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrWriteFailed        = errors.New("write failed")

	// Snapshot errors.
	ErrInvalidFormat = errors.New("invalid format")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors.
	ErrValidation = errors.New("validation error")
	ErrLocked     = errors.New("diary is locked")
)
