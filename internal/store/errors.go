package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation addresses an unknown slice.
	ErrNotFound = errors.New("time slice not found")

	// ErrInvalidSlice is returned when a slice's end is not after its start.
	ErrInvalidSlice = errors.New("end time must be after start time")

	// ErrInvalidTag is returned for tag names that are empty after normalisation.
	ErrInvalidTag = errors.New("invalid tag name")
)

// StorageError wraps a failure reported by the storage engine.
// The underlying cause is preserved for errors.Is / errors.As.
type StorageError struct {
	// Op names the store operation that failed.
	Op string

	// Err is the engine error.
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

// Unwrap returns the engine error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError returns true if err is or wraps a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
