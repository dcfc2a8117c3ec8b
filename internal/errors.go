package internal

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCategory = errors.New("category must not be empty")
	ErrInvalidRecord = errors.New("invalid subscription record")
	ErrDuplicateID   = errors.New("duplicate subscription id")
	ErrEmptyInput    = errors.New("no text to analyze")
	ErrNotOnboarded  = errors.New("not onboarded yet, run `subtrack onboard` (optionally with --demo)")
)

// StorageReadError means persisted state was missing or could not be decoded.
// Load treats it as empty state and never hands it to callers as a failure.
type StorageReadError struct {
	Key string
	Err error
}

func (e *StorageReadError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("reading stored state: %v", e.Err)
	}
	return fmt.Sprintf("reading stored state %q: %v", e.Key, e.Err)
}

func (e *StorageReadError) Unwrap() error { return e.Err }

// StorageWriteError is returned by mutating store calls when persisting
// failed. The in-memory mutation has already been applied.
type StorageWriteError struct {
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("saving state (changes kept for this session only): %v", e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// ExtractionError means the extraction service failed or returned output
// that could not be turned into records.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("detecting subscriptions: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// IsStorageWriteError reports whether err only signals a failed save.
func IsStorageWriteError(err error) bool {
	var we *StorageWriteError
	return errors.As(err, &we)
}
