package store

import (
	"errors"
	"fmt"
)

// Common errors returned by the record store.
var (
	// ErrNotDirectory indicates the configured store path is not a directory.
	ErrNotDirectory = errors.New("store path is not a directory")

	// ErrLocked indicates another process holds the store lock.
	ErrLocked = errors.New("record store is locked by another process")

	// ErrMissingTitle indicates a record without a usable titulo.
	ErrMissingTitle = errors.New(`record has no "titulo"`)
)

// MalformedRecordError indicates a record file that is not a valid movie document.
type MalformedRecordError struct {
	Path string
	Err  error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %s: %v", e.Path, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// IsMalformed reports whether err is a *MalformedRecordError.
func IsMalformed(err error) bool {
	var e *MalformedRecordError
	return errors.As(err, &e)
}
