package core

import "errors"

// Common errors.
var (
	ErrReadOnly    = errors.New("storage is in read-only mode")
	ErrCorruptBlob = errors.New("stored blob is malformed")
	ErrPersist     = errors.New("failed to persist")
	ErrEmptyNote   = errors.New("note has neither title nor content")
	ErrNotFound    = errors.New("note not found")
	ErrNoWatch     = errors.New("storage does not support watching")
)
