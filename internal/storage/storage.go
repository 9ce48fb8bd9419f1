// internal/storage/storage.go

// Package storage holds what the persistence backends share.
package storage

import "errors"

var (
	// ErrNotFound means nothing has been persisted yet.
	ErrNotFound = errors.New("not found")
	// ErrMalformed means persisted data exists but cannot be decoded.
	ErrMalformed = errors.New("malformed data")
)
