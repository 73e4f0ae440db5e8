package docstore

import "errors"

var (
	// ErrNotFound is returned when no document exists for the requested key.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicateKey is returned by Insert when the key is already taken in the collection.
	ErrDuplicateKey = errors.New("document key already exists")

	// ErrEmptyKey is returned when an operation is called with an empty document key.
	ErrEmptyKey = errors.New("document key cannot be empty")

	// ErrClosed is returned when a collection is used after its connection was closed.
	ErrClosed = errors.New("document store connection is closed")

	// ErrUnavailable wraps every failure to establish a connection, including connect timeouts.
	ErrUnavailable = errors.New("document store unavailable")
)
