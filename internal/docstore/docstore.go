package docstore

import (
	"context"
	"time"
)

// DefaultConnectTimeout bounds Driver.Connect when the configuration does not set one.
const DefaultConnectTimeout = 5 * time.Second

// Driver opens connections to a document store backend.
type Driver interface {
	// Name returns a short backend name used in logs and metrics.
	Name() string
	// Connect acquires a connection. Failures wrap ErrUnavailable.
	Connect(ctx context.Context) (Conn, error)
}

// Conn is a connection acquired for one logical operation.
type Conn interface {
	// Collection returns a handle on the named collection.
	Collection(name string) Collection
	// Close releases the connection. Closing twice is a no-op.
	Close() error
}

// UpdateFunc receives the stored document and returns its replacement.
// Returning an error aborts the update and leaves the document untouched.
type UpdateFunc func(current []byte) ([]byte, error)

// Collection is a set of JSON documents addressed by key.
type Collection interface {
	// Get returns the document stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// List returns every document of the collection ordered by key.
	List(ctx context.Context) ([][]byte, error)
	// Insert stores a new document or fails with ErrDuplicateKey.
	Insert(ctx context.Context, key string, doc []byte) error
	// Update atomically replaces the document stored under key with the result of fn.
	Update(ctx context.Context, key string, fn UpdateFunc) ([]byte, error)
	// Delete removes the document stored under key or fails with ErrNotFound.
	Delete(ctx context.Context, key string) error
}

// ConnectContext derives the context used while establishing a connection.
func ConnectContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	return context.WithTimeout(ctx, timeout)
}
