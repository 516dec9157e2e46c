package history

import "context"

// Repository defines the interface for report history persistence.
type Repository interface {
	// Record stores an entry.
	Record(ctx context.Context, e *Entry) error

	// List returns entries newest first.
	List(ctx context.Context, opts ListOptions) ([]*Entry, error)
}
