package storage

import (
	"context"
	"time"
)

// Folder is an opaque handle to a location in the provider's hierarchy.
type Folder struct {
	ID string
}

// Gateway defines the contract for the remote document store.
type Gateway interface {
	// EnsureFolder resolves the ordered path segments left-to-right,
	// creating any missing level, and returns the handle of the last one.
	// Creation is not transactional; single-instance execution is assumed.
	EnsureFolder(ctx context.Context, path []string) (Folder, error)

	// Upload creates a new document under the folder (never overwrites or
	// dedupes by name), grants public read access, and returns a durable,
	// publicly resolvable share link.
	Upload(ctx context.Context, folder Folder, fileName string, data []byte) (string, error)

	// PruneOlderThan deletes documents in the folder created strictly before
	// now minus age and returns the number deleted. A failed delete is
	// skipped, never aborting the sweep.
	PruneOlderThan(ctx context.Context, folder Folder, age time.Duration) (int, error)
}
