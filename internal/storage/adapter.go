package storage

import (
	"context"
	"io"
)

// Adapter abstracts where uploaded file content lives. Storage paths are
// opaque to callers: whatever Upload returns is what the other methods
// accept.
type Adapter interface {
	// Upload stores content under the tenant's namespace and returns the
	// storage path for later retrieval
	Upload(ctx context.Context, tenantID, name string, content io.Reader) (string, error)

	// DownloadBytes returns the stored content. A missing path reports
	// not-found.
	DownloadBytes(ctx context.Context, storagePath string) ([]byte, error)

	// Delete removes stored content. Deleting an absent path is not an
	// error.
	Delete(ctx context.Context, storagePath string) error

	// GetDownloadReference returns an opaque reference to the content: a
	// filesystem path for local storage, a short-lived signed URL for
	// object storage
	GetDownloadReference(ctx context.Context, storagePath string) (string, error)
}
