package extstorage

import (
	"context"

	"docvault/internal/domain/models/docstore"
)

// Downloader fetches content for files that live on a connected external
// drive. Implementations resolve the credential (file owner's connection
// first, tenant-admin connection as the shared fallback) and run the
// refresh-and-retry protocol internally; callers only ever see the terminal
// outcome.
type Downloader interface {
	// DownloadFile returns the raw bytes of an external file
	DownloadFile(ctx context.Context, file *docstore.File) ([]byte, error)
}
