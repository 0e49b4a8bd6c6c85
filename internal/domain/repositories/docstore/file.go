package docstore

import (
	"context"

	"docvault/internal/domain/models/docstore"
)

// FileRepository defines data access operations for files
type FileRepository interface {
	// Create creates a new file record. Fails with a conflict when the
	// (tenant, folder, name) location is already taken.
	Create(ctx context.Context, file *docstore.File) error

	// GetByID retrieves a file by ID within a tenant
	GetByID(ctx context.Context, tenantID, id string) (*docstore.File, error)

	// ListByFolder lists files directly inside a folder (nil = tenant root)
	ListByFolder(ctx context.Context, tenantID string, folderID *string) ([]docstore.File, error)

	// ListByTenant lists all files of a tenant (flat, no content)
	ListByTenant(ctx context.Context, tenantID string) ([]docstore.File, error)

	// CountByFolder counts files directly inside a folder
	CountByFolder(ctx context.Context, tenantID string, folderID *string) (int, error)

	// Exists reports whether a file named name sits directly in folderID
	Exists(ctx context.Context, tenantID string, folderID *string, name string) (bool, error)

	// Move changes a file's containing folder. Fails with a conflict when
	// the destination already holds a file with the same name.
	Move(ctx context.Context, tenantID, id string, folderID *string) error

	// Rename changes a file's name. Fails with a conflict when the location
	// already holds a file with the new name; the original row is untouched.
	Rename(ctx context.Context, tenantID, id, name string) error

	// Delete removes a file record. Deleting an absent file is a no-op,
	// which keeps interrupted recursive deletes safely resumable.
	Delete(ctx context.Context, tenantID, id string) error
}
