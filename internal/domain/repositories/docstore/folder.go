package docstore

import (
	"context"

	"docvault/internal/domain/models/docstore"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create creates a new folder
	Create(ctx context.Context, folder *docstore.Folder) error

	// GetByID retrieves a folder by ID within a tenant
	GetByID(ctx context.Context, tenantID, id string) (*docstore.Folder, error)

	// ListByTenant retrieves all folders of a tenant (flat list)
	ListByTenant(ctx context.Context, tenantID string) ([]docstore.Folder, error)

	// ListChildren lists folders whose parent is parentID (nil = tenant root)
	ListChildren(ctx context.Context, tenantID string, parentID *string) ([]docstore.Folder, error)

	// Rename changes a folder's name. Fails with a conflict when a sibling
	// already carries the name.
	Rename(ctx context.Context, tenantID, id, name string) error

	// Delete removes a folder record. Deleting an absent folder is a no-op,
	// which keeps interrupted recursive deletes safely resumable.
	Delete(ctx context.Context, tenantID, id string) error
}
