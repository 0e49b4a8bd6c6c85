package docstore

import (
	"context"

	"docvault/internal/domain/models/docstore"
)

// RoleRepository defines data access operations for roles
type RoleRepository interface {
	// Create creates a new role
	Create(ctx context.Context, role *docstore.Role) error

	// GetByID retrieves a role by ID within a tenant
	GetByID(ctx context.Context, tenantID, id string) (*docstore.Role, error)

	// GetByName retrieves a role by name within a tenant
	GetByName(ctx context.Context, tenantID, name string) (*docstore.Role, error)

	// ListByTenant lists all roles of a tenant
	ListByTenant(ctx context.Context, tenantID string) ([]docstore.Role, error)

	// UpdatePermissions replaces a role's folder and file allow-lists
	UpdatePermissions(ctx context.Context, tenantID, roleID string, allowedFolders, allowedFiles []string) error

	// Delete removes a role
	Delete(ctx context.Context, tenantID, id string) error
}
