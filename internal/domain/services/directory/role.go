package directory

import (
	"context"

	"docvault/internal/domain/models/docstore"
)

// RoleService handles role management and allow-list administration
type RoleService interface {
	// CreateRole creates a tenant role (admin only)
	CreateRole(ctx context.Context, actorID string, req *CreateRoleRequest) (*docstore.Role, error)

	// ListRoles lists the tenant's roles
	ListRoles(ctx context.Context, actorID string) ([]docstore.Role, error)

	// UpdateRolePermissions replaces the role's folder and file allow-lists
	// (admin only)
	UpdateRolePermissions(ctx context.Context, actorID, roleID string, req *UpdateRolePermissionsRequest) (*docstore.Role, error)

	// DeleteRole removes a role (admin only). Built-in roles and roles still
	// assigned to users are protected.
	DeleteRole(ctx context.Context, actorID, roleID string) error
}

// CreateRoleRequest represents a role creation request
type CreateRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// UpdateRolePermissionsRequest replaces both allow-lists. Omitted lists
// clear to empty, matching full-replace semantics.
type UpdateRolePermissionsRequest struct {
	AllowedFolders []string `json:"allowed_folders"`
	AllowedFiles   []string `json:"allowed_files"`
}
