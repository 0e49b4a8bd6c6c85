package directory

import (
	"context"

	"docvault/internal/domain/models/docstore"
)

// UserService handles tenant membership management
type UserService interface {
	// GetUser returns a user in the actor's tenant
	GetUser(ctx context.Context, actorID, userID string) (*docstore.User, error)

	// ListUsers lists the tenant's members (admin only)
	ListUsers(ctx context.Context, actorID string) ([]docstore.User, error)

	// InviteUser creates a passwordless member with a set-password token
	// (admin only). The token is returned to the caller for delivery; mail
	// transport is not this service's concern.
	InviteUser(ctx context.Context, actorID string, req *InviteUserRequest) (*InviteResult, error)

	// UpdateUserRoles replaces a member's role list (admin only)
	UpdateUserRoles(ctx context.Context, actorID, userID string, req *UpdateUserRolesRequest) (*docstore.User, error)

	// DeleteUser removes a member (admin only, never the actor themselves)
	DeleteUser(ctx context.Context, actorID, userID string) error
}

// InviteUserRequest represents an invite request
type InviteUserRequest struct {
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Roles    []string `json:"roles,omitempty"` // defaults to ["User"]
}

// InviteResult carries the created member and their set-password token
type InviteResult struct {
	User             *docstore.User `json:"user"`
	SetPasswordToken string         `json:"set_password_token"`
}

// UpdateUserRolesRequest replaces a member's roles. The first entry becomes
// the primary role used for allow-list lookups.
type UpdateUserRolesRequest struct {
	Roles []string `json:"roles"`
}
