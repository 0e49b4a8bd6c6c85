package docstore

import (
	"context"
	"time"

	"docvault/internal/domain/models/docstore"
)

// UserRepository defines data access operations for users
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *docstore.User) error

	// GetByEmail retrieves a user by email address. Emails are unique across
	// tenants, so this lookup is deliberately not tenant-scoped: it is the
	// entry point of login, before any tenant is known.
	GetByEmail(ctx context.Context, email string) (*docstore.User, error)

	// GetByID retrieves a user by ID. IDs are global, so this is the lookup
	// behind "the authenticated user"; callers operating on OTHER users must
	// verify the tenant themselves.
	GetByID(ctx context.Context, id string) (*docstore.User, error)

	// ListByTenant lists all users of a tenant
	ListByTenant(ctx context.Context, tenantID string) ([]docstore.User, error)

	// UpdateRoles replaces a user's role list
	UpdateRoles(ctx context.Context, tenantID, userID string, roles []string) error

	// Delete removes a user from its tenant
	Delete(ctx context.Context, tenantID, id string) error

	// SetPassword stores a new password hash and clears any reset token
	SetPassword(ctx context.Context, userID, hashedPassword string) error

	// SetResetToken stores a password reset token with its expiry
	SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error

	// GetByResetToken retrieves the user holding the given reset token
	GetByResetToken(ctx context.Context, token string) (*docstore.User, error)

	// CountByRoleName counts users in a tenant carrying the role name
	// anywhere in their role list. Used to guard role deletion.
	CountByRoleName(ctx context.Context, tenantID, roleName string) (int, error)
}
