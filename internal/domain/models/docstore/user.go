package docstore

import (
	"time"
)

// Built-in role names. Both are created for a tenant the first time a user
// registers into it and can never be deleted.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

type User struct {
	ID       string `json:"id" db:"id"`
	TenantID string `json:"tenant_id" db:"tenant_id"`
	Email    string `json:"email" db:"email"`
	FullName string `json:"full_name" db:"full_name"`

	// Roles is the single source of truth for the user's role names: a
	// non-empty ordered list where Roles[0] is the primary role used for
	// allow-list lookups. The legacy single-role column is folded into this
	// list at the repository boundary; nothing above it branches on
	// one-role-vs-many.
	Roles []string `json:"roles" db:"roles"`

	// HashedPassword is nil for invited users who have not set a password
	// yet. Never serialized.
	HashedPassword *string `json:"-" db:"hashed_password"`

	PasswordResetToken *string    `json:"-" db:"password_reset_token"`
	TokenExpiresAt     *time.Time `json:"-" db:"token_expires_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PrimaryRole returns Roles[0], the role name consulted for allow-list
// grants. Returns RoleUser when the list is somehow empty (normalization
// should make that impossible).
func (u *User) PrimaryRole() string {
	if len(u.Roles) == 0 {
		return RoleUser
	}
	return u.Roles[0]
}

// HasRole reports whether name appears anywhere in the user's role list.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user carries the built-in Admin role.
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// NormalizeRoles folds the legacy single-role value and the multi-role list
// into one non-empty ordered list. Precedence: an explicit list wins, then
// the legacy value, then the built-in User role. Empty strings and
// duplicates are dropped, keeping first occurrence order.
func NormalizeRoles(roles []string, legacy string) []string {
	var out []string
	seen := make(map[string]bool)

	appendRole := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}

	for _, r := range roles {
		appendRole(r)
	}
	if len(out) == 0 {
		appendRole(legacy)
	}
	if len(out) == 0 {
		appendRole(RoleUser)
	}
	return out
}
