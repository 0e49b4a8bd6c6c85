package directory

import (
	"context"

	"docvault/internal/domain/models/docstore"
)

// AuthService handles registration, login and password lifecycle
type AuthService interface {
	// Register creates a new user. Without a tenant ID a new tenant is
	// created and the registrant becomes its Admin; with one the user joins
	// it as a regular member. Ensures the tenant's built-in roles exist.
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)

	// Login verifies credentials and issues an access token. All failure
	// modes produce the same generic unauthorized error.
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)

	// RequestPasswordReset issues a reset token for the account if it
	// exists. Always succeeds so callers cannot probe for accounts.
	RequestPasswordReset(ctx context.Context, email string) error

	// SetPassword consumes a set-password or reset token
	SetPassword(ctx context.Context, req *SetPasswordRequest) error

	// ChangePassword verifies the current password and replaces it
	ChangePassword(ctx context.Context, userID string, req *ChangePasswordRequest) error
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	FullName   string  `json:"full_name"`
	TenantID   *string `json:"tenant_id,omitempty"`   // join an existing tenant
	TenantName string  `json:"tenant_name,omitempty"` // name for a newly created tenant
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries an issued token and the authenticated user
type AuthResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	User        *docstore.User `json:"user"`
}

// SetPasswordRequest consumes an invite or reset token
type SetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ChangePasswordRequest represents an authenticated password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
