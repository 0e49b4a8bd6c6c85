package docstore

import (
	"time"
)

// ExternalCredential is one user's OAuth connection to an external drive
// provider. A tenant-level "shared" connection is simply an Admin user's
// credential; resolution prefers the requesting user's own record and falls
// back to an admin's.
//
// AccessToken is short-lived and overwritten in place whenever a refresh
// succeeds. RefreshToken is long-lived and only replaced by a new OAuth
// consent. Concurrent refreshes of the same record are not serialized: both
// writers store a token that is valid at write time, so the last write wins
// harmlessly.
type ExternalCredential struct {
	ID           string     `json:"id" db:"id"`
	TenantID     string     `json:"tenant_id" db:"tenant_id"`
	UserID       string     `json:"user_id" db:"user_id"`
	Provider     string     `json:"provider" db:"provider"`
	AccessToken  string     `json:"-" db:"access_token"`
	RefreshToken string     `json:"-" db:"refresh_token"`
	ClientID     string     `json:"-" db:"client_id"`
	ClientSecret string     `json:"-" db:"client_secret"`
	TokenExpiry  *time.Time `json:"token_expiry,omitempty" db:"token_expiry"`

	// RemoteFolderID optionally pins the connection to one folder of the
	// remote drive.
	RemoteFolderID *string `json:"remote_folder_id,omitempty" db:"remote_folder_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CanRefresh reports whether the credential carries everything the token
// endpoint needs for a refresh grant.
func (c *ExternalCredential) CanRefresh() bool {
	return c.RefreshToken != "" && c.ClientID != "" && c.ClientSecret != ""
}
