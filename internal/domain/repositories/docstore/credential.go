package docstore

import (
	"context"
	"time"

	"docvault/internal/domain/models/docstore"
)

// CredentialRepository defines data access operations for external storage
// credentials
type CredentialRepository interface {
	// Upsert inserts or replaces the credential for (tenant, user, provider)
	Upsert(ctx context.Context, cred *docstore.ExternalCredential) error

	// GetByUser retrieves the credential a user holds for a provider
	GetByUser(ctx context.Context, tenantID, userID, provider string) (*docstore.ExternalCredential, error)

	// GetTenantAdmin retrieves a credential for the provider held by any
	// Admin user of the tenant. This is the shared-connection fallback when
	// the requesting user has no credential of their own.
	GetTenantAdmin(ctx context.Context, tenantID, provider string) (*docstore.ExternalCredential, error)

	// UpdateAccessToken overwrites the access token (and expiry) of the
	// credential row it was read from. Called after a successful refresh,
	// before the retried provider call.
	UpdateAccessToken(ctx context.Context, id, accessToken string, expiry *time.Time) error

	// ListByUser lists all of a user's credentials
	ListByUser(ctx context.Context, tenantID, userID string) ([]docstore.ExternalCredential, error)

	// DeleteByUser removes a user's credential for a provider
	DeleteByUser(ctx context.Context, tenantID, userID, provider string) error
}
