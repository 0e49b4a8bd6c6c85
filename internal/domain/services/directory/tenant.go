package directory

import (
	"context"

	"docvault/internal/domain/models/docstore"
)

// TenantService handles tenant-level queries
type TenantService interface {
	// GetMyTenant returns the actor's tenant
	GetMyTenant(ctx context.Context, userID string) (*docstore.Tenant, error)
}
