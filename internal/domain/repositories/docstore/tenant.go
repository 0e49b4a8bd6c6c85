package docstore

import (
	"context"

	"docvault/internal/domain/models/docstore"
)

// TenantRepository defines data access operations for tenants
type TenantRepository interface {
	// Create creates a new tenant
	Create(ctx context.Context, tenant *docstore.Tenant) error

	// GetByID retrieves a tenant by ID
	GetByID(ctx context.Context, id string) (*docstore.Tenant, error)
}
