package directory

import (
	"context"

	models "docvault/internal/domain/models/docstore"
	storeRepo "docvault/internal/domain/repositories/docstore"
	dirSvc "docvault/internal/domain/services/directory"
)

type tenantService struct {
	tenantRepo storeRepo.TenantRepository
	userRepo   storeRepo.UserRepository
}

// NewTenantService creates a new tenant service
func NewTenantService(
	tenantRepo storeRepo.TenantRepository,
	userRepo storeRepo.UserRepository,
) dirSvc.TenantService {
	return &tenantService{
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
	}
}

// GetMyTenant returns the tenant the user belongs to.
func (s *tenantService) GetMyTenant(ctx context.Context, userID string) (*models.Tenant, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.tenantRepo.GetByID(ctx, user.TenantID)
}
