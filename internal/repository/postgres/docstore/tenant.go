package docstore

import (
	"context"
	"fmt"
	"log/slog"

	"docvault/internal/domain"
	models "docvault/internal/domain/models/docstore"
	storeRepo "docvault/internal/domain/repositories/docstore"

	"docvault/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresTenantRepository implements the TenantRepository interface
type PostgresTenantRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(config *postgres.RepositoryConfig) storeRepo.TenantRepository {
	return &PostgresTenantRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new tenant
func (r *PostgresTenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, status)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, r.tables.Tenants)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		tenant.Name,
		tenant.Status,
	).Scan(&tenant.ID, &tenant.CreatedAt, &tenant.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("tenant %q already exists", tenant.Name),
				ResourceType: "tenant",
			}
		}
		return fmt.Errorf("create tenant: %w", err)
	}

	return nil
}

// GetByID retrieves a tenant by ID
func (r *PostgresTenantRepository) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	query := fmt.Sprintf(`
		SELECT id, name, status, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Tenants)

	var tenant models.Tenant
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Status,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("tenant %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}

	return &tenant, nil
}
