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

// PostgresRoleRepository implements the RoleRepository interface
type PostgresRoleRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(config *postgres.RepositoryConfig) storeRepo.RoleRepository {
	return &PostgresRoleRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new role
func (r *PostgresRoleRepository) Create(ctx context.Context, role *models.Role) error {
	if role.AllowedFolders == nil {
		role.AllowedFolders = []string{}
	}
	if role.AllowedFiles == nil {
		role.AllowedFiles = []string{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (tenant_id, name, description, allowed_folders, allowed_files)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, r.tables.Roles)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		role.TenantID,
		role.Name,
		role.Description,
		role.AllowedFolders,
		role.AllowedFiles,
	).Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			existing, queryErr := r.GetByName(ctx, role.TenantID, role.Name)
			if queryErr != nil {
				return fmt.Errorf("role %q already exists in this tenant: %w", role.Name, domain.ErrConflict)
			}
			return &domain.ConflictError{
				Message:      fmt.Sprintf("role %q already exists in this tenant", role.Name),
				ResourceType: "role",
				ResourceID:   existing.ID,
			}
		}
		return fmt.Errorf("create role: %w", err)
	}

	return nil
}

// GetByID retrieves a role by ID within a tenant
func (r *PostgresRoleRepository) GetByID(ctx context.Context, tenantID, id string) (*models.Role, error) {
	query := fmt.Sprintf(`
		SELECT id, tenant_id, name, description, allowed_folders, allowed_files, created_at, updated_at
		FROM %s
		WHERE id = $1 AND tenant_id = $2
	`, r.tables.Roles)

	return r.scanRole(ctx, query, id, tenantID)
}

// GetByName retrieves a role by name within a tenant
func (r *PostgresRoleRepository) GetByName(ctx context.Context, tenantID, name string) (*models.Role, error) {
	query := fmt.Sprintf(`
		SELECT id, tenant_id, name, description, allowed_folders, allowed_files, created_at, updated_at
		FROM %s
		WHERE tenant_id = $1 AND name = $2
	`, r.tables.Roles)

	return r.scanRole(ctx, query, tenantID, name)
}

func (r *PostgresRoleRepository) scanRole(ctx context.Context, query string, args ...interface{}) (*models.Role, error) {
	var role models.Role
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, args...).Scan(
		&role.ID,
		&role.TenantID,
		&role.Name,
		&role.Description,
		&role.AllowedFolders,
		&role.AllowedFiles,
		&role.CreatedAt,
		&role.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("role: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get role: %w", err)
	}

	return &role, nil
}

// ListByTenant lists all roles of a tenant
func (r *PostgresRoleRepository) ListByTenant(ctx context.Context, tenantID string) ([]models.Role, error) {
	query := fmt.Sprintf(`
		SELECT id, tenant_id, name, description, allowed_folders, allowed_files, created_at, updated_at
		FROM %s
		WHERE tenant_id = $1
		ORDER BY name ASC
	`, r.tables.Roles)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		err := rows.Scan(
			&role.ID,
			&role.TenantID,
			&role.Name,
			&role.Description,
			&role.AllowedFolders,
			&role.AllowedFiles,
			&role.CreatedAt,
			&role.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}

	// Return empty slice instead of nil
	if roles == nil {
		roles = []models.Role{}
	}

	return roles, nil
}

// UpdatePermissions replaces a role's folder and file allow-lists
func (r *PostgresRoleRepository) UpdatePermissions(ctx context.Context, tenantID, roleID string, allowedFolders, allowedFiles []string) error {
	if allowedFolders == nil {
		allowedFolders = []string{}
	}
	if allowedFiles == nil {
		allowedFiles = []string{}
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET allowed_folders = $1, allowed_files = $2, updated_at = NOW()
		WHERE id = $3 AND tenant_id = $4
	`, r.tables.Roles)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, allowedFolders, allowedFiles, roleID, tenantID)
	if err != nil {
		return fmt.Errorf("update role permissions: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("role %s: %w", roleID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a role
func (r *PostgresRoleRepository) Delete(ctx context.Context, tenantID, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND tenant_id = $2
	`, r.tables.Roles)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("role %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
