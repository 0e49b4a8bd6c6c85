package docstore

import (
	"context"
	"fmt"
	"log/slog"

	"docvault/internal/domain"
	models "docvault/internal/domain/models/docstore"
	storeRepo "docvault/internal/domain/repositories/docstore"

	"docvault/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) storeRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (tenant_id, owner_id, parent_id, name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.TenantID,
		folder.OwnerID,
		folder.ParentID,
		folder.Name,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			existingID, queryErr := r.getExistingFolderID(ctx, folder.TenantID, folder.ParentID, folder.Name)
			if queryErr != nil {
				return fmt.Errorf("folder %q already exists in this location: %w", folder.Name, domain.ErrConflict)
			}
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", folder.Name),
				ResourceType: "folder",
				ResourceID:   existingID,
			}
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID within a tenant
func (r *PostgresFolderRepository) GetByID(ctx context.Context, tenantID, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, tenant_id, owner_id, parent_id, name, created_at, updated_at
		FROM %s
		WHERE id = $1 AND tenant_id = $2
	`, r.tables.Folders)

	var folder models.Folder
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, tenantID).Scan(
		&folder.ID,
		&folder.TenantID,
		&folder.OwnerID,
		&folder.ParentID,
		&folder.Name,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// ListByTenant retrieves all folders of a tenant (flat list)
func (r *PostgresFolderRepository) ListByTenant(ctx context.Context, tenantID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, tenant_id, owner_id, parent_id, name, created_at, updated_at
		FROM %s
		WHERE tenant_id = $1
		ORDER BY name ASC
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	return scanFolders(rows)
}

// ListChildren lists folders whose parent is parentID (nil = tenant root)
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, tenantID string, parentID *string) ([]models.Folder, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT id, tenant_id, owner_id, parent_id, name, created_at, updated_at
			FROM %s
			WHERE tenant_id = $1 AND parent_id IS NULL
			ORDER BY name ASC
		`, r.tables.Folders)
		args = append(args, tenantID)
	} else {
		query = fmt.Sprintf(`
			SELECT id, tenant_id, owner_id, parent_id, name, created_at, updated_at
			FROM %s
			WHERE tenant_id = $1 AND parent_id = $2
			ORDER BY name ASC
		`, r.tables.Folders)
		args = append(args, tenantID, *parentID)
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list child folders: %w", err)
	}
	defer rows.Close()

	return scanFolders(rows)
}

// Rename changes a folder's name
func (r *PostgresFolderRepository) Rename(ctx context.Context, tenantID, id, name string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, name, id, tenantID)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", name),
				ResourceType: "folder",
			}
		}
		return fmt.Errorf("rename folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a folder record. Zero rows affected is not an error:
// recursive deletes may retry nodes an earlier pass already removed.
func (r *PostgresFolderRepository) Delete(ctx context.Context, tenantID, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND tenant_id = $2
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}

	return nil
}

// getExistingFolderID queries for an existing folder by unique constraint fields
func (r *PostgresFolderRepository) getExistingFolderID(ctx context.Context, tenantID string, parentID *string, name string) (string, error) {
	var query string
	var err error
	var id string
	executor := postgres.GetExecutor(ctx, r.pool)

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT id
			FROM %s
			WHERE tenant_id = $1 AND parent_id IS NULL AND name = $2
		`, r.tables.Folders)
		err = executor.QueryRow(ctx, query, tenantID, name).Scan(&id)
	} else {
		query = fmt.Sprintf(`
			SELECT id
			FROM %s
			WHERE tenant_id = $1 AND parent_id = $2 AND name = $3
		`, r.tables.Folders)
		err = executor.QueryRow(ctx, query, tenantID, *parentID, name).Scan(&id)
	}

	if err != nil {
		return "", fmt.Errorf("get existing folder ID: %w", err)
	}

	return id, nil
}

func scanFolders(rows pgx.Rows) ([]models.Folder, error) {
	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.TenantID,
			&folder.OwnerID,
			&folder.ParentID,
			&folder.Name,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	// Return empty slice instead of nil
	if folders == nil {
		folders = []models.Folder{}
	}

	return folders, nil
}
