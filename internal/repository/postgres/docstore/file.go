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

const fileColumns = `id, tenant_id, owner_id, folder_id, name, storage_path,
		       external_file_id, external_storage_type, size_bytes, content_type,
		       created_at, updated_at`

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *postgres.RepositoryConfig) storeRepo.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new file record
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (tenant_id, owner_id, folder_id, name, storage_path,
		                external_file_id, external_storage_type, size_bytes, content_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		file.TenantID,
		file.OwnerID,
		file.FolderID,
		file.Name,
		file.StoragePath,
		file.ExternalFileID,
		file.ExternalStorageType,
		file.SizeBytes,
		file.ContentType,
	).Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			existingID, queryErr := r.getExistingFileID(ctx, file.TenantID, file.FolderID, file.Name)
			if queryErr != nil {
				return fmt.Errorf("file %q already exists in this location: %w", file.Name, domain.ErrConflict)
			}
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a file named %q already exists in this location", file.Name),
				ResourceType: "file",
				ResourceID:   existingID,
			}
		}
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

// GetByID retrieves a file by ID within a tenant
func (r *PostgresFileRepository) GetByID(ctx context.Context, tenantID, id string) (*models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND tenant_id = $2
	`, fileColumns, r.tables.Files)

	var file models.File
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, tenantID).Scan(
		&file.ID,
		&file.TenantID,
		&file.OwnerID,
		&file.FolderID,
		&file.Name,
		&file.StoragePath,
		&file.ExternalFileID,
		&file.ExternalStorageType,
		&file.SizeBytes,
		&file.ContentType,
		&file.CreatedAt,
		&file.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return &file, nil
}

// ListByFolder lists files directly inside a folder (nil = tenant root)
func (r *PostgresFileRepository) ListByFolder(ctx context.Context, tenantID string, folderID *string) ([]models.File, error) {
	var query string
	var args []interface{}

	if folderID == nil {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE tenant_id = $1 AND folder_id IS NULL
			ORDER BY name ASC
		`, fileColumns, r.tables.Files)
		args = append(args, tenantID)
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE tenant_id = $1 AND folder_id = $2
			ORDER BY name ASC
		`, fileColumns, r.tables.Files)
		args = append(args, tenantID, *folderID)
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list files in folder: %w", err)
	}
	defer rows.Close()

	return scanFiles(rows)
}

// ListByTenant lists all files of a tenant
func (r *PostgresFileRepository) ListByTenant(ctx context.Context, tenantID string) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE tenant_id = $1
		ORDER BY name ASC
	`, fileColumns, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	return scanFiles(rows)
}

// CountByFolder counts files directly inside a folder
func (r *PostgresFileRepository) CountByFolder(ctx context.Context, tenantID string, folderID *string) (int, error) {
	var query string
	var args []interface{}

	if folderID == nil {
		query = fmt.Sprintf(`
			SELECT COUNT(*) FROM %s WHERE tenant_id = $1 AND folder_id IS NULL
		`, r.tables.Files)
		args = append(args, tenantID)
	} else {
		query = fmt.Sprintf(`
			SELECT COUNT(*) FROM %s WHERE tenant_id = $1 AND folder_id = $2
		`, r.tables.Files)
		args = append(args, tenantID, *folderID)
	}

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count files in folder: %w", err)
	}

	return count, nil
}

// Exists reports whether a file named name sits directly in folderID
func (r *PostgresFileRepository) Exists(ctx context.Context, tenantID string, folderID *string, name string) (bool, error) {
	var query string
	var args []interface{}

	if folderID == nil {
		query = fmt.Sprintf(`
			SELECT EXISTS(SELECT 1 FROM %s WHERE tenant_id = $1 AND folder_id IS NULL AND name = $2)
		`, r.tables.Files)
		args = append(args, tenantID, name)
	} else {
		query = fmt.Sprintf(`
			SELECT EXISTS(SELECT 1 FROM %s WHERE tenant_id = $1 AND folder_id = $2 AND name = $3)
		`, r.tables.Files)
		args = append(args, tenantID, *folderID, name)
	}

	var exists bool
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check file exists: %w", err)
	}

	return exists, nil
}

// Move changes a file's containing folder
func (r *PostgresFileRepository) Move(ctx context.Context, tenantID, id string, folderID *string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, folderID, id, tenantID)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "a file with the same name already exists in the destination folder",
				ResourceType: "file",
			}
		}
		return fmt.Errorf("move file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Rename changes a file's name
func (r *PostgresFileRepository) Rename(ctx context.Context, tenantID, id, name string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, name, id, tenantID)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a file named %q already exists in this location", name),
				ResourceType: "file",
			}
		}
		return fmt.Errorf("rename file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a file record. Zero rows affected is not an error:
// recursive deletes may retry nodes an earlier pass already removed.
func (r *PostgresFileRepository) Delete(ctx context.Context, tenantID, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND tenant_id = $2
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	return nil
}

// getExistingFileID queries for an existing file by unique constraint fields
func (r *PostgresFileRepository) getExistingFileID(ctx context.Context, tenantID string, folderID *string, name string) (string, error) {
	var query string
	var err error
	var id string
	executor := postgres.GetExecutor(ctx, r.pool)

	if folderID == nil {
		query = fmt.Sprintf(`
			SELECT id
			FROM %s
			WHERE tenant_id = $1 AND folder_id IS NULL AND name = $2
		`, r.tables.Files)
		err = executor.QueryRow(ctx, query, tenantID, name).Scan(&id)
	} else {
		query = fmt.Sprintf(`
			SELECT id
			FROM %s
			WHERE tenant_id = $1 AND folder_id = $2 AND name = $3
		`, r.tables.Files)
		err = executor.QueryRow(ctx, query, tenantID, *folderID, name).Scan(&id)
	}

	if err != nil {
		return "", fmt.Errorf("get existing file ID: %w", err)
	}

	return id, nil
}

func scanFiles(rows pgx.Rows) ([]models.File, error) {
	var files []models.File
	for rows.Next() {
		var file models.File
		err := rows.Scan(
			&file.ID,
			&file.TenantID,
			&file.OwnerID,
			&file.FolderID,
			&file.Name,
			&file.StoragePath,
			&file.ExternalFileID,
			&file.ExternalStorageType,
			&file.SizeBytes,
			&file.ContentType,
			&file.CreatedAt,
			&file.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	// Return empty slice instead of nil
	if files == nil {
		files = []models.File{}
	}

	return files, nil
}
