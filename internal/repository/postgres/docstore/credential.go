package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"docvault/internal/domain"
	models "docvault/internal/domain/models/docstore"
	storeRepo "docvault/internal/domain/repositories/docstore"

	"docvault/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const credentialColumns = `c.id, c.tenant_id, c.user_id, c.provider, c.access_token,
		       c.refresh_token, c.client_id, c.client_secret, c.token_expiry,
		       c.remote_folder_id, c.created_at, c.updated_at`

// PostgresCredentialRepository implements the CredentialRepository interface
type PostgresCredentialRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewCredentialRepository creates a new credential repository
func NewCredentialRepository(config *postgres.RepositoryConfig) storeRepo.CredentialRepository {
	return &PostgresCredentialRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Upsert inserts or replaces the credential for (tenant, user, provider).
// A reconnect through the OAuth flow lands here and overwrites the previous
// token pair in place.
func (r *PostgresCredentialRepository) Upsert(ctx context.Context, cred *models.ExternalCredential) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (tenant_id, user_id, provider, access_token, refresh_token,
		                client_id, client_secret, token_expiry, remote_folder_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, provider) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			client_id = EXCLUDED.client_id,
			client_secret = EXCLUDED.client_secret,
			token_expiry = EXCLUDED.token_expiry,
			remote_folder_id = EXCLUDED.remote_folder_id,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, r.tables.Credentials)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		cred.TenantID,
		cred.UserID,
		cred.Provider,
		cred.AccessToken,
		cred.RefreshToken,
		cred.ClientID,
		cred.ClientSecret,
		cred.TokenExpiry,
		cred.RemoteFolderID,
	).Scan(&cred.ID, &cred.CreatedAt, &cred.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}

	return nil
}

// GetByUser retrieves the credential a user holds for a provider
func (r *PostgresCredentialRepository) GetByUser(ctx context.Context, tenantID, userID, provider string) (*models.ExternalCredential, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s c
		WHERE c.tenant_id = $1 AND c.user_id = $2 AND c.provider = $3
	`, credentialColumns, r.tables.Credentials)

	return r.scanCredential(ctx, query, tenantID, userID, provider)
}

// GetTenantAdmin retrieves a credential for the provider held by any Admin
// user of the tenant. The most recently updated one wins so a freshly
// reconnected admin credential takes precedence over stale ones.
func (r *PostgresCredentialRepository) GetTenantAdmin(ctx context.Context, tenantID, provider string) (*models.ExternalCredential, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s c
		JOIN %s u ON u.id = c.user_id
		WHERE c.tenant_id = $1 AND c.provider = $2 AND 'Admin' = ANY(u.roles)
		ORDER BY c.updated_at DESC
		LIMIT 1
	`, credentialColumns, r.tables.Credentials, r.tables.Users)

	return r.scanCredential(ctx, query, tenantID, provider)
}

func (r *PostgresCredentialRepository) scanCredential(ctx context.Context, query string, args ...interface{}) (*models.ExternalCredential, error) {
	var cred models.ExternalCredential
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, args...).Scan(
		&cred.ID,
		&cred.TenantID,
		&cred.UserID,
		&cred.Provider,
		&cred.AccessToken,
		&cred.RefreshToken,
		&cred.ClientID,
		&cred.ClientSecret,
		&cred.TokenExpiry,
		&cred.RemoteFolderID,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("external credential: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}

	return &cred, nil
}

// UpdateAccessToken overwrites the access token of one credential row.
// Deliberately not guarded by a version check: concurrent refreshes both
// write a token that is valid at write time, so last-writer-wins is safe.
func (r *PostgresCredentialRepository) UpdateAccessToken(ctx context.Context, id, accessToken string, expiry *time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET access_token = $1, token_expiry = $2, updated_at = NOW()
		WHERE id = $3
	`, r.tables.Credentials)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, accessToken, expiry, id)
	if err != nil {
		return fmt.Errorf("update access token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("credential %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByUser lists all of a user's credentials
func (r *PostgresCredentialRepository) ListByUser(ctx context.Context, tenantID, userID string) ([]models.ExternalCredential, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s c
		WHERE c.tenant_id = $1 AND c.user_id = $2
		ORDER BY c.provider ASC
	`, credentialColumns, r.tables.Credentials)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	return scanCredentials(rows)
}

// DeleteByUser removes a user's credential for a provider
func (r *PostgresCredentialRepository) DeleteByUser(ctx context.Context, tenantID, userID, provider string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE tenant_id = $1 AND user_id = $2 AND provider = $3
	`, r.tables.Credentials)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, tenantID, userID, provider)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("external credential: %w", domain.ErrNotFound)
	}

	return nil
}

func scanCredentials(rows pgx.Rows) ([]models.ExternalCredential, error) {
	var creds []models.ExternalCredential
	for rows.Next() {
		var cred models.ExternalCredential
		err := rows.Scan(
			&cred.ID,
			&cred.TenantID,
			&cred.UserID,
			&cred.Provider,
			&cred.AccessToken,
			&cred.RefreshToken,
			&cred.ClientID,
			&cred.ClientSecret,
			&cred.TokenExpiry,
			&cred.RemoteFolderID,
			&cred.CreatedAt,
			&cred.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		creds = append(creds, cred)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}

	// Return empty slice instead of nil
	if creds == nil {
		creds = []models.ExternalCredential{}
	}

	return creds, nil
}
