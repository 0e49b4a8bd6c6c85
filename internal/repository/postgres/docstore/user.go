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

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUserRepository implements the UserRepository interface
type PostgresUserRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(config *postgres.RepositoryConfig) storeRepo.UserRepository {
	return &PostgresUserRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new user
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	// Role lists are normalized before they hit the database: non-empty,
	// ordered, first entry is the primary role.
	user.Roles = models.NormalizeRoles(user.Roles, "")

	query := fmt.Sprintf(`
		INSERT INTO %s (tenant_id, email, full_name, roles, hashed_password)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, r.tables.Users)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		user.TenantID,
		user.Email,
		user.FullName,
		user.Roles,
		user.HashedPassword,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "a user with this email already exists",
				ResourceType: "user",
			}
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by email address
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, tenant_id, email, full_name, roles, hashed_password,
		       password_reset_token, token_expires_at, created_at, updated_at
		FROM %s
		WHERE email = $1
	`, r.tables.Users)

	return r.scanUser(ctx, query, email)
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, tenant_id, email, full_name, roles, hashed_password,
		       password_reset_token, token_expires_at, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Users)

	return r.scanUser(ctx, query, id)
}

// GetByResetToken retrieves the user holding the given password reset token
func (r *PostgresUserRepository) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, tenant_id, email, full_name, roles, hashed_password,
		       password_reset_token, token_expires_at, created_at, updated_at
		FROM %s
		WHERE password_reset_token = $1
	`, r.tables.Users)

	return r.scanUser(ctx, query, token)
}

func (r *PostgresUserRepository) scanUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.TenantID,
		&user.Email,
		&user.FullName,
		&user.Roles,
		&user.HashedPassword,
		&user.PasswordResetToken,
		&user.TokenExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	user.Roles = models.NormalizeRoles(user.Roles, "")
	return &user, nil
}

// ListByTenant lists all users of a tenant
func (r *PostgresUserRepository) ListByTenant(ctx context.Context, tenantID string) ([]models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, tenant_id, email, full_name, roles, created_at, updated_at
		FROM %s
		WHERE tenant_id = $1
		ORDER BY email ASC
	`, r.tables.Users)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID,
			&user.TenantID,
			&user.Email,
			&user.FullName,
			&user.Roles,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		user.Roles = models.NormalizeRoles(user.Roles, "")
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	// Return empty slice instead of nil
	if users == nil {
		users = []models.User{}
	}

	return users, nil
}

// UpdateRoles replaces a user's role list
func (r *PostgresUserRepository) UpdateRoles(ctx context.Context, tenantID, userID string, roles []string) error {
	roles = models.NormalizeRoles(roles, "")

	query := fmt.Sprintf(`
		UPDATE %s
		SET roles = $1, updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3
	`, r.tables.Users)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, roles, userID, tenantID)
	if err != nil {
		return fmt.Errorf("update user roles: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a user from its tenant
func (r *PostgresUserRepository) Delete(ctx context.Context, tenantID, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND tenant_id = $2
	`, r.tables.Users)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// SetPassword stores a new password hash and clears any reset token
func (r *PostgresUserRepository) SetPassword(ctx context.Context, userID, hashedPassword string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET hashed_password = $1, password_reset_token = NULL, token_expires_at = NULL, updated_at = NOW()
		WHERE id = $2
	`, r.tables.Users)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, hashedPassword, userID)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}

	return nil
}

// SetResetToken stores a password reset token with its expiry
func (r *PostgresUserRepository) SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET password_reset_token = $1, token_expires_at = $2, updated_at = NOW()
		WHERE id = $3
	`, r.tables.Users)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, token, expiresAt, userID)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}

	return nil
}

// CountByRoleName counts users in a tenant carrying the role name anywhere
// in their role list
func (r *PostgresUserRepository) CountByRoleName(ctx context.Context, tenantID, roleName string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE tenant_id = $1 AND $2 = ANY(roles)
	`, r.tables.Users)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, tenantID, roleName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}

	return count, nil
}
