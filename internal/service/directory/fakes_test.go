package directory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"docvault/internal/domain"
	models "docvault/internal/domain/models/docstore"
	"docvault/internal/domain/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTxManager runs the function directly; rollback behavior is not under
// test here, only that registration work happens inside the callback.
type fakeTxManager struct {
	calls int
}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	m.calls++
	return fn(ctx)
}

var _ repositories.TransactionManager = (*fakeTxManager)(nil)

type fakeIssuer struct {
	err error
}

func (i *fakeIssuer) Issue(user *models.User) (string, error) {
	if i.err != nil {
		return "", i.err
	}
	return "token-for-" + user.ID, nil
}

type fakeTenantRepo struct {
	tenants []*models.Tenant
}

func (r *fakeTenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	if tenant.ID == "" {
		tenant.ID = fmt.Sprintf("tenant-%d", len(r.tenants)+1)
	}
	r.tenants = append(r.tenants, tenant)
	return nil
}

func (r *fakeTenantRepo) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	for _, t := range r.tenants {
		if t.ID == id {
			copied := *t
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: tenant %s", domain.ErrNotFound, id)
}

type fakeUserRepo struct {
	users []*models.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return &domain.ConflictError{Message: "email taken", ResourceType: "user", ResourceID: u.ID}
		}
	}
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	}
	r.users = append(r.users, user)
	return nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, email)
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
}

func (r *fakeUserRepo) ListByTenant(ctx context.Context, tenantID string) ([]models.User, error) {
	out := []models.User{}
	for _, u := range r.users {
		if u.TenantID == tenantID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateRoles(ctx context.Context, tenantID, userID string, roles []string) error {
	for _, u := range r.users {
		if u.TenantID == tenantID && u.ID == userID {
			u.Roles = roles
			return nil
		}
	}
	return fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
}

func (r *fakeUserRepo) Delete(ctx context.Context, tenantID, id string) error {
	for i, u := range r.users {
		if u.TenantID == tenantID && u.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
}

func (r *fakeUserRepo) SetPassword(ctx context.Context, userID, hashedPassword string) error {
	for _, u := range r.users {
		if u.ID == userID {
			u.HashedPassword = &hashedPassword
			u.PasswordResetToken = nil
			u.TokenExpiresAt = nil
			return nil
		}
	}
	return fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
}

func (r *fakeUserRepo) SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	for _, u := range r.users {
		if u.ID == userID {
			u.PasswordResetToken = &token
			u.TokenExpiresAt = &expiresAt
			return nil
		}
	}
	return fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
}

func (r *fakeUserRepo) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	for _, u := range r.users {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == token {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: reset token", domain.ErrNotFound)
}

func (r *fakeUserRepo) CountByRoleName(ctx context.Context, tenantID, roleName string) (int, error) {
	n := 0
	for _, u := range r.users {
		if u.TenantID == tenantID && u.HasRole(roleName) {
			n++
		}
	}
	return n, nil
}

type fakeRoleRepo struct {
	roles []*models.Role
}

func (r *fakeRoleRepo) Create(ctx context.Context, role *models.Role) error {
	for _, existing := range r.roles {
		if existing.TenantID == role.TenantID && existing.Name == role.Name {
			return &domain.ConflictError{Message: "role name taken", ResourceType: "role", ResourceID: existing.ID}
		}
	}
	if role.ID == "" {
		role.ID = fmt.Sprintf("role-%d", len(r.roles)+1)
	}
	r.roles = append(r.roles, role)
	return nil
}

func (r *fakeRoleRepo) GetByID(ctx context.Context, tenantID, id string) (*models.Role, error) {
	for _, role := range r.roles {
		if role.TenantID == tenantID && role.ID == id {
			copied := *role
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: role %s", domain.ErrNotFound, id)
}

func (r *fakeRoleRepo) GetByName(ctx context.Context, tenantID, name string) (*models.Role, error) {
	for _, role := range r.roles {
		if role.TenantID == tenantID && role.Name == name {
			copied := *role
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: role %s", domain.ErrNotFound, name)
}

func (r *fakeRoleRepo) ListByTenant(ctx context.Context, tenantID string) ([]models.Role, error) {
	out := []models.Role{}
	for _, role := range r.roles {
		if role.TenantID == tenantID {
			out = append(out, *role)
		}
	}
	return out, nil
}

func (r *fakeRoleRepo) UpdatePermissions(ctx context.Context, tenantID, roleID string, allowedFolders, allowedFiles []string) error {
	for _, role := range r.roles {
		if role.TenantID == tenantID && role.ID == roleID {
			role.AllowedFolders = allowedFolders
			role.AllowedFiles = allowedFiles
			return nil
		}
	}
	return fmt.Errorf("%w: role %s", domain.ErrNotFound, roleID)
}

func (r *fakeRoleRepo) Delete(ctx context.Context, tenantID, id string) error {
	for i, role := range r.roles {
		if role.TenantID == tenantID && role.ID == id {
			r.roles = append(r.roles[:i], r.roles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: role %s", domain.ErrNotFound, id)
}

func strPtr(s string) *string { return &s }
