package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"docvault/internal/config"
	"docvault/internal/domain"
	models "docvault/internal/domain/models/docstore"
	storeRepo "docvault/internal/domain/repositories/docstore"
	dirSvc "docvault/internal/domain/services/directory"
)

type roleService struct {
	roleRepo storeRepo.RoleRepository
	userRepo storeRepo.UserRepository
	logger   *slog.Logger
}

// NewRoleService creates a new role service
func NewRoleService(
	roleRepo storeRepo.RoleRepository,
	userRepo storeRepo.UserRepository,
	logger *slog.Logger,
) dirSvc.RoleService {
	return &roleService{
		roleRepo: roleRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

// CreateRole creates a tenant role with empty allow-lists. Admin only.
func (s *roleService) CreateRole(ctx context.Context, actorID string, req *dirSvc.CreateRoleRequest) (*models.Role, error) {
	actor, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	err = validation.Errors{
		"name": validation.Validate(name,
			validation.Required, validation.Length(1, config.MaxRoleNameLength)),
	}.Filter()
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	role := &models.Role{
		TenantID:    actor.TenantID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}

	s.logger.Info("role created",
		"role_id", role.ID,
		"tenant_id", role.TenantID,
		"name", role.Name,
	)
	return role, nil
}

// ListRoles lists the tenant's roles. Any member may list; the names are
// needed to render role pickers.
func (s *roleService) ListRoles(ctx context.Context, actorID string) ([]models.Role, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.roleRepo.ListByTenant(ctx, actor.TenantID)
}

// UpdateRolePermissions replaces both allow-lists wholesale. Admin only.
// An omitted list clears to empty; there is no merge.
func (s *roleService) UpdateRolePermissions(ctx context.Context, actorID, roleID string, req *dirSvc.UpdateRolePermissionsRequest) (*models.Role, error) {
	actor, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}

	role, err := s.roleRepo.GetByID(ctx, actor.TenantID, roleID)
	if err != nil {
		return nil, err
	}

	folders := dedupe(req.AllowedFolders)
	files := dedupe(req.AllowedFiles)

	if err := s.roleRepo.UpdatePermissions(ctx, actor.TenantID, role.ID, folders, files); err != nil {
		return nil, err
	}
	role.AllowedFolders = folders
	role.AllowedFiles = files

	s.logger.Info("role permissions updated",
		"role_id", role.ID,
		"tenant_id", role.TenantID,
		"allowed_folders", len(folders),
		"allowed_files", len(files),
	)
	return role, nil
}

// DeleteRole removes a role. Built-in roles are protected, and a role any
// member still carries cannot go until those members are reassigned.
func (s *roleService) DeleteRole(ctx context.Context, actorID, roleID string) error {
	actor, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return err
	}

	role, err := s.roleRepo.GetByID(ctx, actor.TenantID, roleID)
	if err != nil {
		return err
	}
	if role.IsBuiltIn() {
		return &domain.ForbiddenError{Message: fmt.Sprintf("the built-in %q role cannot be deleted", role.Name)}
	}

	holders, err := s.userRepo.CountByRoleName(ctx, actor.TenantID, role.Name)
	if err != nil {
		return err
	}
	if holders > 0 {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("role %q is still assigned to %d user(s)", role.Name, holders),
			ResourceType: "role",
			ResourceID:   role.ID,
		}
	}

	return s.roleRepo.Delete(ctx, actor.TenantID, role.ID)
}

func (s *roleService) requireAdmin(ctx context.Context, actorID string) (*models.User, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, &domain.ForbiddenError{Message: "admin role required"}
	}
	return actor, nil
}

// dedupe drops empty strings and duplicates, keeping first occurrence order.
func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
