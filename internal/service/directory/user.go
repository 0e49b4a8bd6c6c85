package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"docvault/internal/domain"
	models "docvault/internal/domain/models/docstore"
	storeRepo "docvault/internal/domain/repositories/docstore"
	dirSvc "docvault/internal/domain/services/directory"
)

type userService struct {
	userRepo storeRepo.UserRepository
	roleRepo storeRepo.RoleRepository
	logger   *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo storeRepo.UserRepository,
	roleRepo storeRepo.RoleRepository,
	logger *slog.Logger,
) dirSvc.UserService {
	return &userService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		logger:   logger,
	}
}

// GetUser returns a member of the actor's tenant. A user id belonging to a
// different tenant reads as not found.
func (s *userService) GetUser(ctx context.Context, actorID, userID string) (*models.User, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TenantID != actor.TenantID {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", userID)}
	}
	return user, nil
}

// ListUsers lists the tenant's members. Admin only.
func (s *userService) ListUsers(ctx context.Context, actorID string) ([]models.User, error) {
	actor, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.userRepo.ListByTenant(ctx, actor.TenantID)
}

// InviteUser creates a passwordless member and returns the set-password
// token alongside the record. Delivering the token is the caller's problem.
func (s *userService) InviteUser(ctx context.Context, actorID string, req *dirSvc.InviteUserRequest) (*dirSvc.InviteResult, error) {
	actor, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateInvite(req); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, &domain.ConflictError{
			Message:      "an account with this email already exists",
			ResourceType: "user",
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	roles := models.NormalizeRoles(req.Roles, "")
	if err := s.requireKnownRoles(ctx, actor.TenantID, roles); err != nil {
		return nil, err
	}

	user := &models.User{
		TenantID: actor.TenantID,
		Email:    req.Email,
		FullName: strings.TrimSpace(req.FullName),
		Roles:    roles,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetResetToken(ctx, user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return nil, err
	}

	s.logger.Info("user invited",
		"user_id", user.ID,
		"tenant_id", user.TenantID,
		"invited_by", actor.ID,
	)

	return &dirSvc.InviteResult{User: user, SetPasswordToken: token}, nil
}

// UpdateUserRoles replaces a member's role list. Admin only; the first
// entry becomes the primary role.
func (s *userService) UpdateUserRoles(ctx context.Context, actorID, userID string, req *dirSvc.UpdateUserRolesRequest) (*models.User, error) {
	actor, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TenantID != actor.TenantID {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", userID)}
	}

	roles := models.NormalizeRoles(req.Roles, "")
	if err := s.requireKnownRoles(ctx, actor.TenantID, roles); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateRoles(ctx, actor.TenantID, user.ID, roles); err != nil {
		return nil, err
	}
	user.Roles = roles
	return user, nil
}

// DeleteUser removes a member. Admins cannot remove themselves, which
// guarantees every tenant keeps at least one admin able to undo mistakes.
func (s *userService) DeleteUser(ctx context.Context, actorID, userID string) error {
	actor, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if actorID == userID {
		return &domain.ValidationError{Message: "you cannot delete your own account"}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TenantID != actor.TenantID {
		return &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", userID)}
	}

	return s.userRepo.Delete(ctx, actor.TenantID, user.ID)
}

func (s *userService) requireAdmin(ctx context.Context, actorID string) (*models.User, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, &domain.ForbiddenError{Message: "admin role required"}
	}
	return actor, nil
}

// requireKnownRoles rejects role names the tenant has no record for, so a
// typo cannot silently assign an allow-list that never resolves.
func (s *userService) requireKnownRoles(ctx context.Context, tenantID string, roles []string) error {
	for _, name := range roles {
		if _, err := s.roleRepo.GetByName(ctx, tenantID, name); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return &domain.ValidationError{Message: fmt.Sprintf("unknown role %q", name)}
			}
			return err
		}
	}
	return nil
}

func validateInvite(req *dirSvc.InviteUserRequest) error {
	err := validation.Errors{
		"email": validation.Validate(req.Email, validation.Required, is.Email),
		"full_name": validation.Validate(req.FullName,
			validation.Required, validation.Length(1, 255)),
	}.Filter()
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}
