package directory

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/crypto/bcrypt"

	"docvault/internal/config"
	"docvault/internal/domain"
	models "docvault/internal/domain/models/docstore"
	"docvault/internal/domain/repositories"
	storeRepo "docvault/internal/domain/repositories/docstore"
	dirSvc "docvault/internal/domain/services/directory"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

// resetTokenTTL bounds how long an invite or password-reset token stays
// usable.
const resetTokenTTL = 24 * time.Hour

type authService struct {
	userRepo   storeRepo.UserRepository
	roleRepo   storeRepo.RoleRepository
	tenantRepo storeRepo.TenantRepository
	txManager  repositories.TransactionManager
	issuer     TokenIssuer
	logger     *slog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo storeRepo.UserRepository,
	roleRepo storeRepo.RoleRepository,
	tenantRepo storeRepo.TenantRepository,
	txManager repositories.TransactionManager,
	issuer TokenIssuer,
	logger *slog.Logger,
) dirSvc.AuthService {
	return &authService{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		tenantRepo: tenantRepo,
		txManager:  txManager,
		issuer:     issuer,
		logger:     logger,
	}
}

// Register creates an account. Without a tenant id a fresh tenant is created
// and the registrant becomes its Admin; with one the registrant joins as a
// regular member. Tenant, user and built-in roles are created in one
// transaction so a failed registration leaves nothing behind.
func (s *authService) Register(ctx context.Context, req *dirSvc.RegisterRequest) (*dirSvc.AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateRegister(req); err != nil {
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

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashed := string(hash)

	user := &models.User{
		Email:          req.Email,
		FullName:       strings.TrimSpace(req.FullName),
		HashedPassword: &hashed,
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if req.TenantID != nil {
			tenant, err := s.tenantRepo.GetByID(txCtx, *req.TenantID)
			if err != nil {
				return err
			}
			user.TenantID = tenant.ID
			user.Roles = []string{models.RoleUser}
		} else {
			name := strings.TrimSpace(req.TenantName)
			if name == "" {
				name = fmt.Sprintf("%s's workspace", user.Email)
			}
			tenant := &models.Tenant{Name: name, Status: models.TenantStatusActive}
			if err := s.tenantRepo.Create(txCtx, tenant); err != nil {
				return err
			}
			user.TenantID = tenant.ID
			user.Roles = []string{models.RoleAdmin}
		}

		if err := s.userRepo.Create(txCtx, user); err != nil {
			return err
		}
		return s.ensureBuiltinRoles(txCtx, user.TenantID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		"user_id", user.ID,
		"tenant_id", user.TenantID,
		"role", user.PrimaryRole(),
	)

	return s.issueResponse(user)
}

// Login verifies credentials. Unknown email, an account that never set a
// password and a wrong password all collapse into the same generic
// unauthorized error so callers cannot probe which one happened.
func (s *authService) Login(ctx context.Context, req *dirSvc.LoginRequest) (*dirSvc.AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	generic := &domain.UnauthorizedError{Message: "invalid email or password"}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, generic
		}
		return nil, err
	}
	if user.HashedPassword == nil {
		return nil, generic
	}
	if bcrypt.CompareHashAndPassword([]byte(*user.HashedPassword), []byte(req.Password)) != nil {
		return nil, generic
	}

	return s.issueResponse(user)
}

// RequestPasswordReset stores a reset token for the account when it exists.
// The outcome is identical either way; the token itself travels out of band.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := generateToken()
	if err != nil {
		return err
	}
	if err := s.userRepo.SetResetToken(ctx, user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	s.logger.Info("password reset token issued", "user_id", user.ID)
	return nil
}

// SetPassword consumes an invite or reset token.
func (s *authService) SetPassword(ctx context.Context, req *dirSvc.SetPasswordRequest) error {
	if err := validatePassword(req.Password); err != nil {
		return err
	}

	user, err := s.userRepo.GetByResetToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.ValidationError{Message: "invalid or expired token"}
		}
		return err
	}
	if user.TokenExpiresAt == nil || time.Now().After(*user.TokenExpiresAt) {
		return &domain.ValidationError{Message: "invalid or expired token"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.SetPassword(ctx, user.ID, string(hash))
}

// ChangePassword verifies the current password before replacing it.
func (s *authService) ChangePassword(ctx context.Context, userID string, req *dirSvc.ChangePasswordRequest) error {
	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.HashedPassword == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.HashedPassword), []byte(req.CurrentPassword)) != nil {
		return &domain.UnauthorizedError{Message: "current password is incorrect"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.SetPassword(ctx, user.ID, string(hash))
}

// ensureBuiltinRoles creates the Admin and User role records for a tenant
// that does not have them yet. An existing record of either name is left
// alone.
func (s *authService) ensureBuiltinRoles(ctx context.Context, tenantID string) error {
	builtins := []struct{ name, description string }{
		{models.RoleAdmin, "Full access to everything in the tenant"},
		{models.RoleUser, "Access to own content and allow-listed shares"},
	}
	for _, b := range builtins {
		_, err := s.roleRepo.GetByName(ctx, tenantID, b.name)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		role := &models.Role{TenantID: tenantID, Name: b.name, Description: b.description}
		if err := s.roleRepo.Create(ctx, role); err != nil && !errors.Is(err, domain.ErrConflict) {
			return err
		}
	}
	return nil
}

func (s *authService) issueResponse(user *models.User) (*dirSvc.AuthResponse, error) {
	token, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &dirSvc.AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	}, nil
}

// generateToken returns a urlsafe random token for invite and reset flows.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func validateRegister(req *dirSvc.RegisterRequest) error {
	err := validation.Errors{
		"email": validation.Validate(req.Email, validation.Required, is.Email),
		"full_name": validation.Validate(req.FullName,
			validation.Required, validation.Length(1, 255)),
		"tenant_name": validation.Validate(req.TenantName,
			validation.Length(0, config.MaxTenantNameLength)),
	}.Filter()
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return validatePassword(req.Password)
}

func validatePassword(password string) error {
	if len(password) < config.MinPasswordLength {
		return &domain.ValidationError{
			Message: fmt.Sprintf("password must be at least %d characters", config.MinPasswordLength),
		}
	}
	return nil
}
