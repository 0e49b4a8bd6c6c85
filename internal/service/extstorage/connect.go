package extstorage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"docvault/internal/capabilities"
	"docvault/internal/config"
	"docvault/internal/domain"
	models "docvault/internal/domain/models/docstore"
	storeRepo "docvault/internal/domain/repositories/docstore"
	extSvc "docvault/internal/domain/services/extstorage"
)

// stateTTL bounds how long an issued OAuth state parameter stays valid.
const stateTTL = 15 * time.Minute

// stateClaims is the signed state parameter carried through the OAuth
// consent round trip. It is the only thing tying the provider's callback
// back to the user who initiated the connect.
type stateClaims struct {
	jwt.RegisteredClaims
	Provider string `json:"provider"`
}

type connectService struct {
	registry    *capabilities.Registry
	credRepo    storeRepo.CredentialRepository
	userRepo    storeRepo.UserRepository
	manager     *Manager
	redirectURL string
	clients     map[string]config.ProviderCredentials
	stateSecret []byte
	logger      *slog.Logger
}

// NewConnectService creates the service behind the external storage
// connect endpoints. stateSecret signs the OAuth state parameter and must
// be non-empty for AuthURL/HandleCallback to work.
func NewConnectService(
	registry *capabilities.Registry,
	credRepo storeRepo.CredentialRepository,
	userRepo storeRepo.UserRepository,
	manager *Manager,
	redirectURL string,
	clients map[string]config.ProviderCredentials,
	stateSecret string,
	logger *slog.Logger,
) extSvc.ConnectService {
	return &connectService{
		registry:    registry,
		credRepo:    credRepo,
		userRepo:    userRepo,
		manager:     manager,
		redirectURL: redirectURL,
		clients:     clients,
		stateSecret: []byte(stateSecret),
		logger:      logger,
	}
}

// Status reports the user's connection state for every registered provider
func (s *connectService) Status(ctx context.Context, userID string) ([]extSvc.ConnectionStatus, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	statuses := make([]extSvc.ConnectionStatus, 0, len(s.registry.Names()))
	for _, provider := range s.registry.Names() {
		status := extSvc.ConnectionStatus{Provider: provider}

		cred, shared, err := s.manager.ResolveCredential(ctx, user.TenantID, user.ID, provider)
		switch {
		case err == nil:
			status.Connected = true
			status.Shared = shared
			status.RemoteFolderID = cred.RemoteFolderID
			status.TokenExpiry = cred.TokenExpiry
		case errors.Is(err, domain.ErrNotFound):
			// not connected
		default:
			return nil, err
		}

		statuses = append(statuses, status)
	}
	return statuses, nil
}

// AuthURL builds the provider's OAuth consent URL for the user
func (s *connectService) AuthURL(ctx context.Context, userID, provider string) (string, error) {
	conf, desc, err := s.oauthConfig(provider)
	if err != nil {
		return "", err
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return "", err
	}

	state, err := s.signState(userID, provider)
	if err != nil {
		return "", err
	}

	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOffline}
	if desc.Provider == models.ProviderGoogleDrive {
		// Google only reissues a refresh token when consent is forced.
		opts = append(opts, oauth2.ApprovalForce)
	}

	return conf.AuthCodeURL(state, opts...), nil
}

// HandleCallback exchanges the authorization code and stores the resulting
// credential for the user encoded in state
func (s *connectService) HandleCallback(ctx context.Context, state, code string) (*extSvc.CallbackResult, error) {
	userID, provider, err := s.verifyState(state)
	if err != nil {
		return nil, err
	}

	conf, desc, err := s.oauthConfig(provider)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: authorization code exchange failed", domain.ErrValidation)
	}

	cred := &models.ExternalCredential{
		TenantID:     user.TenantID,
		UserID:       user.ID,
		Provider:     desc.Provider,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
	}
	if !token.Expiry.IsZero() {
		e := token.Expiry
		cred.TokenExpiry = &e
	}

	if err := s.credRepo.Upsert(ctx, cred); err != nil {
		return nil, err
	}

	s.logger.Info("external storage connected",
		"provider", desc.Provider,
		"tenant_id", user.TenantID,
		"user_id", user.ID,
		"has_refresh_token", token.RefreshToken != "",
	)

	return &extSvc.CallbackResult{Provider: desc.Provider, UserID: user.ID}, nil
}

// Disconnect removes the user's credential for the provider
func (s *connectService) Disconnect(ctx context.Context, userID, provider string) error {
	if _, err := s.registry.Get(provider); err != nil {
		return &domain.NotFoundError{Message: "unknown provider"}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.credRepo.DeleteByUser(ctx, user.TenantID, user.ID, provider); err != nil {
		return err
	}

	s.logger.Info("external storage disconnected",
		"provider", provider,
		"tenant_id", user.TenantID,
		"user_id", user.ID,
	)
	return nil
}

// Test performs a lightweight provider call through the stored credential,
// exercising the refresh protocol end to end
func (s *connectService) Test(ctx context.Context, userID, provider string) (*extSvc.TestResult, error) {
	if _, err := s.registry.Get(provider); err != nil {
		return nil, &domain.NotFoundError{Message: "unknown provider"}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	account, err := s.manager.TestConnection(ctx, user.TenantID, user.ID, provider)
	if err != nil {
		return nil, err
	}

	return &extSvc.TestResult{Provider: provider, Account: account}, nil
}

// oauthConfig assembles the oauth2 configuration for a provider from its
// registry descriptor and the configured client registration.
func (s *connectService) oauthConfig(provider string) (*oauth2.Config, *capabilities.ProviderDescriptor, error) {
	desc, err := s.registry.Get(provider)
	if err != nil {
		return nil, nil, &domain.NotFoundError{Message: "unknown provider"}
	}

	client, ok := s.clients[provider]
	if !ok || client.ClientID == "" || client.ClientSecret == "" {
		return nil, nil, &domain.ValidationError{
			Message: fmt.Sprintf("%s is not configured on this deployment", desc.DisplayName),
		}
	}

	return &oauth2.Config{
		ClientID:     client.ClientID,
		ClientSecret: client.ClientSecret,
		RedirectURL:  s.redirectURL,
		Scopes:       desc.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  desc.AuthURL,
			TokenURL: desc.TokenURL,
		},
	}, desc, nil
}

func (s *connectService) signState(userID, provider string) (string, error) {
	if len(s.stateSecret) == 0 {
		return "", errors.New("state secret is not configured")
	}

	now := time.Now()
	claims := &stateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
		},
		Provider: provider,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.stateSecret)
	if err != nil {
		return "", fmt.Errorf("sign oauth state: %w", err)
	}
	return signed, nil
}

func (s *connectService) verifyState(state string) (userID, provider string, err error) {
	token, err := jwt.ParseWithClaims(state, &stateClaims{},
		func(t *jwt.Token) (interface{}, error) { return s.stateSecret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil || !token.Valid {
		return "", "", fmt.Errorf("%w: invalid or expired state parameter", domain.ErrValidation)
	}

	claims, ok := token.Claims.(*stateClaims)
	if !ok || claims.Subject == "" || claims.Provider == "" {
		return "", "", fmt.Errorf("%w: invalid state parameter", domain.ErrValidation)
	}
	return claims.Subject, claims.Provider, nil
}
