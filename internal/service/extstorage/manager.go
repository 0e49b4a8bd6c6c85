package extstorage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"docvault/internal/domain"
	models "docvault/internal/domain/models/docstore"
	storeRepo "docvault/internal/domain/repositories/docstore"
	extSvc "docvault/internal/domain/services/extstorage"
)

// Manager owns the external credential lifecycle. Every provider call runs
// through the same protocol: use the stored access token; on an
// auth-expired rejection refresh it (when the credential carries a refresh
// token and client registration), persist the new token to the record it
// was read from, and retry the call exactly once. A second failure is
// terminal for the operation. Nothing outside this file ever retries or
// refreshes.
//
// Concurrent operations on the same credential may race through the refresh
// step; each writer stores a token that is valid at write time, so the last
// write wins harmlessly. No per-credential lock is taken.
type Manager struct {
	credRepo  storeRepo.CredentialRepository
	providers map[string]Provider
	refresher TokenRefresher
	logger    *slog.Logger
}

// NewManager creates an external storage manager
func NewManager(
	credRepo storeRepo.CredentialRepository,
	providers map[string]Provider,
	refresher TokenRefresher,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		credRepo:  credRepo,
		providers: providers,
		refresher: refresher,
		logger:    logger,
	}
}

var _ extSvc.Downloader = (*Manager)(nil)

// DownloadFile fetches the content of an external file. The credential is
// resolved through the file owner's connection, falling back to any tenant
// admin's shared connection.
func (m *Manager) DownloadFile(ctx context.Context, file *models.File) ([]byte, error) {
	if !file.IsExternal() {
		return nil, fmt.Errorf("file %s is not stored externally", file.ID)
	}
	providerName := *file.ExternalStorageType

	provider, ok := m.providers[providerName]
	if !ok {
		return nil, fmt.Errorf("no client registered for provider %q", providerName)
	}

	cred, _, err := m.ResolveCredential(ctx, file.TenantID, file.OwnerID, providerName)
	if err != nil {
		return nil, err
	}

	var content []byte
	err = m.withToken(ctx, cred, func(token string) error {
		var callErr error
		content, callErr = provider.DownloadBytes(ctx, *file.ExternalFileID, token)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

// TestConnection performs a lightweight identity call through the user's
// credential for the provider, running the full refresh protocol. Returns
// the remote account name.
func (m *Manager) TestConnection(ctx context.Context, tenantID, userID, providerName string) (string, error) {
	provider, ok := m.providers[providerName]
	if !ok {
		return "", fmt.Errorf("no client registered for provider %q", providerName)
	}

	cred, _, err := m.ResolveCredential(ctx, tenantID, userID, providerName)
	if err != nil {
		return "", err
	}

	var account string
	err = m.withToken(ctx, cred, func(token string) error {
		var callErr error
		account, callErr = provider.About(ctx, token)
		return callErr
	})
	if err != nil {
		return "", err
	}
	return account, nil
}

// ResolveCredential finds the credential to use for (user, provider):
// the user's own connection when present, otherwise any tenant admin's
// shared connection. No credential at all is reported as not-found; the
// operation cannot proceed.
func (m *Manager) ResolveCredential(ctx context.Context, tenantID, userID, providerName string) (*models.ExternalCredential, bool, error) {
	cred, err := m.credRepo.GetByUser(ctx, tenantID, userID, providerName)
	if err == nil {
		return cred, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	cred, err = m.credRepo.GetTenantAdmin(ctx, tenantID, providerName)
	if err == nil {
		return cred, true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	return nil, false, &domain.NotFoundError{
		Message: fmt.Sprintf("no %s connection is configured", providerName),
	}
}

// withToken runs one provider call under the refresh-and-retry protocol.
// call is invoked with an access token and must return the provider's
// classified error; domain.ErrExternalAuthExpired is the only condition
// that triggers a refresh.
func (m *Manager) withToken(ctx context.Context, cred *models.ExternalCredential, call func(token string) error) error {
	err := call(cred.AccessToken)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrExternalAuthExpired) {
		// Non-auth faults (missing remote file, provider outage) never
		// consume the refresh budget.
		return err
	}

	if !cred.CanRefresh() {
		m.logger.Warn("access token expired and credential cannot refresh",
			"provider", cred.Provider,
			"credential_id", cred.ID,
		)
		return &domain.ExternalStorageError{
			Provider: cred.Provider,
			Message:  "access expired and no refresh token is available; reconnect the account",
		}
	}

	newToken, expiry, refreshErr := m.refresher.Refresh(ctx, cred)
	if refreshErr != nil {
		m.logger.Warn("token refresh failed",
			"provider", cred.Provider,
			"credential_id", cred.ID,
			"error", refreshErr,
		)
		return &domain.ExternalStorageError{
			Provider: cred.Provider,
			Message:  "could not refresh access; reconnect the account",
		}
	}

	// Persist before the retry so a token that works is never lost to a
	// crash between the two calls. A failed write is logged and the retry
	// proceeds on the in-memory token; the next operation will refresh
	// again and overwrite harmlessly.
	if err := m.credRepo.UpdateAccessToken(ctx, cred.ID, newToken, expiry); err != nil {
		m.logger.Warn("failed to persist refreshed access token",
			"provider", cred.Provider,
			"credential_id", cred.ID,
			"error", err,
		)
	}
	cred.AccessToken = newToken
	cred.TokenExpiry = expiry

	m.logger.Info("access token refreshed",
		"provider", cred.Provider,
		"credential_id", cred.ID,
	)

	if err := call(newToken); err != nil {
		// One refresh, one retry. Whatever this is, it is terminal.
		return &domain.ExternalStorageError{
			Provider: cred.Provider,
			Message:  "provider call failed after token refresh",
		}
	}
	return nil
}
