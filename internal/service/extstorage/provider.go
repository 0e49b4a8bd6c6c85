package extstorage

import (
	"context"
	"fmt"
	"net/http"

	"docvault/internal/domain"
)

// Provider is the API surface of one external drive type. Implementations
// authenticate each call with the supplied access token and classify an
// expired or revoked token as domain.ErrExternalAuthExpired so the
// credential manager can run its refresh protocol. Every other fault is
// returned as-is and never triggers a refresh.
type Provider interface {
	// DownloadBytes returns the raw content of a remote file
	DownloadBytes(ctx context.Context, externalFileID, accessToken string) ([]byte, error)

	// About performs a lightweight identity call and returns the account
	// the token belongs to. Used by the connection test endpoint.
	About(ctx context.Context, accessToken string) (string, error)
}

// classifyStatus maps a provider HTTP status to a domain error. Returns nil
// for 2xx.
func classifyStatus(provider string, code int) error {
	switch {
	case code < 300:
		return nil
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%s rejected access token: %w", provider, domain.ErrExternalAuthExpired)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: remote file is gone from %s", domain.ErrNotFound, provider)
	default:
		return fmt.Errorf("%s returned HTTP %d", provider, code)
	}
}
