package extstorage

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"docvault/internal/capabilities"
	models "docvault/internal/domain/models/docstore"
)

// TokenRefresher exchanges a credential's refresh token for a new access
// token at the provider's token endpoint.
type TokenRefresher interface {
	Refresh(ctx context.Context, cred *models.ExternalCredential) (accessToken string, expiry *time.Time, err error)
}

// refreshTimeout bounds the token endpoint round trip.
const refreshTimeout = 30 * time.Second

// oauthRefresher implements TokenRefresher over the standard refresh_token
// grant. The client id and secret come from the credential record itself,
// so refreshes keep working for credentials minted under an older OAuth app
// registration than the one currently configured.
type oauthRefresher struct {
	registry *capabilities.Registry
}

// NewTokenRefresher creates the production token refresher
func NewTokenRefresher(registry *capabilities.Registry) TokenRefresher {
	return &oauthRefresher{registry: registry}
}

func (r *oauthRefresher) Refresh(ctx context.Context, cred *models.ExternalCredential) (string, *time.Time, error) {
	desc, err := r.registry.Get(cred.Provider)
	if err != nil {
		return "", nil, err
	}

	conf := &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  desc.AuthURL,
			TokenURL: desc.TokenURL,
		},
	}

	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	token, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken}).Token()
	if err != nil {
		return "", nil, fmt.Errorf("%s token refresh: %w", cred.Provider, err)
	}

	var expiry *time.Time
	if !token.Expiry.IsZero() {
		e := token.Expiry
		expiry = &e
	}
	return token.AccessToken, expiry, nil
}
