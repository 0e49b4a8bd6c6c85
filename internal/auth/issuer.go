package auth

import (
	"errors"
	"fmt"
	"time"

	"docvault/internal/domain/models"
	"docvault/internal/domain/models/docstore"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer mints the HS256 access tokens used in local auth mode.
// JWKS-mode deployments never construct one; their tokens come from the
// external identity provider.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenIssuer creates a token issuer
func NewTokenIssuer(secret, issuer string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

// Issue signs an access token for the user. The tenant id and full ordered
// role list travel in the token so the middleware can populate the request
// context without a database round trip.
func (i *TokenIssuer) Issue(user *docstore.User) (string, error) {
	now := time.Now()
	claims := &models.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		TenantID: user.TenantID,
		Email:    user.Email,
		Roles:    user.Roles,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}
