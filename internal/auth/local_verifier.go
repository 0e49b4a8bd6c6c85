package auth

import (
	"errors"
	"log/slog"

	"docvault/internal/domain"
	"docvault/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

// LocalVerifier implements TokenVerifier for tokens issued by this process
// (see TokenIssuer): HS256 signatures over a shared secret.
type LocalVerifier struct {
	secret []byte
	logger *slog.Logger
}

// NewLocalVerifier creates a verifier for locally issued HS256 tokens
func NewLocalVerifier(secret string, logger *slog.Logger) (TokenVerifier, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	return &LocalVerifier{
		secret: []byte(secret),
		logger: logger,
	}, nil
}

// VerifyToken validates an HS256 token and extracts the access claims
func (v *LocalVerifier) VerifyToken(tokenString string) (*models.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AccessClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return v.secret, nil
		},
		// Rejecting every other algorithm up front closes the classic
		// asymmetric-to-HMAC confusion hole.
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil {
		v.logger.Debug("token parse failed", "error", err)
		return nil, domain.ErrUnauthorized
	}

	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.AccessClaims)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	return validateClaims(claims)
}

// Close implements TokenVerifier. Nothing to release.
func (v *LocalVerifier) Close() error {
	return nil
}
