package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"docvault/internal/auth"
	"docvault/internal/httputil"
)

// publicPaths are reachable without a token: the endpoints that create or
// recover credentials, the health probe, metrics, and the OAuth callback
// (which authenticates through its signed state parameter instead).
var publicPaths = map[string]bool{
	"/health":                        true,
	"/metrics":                       true,
	"/api/auth/register":             true,
	"/api/auth/login":                true,
	"/api/auth/set-password":         true,
	"/api/auth/password-reset":       true,
	"/api/external-storage/callback": true,
}

// Auth validates the Bearer token on every non-public request and stores
// the verified claims in the request context.
func Auth(verifier auth.TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("token verification failed",
					"path", r.URL.Path,
					"error", err,
				)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, httputil.WithClaims(r, claims))
		})
	}
}
