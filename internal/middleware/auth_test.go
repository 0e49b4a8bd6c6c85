package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"docvault/internal/domain/models"
	"docvault/internal/httputil"
)

type fakeVerifier struct {
	claims *models.AccessClaims
	err    error
	seen   []string
}

func (f *fakeVerifier) VerifyToken(token string) (*models.AccessClaims, error) {
	f.seen = append(f.seen, token)
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

func (f *fakeVerifier) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthPassesClaimsToHandler(t *testing.T) {
	verifier := &fakeVerifier{claims: &models.AccessClaims{TenantID: "tenant-1"}}
	verifier.claims.Subject = "user-1"

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = httputil.GetUserID(r)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	rec := httptest.NewRecorder()
	Auth(verifier, testLogger())(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUserID != "user-1" {
		t.Errorf("handler saw user %q, want user-1", gotUserID)
	}
	if len(verifier.seen) != 1 || verifier.seen[0] != "token-abc" {
		t.Errorf("verifier saw %v, want [token-abc]", verifier.seen)
	}
}

func TestAuthRejectsMissingOrInvalidTokens(t *testing.T) {
	tests := []struct {
		name   string
		header string
		err    error
	}{
		{name: "no header"},
		{name: "wrong scheme", header: "Basic dXNlcg=="},
		{name: "empty token", header: "Bearer "},
		{name: "verification fails", header: "Bearer bad", err: errors.New("expired")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &fakeVerifier{claims: &models.AccessClaims{TenantID: "tenant-1"}, err: tt.err}
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			})

			req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			Auth(verifier, testLogger())(next).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if called {
				t.Error("handler ran despite rejected request")
			}
		})
	}
}

func TestAuthSkipsPublicPaths(t *testing.T) {
	for _, path := range []string{"/health", "/api/auth/login", "/api/external-storage/callback"} {
		t.Run(path, func(t *testing.T) {
			verifier := &fakeVerifier{}
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			})

			req := httptest.NewRequest(http.MethodPost, path, nil)
			rec := httptest.NewRecorder()
			Auth(verifier, testLogger())(next).ServeHTTP(rec, req)

			if !called {
				t.Fatal("handler did not run for public path")
			}
			if len(verifier.seen) != 0 {
				t.Errorf("verifier was consulted for public path: %v", verifier.seen)
			}
		})
	}
}
