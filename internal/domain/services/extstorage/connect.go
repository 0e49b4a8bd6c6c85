package extstorage

import (
	"context"
	"time"
)

// ConnectService manages a user's connections to external storage providers
type ConnectService interface {
	// Status reports the user's connection state for every registered
	// provider, including tenant-admin connections usable as a shared
	// fallback
	Status(ctx context.Context, userID string) ([]ConnectionStatus, error)

	// AuthURL builds the provider's OAuth consent URL for the user
	AuthURL(ctx context.Context, userID, provider string) (string, error)

	// HandleCallback exchanges the OAuth authorization code and stores the
	// resulting credential for the user encoded in state
	HandleCallback(ctx context.Context, state, code string) (*CallbackResult, error)

	// Disconnect removes the user's credential for the provider
	Disconnect(ctx context.Context, userID, provider string) error

	// Test performs a lightweight provider call through the stored
	// credential, exercising token refresh if the access token has expired
	Test(ctx context.Context, userID, provider string) (*TestResult, error)
}

// ConnectionStatus describes one provider connection as seen by a user
type ConnectionStatus struct {
	Provider       string     `json:"provider"`
	Connected      bool       `json:"connected"`
	Shared         bool       `json:"shared"` // true when falling back to a tenant admin's connection
	RemoteFolderID *string    `json:"remote_folder_id,omitempty"`
	TokenExpiry    *time.Time `json:"token_expiry,omitempty"`
}

// CallbackResult reports a completed OAuth code exchange
type CallbackResult struct {
	Provider string `json:"provider"`
	UserID   string `json:"user_id"`
}

// TestResult reports a successful connection test
type TestResult struct {
	Provider string `json:"provider"`
	Account  string `json:"account,omitempty"`
}
