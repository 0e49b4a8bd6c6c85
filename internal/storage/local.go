package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"docvault/internal/domain"
)

// LocalAdapter stores file content on the local filesystem under one
// subdirectory per tenant. Storage paths are relative to the root so the
// root can move between deployments.
type LocalAdapter struct {
	root   string
	logger *slog.Logger
}

// NewLocalAdapter creates a local storage adapter rooted at the given
// directory, creating it if needed
func NewLocalAdapter(root string, logger *slog.Logger) (*LocalAdapter, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %q: %w", root, err)
	}
	return &LocalAdapter{
		root:   root,
		logger: logger,
	}, nil
}

func (a *LocalAdapter) Upload(ctx context.Context, tenantID, name string, content io.Reader) (string, error) {
	dir := filepath.Join(a.root, tenantID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create tenant directory: %w", err)
	}

	storagePath := filepath.Join(tenantID, name)
	f, err := os.Create(filepath.Join(a.root, storagePath))
	if err != nil {
		return "", fmt.Errorf("failed to create storage file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		// Half-written content is useless; remove it so retries start clean.
		os.Remove(filepath.Join(a.root, storagePath))
		return "", fmt.Errorf("failed to write storage file: %w", err)
	}

	return storagePath, nil
}

func (a *LocalAdapter) DownloadBytes(ctx context.Context, storagePath string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(a.root, storagePath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: stored content %q", domain.ErrNotFound, storagePath)
		}
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}
	return data, nil
}

func (a *LocalAdapter) Delete(ctx context.Context, storagePath string) error {
	err := os.Remove(filepath.Join(a.root, storagePath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete storage file: %w", err)
	}
	return nil
}

func (a *LocalAdapter) GetDownloadReference(ctx context.Context, storagePath string) (string, error) {
	return filepath.Join(a.root, storagePath), nil
}
