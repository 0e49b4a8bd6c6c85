package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	gcs "cloud.google.com/go/storage"

	"docvault/internal/domain"
)

// signedURLTTL bounds how long a download reference stays usable.
const signedURLTTL = 15 * time.Minute

// ObjectAdapter stores file content in a Google Cloud Storage bucket,
// one object per file keyed "<tenant>/<name>".
type ObjectAdapter struct {
	client *gcs.Client
	bucket string
	logger *slog.Logger
}

// NewObjectAdapter creates a GCS-backed storage adapter. Credentials come
// from the environment (application default credentials).
func NewObjectAdapter(ctx context.Context, bucket string, logger *slog.Logger) (*ObjectAdapter, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &ObjectAdapter{
		client: client,
		bucket: bucket,
		logger: logger,
	}, nil
}

func (a *ObjectAdapter) Upload(ctx context.Context, tenantID, name string, content io.Reader) (string, error) {
	storagePath := tenantID + "/" + name

	w := a.client.Bucket(a.bucket).Object(storagePath).NewWriter(ctx)
	if _, err := io.Copy(w, content); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object: %w", err)
	}

	return storagePath, nil
}

func (a *ObjectAdapter) DownloadBytes(ctx context.Context, storagePath string) ([]byte, error) {
	r, err := a.client.Bucket(a.bucket).Object(storagePath).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: stored content %q", domain.ErrNotFound, storagePath)
		}
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	return data, nil
}

func (a *ObjectAdapter) Delete(ctx context.Context, storagePath string) error {
	err := a.client.Bucket(a.bucket).Object(storagePath).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (a *ObjectAdapter) GetDownloadReference(ctx context.Context, storagePath string) (string, error) {
	url, err := a.client.Bucket(a.bucket).SignedURL(storagePath, &gcs.SignedURLOptions{
		Scheme:  gcs.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(signedURLTTL),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign download URL: %w", err)
	}
	return url, nil
}

// Close releases the underlying client
func (a *ObjectAdapter) Close() error {
	return a.client.Close()
}
