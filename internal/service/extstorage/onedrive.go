package extstorage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"docvault/internal/capabilities"
)

// onedriveTimeout bounds each Graph call so a stalled provider surfaces as
// a failed use within the refresh-retry budget instead of hanging the
// request.
const onedriveTimeout = 60 * time.Second

// OneDriveProvider downloads file content through the Microsoft Graph REST
// API. Graph serves item content as a 302 to a pre-authenticated URL, which
// the underlying http.Client follows transparently.
type OneDriveProvider struct {
	desc       *capabilities.ProviderDescriptor
	httpClient *http.Client
	logger     *slog.Logger
}

// NewOneDriveProvider creates a OneDrive provider client
func NewOneDriveProvider(desc *capabilities.ProviderDescriptor, logger *slog.Logger) *OneDriveProvider {
	return &OneDriveProvider{
		desc:       desc,
		httpClient: &http.Client{Timeout: onedriveTimeout},
		logger:     logger,
	}
}

func (p *OneDriveProvider) get(ctx context.Context, path, accessToken string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.desc.APIBaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build graph request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("onedrive: %w", err)
	}

	if err := classifyStatus("onedrive", resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// DownloadBytes fetches a drive item's content
func (p *OneDriveProvider) DownloadBytes(ctx context.Context, externalFileID, accessToken string) ([]byte, error) {
	path := fmt.Sprintf("/me/drive/items/%s/content", url.PathEscape(externalFileID))
	resp, err := p.get(ctx, path, accessToken)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body := io.Reader(resp.Body)
	if p.desc.MaxDownloadBytes > 0 {
		body = io.LimitReader(body, p.desc.MaxDownloadBytes)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read onedrive content: %w", err)
	}
	return data, nil
}

// About returns the principal name of the account behind the token
func (p *OneDriveProvider) About(ctx context.Context, accessToken string) (string, error) {
	resp, err := p.get(ctx, "/me", accessToken)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var me struct {
		UserPrincipalName string `json:"userPrincipalName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return "", fmt.Errorf("decode onedrive profile: %w", err)
	}
	return me.UserPrincipalName, nil
}
