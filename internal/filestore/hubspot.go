// Package filestore moves candidate documents between external stores: the
// applicant-tracking file store the résumé is uploaded to, and the SharePoint
// document library the recruitment team works from. It also archives
// interview analysis text alongside the résumés.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const hubspotBaseURL = "https://api.hubapi.com"

const defaultTimeout = 60 * time.Second

// HubSpotClient fetches files from the applicant-tracking store.
type HubSpotClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHubSpotClient creates a client using a private app token.
func NewHubSpotClient(token string) *HubSpotClient {
	return &HubSpotClient{
		baseURL:    hubspotBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// WithBaseURL overrides the API root, for tests.
func (c *HubSpotClient) WithBaseURL(baseURL string) *HubSpotClient {
	c.baseURL = baseURL
	return c
}

// SignedURL exchanges a file ID for a short-lived download URL.
func (c *HubSpotClient) SignedURL(ctx context.Context, fileID string) (string, error) {
	url := fmt.Sprintf("%s/files/v3/files/%s/signed-url", c.baseURL, fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("signed URL request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("signed URL request returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to parse signed URL response: %w", err)
	}
	if payload.URL == "" {
		return "", fmt.Errorf("no valid signed URL in response for file %s", fileID)
	}
	return payload.URL, nil
}

// Download fetches the file content behind a signed URL.
func (c *HubSpotClient) Download(ctx context.Context, signedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("file download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned status %d", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	return content, nil
}
