package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	graphBaseURL = "https://graph.microsoft.com/v1.0"
	loginBaseURL = "https://login.microsoftonline.com"

	// docxContentType is the content type résumés are uploaded with.
	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// SharePointConfig holds the app registration and target library.
type SharePointConfig struct {
	ClientID     string
	TenantID     string
	ClientSecret string
	SiteURL      string
	FolderPath   string // defaults to "Shared Documents"
}

// SharePointClient uploads documents to a SharePoint library through the
// Microsoft Graph API, authenticating with the client-credentials flow.
type SharePointClient struct {
	config     SharePointConfig
	graphBase  string
	loginBase  string
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewSharePointClient creates a Graph client for one site.
func NewSharePointClient(config SharePointConfig) *SharePointClient {
	if config.FolderPath == "" {
		config.FolderPath = "Shared Documents"
	}
	return &SharePointClient{
		config:     config,
		graphBase:  graphBaseURL,
		loginBase:  loginBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// WithEndpoints overrides the Graph and login roots, for tests.
func (c *SharePointClient) WithEndpoints(graphBase, loginBase string) *SharePointClient {
	c.graphBase = graphBase
	c.loginBase = loginBase
	return c
}

// UploadResult identifies the stored document.
type UploadResult struct {
	ID     string `json:"id"`
	WebURL string `json:"webUrl"`
}

// AcquireToken fetches (or reuses) a Graph access token via the
// client-credentials grant.
func (c *SharePointClient) AcquireToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{
		"client_id":     {c.config.ClientID},
		"client_secret": {c.config.ClientSecret},
		"grant_type":    {"client_credentials"},
		"scope":         {"https://graph.microsoft.com/.default"},
	}
	tokenURL := fmt.Sprintf("%s/%s/oauth2/v2.0/token", c.loginBase, c.config.TenantID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token request returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}

	c.accessToken = payload.AccessToken
	// Renew a minute early so uploads never race the expiry.
	c.tokenExpiry = time.Now().Add(time.Duration(payload.ExpiresIn-60) * time.Second)
	return c.accessToken, nil
}

// Upload stores a document in the configured folder and returns its ID and
// web URL.
func (c *SharePointClient) Upload(ctx context.Context, fileName string, content []byte, contentType string) (*UploadResult, error) {
	token, err := c.AcquireToken(ctx)
	if err != nil {
		return nil, err
	}

	siteID, err := c.resolveSiteID(ctx, token)
	if err != nil {
		return nil, err
	}

	driveID, err := c.resolveDriveID(ctx, token, siteID)
	if err != nil {
		return nil, err
	}

	uploadURL := fmt.Sprintf("%s/drives/%s/root:/%s/%s:/content",
		c.graphBase, driveID, c.config.FolderPath, fileName)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("upload returned status %d: %s", resp.StatusCode, string(body))
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse upload response: %w", err)
	}
	return &result, nil
}

// StoreAnalysis uploads interview analysis text as a plain-text document.
// Implements the dispatcher's analysis store.
func (c *SharePointClient) StoreAnalysis(ctx context.Context, name, content string) error {
	_, err := c.Upload(ctx, name, []byte(content), "text/plain")
	return err
}

// resolveSiteID turns the configured site URL into a Graph site ID. Graph
// addresses sites as host:/path:, so "https://host/sites/x" becomes
// "host:/sites/x".
func (c *SharePointClient) resolveSiteID(ctx context.Context, token string) (string, error) {
	sitePath := strings.TrimPrefix(c.config.SiteURL, "https://")
	sitePath = strings.ReplaceAll(sitePath, "/", ":")

	var payload struct {
		ID string `json:"id"`
	}
	if err := c.graphGet(ctx, token, fmt.Sprintf("%s/sites/%s", c.graphBase, sitePath), &payload); err != nil {
		return "", fmt.Errorf("failed to resolve site: %w", err)
	}
	return payload.ID, nil
}

// resolveDriveID returns the site's first document library.
func (c *SharePointClient) resolveDriveID(ctx context.Context, token, siteID string) (string, error) {
	var payload struct {
		Value []struct {
			ID string `json:"id"`
		} `json:"value"`
	}
	if err := c.graphGet(ctx, token, fmt.Sprintf("%s/sites/%s/drives", c.graphBase, siteID), &payload); err != nil {
		return "", fmt.Errorf("failed to list drives: %w", err)
	}
	if len(payload.Value) == 0 {
		return "", fmt.Errorf("site %s has no document libraries", siteID)
	}
	return payload.Value[0].ID, nil
}

func (c *SharePointClient) graphGet(ctx context.Context, token, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("graph request returned status %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
