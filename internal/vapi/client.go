// Package vapi is a thin client for the voice provider's outbound-call API.
// Calls carry candidate metadata that the provider echoes back in its
// end-of-call report, which is how call callbacks find their sheet row.
package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the provider API root.
const DefaultBaseURL = "https://api.vapi.ai"

const defaultTimeout = 30 * time.Second

// Client calls the voice provider API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a voice provider client.
func NewClient(apiKey string) *Client {
	return &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// WithBaseURL overrides the API root, for tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// Customer identifies the callee.
type Customer struct {
	Number string `json:"number"`
}

// CallMetadata rides along with the call and comes back in the callback.
// RowNumber is sent as a string; the provider round-trips metadata values
// as-is.
type CallMetadata struct {
	CandidateName string `json:"candidateName"`
	RowNumber     string `json:"rowNumber,omitempty"`
	Stage         string `json:"stage,omitempty"`
}

// CallRequest starts an outbound phone call handled by a configured
// assistant.
type CallRequest struct {
	AssistantID   string       `json:"assistantId"`
	PhoneNumberID string       `json:"phoneNumberId"`
	Customer      Customer     `json:"customer"`
	Metadata      CallMetadata `json:"metadata"`
}

// CallResponse is the provider's acknowledgement of a scheduled call.
type CallResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// APIError is a non-2xx response from the provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vapi API error (status %d): %s", e.StatusCode, e.Body)
}

// StartCall schedules an outbound phone call. A single attempt; the caller
// decides what a failed initiation means for the pipeline row.
func (c *Client) StartCall(ctx context.Context, call CallRequest) (*CallResponse, error) {
	payload, err := json.Marshal(call)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal call request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/call/phone", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call initiation failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var callResp CallResponse
	if err := json.Unmarshal(body, &callResp); err != nil {
		return nil, fmt.Errorf("failed to parse call response: %w", err)
	}
	return &callResp, nil
}
