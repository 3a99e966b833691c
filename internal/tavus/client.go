// Package tavus is a thin client for the video interview provider. A
// conversation is created at trigger time with a callback URL; the provider
// later reports completion to that URL with the conversation ID, which the
// correlation index resolves back to a sheet row.
package tavus

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
const DefaultBaseURL = "https://tavusapi.com"

const defaultTimeout = 30 * time.Second

// Client calls the video provider API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a video provider client.
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

// ConversationProperties tunes the interview session.
type ConversationProperties struct {
	MaxCallDuration          int  `json:"max_call_duration,omitempty"`
	ParticipantLeftTimeout   int  `json:"participant_left_timeout,omitempty"`
	ParticipantAbsentTimeout int  `json:"participant_absent_timeout,omitempty"`
	EnableRecording          bool `json:"enable_recording"`
	EnableTranscription      bool `json:"enable_transcription"`
}

// ConversationRequest creates an AI-conducted video interview.
type ConversationRequest struct {
	ReplicaID             string                 `json:"replica_id"`
	PersonaID             string                 `json:"persona_id"`
	CallbackURL           string                 `json:"callback_url"`
	ConversationName      string                 `json:"conversation_name"`
	ConversationalContext string                 `json:"conversational_context"`
	Properties            ConversationProperties `json:"properties"`
}

// ConversationResponse identifies the created interview session.
type ConversationResponse struct {
	ConversationID  string `json:"conversation_id"`
	ConversationURL string `json:"conversation_url"`
	Status          string `json:"status,omitempty"`
}

// APIError is a non-2xx response from the provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tavus API error (status %d): %s", e.StatusCode, e.Body)
}

// CreateConversation creates a video interview session. Single attempt.
func (c *Client) CreateConversation(ctx context.Context, conv ConversationRequest) (*ConversationResponse, error) {
	payload, err := json.Marshal(conv)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal conversation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/conversations", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("conversation creation failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var convResp ConversationResponse
	if err := json.Unmarshal(body, &convResp); err != nil {
		return nil, fmt.Errorf("failed to parse conversation response: %w", err)
	}
	return &convResp, nil
}

// DefaultInterviewProperties returns the session settings used for
// behavioral interviews: 40 minute cap, recording and transcription on.
func DefaultInterviewProperties() ConversationProperties {
	return ConversationProperties{
		MaxCallDuration:          2400,
		ParticipantLeftTimeout:   300,
		ParticipantAbsentTimeout: 600,
		EnableRecording:          true,
		EnableTranscription:      true,
	}
}
