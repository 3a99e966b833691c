// Package config loads the server configuration from the environment and
// reports which integrations are configured.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds every external integration the pipeline talks to. All values
// come from environment variables; main loads a .env file first when one is
// present.
type Config struct {
	Port int

	// Google Sheets service account, assembled from the individual
	// GOOGLE_* variables.
	GoogleSheetID string
	Google        GoogleCredentials

	GeminiAPIKey string

	// Vapi phone agents. The screening agent and the technical agent are
	// separate assistants, each with its own outbound number.
	VapiAPIKey             string
	ScreeningAssistantID   string
	ScreeningPhoneNumberID string
	TechnicalAssistantID   string
	TechnicalPhoneNumberID string

	// Tavus video agent.
	TavusAPIKey    string
	TavusPersonaID string
	TavusReplicaID string

	HubSpotToken string

	SharePointClientID     string
	SharePointTenantID     string
	SharePointClientSecret string
	SharePointSiteURL      string
	SharePointFolderPath   string

	// Optional. When unset the conversation index falls back to scanning
	// the sheet.
	DatabaseURL string

	// PublicBaseURL is the externally reachable root used to build the
	// video callback URL, e.g. "https://recruit.example.com".
	PublicBaseURL string

	// Optional. When set, webhook endpoints require a bearer token signed
	// with this secret.
	WebhookJWTSecret string
}

// GoogleCredentials mirrors a service-account key file split across
// environment variables.
type GoogleCredentials struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	ClientID     string `json:"client_id"`
	AuthURI      string `json:"auth_uri"`
	TokenURI     string `json:"token_uri"`
}

// FromEnv reads the full configuration from environment variables.
func FromEnv() *Config {
	return &Config{
		Port:          8080,
		GoogleSheetID: os.Getenv("GOOGLE_SHEET_ID"),
		Google: GoogleCredentials{
			Type:         envOr("GOOGLE_TYPE", "service_account"),
			ProjectID:    os.Getenv("GOOGLE_PROJECT_ID"),
			PrivateKeyID: os.Getenv("GOOGLE_PRIVATE_KEY_ID"),
			PrivateKey:   os.Getenv("GOOGLE_PRIVATE_KEY"),
			ClientEmail:  os.Getenv("GOOGLE_CLIENT_EMAIL"),
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			AuthURI:      envOr("GOOGLE_AUTH_URI", "https://accounts.google.com/o/oauth2/auth"),
			TokenURI:     envOr("GOOGLE_TOKEN_URI", "https://oauth2.googleapis.com/token"),
		},
		GeminiAPIKey:           os.Getenv("GEMINI_API_KEY"),
		VapiAPIKey:             os.Getenv("VAPI_API_KEY"),
		ScreeningAssistantID:   os.Getenv("VAPI_ASSISTANT_ID"),
		ScreeningPhoneNumberID: os.Getenv("VAPI_PHONE_NUMBER_ID"),
		TechnicalAssistantID:   os.Getenv("LIONAGENT_VAPI_ASSISTANT_ID"),
		TechnicalPhoneNumberID: os.Getenv("LIONAGENT_PHONE_NUMBER_ID"),
		TavusAPIKey:            os.Getenv("TAVUS_API_KEY"),
		TavusPersonaID:         os.Getenv("TAVUS_PERSONA_ID"),
		TavusReplicaID:         os.Getenv("TAVUS_REPLICA_ID"),
		HubSpotToken:           os.Getenv("HUBSPOT_TOKEN"),
		SharePointClientID:     os.Getenv("SP_CLIENT_ID"),
		SharePointTenantID:     os.Getenv("SP_TENANT_ID"),
		SharePointClientSecret: os.Getenv("SP_CLIENT_SECRET"),
		SharePointSiteURL:      os.Getenv("SP_SITE_URL"),
		SharePointFolderPath:   os.Getenv("SP_FOLDER_PATH"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		PublicBaseURL:          os.Getenv("PUBLIC_BASE_URL"),
		WebhookJWTSecret:       os.Getenv("WEBHOOK_JWT_SECRET"),
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Validate checks that the integrations every request path depends on are
// configured. Integrations used by a single endpoint (Vapi, Tavus, HubSpot,
// SharePoint) are checked at call time instead, so a partially configured
// deployment can still serve the endpoints it supports.
func (c *Config) Validate() error {
	if c.GoogleSheetID == "" {
		return fmt.Errorf("GOOGLE_SHEET_ID environment variable is required")
	}
	if c.Google.ClientEmail == "" || c.Google.PrivateKey == "" {
		return fmt.Errorf("GOOGLE_CLIENT_EMAIL and GOOGLE_PRIVATE_KEY environment variables are required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	return nil
}

// CredentialsJSON serializes the service-account fields back into the key
// file format the Google client libraries expect.
func (c *Config) CredentialsJSON() ([]byte, error) {
	data, err := json.Marshal(c.Google)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize Google credentials: %w", err)
	}
	return data, nil
}

// HasSharePoint reports whether the document library integration is usable.
func (c *Config) HasSharePoint() bool {
	return c.SharePointClientID != "" && c.SharePointTenantID != "" &&
		c.SharePointClientSecret != "" && c.SharePointSiteURL != ""
}

// EnvSummary reports which integrations are configured, for the health
// endpoint. Values are presence booleans, never the secrets themselves.
func (c *Config) EnvSummary() map[string]bool {
	return map[string]bool{
		"hasHubspotToken":         c.HubSpotToken != "",
		"hasGeminiKey":            c.GeminiAPIKey != "",
		"hasGoogleSheetId":        c.GoogleSheetID != "",
		"hasSharePointConfig":     c.HasSharePoint(),
		"hasVapiKey":              c.VapiAPIKey != "",
		"hasVapiAssistantId":      c.ScreeningAssistantID != "",
		"hasLionAgentAssistantId": c.TechnicalAssistantID != "",
		"hasLionAgentPhoneId":     c.TechnicalPhoneNumberID != "",
		"hasTavusApiKey":          c.TavusAPIKey != "",
		"hasTavusPersonaId":       c.TavusPersonaID != "",
		"hasTavusReplicaId":       c.TavusReplicaID != "",
		"hasDatabaseUrl":          c.DatabaseURL != "",
	}
}
