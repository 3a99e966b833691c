package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonathan/recruit-pipeline/internal/config"
	"github.com/jonathan/recruit-pipeline/internal/db"
	"github.com/jonathan/recruit-pipeline/internal/filestore"
	"github.com/jonathan/recruit-pipeline/internal/llm"
	"github.com/jonathan/recruit-pipeline/internal/pipeline"
	"github.com/jonathan/recruit-pipeline/internal/rubric"
	"github.com/jonathan/recruit-pipeline/internal/tavus"
	"github.com/jonathan/recruit-pipeline/internal/vapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test doubles shared by the handler tests.

type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeLLM) GetModel(llm.ModelTier) string { return "fake-model" }
func (f *fakeLLM) Close() error                  { return nil }

type recordedUpdate struct {
	rangeExpr string
	values    [][]any
}

type fakeRecords struct {
	updates []recordedUpdate
	err     error
}

func (f *fakeRecords) Update(_ context.Context, rangeExpr string, values [][]any) error {
	if f.err != nil {
		return f.err
	}
	f.updates = append(f.updates, recordedUpdate{rangeExpr: rangeExpr, values: values})
	return nil
}

type fakeCorrelator struct {
	rows map[string]int
}

func (f *fakeCorrelator) FindRowByConversationID(_ context.Context, id string) (int, bool, error) {
	row, ok := f.rows[id]
	return row, ok, nil
}

type fakeCalls struct {
	request vapi.CallRequest
	err     error
}

func (f *fakeCalls) StartCall(_ context.Context, call vapi.CallRequest) (*vapi.CallResponse, error) {
	f.request = call
	if f.err != nil {
		return nil, f.err
	}
	return &vapi.CallResponse{ID: "call-1", Status: "queued"}, nil
}

type fakeVideos struct {
	request tavus.ConversationRequest
	err     error
}

func (f *fakeVideos) CreateConversation(_ context.Context, conv tavus.ConversationRequest) (*tavus.ConversationResponse, error) {
	f.request = conv
	if f.err != nil {
		return nil, f.err
	}
	return &tavus.ConversationResponse{
		ConversationID:  "conv-99",
		ConversationURL: "https://video.example.com/conv-99",
	}, nil
}

type fakeTransfer struct {
	fileID string
	err    error
}

func (f *fakeTransfer) Run(_ context.Context, fileID, applicantName string) (*filestore.UploadResult, string, error) {
	f.fileID = fileID
	if f.err != nil {
		return nil, "", f.err
	}
	return &filestore.UploadResult{ID: "item-1", WebURL: "https://sp/item-1"}, filestore.ResumeFileName(applicantName), nil
}

type fakeIndex struct {
	saved []db.Conversation
	err   error
}

func (f *fakeIndex) SaveConversation(_ context.Context, conv db.Conversation) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, conv)
	return nil
}

// testEnv bundles a server with its fakes.
type testEnv struct {
	server   *Server
	llm      *fakeLLM
	records  *fakeRecords
	calls    *fakeCalls
	videos   *fakeVideos
	transfer *fakeTransfer
	index    *fakeIndex
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Port:                   8080,
		GoogleSheetID:          "sheet-1",
		GeminiAPIKey:           "key",
		ScreeningAssistantID:   "zebra-assistant",
		ScreeningPhoneNumberID: "zebra-phone",
		TechnicalAssistantID:   "lion-assistant",
		TechnicalPhoneNumberID: "lion-phone",
		TavusPersonaID:         "persona-1",
		TavusReplicaID:         "replica-1",
		PublicBaseURL:          "https://recruit.example.com",
	}
	for _, m := range mutate {
		m(cfg)
	}

	env := &testEnv{
		llm:      &fakeLLM{response: "Overall assessment score: 4. Overall score: 4."},
		records:  &fakeRecords{},
		calls:    &fakeCalls{},
		videos:   &fakeVideos{},
		transfer: &fakeTransfer{},
		index:    &fakeIndex{},
	}

	rubrics := rubric.NewRegistry()
	correlator := &fakeCorrelator{rows: map[string]int{"conv-99": 9}}
	dispatcher := pipeline.NewDispatcher(rubrics, env.llm, env.records, correlator, nil)

	env.server = New(cfg, Deps{
		Rubrics:    rubrics,
		Dispatcher: dispatcher,
		Records:    env.records,
		Calls:      env.calls,
		Videos:     env.videos,
		Transfer:   env.transfer,
		Index:      env.index,
	})
	return env
}

// do runs one request through the full middleware chain and decodes the JSON
// response body.
func (env *testEnv) do(t *testing.T, method, path, body string, headers ...func(*http.Request)) (int, map[string]any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		h(req)
	}

	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec.Code, decoded
}

func TestRootEndpoint(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["availableEndpoints"])
	assert.NotEmpty(t, body["recruitmentPipeline"])
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])

	environment, ok := body["environment"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, environment["hasGoogleSheetId"])
	assert.Equal(t, false, environment["hasHubspotToken"])
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodGet, "/nope", "")

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Route not found", body["error"])
	assert.NotEmpty(t, body["availableRoutes"])
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/vapi-callback", nil)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWebhookAuthRequired(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.WebhookJWTSecret = "test-secret" })

	payload := `{"message":{"type":"status-update"}}`

	status, _ := env.do(t, http.MethodPost, "/vapi-callback", payload)
	assert.Equal(t, http.StatusUnauthorized, status)

	token, err := NewWebhookJWTService("test-secret").GenerateToken(jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	require.NoError(t, err)

	status, body := env.do(t, http.MethodPost, "/vapi-callback", payload, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Not end-of-call-report; ignoring.", body["message"])
}

func TestWebhookAuthRejectsWrongSecret(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.WebhookJWTSecret = "test-secret" })

	token, err := NewWebhookJWTService("other-secret").GenerateToken(jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	require.NoError(t, err)

	status, _ := env.do(t, http.MethodPost, "/vapi-callback", `{"message":{"type":"status-update"}}`, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHealthWithoutAuth(t *testing.T) {
	// Read-only endpoints stay open even when webhook auth is on.
	env := newTestEnv(t, func(c *config.Config) { c.WebhookJWTSecret = "test-secret" })

	status, _ := env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(&ErrValidation{Field: "phone", Message: "required"}))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(&ErrIntegrationUnavailable{Integration: "voice provider"}))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("boom")))
}
