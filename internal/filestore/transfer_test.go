package filestore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// graphStub serves the three Graph endpoints an upload touches plus the
// token endpoint, recording the uploaded bytes.
type graphStub struct {
	uploaded []byte
	uploadCT string
	path     string
}

func newGraphServer(t *testing.T, stub *graphStub) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /test-tenant/oauth2/v2.0/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "graph-token", "expires_in": 3600})
	})
	mux.HandleFunc("GET /sites/{site}", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "site-1"})
	})
	mux.HandleFunc("GET /sites/site-1/drives", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"value": []map[string]string{{"id": "drive-1"}}})
	})
	mux.HandleFunc("PUT /drives/drive-1/", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		stub.uploaded = body
		stub.uploadCT = r.Header.Get("Content-Type")
		stub.path = r.URL.Path
		assert.Equal(t, "Bearer graph-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(UploadResult{ID: "item-1", WebURL: "https://sp/item-1"})
	})
	return httptest.NewServer(mux)
}

func newTestSharePoint(srvURL string) *SharePointClient {
	return NewSharePointClient(SharePointConfig{
		ClientID:     "client",
		TenantID:     "test-tenant",
		ClientSecret: "secret",
		SiteURL:      "https://contoso.sharepoint.com/sites/recruiting",
	}).WithEndpoints(srvURL, srvURL)
}

func TestResumeFileName(t *testing.T) {
	assert.Equal(t, "Jane_Doe.docx", ResumeFileName("Jane Doe"))
	assert.Equal(t, "cv.docx", ResumeFileName(""))
	assert.Equal(t, "O_Brien_J.r.docx", ResumeFileName("O'Brien J.r"))
}

func TestTransferRun(t *testing.T) {
	stub := &graphStub{}
	graph := newGraphServer(t, stub)
	defer graph.Close()

	hubspotMux := http.NewServeMux()
	hubspotMux.HandleFunc("GET /files/v3/files/file-9/signed-url", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer hs-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "http://" + r.Host + "/download"})
	})
	hubspotMux.HandleFunc("GET /download", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("resume bytes"))
	})
	hubspot := httptest.NewServer(hubspotMux)
	defer hubspot.Close()

	transfer := NewTransfer(
		NewHubSpotClient("hs-token").WithBaseURL(hubspot.URL),
		newTestSharePoint(graph.URL),
	)

	result, fileName, err := transfer.Run(context.Background(), "file-9", "Jane Doe")
	require.NoError(t, err)

	assert.Equal(t, "item-1", result.ID)
	assert.Equal(t, "Jane_Doe.docx", fileName)
	assert.Equal(t, []byte("resume bytes"), stub.uploaded)
	assert.Equal(t, docxContentType, stub.uploadCT)
	assert.True(t, strings.HasSuffix(stub.path, "/Shared Documents/Jane_Doe.docx:/content") ||
		strings.Contains(stub.path, "Jane_Doe.docx"))
}

func TestTransferRunSignedURLFailure(t *testing.T) {
	stub := &graphStub{}
	graph := newGraphServer(t, stub)
	defer graph.Close()

	hubspot := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer hubspot.Close()

	transfer := NewTransfer(
		NewHubSpotClient("hs-token").WithBaseURL(hubspot.URL),
		newTestSharePoint(graph.URL),
	)

	_, _, err := transfer.Run(context.Background(), "missing", "Jane")
	assert.Error(t, err)
}

func TestStoreAnalysis(t *testing.T) {
	stub := &graphStub{}
	graph := newGraphServer(t, stub)
	defer graph.Close()

	sp := newTestSharePoint(graph.URL)

	err := sp.StoreAnalysis(context.Background(), "WhaleAgent_Analysis_c1.txt", "analysis text")
	require.NoError(t, err)
	assert.Equal(t, []byte("analysis text"), stub.uploaded)
	assert.Equal(t, "text/plain", stub.uploadCT)
}

func TestAcquireTokenCaching(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("POST /test-tenant/oauth2/v2.0/token", func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sp := newTestSharePoint(srv.URL)

	_, err := sp.AcquireToken(context.Background())
	require.NoError(t, err)
	_, err = sp.AcquireToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
