package vapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartCall(t *testing.T) {
	var got CallRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/call/phone", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(CallResponse{ID: "call-1", Status: "queued"})
	}))
	defer srv.Close()

	client := NewClient("test-key").WithBaseURL(srv.URL)

	resp, err := client.StartCall(context.Background(), CallRequest{
		AssistantID:   "assistant-1",
		PhoneNumberID: "phone-1",
		Customer:      Customer{Number: "+4477001234"},
		Metadata: CallMetadata{
			CandidateName: "Jane Doe",
			RowNumber:     "12",
			Stage:         "lionagent",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "call-1", resp.ID)
	assert.Equal(t, "queued", resp.Status)
	assert.Equal(t, "Jane Doe", got.Metadata.CandidateName)
	assert.Equal(t, "12", got.Metadata.RowNumber)
	assert.Equal(t, "+4477001234", got.Customer.Number)
}

func TestStartCallAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":["assistantId must be a UUID"]}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient("test-key").WithBaseURL(srv.URL)

	_, err := client.StartCall(context.Background(), CallRequest{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "assistantId")
}
