package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCredentialService(baseURL string) *RealtimeCredentialService {
	return &RealtimeCredentialService{
		baseURL: baseURL,
		apiKey:  "test-key",
		ttl:     300 * time.Second,
		client:  &http.Client{Timeout: time.Second},
	}
}

func TestIssueCredential(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/realtime/sessions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req ephemeralTokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sess-42", req.SessionID)
		assert.Equal(t, 300, req.TTLSeconds)

		json.NewEncoder(w).Encode(ephemeralTokenResponse{
			Token:     "ek-abc123",
			ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
		})
	}))
	defer server.Close()

	credential, err := newCredentialService(server.URL).IssueCredential(context.Background(), "sess-42")
	require.NoError(t, err)
	assert.Equal(t, "ek-abc123", credential.Token)
	assert.True(t, credential.ExpiresAt.After(time.Now()))
}

func TestIssueCredentialProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newCredentialService(server.URL).IssueCredential(context.Background(), "sess-42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestIssueCredentialProviderUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := newCredentialService(server.URL).IssueCredential(context.Background(), "sess-42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestIssueCredentialEmptyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ephemeralTokenResponse{})
	}))
	defer server.Close()

	_, err := newCredentialService(server.URL).IssueCredential(context.Background(), "sess-42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty token")
}
