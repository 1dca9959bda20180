package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"condominium-service/src/config"
	"condominium-service/src/models"
)

// CredentialIssuer mints short-lived connection tokens bound to a
// concierge session. The client uses the token to open the realtime audio
// connection directly with the model provider; this service never touches
// media bytes.
type CredentialIssuer interface {
	IssueCredential(ctx context.Context, sessionID string) (*models.RealtimeCredential, error)
}

// RealtimeCredentialService issues ephemeral credentials from the realtime
// model provider's REST API
type RealtimeCredentialService struct {
	baseURL string
	apiKey  string
	ttl     time.Duration
	client  *http.Client
}

// NewRealtimeCredentialService creates a credential service from config
func NewRealtimeCredentialService(cfg *config.GlobalConfig) *RealtimeCredentialService {
	return &RealtimeCredentialService{
		baseURL: cfg.GetRealtimeAPIURL(),
		apiKey:  cfg.GetRealtimeAPIKey(),
		ttl:     cfg.GetSessionTokenTTL(),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type ephemeralTokenRequest struct {
	SessionID  string `json:"session_id"`
	TTLSeconds int    `json:"ttl_seconds"`
}

type ephemeralTokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// IssueCredential requests a token scoped to the session. Any failure to
// reach the provider, or a non-2xx answer, surfaces as an error the caller
// maps to Service Unavailable; the session must not be retained on that path.
func (s *RealtimeCredentialService) IssueCredential(ctx context.Context, sessionID string) (*models.RealtimeCredential, error) {
	reqBody, err := json.Marshal(ephemeralTokenRequest{
		SessionID:  sessionID,
		TTLSeconds: int(s.ttl.Seconds()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credential request: %w", err)
	}

	url := s.baseURL + "/v1/realtime/sessions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build credential request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("credential provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read credential response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("credential provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp ephemeralTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credential response: %w", err)
	}
	if tokenResp.Token == "" {
		return nil, fmt.Errorf("credential provider returned an empty token")
	}

	expiresAt := time.Unix(tokenResp.ExpiresAt, 0)
	if tokenResp.ExpiresAt == 0 {
		expiresAt = time.Now().Add(s.ttl)
	}

	slog.Info("Issued ephemeral credential",
		"session_id", sessionID,
		"expires_at", expiresAt)

	return &models.RealtimeCredential{
		Token:     tokenResp.Token,
		ExpiresAt: expiresAt,
	}, nil
}
