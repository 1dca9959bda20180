package models

import "time"

// RealtimeCredential is a short-lived token minted by the realtime model
// provider, letting a client open the audio connection directly.
type RealtimeCredential struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
