package models

import "time"

// AuditEntry represents one append-only audit log record
type AuditEntry struct {
	ID        int64     `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenValidateResponse is the authenticator service's answer to a token
// validation request
type TokenValidateResponse struct {
	IsValid bool   `json:"is_valid"`
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
}
