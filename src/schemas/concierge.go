package schemas

// StartSessionRequest represents the request body for starting a concierge session
type StartSessionRequest struct {
	SocketID string `json:"socket_id,omitempty"`
	Source   string `json:"source,omitempty"`
	HubID    string `json:"hub_id,omitempty"`
}

// StartSessionResponse represents the response for a started session
type StartSessionResponse struct {
	SessionID      string `json:"session_id"`
	EphemeralToken string `json:"ephemeral_token"`
	ExpiresAt      string `json:"expires_at"`
}

// HouseContextResponse carries the prior-visit summary used to prime the
// assistant before its first tool call
type HouseContextResponse struct {
	Context string `json:"context"`
}

// ExecuteToolRequest represents one tool invocation from the assistant
type ExecuteToolRequest struct {
	ToolName   string            `json:"tool_name" binding:"required"`
	Parameters map[string]string `json:"parameters"`
}

// ToolResult is the structured outcome of a tool invocation. Handler
// failures are embedded here rather than surfaced as transport errors so
// the voice conversation stays alive.
type ToolResult struct {
	Success bool              `json:"success"`
	Data    map[string]string `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// SessionStatusResponse reports whether tool execution is currently accepted
type SessionStatusResponse struct {
	Active bool   `json:"active"`
	Reason string `json:"reason,omitempty"`
}

// RespondRequest represents a resident's approve/deny decision
type RespondRequest struct {
	Approved   *bool  `json:"approved" binding:"required"`
	ResidentID string `json:"resident_id,omitempty"`
}

// RespondResponse represents the outcome of resolving a pending approval
type RespondResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// EndSessionRequest represents the request body for ending a session
type EndSessionRequest struct {
	FinalStatus string `json:"final_status,omitempty"`
}

// EndSessionResponse represents the final session record
type EndSessionResponse struct {
	SessionID       string `json:"session_id"`
	Status          string `json:"status"`
	DurationSeconds int64  `json:"duration_seconds"`
	VisitCreated    bool   `json:"visit_created"`
}
