package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"condominium-service/src/config"
	"condominium-service/src/models"
	"condominium-service/src/utils"

	"github.com/gin-gonic/gin"
)

const (
	// ContextUserID is the gin context key carrying the authenticated user ID
	ContextUserID = "user_id"
	// ContextRole is the gin context key carrying the authenticated role
	ContextRole = "role"
)

// Middleware validates bearer tokens against the authenticator service
// and gates routes by role. Token mechanics live in the authenticator;
// this layer only consumes its verdict.
type Middleware struct {
	authServiceURL string
	client         *http.Client
}

// NewMiddleware creates the auth middleware from config
func NewMiddleware(cfg *config.GlobalConfig) *Middleware {
	return &Middleware{
		authServiceURL: cfg.GetAuthServiceURL(),
		client:         &http.Client{},
	}
}

// ValidateToken asks the authenticator service whether the token is valid
func (m *Middleware) ValidateToken(token string) (*models.TokenValidateResponse, error) {
	postBody, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return nil, fmt.Errorf("failed to validate token")
	}

	resp, err := m.client.Post(m.authServiceURL+"/tokens/validate", "application/json", bytes.NewBuffer(postBody))
	if err != nil {
		return nil, fmt.Errorf("failed to validate token")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to validate token")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var tokenResp models.TokenValidateResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, err
	}

	if !tokenResp.IsValid {
		return nil, fmt.Errorf("invalid token")
	}

	return &tokenResp, nil
}

// AuthRequired rejects requests without a valid bearer token and stores
// the authenticated identity on the context
func (m *Middleware) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.SendError(c, http.StatusUnauthorized, "Unauthorized", "Authorization header missing", "https://condominium-service.com/validation-error", c.FullPath())
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.SendError(c, http.StatusUnauthorized, "Unauthorized", "Invalid authorization header format", "https://condominium-service.com/validation-error", c.FullPath())
			c.Abort()
			return
		}

		tokenResp, err := m.ValidateToken(parts[1])
		if err != nil {
			utils.SendError(c, http.StatusUnauthorized, "Unauthorized", err.Error(), "https://condominium-service.com/validation-error", c.FullPath())
			c.Abort()
			return
		}

		c.Set(ContextUserID, tokenResp.UserID)
		c.Set(ContextRole, tokenResp.Role)
		c.Next()
	}
}

// RequireRole gates a route group to the given roles. Must run after
// AuthRequired.
func (m *Middleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		utils.SendError(c, http.StatusForbidden, "Forbidden", fmt.Sprintf("role %q is not allowed on this resource", role), "https://condominium-service.com/authorization-error", c.FullPath())
		c.Abort()
	}
}

// Actor returns the authenticated user ID, or "system" when the route is
// unauthenticated (internal callers such as the LPR gateway).
func Actor(c *gin.Context) string {
	if userID := c.GetString(ContextUserID); userID != "" {
		return userID
	}
	return "system"
}
