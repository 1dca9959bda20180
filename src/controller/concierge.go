package controller

import (
	"log/slog"
	"net/http"

	"condominium-service/src/schemas"
	"condominium-service/src/service"
	"condominium-service/src/utils"

	"github.com/gin-gonic/gin"
)

// ConciergeController exposes the digital concierge session lifecycle
type ConciergeController struct {
	Service *service.ConciergeService
}

// NewConciergeController creates a new concierge controller
func NewConciergeController(service *service.ConciergeService) *ConciergeController {
	return &ConciergeController{
		Service: service,
	}
}

// @Summary Start a concierge session
// @Description Creates a voice session and mints an ephemeral realtime credential for it
// @Tags concierge
// @Accept json
// @Produce json
// @Success 200 {object} schemas.StartSessionResponse
// @Failure 503 {object} schemas.ErrorResponse
// @Router /concierge/sessions [post]
func (c *ConciergeController) StartSession(ctx *gin.Context) {
	var req schemas.StartSessionRequest
	// Body is optional; a bare POST starts a web session.
	_ = ctx.ShouldBindJSON(&req)

	resp, err := c.Service.StartSession(ctx.Request.Context(), req)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// @Summary Get house context
// @Description Returns a prior-visit summary used to prime the assistant
// @Tags concierge
// @Produce json
// @Success 200 {object} schemas.HouseContextResponse
// @Failure 404 {object} schemas.ErrorResponse
// @Router /concierge/house-context/{houseNumber} [post]
func (c *ConciergeController) GetHouseContext(ctx *gin.Context) {
	resp, err := c.Service.GetHouseContext(ctx.Request.Context(), ctx.Param("houseNumber"))
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// @Summary Execute a concierge tool
// @Description Runs one assistant-invoked tool against the session; handler failures are embedded in the result
// @Tags concierge
// @Accept json
// @Produce json
// @Success 200 {object} schemas.ToolResult
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 404 {object} schemas.ErrorResponse
// @Failure 409 {object} schemas.ErrorResponse
// @Router /concierge/sessions/{id}/execute-tool [post]
func (c *ConciergeController) ExecuteTool(ctx *gin.Context) {
	sessionID := ctx.Param("id")

	var req schemas.ExecuteToolRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.SendError(ctx, http.StatusBadRequest, "Bad Request", "Invalid JSON format: "+err.Error(), "https://condominium-service.com/validation-error", ctx.FullPath())
		return
	}

	result, err := c.Service.ExecuteTool(ctx.Request.Context(), sessionID, req)
	if err != nil {
		slog.Error("Tool execution rejected",
			"session_id", sessionID,
			"tool", req.ToolName,
			"error", err.Error())
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// @Summary Session status
// @Description Reports whether tool execution is currently accepted for the session
// @Tags concierge
// @Produce json
// @Success 200 {object} schemas.SessionStatusResponse
// @Router /concierge/sessions/{id}/status [post]
func (c *ConciergeController) SessionStatus(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.Service.IsSessionActive(ctx.Param("id")))
}

// @Summary Respond to a visitor
// @Description Resolves the session's pending approval with the resident's decision
// @Tags concierge
// @Accept json
// @Produce json
// @Success 200 {object} schemas.RespondResponse
// @Failure 404 {object} schemas.ErrorResponse
// @Router /concierge/sessions/{id}/respond [post]
func (c *ConciergeController) Respond(ctx *gin.Context) {
	sessionID := ctx.Param("id")

	var req schemas.RespondRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Approved == nil {
		utils.SendError(ctx, http.StatusBadRequest, "Bad Request", "body must include the approved field", "https://condominium-service.com/validation-error", ctx.FullPath())
		return
	}

	resp, err := c.Service.RespondToVisitor(ctx.Request.Context(), sessionID, *req.Approved, req.ResidentID)
	if err != nil {
		writeError(ctx, err)
		return
	}

	slog.Info("Visitor response recorded",
		"session_id", sessionID,
		"approved", *req.Approved)

	ctx.JSON(http.StatusOK, resp)
}

// @Summary End a concierge session
// @Description Ends the session, denying any open approval and flushing the visit side effect; idempotent
// @Tags concierge
// @Accept json
// @Produce json
// @Success 200 {object} schemas.EndSessionResponse
// @Failure 404 {object} schemas.ErrorResponse
// @Router /concierge/sessions/{id}/end [post]
func (c *ConciergeController) EndSession(ctx *gin.Context) {
	sessionID := ctx.Param("id")

	var req schemas.EndSessionRequest
	_ = ctx.ShouldBindJSON(&req)

	resp, err := c.Service.EndSession(ctx.Request.Context(), sessionID, req.FinalStatus)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
