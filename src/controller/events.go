package controller

import (
	"net/http"
	"strconv"

	"condominium-service/src/service"
	"condominium-service/src/utils"
	"condominium-service/src/ws"

	"github.com/gin-gonic/gin"
)

// EventsController exposes the websocket event channel and the audit log
type EventsController struct {
	Hub   *ws.Hub
	Audit *service.AuditService
}

// NewEventsController creates a new events controller
func NewEventsController(hub *ws.Hub, audit *service.AuditService) *EventsController {
	return &EventsController{
		Hub:   hub,
		Audit: audit,
	}
}

// @Summary Open the event channel
// @Description Upgrades to a websocket registered under the given socket id; session events are pushed here
// @Tags events
// @Param socket_id query string true "Socket ID"
// @Router /ws [get]
func (c *EventsController) Serve(ctx *gin.Context) {
	socketID := ctx.Query("socket_id")
	if socketID == "" {
		utils.SendError(ctx, http.StatusBadRequest, "Bad Request", "socket_id query parameter is required", "https://condominium-service.com/validation-error", "/ws")
		return
	}

	if err := c.Hub.Serve(ctx.Writer, ctx.Request, socketID); err != nil {
		// Upgrade failures already wrote their response.
		return
	}
}

// @Summary List recent audit entries
// @Tags audit
// @Produce json
// @Success 200 {array} models.AuditEntry
// @Router /audit [get]
func (c *EventsController) ListAudit(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))

	entries, err := c.Audit.ListRecent(ctx.Request.Context(), limit)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, entries)
}
