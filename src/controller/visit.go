package controller

import (
	"net/http"
	"strconv"

	"condominium-service/src/middleware"
	"condominium-service/src/schemas"
	"condominium-service/src/service"
	"condominium-service/src/utils"

	"github.com/gin-gonic/gin"
)

// VisitController exposes manual visit management
type VisitController struct {
	Service *service.VisitService
}

// NewVisitController creates a new visit controller
func NewVisitController(service *service.VisitService) *VisitController {
	return &VisitController{
		Service: service,
	}
}

// @Summary Register a visit
// @Tags visits
// @Accept json
// @Produce json
// @Success 200 {object} models.Visit
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 404 {object} schemas.ErrorResponse
// @Router /visits [post]
func (c *VisitController) CreateVisit(ctx *gin.Context) {
	var req schemas.CreateVisitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.SendError(ctx, http.StatusBadRequest, "Bad Request", "Invalid JSON format: "+err.Error(), "https://condominium-service.com/validation-error", ctx.FullPath())
		return
	}

	visit, err := c.Service.CreateVisit(ctx.Request.Context(), middleware.Actor(ctx), req)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, visit)
}

// @Summary Get a visit
// @Tags visits
// @Produce json
// @Success 200 {object} models.Visit
// @Failure 404 {object} schemas.ErrorResponse
// @Router /visits/{id} [get]
func (c *VisitController) GetVisit(ctx *gin.Context) {
	visit, err := c.Service.GetVisit(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, visit)
}

// @Summary Update visit status
// @Tags visits
// @Accept json
// @Produce json
// @Success 204
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 404 {object} schemas.ErrorResponse
// @Router /visits/{id}/status [put]
func (c *VisitController) UpdateVisitStatus(ctx *gin.Context) {
	var req schemas.UpdateVisitStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.SendError(ctx, http.StatusBadRequest, "Bad Request", "Invalid JSON format: "+err.Error(), "https://condominium-service.com/validation-error", ctx.FullPath())
		return
	}

	if err := c.Service.UpdateVisitStatus(ctx.Request.Context(), middleware.Actor(ctx), ctx.Param("id"), req.Status); err != nil {
		writeError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// @Summary List recent visits for a unit
// @Tags visits
// @Produce json
// @Success 200 {array} models.Visit
// @Router /units/{number}/visits [get]
func (c *VisitController) ListVisitsByUnit(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))

	visits, err := c.Service.ListRecentVisitsByUnit(ctx.Request.Context(), ctx.Param("number"), limit)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, visits)
}
