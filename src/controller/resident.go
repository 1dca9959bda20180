package controller

import (
	"net/http"

	"condominium-service/src/middleware"
	"condominium-service/src/schemas"
	"condominium-service/src/service"
	"condominium-service/src/utils"

	"github.com/gin-gonic/gin"
)

// ResidentController exposes unit and resident management
type ResidentController struct {
	Service *service.ResidentService
}

// NewResidentController creates a new resident controller
func NewResidentController(service *service.ResidentService) *ResidentController {
	return &ResidentController{
		Service: service,
	}
}

// @Summary Register a unit
// @Tags residents
// @Accept json
// @Produce json
// @Success 200 {object} models.Unit
// @Failure 400 {object} schemas.ErrorResponse
// @Router /units [post]
func (c *ResidentController) CreateUnit(ctx *gin.Context) {
	var req schemas.CreateUnitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.SendError(ctx, http.StatusBadRequest, "Bad Request", "Invalid JSON format: "+err.Error(), "https://condominium-service.com/validation-error", ctx.FullPath())
		return
	}

	unit, err := c.Service.CreateUnit(ctx.Request.Context(), middleware.Actor(ctx), req)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, unit)
}

// @Summary Register a resident
// @Tags residents
// @Accept json
// @Produce json
// @Success 200 {object} models.Resident
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 404 {object} schemas.ErrorResponse
// @Router /residents [post]
func (c *ResidentController) CreateResident(ctx *gin.Context) {
	var req schemas.CreateResidentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.SendError(ctx, http.StatusBadRequest, "Bad Request", "Invalid JSON format: "+err.Error(), "https://condominium-service.com/validation-error", ctx.FullPath())
		return
	}

	resident, err := c.Service.CreateResident(ctx.Request.Context(), middleware.Actor(ctx), req)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resident)
}

// @Summary Get a resident
// @Tags residents
// @Produce json
// @Success 200 {object} models.Resident
// @Failure 404 {object} schemas.ErrorResponse
// @Router /residents/{id} [get]
func (c *ResidentController) GetResident(ctx *gin.Context) {
	resident, err := c.Service.GetResident(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resident)
}

// @Summary List residents of a unit
// @Tags residents
// @Produce json
// @Success 200 {array} models.Resident
// @Failure 404 {object} schemas.ErrorResponse
// @Router /units/{number}/residents [get]
func (c *ResidentController) ListResidentsByUnit(ctx *gin.Context) {
	residents, err := c.Service.ListResidentsByUnit(ctx.Request.Context(), ctx.Param("number"))
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, residents)
}

// @Summary Update a resident
// @Tags residents
// @Accept json
// @Produce json
// @Success 204
// @Failure 404 {object} schemas.ErrorResponse
// @Router /residents/{id} [patch]
func (c *ResidentController) UpdateResident(ctx *gin.Context) {
	var req schemas.UpdateResidentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.SendError(ctx, http.StatusBadRequest, "Bad Request", "Invalid JSON format: "+err.Error(), "https://condominium-service.com/validation-error", ctx.FullPath())
		return
	}

	if err := c.Service.UpdateResident(ctx.Request.Context(), middleware.Actor(ctx), ctx.Param("id"), req); err != nil {
		writeError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// @Summary Delete a resident
// @Tags residents
// @Success 204
// @Failure 404 {object} schemas.ErrorResponse
// @Router /residents/{id} [delete]
func (c *ResidentController) DeleteResident(ctx *gin.Context) {
	if err := c.Service.DeleteResident(ctx.Request.Context(), middleware.Actor(ctx), ctx.Param("id")); err != nil {
		writeError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
