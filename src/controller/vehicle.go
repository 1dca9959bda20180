package controller

import (
	"net/http"

	"condominium-service/src/middleware"
	"condominium-service/src/schemas"
	"condominium-service/src/service"
	"condominium-service/src/utils"

	"github.com/gin-gonic/gin"
)

// VehicleController exposes vehicle registration
type VehicleController struct {
	Service *service.VehicleService
}

// NewVehicleController creates a new vehicle controller
func NewVehicleController(service *service.VehicleService) *VehicleController {
	return &VehicleController{
		Service: service,
	}
}

// @Summary Register a vehicle
// @Tags vehicles
// @Accept json
// @Produce json
// @Success 200 {object} models.Vehicle
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 409 {object} schemas.ErrorResponse
// @Router /vehicles [post]
func (c *VehicleController) CreateVehicle(ctx *gin.Context) {
	var req schemas.CreateVehicleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.SendError(ctx, http.StatusBadRequest, "Bad Request", "Invalid JSON format: "+err.Error(), "https://condominium-service.com/validation-error", ctx.FullPath())
		return
	}

	vehicle, err := c.Service.CreateVehicle(ctx.Request.Context(), middleware.Actor(ctx), req)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, vehicle)
}

// @Summary List a resident's vehicles
// @Tags vehicles
// @Produce json
// @Success 200 {array} models.Vehicle
// @Router /residents/{id}/vehicles [get]
func (c *VehicleController) ListVehiclesByResident(ctx *gin.Context) {
	vehicles, err := c.Service.ListVehiclesByResident(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, vehicles)
}

// @Summary Delete a vehicle
// @Tags vehicles
// @Success 204
// @Failure 404 {object} schemas.ErrorResponse
// @Router /vehicles/{id} [delete]
func (c *VehicleController) DeleteVehicle(ctx *gin.Context) {
	if err := c.Service.DeleteVehicle(ctx.Request.Context(), middleware.Actor(ctx), ctx.Param("id")); err != nil {
		writeError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
