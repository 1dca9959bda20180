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

// LPRController exposes plate-detection ingestion and the camera registry
type LPRController struct {
	LPR     *service.LPRService
	Cameras *service.CameraService
}

// NewLPRController creates a new LPR controller
func NewLPRController(lpr *service.LPRService, cameras *service.CameraService) *LPRController {
	return &LPRController{
		LPR:     lpr,
		Cameras: cameras,
	}
}

// @Summary Ingest an LPR event
// @Description Stores one plate detection and reports whether the plate is registered
// @Tags lpr
// @Accept json
// @Produce json
// @Success 200 {object} schemas.PlateEventResponse
// @Failure 400 {object} schemas.ErrorResponse
// @Router /lpr/events [post]
func (c *LPRController) IngestEvent(ctx *gin.Context) {
	var req schemas.PlateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.SendError(ctx, http.StatusBadRequest, "Bad Request", "Invalid JSON format: "+err.Error(), "https://condominium-service.com/validation-error", ctx.FullPath())
		return
	}

	resp, err := c.LPR.IngestEvent(ctx.Request.Context(), req)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// @Summary List recent detections
// @Tags lpr
// @Produce json
// @Success 200 {array} models.PlateDetection
// @Router /lpr/events [get]
func (c *LPRController) ListDetections(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))

	detections, err := c.LPR.ListRecentDetections(ctx.Request.Context(), limit)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, detections)
}

// @Summary Register a camera
// @Tags cameras
// @Accept json
// @Produce json
// @Success 200 {object} models.Camera
// @Failure 400 {object} schemas.ErrorResponse
// @Router /cameras [post]
func (c *LPRController) CreateCamera(ctx *gin.Context) {
	var req schemas.CreateCameraRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.SendError(ctx, http.StatusBadRequest, "Bad Request", "Invalid JSON format: "+err.Error(), "https://condominium-service.com/validation-error", ctx.FullPath())
		return
	}

	camera, err := c.Cameras.CreateCamera(ctx.Request.Context(), middleware.Actor(ctx), req)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, camera)
}

// @Summary List cameras
// @Tags cameras
// @Produce json
// @Success 200 {array} models.Camera
// @Router /cameras [get]
func (c *LPRController) ListCameras(ctx *gin.Context) {
	cameras, err := c.Cameras.ListCameras(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, cameras)
}

// @Summary Get a camera stream endpoint
// @Description Resolves a camera to its WHEP URL on the media gateway
// @Tags cameras
// @Produce json
// @Success 200 {object} schemas.CameraStreamResponse
// @Failure 404 {object} schemas.ErrorResponse
// @Router /cameras/{id}/stream [get]
func (c *LPRController) GetStreamEndpoint(ctx *gin.Context) {
	resp, err := c.Cameras.GetStreamEndpoint(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
