package controller

import (
	"errors"

	"condominium-service/src/schemas"
	"condominium-service/src/utils"

	"github.com/gin-gonic/gin"
)

// writeError translates a service error into an HTTP response. Services
// return *schemas.ErrorResponse; anything else is an unclassified
// internal failure.
func writeError(ctx *gin.Context, err error) {
	var apiErr *schemas.ErrorResponse
	if errors.As(err, &apiErr) {
		utils.SendErrorResponse(ctx, apiErr)
		return
	}
	utils.SendErrorResponse(ctx, schemas.NewInternalError(err.Error(), ctx.FullPath()))
}
