package utils

import (
	"condominium-service/src/schemas"

	"github.com/bytedance/gopkg/util/logger"
	"github.com/gin-gonic/gin"
)

// SendError writes an RFC 7807 error response and logs it
func SendError(ctx *gin.Context, status int, title string, detail string, errType string, instance string) {
	errorResp := schemas.ErrorResponse{
		Type:     errType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	}
	ctx.JSON(status, errorResp)
	logger.Error("Error: ", detail)
}

// SendErrorResponse writes a pre-built schemas error with its own status
func SendErrorResponse(ctx *gin.Context, err *schemas.ErrorResponse) {
	ctx.JSON(err.Status, err)
	logger.Error("Error: ", err.Detail)
}
