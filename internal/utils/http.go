package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/haojie06/canvas-relay/internal/model"
)

const RequestIdKey = "requestId"

func GinFailedWithMessage(c *gin.Context, status int, message string) {
	c.JSON(status, model.ErrorResponse{
		Error: message,
	})
}

func GinFailedWithDetail(c *gin.Context, status int, message string, err error) {
	resp := model.ErrorResponse{Error: message}
	if err != nil {
		resp.Detail = err.Error()
	}
	c.JSON(status, resp)
}

// RequestId returns the id assigned by the request id middleware.
func RequestId(c *gin.Context) string {
	return c.GetString(RequestIdKey)
}
