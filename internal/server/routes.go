package server

import (
	"github.com/gin-gonic/gin"
	"github.com/haojie06/canvas-relay/internal/server/handler"
)

func GenerationRoutes(h *handler.GenerationHandler) func(r *gin.Engine) {
	return func(r *gin.Engine) {
		r.POST("/generate", h.Generate)
	}
}

func PostRoutes(h *handler.PostHandler) func(r *gin.Engine) {
	return func(r *gin.Engine) {
		r.POST("/", h.Post)
	}
}
