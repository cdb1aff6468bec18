package handlers

import (
	"busreserve/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requestLogger decorates base with the route and, when authenticated, the caller.
func requestLogger(c *gin.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = zap.L()
	}
	logger := base.With(zap.String("method", c.Request.Method), zap.String("path", c.FullPath()))
	if participant, ok := middleware.GetParticipant(c); ok {
		logger = logger.With(zap.String("participant", participant.ID), zap.String("kind", string(participant.Kind)))
	}
	return logger
}
