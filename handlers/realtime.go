package handlers

import (
	"busreserve/middleware"
	"busreserve/services/realtime"
	"busreserve/services/trip"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RealtimeHandler upgrades trip followers to a websocket fed by the hub.
type RealtimeHandler struct {
	Hub         *realtime.Hub
	TripService trip.TripService
	Logger      *zap.Logger
}

func NewRealtimeHandler(hub *realtime.Hub, ts trip.TripService, logger *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{Hub: hub, TripService: ts, Logger: logger}
}

// TripEventsHandler streams lifecycle events of one trip.
func (h *RealtimeHandler) TripEventsHandler(c *gin.Context) {
	logger := requestLogger(c, h.Logger)
	participant, _ := middleware.GetParticipant(c)
	tripID := c.Param("tripID")

	if _, err := h.TripService.GetTrip(c.Request.Context(), tripID); err != nil {
		writeError(c, logger, err)
		return
	}
	if err := h.Hub.ServeTrip(c.Writer, c.Request, tripID, participant); err != nil {
		// The upgrader has already written the HTTP error.
		logger.Warn("Websocket upgrade failed", zap.Error(err))
	}
}
