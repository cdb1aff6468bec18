package handlers

import (
	"net/http"

	"busreserve/models"
	"busreserve/services/trip"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler encapsulates trip scheduling, which only operators may perform.
type AdminHandler struct {
	TripService trip.TripService
	Logger      *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(ts trip.TripService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{TripService: ts, Logger: logger}
}

// CreateTripHandler schedules a run.
func (ah *AdminHandler) CreateTripHandler(c *gin.Context) {
	logger := requestLogger(c, ah.Logger)

	var req models.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, err := ah.TripService.CreateTrip(c.Request.Context(), req)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// GetTripHandler returns a trip without its hold ledger.
func (ah *AdminHandler) GetTripHandler(c *gin.Context) {
	t, err := ah.TripService.GetTrip(c.Request.Context(), c.Param("tripID"))
	if err != nil {
		writeError(c, requestLogger(c, ah.Logger), err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// DeleteTripHandler removes a trip and every booking that references it.
func (ah *AdminHandler) DeleteTripHandler(c *gin.Context) {
	removed, err := ah.TripService.DeleteTrip(c.Request.Context(), c.Param("tripID"))
	if err != nil {
		writeError(c, requestLogger(c, ah.Logger), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedBookings": removed})
}
