package handlers

import (
	"net/http"

	"busreserve/middleware"
	"busreserve/models"
	"busreserve/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes seat holds, quotes and the booking lifecycle.
type BookingHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

func NewBookingHandler(service booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: service, Logger: logger}
}

// ReserveSeatsHandler places or replaces the caller's hold on a trip.
func (h *BookingHandler) ReserveSeatsHandler(c *gin.Context) {
	logger := requestLogger(c, h.Logger)
	participant, _ := middleware.GetParticipant(c)

	var req models.ReserveSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	hold, err := h.Service.AcquireHold(c.Request.Context(), c.Param("tripID"), participant.ID, req.Seats)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, hold)
}

// ReleaseHoldHandler drops the caller's hold.
func (h *BookingHandler) ReleaseHoldHandler(c *gin.Context) {
	logger := requestLogger(c, h.Logger)
	participant, _ := middleware.GetParticipant(c)

	if err := h.Service.ReleaseHold(c.Request.Context(), c.Param("tripID"), participant.ID); err != nil {
		writeError(c, logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SeatMapHandler returns confirmed, held and free seats for a trip.
func (h *BookingHandler) SeatMapHandler(c *gin.Context) {
	availability, err := h.Service.Availability(c.Request.Context(), c.Param("tripID"))
	if err != nil {
		writeError(c, requestLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, availability)
}

func (h *BookingHandler) QuoteHandler(c *gin.Context) {
	var req models.FareQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	quote, err := h.Service.Quote(c.Request.Context(), c.Param("tripID"), req.Seats, req.TravelDate)
	if err != nil {
		writeError(c, requestLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// CreateBookingHandler converts the caller's hold into a confirmed booking.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	logger := requestLogger(c, h.Logger)
	participant, _ := middleware.GetParticipant(c)

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.Service.Create(c.Request.Context(), participant.ID, req)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	logger.Info("Booking confirmed", zap.String("bookingID", resp.BookingID), zap.Float64("fare", resp.FinalFare))
	c.JSON(http.StatusCreated, resp)
}

func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	participant, _ := middleware.GetParticipant(c)
	b, err := h.Service.GetBooking(c.Request.Context(), c.Param("bookingID"), participant)
	if err != nil {
		writeError(c, requestLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListBookingsHandler lists the caller's own bookings, newest first.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	participant, _ := middleware.GetParticipant(c)
	bookings, err := h.Service.ListUserBookings(c.Request.Context(), participant.ID)
	if err != nil {
		writeError(c, requestLogger(c, h.Logger), err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	logger := requestLogger(c, h.Logger)
	participant, _ := middleware.GetParticipant(c)

	var req models.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Service.Cancel(c.Request.Context(), c.Param("bookingID"), participant.ID, req.Reason); err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.StatusCancelled})
}

// CompleteBookingHandler records the driver's trip report.
func (h *BookingHandler) CompleteBookingHandler(c *gin.Context) {
	logger := requestLogger(c, h.Logger)
	participant, _ := middleware.GetParticipant(c)

	var req models.CompleteBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Service.Complete(c.Request.Context(), c.Param("bookingID"), participant.ID, req); err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.StatusCompleted})
}

func (h *BookingHandler) DelayNoticeHandler(c *gin.Context) {
	participant, _ := middleware.GetParticipant(c)

	var req models.DelayNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Service.AnnotateDelay(c.Request.Context(), c.Param("bookingID"), participant.ID, req.Notice); err != nil {
		writeError(c, requestLogger(c, h.Logger), err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BookingHandler) ConfirmGroupMemberHandler(c *gin.Context) {
	var req models.ConfirmGroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Service.ConfirmGroupMember(c.Request.Context(), c.Param("bookingID"), req.Email); err != nil {
		writeError(c, requestLogger(c, h.Logger), err)
		return
	}
	c.Status(http.StatusNoContent)
}
