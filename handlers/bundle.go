package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Seat and hold endpoints
	ReserveSeatsHandler gin.HandlerFunc
	ReleaseHoldHandler  gin.HandlerFunc
	SeatMapHandler      gin.HandlerFunc
	QuoteHandler        gin.HandlerFunc

	// Booking endpoints
	CreateBookingHandler      gin.HandlerFunc
	GetBookingHandler         gin.HandlerFunc
	ListBookingsHandler       gin.HandlerFunc
	CancelBookingHandler      gin.HandlerFunc
	CompleteBookingHandler    gin.HandlerFunc
	DelayNoticeHandler        gin.HandlerFunc
	ConfirmGroupMemberHandler gin.HandlerFunc

	// Realtime
	TripEventsHandler gin.HandlerFunc

	// Admin endpoints
	AdminHandler *AdminHandler

	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires the handler methods into a bundle.
func NewHandlerBundle(bh *BookingHandler, ah *AdminHandler, rh *RealtimeHandler) *HandlerBundle {
	hb := &HandlerBundle{
		ReserveSeatsHandler:       bh.ReserveSeatsHandler,
		ReleaseHoldHandler:        bh.ReleaseHoldHandler,
		SeatMapHandler:            bh.SeatMapHandler,
		QuoteHandler:              bh.QuoteHandler,
		CreateBookingHandler:      bh.CreateBookingHandler,
		GetBookingHandler:         bh.GetBookingHandler,
		ListBookingsHandler:       bh.ListBookingsHandler,
		CancelBookingHandler:      bh.CancelBookingHandler,
		CompleteBookingHandler:    bh.CompleteBookingHandler,
		DelayNoticeHandler:        bh.DelayNoticeHandler,
		ConfirmGroupMemberHandler: bh.ConfirmGroupMemberHandler,
		AdminHandler:              ah,
		HealthHandler:             HealthHandler,
	}
	if rh != nil {
		hb.TripEventsHandler = rh.TripEventsHandler
	}
	return hb
}
