package routes

import (
	"time"

	"busreserve/handlers"
	"busreserve/middleware"
	"busreserve/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterTripRoutes registers seat hold, seat map and quote endpoints.
func RegisterTripRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/trips/:tripID")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("/seats", middleware.RequireCapability(models.CapRead), hb.SeatMapHandler)
		api.POST("/quote", middleware.RequireCapability(models.CapRead), hb.QuoteHandler)

		holds := api.Group("/holds")
		holds.Use(middleware.RequireCapability(models.CapReserve))
		holds.POST("", hb.ReserveSeatsHandler)
		holds.DELETE("", hb.ReleaseHoldHandler)
	}
}

// RegisterBookingRoutes sets up the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/bookings")
	{
		bookingGroup.Use(middleware.JWTAuthMiddleware())
		bookingGroup.POST("", middleware.RequireCapability(models.CapBook), hb.CreateBookingHandler)
		bookingGroup.GET("", middleware.RequireCapability(models.CapRead), hb.ListBookingsHandler)
		bookingGroup.GET("/:bookingID", middleware.RequireCapability(models.CapRead), hb.GetBookingHandler)
		bookingGroup.POST("/:bookingID/cancel", middleware.RequireCapability(models.CapCancel), hb.CancelBookingHandler)
		bookingGroup.POST("/:bookingID/complete", middleware.RequireCapability(models.CapComplete), hb.CompleteBookingHandler)
		bookingGroup.POST("/:bookingID/delay", middleware.RequireCapability(models.CapAnnotate), hb.DelayNoticeHandler)
		bookingGroup.POST("/:bookingID/group/confirm", middleware.RequireCapability(models.CapRead), hb.ConfirmGroupMemberHandler)
	}
}

// RegisterRealtimeRoutes registers the websocket event stream.
func RegisterRealtimeRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.TripEventsHandler == nil {
		return
	}
	ws := r.Group("/api/ws")
	ws.Use(middleware.JWTAuthMiddleware(), middleware.RequireCapability(models.CapRead))
	ws.GET("/trips/:tripID", hb.TripEventsHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.AdminTokenMiddleware())
		adminGroup.POST("/trips", hb.AdminHandler.CreateTripHandler)
		adminGroup.GET("/trips/:tripID", hb.AdminHandler.GetTripHandler)
		adminGroup.DELETE("/trips/:tripID", hb.AdminHandler.DeleteTripHandler)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterTripRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterRealtimeRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
