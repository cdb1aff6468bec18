package notification

import (
	"context"

	"busreserve/models"

	"go.uber.org/zap"
)

// LogDispatcher writes events to the log. It is the fallback when no delivery channel is configured.
type LogDispatcher struct {
	logger *zap.Logger
}

func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (l *LogDispatcher) Dispatch(_ context.Context, event models.Event) error {
	l.logger.Info("Booking event",
		zap.String("type", string(event.Type)),
		zap.String("eventId", event.ID),
		zap.String("bookingId", event.BookingID),
		zap.String("tripId", event.TripID),
		zap.Ints("seats", event.Seats),
		zap.String("severity", event.Severity),
	)
	return nil
}
