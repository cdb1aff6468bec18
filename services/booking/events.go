package booking

import (
	"context"
	"slices"
	"time"

	"busreserve/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// emit hands an event to the dispatcher. It runs after the owning transition has committed
// (DelayAlert aside) and never fails the caller.
func (s *DefaultBookingService) emit(ctx context.Context, event models.Event) {
	if s.Dispatcher == nil {
		return
	}
	event.ID = uuid.New().String()
	event.OccurredAt = s.now()
	if err := s.Dispatcher.Dispatch(ctx, event); err != nil {
		s.Logger.Error("Failed to dispatch booking event",
			zap.String("type", string(event.Type)),
			zap.String("bookingId", event.BookingID),
			zap.Error(err),
		)
	}
}

func (s *DefaultBookingService) emitCreated(ctx context.Context, b *models.Booking) {
	s.emit(ctx, models.Event{
		Type:        models.EventBookingCreated,
		BookingID:   b.ID,
		TripID:      b.TripID,
		UserID:      b.UserID,
		Seats:       slices.Clone(b.Seats),
		Status:      b.Status,
		ChatEnabled: b.ChatEnabled,
		Severity:    models.SeverityInfo,
	})
	if b.Group == nil {
		return
	}
	for _, m := range b.Group.Members {
		if m.IsConfirmed {
			continue
		}
		s.emit(ctx, models.Event{
			Type:         models.EventGroupInvite,
			BookingID:    b.ID,
			TripID:       b.TripID,
			UserID:       b.UserID,
			Status:       b.Status,
			Severity:     models.SeverityInfo,
			MemberEmail:  m.Email,
			MemberUserID: m.UserID,
		})
	}
}

func (s *DefaultBookingService) emitCancelled(ctx context.Context, b *models.Booking) {
	s.emit(ctx, models.Event{
		Type:      models.EventBookingCancelled,
		BookingID: b.ID,
		TripID:    b.TripID,
		UserID:    b.UserID,
		Seats:     slices.Clone(b.Seats),
		Status:    models.StatusCancelled,
		Severity:  models.SeverityInfo,
		Reason:    b.CancellationReason,
	})
}

func (s *DefaultBookingService) emitCompleted(ctx context.Context, b *models.Booking, driverID string) {
	s.emit(ctx, models.Event{
		Type:      models.EventBookingCompleted,
		BookingID: b.ID,
		TripID:    b.TripID,
		UserID:    b.UserID,
		DriverID:  driverID,
		Seats:     slices.Clone(b.Seats),
		Status:    models.StatusCompleted,
		Severity:  models.SeverityInfo,
	})
}

func (s *DefaultBookingService) emitDelayAlert(ctx context.Context, b *models.Booking, driverID string, delay time.Duration) {
	s.emit(ctx, models.Event{
		Type:         models.EventDelayAlert,
		BookingID:    b.ID,
		TripID:       b.TripID,
		UserID:       b.UserID,
		DriverID:     driverID,
		Status:       b.Status,
		Severity:     models.SeverityHigh,
		DelayMinutes: int(delay / time.Minute),
	})
}
