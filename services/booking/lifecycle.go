package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	reservationRepo "busreserve/database/repository/reservation"
	"busreserve/models"

	"go.uber.org/zap"
)

// delayAlertThreshold is how late an arrival may be before a DelayAlert goes out.
const delayAlertThreshold = 30 * time.Minute

const minCancelReason = 3

func (s *DefaultBookingService) loadBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Repo.GetBooking(ctx, bookingID)
	if errors.Is(err, reservationRepo.ErrNotFound) {
		return nil, newError(CodeNotFound, "booking not found")
	}
	if err != nil {
		return nil, storeError("load booking", err)
	}
	return b, nil
}

// Cancel moves the requester's booking to cancelled and releases its seats. A booking that is
// already cancelled or completed yields AlreadyTerminal and its seats are left untouched.
func (s *DefaultBookingService) Cancel(ctx context.Context, bookingID, requesterID, reason string) error {
	reason = strings.TrimSpace(reason)
	if len(reason) < minCancelReason {
		return validationError("cancellation reason must be at least 3 characters")
	}

	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.UserID != requesterID {
		return newError(CodeUnauthorized, "only the booking owner can cancel it")
	}
	if b.Status.Terminal() {
		return newError(CodeAlreadyTerminal, "booking is already "+string(b.Status))
	}

	now := s.now()
	err = s.Repo.CancelBooking(ctx, b, reason, now)
	if errors.Is(err, reservationRepo.ErrStatusConflict) {
		return newError(CodeAlreadyTerminal, "booking was closed concurrently")
	}
	if errors.Is(err, reservationRepo.ErrNotFound) {
		return newError(CodeNotFound, "booking not found")
	}
	if err != nil {
		return storeError("cancel booking", err)
	}

	b.Status = models.StatusCancelled
	b.CancellationReason = reason
	s.Logger.Info("Booking cancelled",
		zap.String("bookingId", b.ID),
		zap.String("tripId", b.TripID),
		zap.Ints("releasedSeats", b.Seats),
	)
	s.emitCancelled(ctx, b)
	return nil
}

// Complete closes a confirmed booking on behalf of the trip's driver. A late arrival raises a
// DelayAlert before the transition is written.
func (s *DefaultBookingService) Complete(ctx context.Context, bookingID, driverID string, req models.CompleteBookingRequest) error {
	if req.Earnings < 0 {
		return validationError("earnings cannot be negative")
	}
	if req.ActualArrival.Before(req.ActualDeparture) {
		return validationError("actual arrival precedes actual departure")
	}

	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	trip, err := s.loadTrip(ctx, b.TripID)
	if err != nil {
		return err
	}
	if trip.DriverID != driverID {
		return newError(CodeUnauthorized, "only the assigned driver can complete this booking")
	}
	if b.Status != models.StatusConfirmed {
		return newError(CodeInvalidState, "only confirmed bookings can be completed, booking is "+string(b.Status))
	}

	if delay := req.ActualArrival.Sub(trip.ArrivalTime); delay > delayAlertThreshold {
		s.Logger.Warn("Trip arrived late",
			zap.String("tripId", trip.ID),
			zap.String("bookingId", b.ID),
			zap.Duration("delay", delay),
		)
		s.emitDelayAlert(ctx, b, driverID, delay)
	}

	now := s.now()
	err = s.Repo.CompleteBooking(ctx, b.ID, driverID, models.Completion{
		ActualDeparture: req.ActualDeparture,
		ActualArrival:   req.ActualArrival,
		Earnings:        req.Earnings,
		CompletedAt:     now,
	})
	if errors.Is(err, reservationRepo.ErrStatusConflict) {
		return newError(CodeInvalidState, "booking left the confirmed state concurrently")
	}
	if err != nil {
		return storeError("complete booking", err)
	}

	b.Status = models.StatusCompleted
	s.Logger.Info("Booking completed",
		zap.String("bookingId", b.ID),
		zap.String("driverId", driverID),
		zap.Float64("earnings", req.Earnings),
	)
	s.emitCompleted(ctx, b, driverID)
	return nil
}

// AnnotateDelay stores the driver's delay notice on an open booking.
func (s *DefaultBookingService) AnnotateDelay(ctx context.Context, bookingID, driverID, notice string) error {
	notice = strings.TrimSpace(notice)
	if notice == "" {
		return validationError("delay notice is required")
	}
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	trip, err := s.loadTrip(ctx, b.TripID)
	if err != nil {
		return err
	}
	if trip.DriverID != driverID {
		return newError(CodeUnauthorized, "only the assigned driver can annotate this booking")
	}
	if b.Status.Terminal() {
		return newError(CodeInvalidState, "booking is already "+string(b.Status))
	}

	err = s.Repo.SetDelayNotice(ctx, b.ID, notice, s.now())
	if errors.Is(err, reservationRepo.ErrStatusConflict) {
		return newError(CodeInvalidState, "booking was closed concurrently")
	}
	if err != nil {
		return storeError("annotate booking", err)
	}
	return nil
}

// ConfirmGroupMember marks the group member with email as confirmed.
func (s *DefaultBookingService) ConfirmGroupMember(ctx context.Context, bookingID, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return validationError("email is required")
	}
	err := s.Repo.ConfirmGroupMember(ctx, bookingID, email)
	switch {
	case errors.Is(err, reservationRepo.ErrNotFound):
		return newError(CodeNotFound, "booking not found")
	case errors.Is(err, reservationRepo.ErrMemberNotFound):
		return newError(CodeMemberNotFound, "no group member with that email")
	case err != nil:
		return storeError("confirm group member", err)
	}
	return nil
}

// GetBooking returns a booking to its owner, a group member or the trip's driver, with the
// chat flag derived for the current day.
func (s *DefaultBookingService) GetBooking(ctx context.Context, bookingID string, viewer models.Participant) (*models.Booking, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !s.canView(ctx, b, viewer) {
		return nil, newError(CodeUnauthorized, "not a participant of this booking")
	}
	b.ChatEnabled = b.IsChatEnabled(s.now(), s.Location)
	return b, nil
}

func (s *DefaultBookingService) canView(ctx context.Context, b *models.Booking, viewer models.Participant) bool {
	switch viewer.Kind {
	case models.ParticipantUser:
		if b.UserID == viewer.ID {
			return true
		}
		if b.Group != nil {
			for _, m := range b.Group.Members {
				if m.UserID != "" && m.UserID == viewer.ID {
					return true
				}
			}
		}
	case models.ParticipantDriver:
		trip, err := s.Repo.GetTrip(ctx, b.TripID)
		return err == nil && trip.DriverID == viewer.ID
	}
	return false
}

// ListUserBookings returns the requester's bookings, newest first.
func (s *DefaultBookingService) ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	bookings, err := s.Repo.ListBookingsByUser(ctx, userID)
	if err != nil {
		return nil, storeError("list bookings", err)
	}
	now := s.now()
	for i := range bookings {
		bookings[i].ChatEnabled = bookings[i].IsChatEnabled(now, s.Location)
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, nil
}
