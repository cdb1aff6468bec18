package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	reservationRepo "busreserve/database/repository/reservation"
	"busreserve/models"
	"busreserve/services/fare"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Quote prices seats on a trip against its current occupancy, the same way Create does.
func (s *DefaultBookingService) Quote(ctx context.Context, tripID string, seats []int, travelDate string) (*models.FareBreakdown, error) {
	trip, err := s.loadTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if verr := checkSeats(seats, trip.TotalSeats); verr != nil {
		return nil, verr
	}
	if verr := s.checkTravelDate(trip, travelDate); verr != nil {
		return nil, verr
	}
	confirmed, err := s.ConfirmedSeats(ctx, trip)
	if err != nil {
		return nil, err
	}
	breakdown := s.price(trip, len(confirmed), seats, s.now())
	return &breakdown, nil
}

func (s *DefaultBookingService) price(trip *models.Trip, confirmed int, seats []int, at time.Time) models.FareBreakdown {
	return s.Fares.Compute(fare.Input{
		BaseFare:   trip.BaseFare,
		Seats:      seats,
		Snapshot:   fare.SnapshotOf(trip, confirmed),
		TravelDate: trip.DepartureTime,
		At:         at,
	})
}

// checkTravelDate requires the date to be the trip's service date and the trip not to have left.
func (s *DefaultBookingService) checkTravelDate(trip *models.Trip, travelDate string) *Error {
	if travelDate != trip.ServiceDate(s.Location) {
		return validationError(fmt.Sprintf("travel date %q does not match the trip date %s", travelDate, trip.ServiceDate(s.Location)))
	}
	if !s.now().Before(trip.DepartureTime) {
		return validationError("trip has already departed")
	}
	return nil
}

// Create commits a booking against the requester's hold. The booking insert, the hold removal
// and the confirmed seat update are one version-checked transaction; if the trip changed since
// it was read the whole check sequence runs again on fresh state.
func (s *DefaultBookingService) Create(ctx context.Context, requesterID string, req models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	if verr := validateCreateRequest(&req); verr != nil {
		return nil, verr
	}

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		trip, err := s.loadTrip(ctx, req.TripID)
		if err != nil {
			return nil, err
		}
		if verr := checkSeats(req.Seats, trip.TotalSeats); verr != nil {
			return nil, verr
		}
		if verr := s.checkTravelDate(trip, req.TravelDate); verr != nil {
			return nil, verr
		}
		if req.BoardingPoint != "" && !trip.HasBoardingPoint(req.BoardingPoint) {
			return nil, validationError(fmt.Sprintf("boarding point %q is not served by this trip", req.BoardingPoint))
		}

		now := s.now()
		taken, confirmed, err := s.takenSeats(ctx, trip, requesterID, now)
		if err != nil {
			return nil, err
		}

		breakdown := s.price(trip, len(confirmed), req.Seats, now)
		if !fare.WithinTolerance(req.QuotedFare, breakdown.Total) {
			return nil, &Error{
				Code:              CodeValidation,
				Message:           fmt.Sprintf("quoted fare %.2f does not match current fare %.2f", req.QuotedFare, breakdown.Total),
				AuthoritativeFare: &breakdown,
			}
		}

		if conflicts := taken.intersect(req.Seats); len(conflicts) > 0 {
			return nil, seatConflict(conflicts, remaining(trip.TotalSeats, newSeatSet(taken.sorted(), req.Seats)))
		}

		hold := activeHoldOf(trip, requesterID, now)
		if hold == nil || !hold.Covers(req.Seats) {
			return nil, newError(CodeNoReservation, "reserve these seats before booking")
		}

		booking := s.newBooking(requesterID, &req, breakdown, now)
		err = s.Repo.CommitBooking(ctx, booking, trip.Version, retainHolds(trip, requesterID, now))
		if errors.Is(err, reservationRepo.ErrVersionConflict) {
			s.Logger.Debug("Booking commit lost version race, retrying",
				zap.String("tripId", trip.ID), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, storeError("commit booking", err)
		}

		s.Logger.Info("Booking confirmed",
			zap.String("bookingId", booking.ID),
			zap.String("tripId", booking.TripID),
			zap.String("userId", requesterID),
			zap.Ints("seats", booking.Seats),
			zap.Float64("fare", booking.Fare),
		)
		s.emitCreated(ctx, booking)

		return &models.CreateBookingResponse{
			BookingID: booking.ID,
			FinalFare: booking.Fare,
			Breakdown: breakdown,
			Status:    booking.Status,
		}, nil
	}
	return nil, storeError("commit booking", errContention)
}

func (s *DefaultBookingService) newBooking(requesterID string, req *models.CreateBookingRequest, breakdown models.FareBreakdown, now time.Time) *models.Booking {
	b := &models.Booking{
		ID:            uuid.New().String(),
		TripID:        req.TripID,
		UserID:        requesterID,
		Seats:         slices.Clone(req.Seats),
		TravelDate:    req.TravelDate,
		Fare:          breakdown.Total,
		FareBreakdown: breakdown,
		Status:        models.StatusConfirmed,
		Contact:       req.Contact,
		Passengers:    slices.Clone(req.Passengers),
		BoardingPoint: req.BoardingPoint,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Group != nil {
		members := make([]models.GroupMember, len(req.Group.Members))
		for i, m := range req.Group.Members {
			members[i] = models.GroupMember{Email: m.Email, UserID: m.UserID}
		}
		b.Group = &models.GroupInfo{
			LeadUserID: requesterID,
			Size:       len(req.Seats),
			Members:    members,
		}
	}
	b.ChatEnabled = b.IsChatEnabled(now, s.Location)
	return b
}
