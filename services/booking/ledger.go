package booking

import (
	"context"
	"errors"
	"time"

	reservationRepo "busreserve/database/repository/reservation"
	"busreserve/models"

	"go.uber.org/zap"
)

func (s *DefaultBookingService) loadTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	trip, err := s.Repo.GetTrip(ctx, tripID)
	if errors.Is(err, reservationRepo.ErrNotFound) {
		return nil, newError(CodeNotFound, "trip not found")
	}
	if err != nil {
		return nil, storeError("load trip", err)
	}
	return trip, nil
}

// ConfirmedSeats derives the trip's confirmed seats from its non-cancelled bookings on the
// service date. A diverging denormalized cache is rewritten in place; a failed rewrite is only
// logged since the next read heals it again.
func (s *DefaultBookingService) ConfirmedSeats(ctx context.Context, trip *models.Trip) ([]int, error) {
	bookings, err := s.Repo.ListActiveBookings(ctx, trip.ID, trip.ServiceDate(s.Location))
	if err != nil {
		return nil, storeError("list bookings", err)
	}
	set := seatSet{}
	for _, b := range bookings {
		for _, seat := range b.Seats {
			if seat >= 1 && seat <= trip.TotalSeats {
				set[seat] = struct{}{}
			}
		}
	}
	confirmed := set.sorted()

	if !sameSeats(confirmed, trip.ConfirmedSeats) {
		s.Logger.Warn("Confirmed seat cache diverged, healing",
			zap.String("tripId", trip.ID),
			zap.Ints("cached", trip.ConfirmedSeats),
			zap.Ints("derived", confirmed),
		)
		err := s.Repo.SyncConfirmedSeats(ctx, trip.ID, trip.Version, confirmed)
		if err != nil {
			s.Logger.Info("Confirmed seat cache heal skipped", zap.String("tripId", trip.ID), zap.Error(err))
		} else {
			trip.ConfirmedSeats = confirmed
		}
	}
	return confirmed, nil
}

// ActiveHolds is the union of seats held at now, leaving out exclude's own hold.
func ActiveHolds(trip *models.Trip, exclude string, now time.Time) []int {
	set := seatSet{}
	for _, h := range trip.Holds {
		if h.UserID == exclude || !h.Active(now) {
			continue
		}
		for _, seat := range h.Seats {
			set[seat] = struct{}{}
		}
	}
	return set.sorted()
}

// takenSeats is every seat requester may not claim: confirmed seats and other requesters' live holds.
func (s *DefaultBookingService) takenSeats(ctx context.Context, trip *models.Trip, requester string, now time.Time) (seatSet, []int, error) {
	confirmed, err := s.ConfirmedSeats(ctx, trip)
	if err != nil {
		return nil, nil, err
	}
	return newSeatSet(confirmed, ActiveHolds(trip, requester, now)), confirmed, nil
}

// Availability reports the seat map of a trip as of now.
func (s *DefaultBookingService) Availability(ctx context.Context, tripID string) (*models.SeatAvailability, error) {
	trip, err := s.loadTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	confirmed, err := s.ConfirmedSeats(ctx, trip)
	if err != nil {
		return nil, err
	}
	held := ActiveHolds(trip, "", now)
	return &models.SeatAvailability{
		TripID:         trip.ID,
		TotalSeats:     trip.TotalSeats,
		ConfirmedSeats: confirmed,
		HeldSeats:      held,
		AvailableSeats: remaining(trip.TotalSeats, newSeatSet(confirmed, held)),
	}, nil
}

// activeHoldOf returns requester's live hold on the trip, if any.
func activeHoldOf(trip *models.Trip, requester string, now time.Time) *models.Hold {
	for i := range trip.Holds {
		h := trip.Holds[i]
		if h.UserID == requester && h.Active(now) {
			return &h
		}
	}
	return nil
}

// retainHolds keeps the live holds of everyone but requester. Expired holds are dropped here,
// so every hold write also garbage-collects.
func retainHolds(trip *models.Trip, requester string, now time.Time) []models.Hold {
	kept := make([]models.Hold, 0, len(trip.Holds)+1)
	for _, h := range trip.Holds {
		if h.UserID == requester || !h.Active(now) {
			continue
		}
		kept = append(kept, h)
	}
	return kept
}
