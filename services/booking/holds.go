package booking

import (
	"context"
	"errors"
	"slices"

	reservationRepo "busreserve/database/repository/reservation"
	"busreserve/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errContention = errors.New("trip kept changing across retries")

// AcquireHold places a fresh hold for requester, replacing any hold they already had on the trip.
// The hold list is swapped with a version-checked write, so two requesters racing for the same
// seat cannot both win: the loser re-reads, sees the winner's hold and gets SeatConflict.
func (s *DefaultBookingService) AcquireHold(ctx context.Context, tripID, requesterID string, seats []int) (*models.Hold, error) {
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		trip, err := s.loadTrip(ctx, tripID)
		if err != nil {
			return nil, err
		}
		if verr := checkSeats(seats, trip.TotalSeats); verr != nil {
			return nil, verr
		}

		now := s.now()
		taken, _, err := s.takenSeats(ctx, trip, requesterID, now)
		if err != nil {
			return nil, err
		}
		if conflicts := taken.intersect(seats); len(conflicts) > 0 {
			return nil, seatConflict(conflicts, remaining(trip.TotalSeats, newSeatSet(taken.sorted(), seats)))
		}

		hold := models.Hold{
			ID:        uuid.New().String(),
			UserID:    requesterID,
			Seats:     slices.Clone(seats),
			CreatedAt: now,
			ExpiresAt: now.Add(s.HoldTTL),
		}
		holds := append(retainHolds(trip, requesterID, now), hold)

		err = s.Repo.ReplaceHolds(ctx, trip.ID, trip.Version, holds)
		if errors.Is(err, reservationRepo.ErrVersionConflict) {
			s.Logger.Debug("Hold write lost version race, retrying",
				zap.String("tripId", tripID), zap.Int("attempt", attempt))
			continue
		}
		if errors.Is(err, reservationRepo.ErrNotFound) {
			return nil, newError(CodeNotFound, "trip not found")
		}
		if err != nil {
			return nil, storeError("write hold", err)
		}

		s.Logger.Info("Seats held",
			zap.String("tripId", tripID),
			zap.String("userId", requesterID),
			zap.Ints("seats", hold.Seats),
			zap.Time("expiresAt", hold.ExpiresAt),
		)
		return &hold, nil
	}
	return nil, storeError("write hold", errContention)
}

// ReleaseHold drops requester's hold on the trip.
func (s *DefaultBookingService) ReleaseHold(ctx context.Context, tripID, requesterID string) error {
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		trip, err := s.loadTrip(ctx, tripID)
		if err != nil {
			return err
		}
		now := s.now()
		if activeHoldOf(trip, requesterID, now) == nil {
			return newError(CodeNoReservation, "no active hold on this trip")
		}

		err = s.Repo.ReplaceHolds(ctx, trip.ID, trip.Version, retainHolds(trip, requesterID, now))
		if errors.Is(err, reservationRepo.ErrVersionConflict) {
			continue
		}
		if errors.Is(err, reservationRepo.ErrNotFound) {
			return newError(CodeNotFound, "trip not found")
		}
		if err != nil {
			return storeError("release hold", err)
		}
		return nil
	}
	return storeError("release hold", errContention)
}
