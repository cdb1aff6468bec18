package reservationRepo

import (
	"context"
	"errors"
	"time"

	"busreserve/models"
)

var (
	// ErrNotFound is returned when a trip or booking does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrVersionConflict means the trip changed since it was read; the caller re-reads and retries.
	ErrVersionConflict = errors.New("trip version mismatch")
	// ErrStatusConflict means the booking was not in the status the transition requires.
	ErrStatusConflict = errors.New("booking status precondition failed")
	// ErrMemberNotFound means the group has no member with the given email.
	ErrMemberNotFound = errors.New("group member not found")
)

// ReservationRepository is the transactional store behind the seat ledger, holds and bookings.
// Every write that changes which seats are taken bumps the trip version, so a version-checked
// write serializes all seat-state changes of one trip without blocking other trips.
type ReservationRepository interface {
	CreateTrip(ctx context.Context, trip *models.Trip) error
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)
	// DeleteTrip removes the trip and cascades to its bookings, returning the bookings removed.
	DeleteTrip(ctx context.Context, tripID string) (int64, error)

	// ReplaceHolds swaps the trip's hold list if the trip is still at expectedVersion.
	ReplaceHolds(ctx context.Context, tripID string, expectedVersion int64, holds []models.Hold) error
	// SyncConfirmedSeats rewrites the denormalized confirmed-seat cache without bumping the version.
	SyncConfirmedSeats(ctx context.Context, tripID string, expectedVersion int64, seats []int) error
	// PurgeExpiredHolds drops holds that expired at or before now across all trips.
	PurgeExpiredHolds(ctx context.Context, now time.Time) (int64, error)

	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error)
	// ListActiveBookings returns non-cancelled bookings of a trip for one travel date.
	ListActiveBookings(ctx context.Context, tripID, travelDate string) ([]models.Booking, error)

	// CommitBooking atomically inserts the booking, replaces the trip holds, adds the booking's
	// seats to the confirmed cache and bumps the version, conditioned on expectedVersion.
	CommitBooking(ctx context.Context, booking *models.Booking, expectedVersion int64, holds []models.Hold) error
	// CancelBooking atomically moves a non-terminal booking to cancelled and releases its seats.
	CancelBooking(ctx context.Context, booking *models.Booking, reason string, at time.Time) error
	// CompleteBooking atomically moves a confirmed booking to completed and credits the driver.
	CompleteBooking(ctx context.Context, bookingID, driverID string, completion models.Completion) error
	SetDelayNotice(ctx context.Context, bookingID, notice string, at time.Time) error
	ConfirmGroupMember(ctx context.Context, bookingID, email string) error
	GetDriverEarnings(ctx context.Context, driverID string) (float64, error)
}
