package booking

import (
	"context"
	"time"

	reservationRepo "busreserve/database/repository/reservation"
	"busreserve/models"
	"busreserve/services/fare"
	"busreserve/services/notification"

	"go.uber.org/zap"
)

// maxWriteAttempts bounds the re-read and retry loop after a trip version conflict.
const maxWriteAttempts = 5

// DefaultHoldTTL is the lease a hold grants.
const DefaultHoldTTL = 10 * time.Minute

// BookingService is the seat reservation core: holds, fares and the booking lifecycle.
type BookingService interface {
	AcquireHold(ctx context.Context, tripID, requesterID string, seats []int) (*models.Hold, error)
	ReleaseHold(ctx context.Context, tripID, requesterID string) error
	Availability(ctx context.Context, tripID string) (*models.SeatAvailability, error)
	Quote(ctx context.Context, tripID string, seats []int, travelDate string) (*models.FareBreakdown, error)

	Create(ctx context.Context, requesterID string, req models.CreateBookingRequest) (*models.CreateBookingResponse, error)
	Cancel(ctx context.Context, bookingID, requesterID, reason string) error
	Complete(ctx context.Context, bookingID, driverID string, req models.CompleteBookingRequest) error
	AnnotateDelay(ctx context.Context, bookingID, driverID, notice string) error
	ConfirmGroupMember(ctx context.Context, bookingID, email string) error

	GetBooking(ctx context.Context, bookingID string, viewer models.Participant) (*models.Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error)
}

// DefaultBookingService implements BookingService on a ReservationRepository.
type DefaultBookingService struct {
	Repo       reservationRepo.ReservationRepository
	Dispatcher notification.Dispatcher
	Fares      fare.Calculator
	Logger     *zap.Logger
	HoldTTL    time.Duration
	Location   *time.Location
	// Now is the clock; tests replace it.
	Now func() time.Time
}

func NewDefaultBookingService(
	repo reservationRepo.ReservationRepository,
	dispatcher notification.Dispatcher,
	loc *time.Location,
	holdTTL time.Duration,
	logger *zap.Logger,
) *DefaultBookingService {
	if loc == nil {
		loc = time.UTC
	}
	if holdTTL <= 0 {
		holdTTL = DefaultHoldTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultBookingService{
		Repo:       repo,
		Dispatcher: dispatcher,
		Fares:      fare.NewCalculator(loc),
		Logger:     logger,
		HoldTTL:    holdTTL,
		Location:   loc,
		Now:        time.Now,
	}
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

var _ BookingService = (*DefaultBookingService)(nil)
