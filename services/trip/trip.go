package trip

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	reservationRepo "busreserve/database/repository/reservation"
	"busreserve/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TripService is the administrative surface over scheduled runs.
type TripService interface {
	CreateTrip(ctx context.Context, req models.CreateTripRequest) (*models.Trip, error)
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)
	// DeleteTrip removes the run and every booking on it, returning how many bookings went with it.
	DeleteTrip(ctx context.Context, tripID string) (int64, error)
}

type DefaultTripService struct {
	Repo   reservationRepo.ReservationRepository
	Logger *zap.Logger
	Now    func() time.Time
}

func NewDefaultTripService(repo reservationRepo.ReservationRepository, logger *zap.Logger) *DefaultTripService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultTripService{Repo: repo, Logger: logger, Now: time.Now}
}

func (s *DefaultTripService) CreateTrip(ctx context.Context, req models.CreateTripRequest) (*models.Trip, error) {
	if !models.ValidSeatCatalog(req.TotalSeats) {
		return nil, InvalidTripError{Reason: fmt.Sprintf("total seats must be %d or %d", models.SeatCatalog45, models.SeatCatalog54)}
	}
	if req.BaseFare <= 0 {
		return nil, InvalidTripError{Reason: "base fare must be positive"}
	}
	if !req.ArrivalTime.After(req.DepartureTime) {
		return nil, InvalidTripError{Reason: "arrival must be after departure"}
	}
	if strings.TrimSpace(req.DriverID) == "" {
		return nil, InvalidTripError{Reason: "driver is required"}
	}

	points := make([]string, 0, len(req.BoardingPoints))
	for _, p := range req.BoardingPoints {
		if p = strings.TrimSpace(p); p != "" {
			points = append(points, p)
		}
	}

	trip := &models.Trip{
		ID:             uuid.New().String(),
		BusNumber:      req.BusNumber,
		Origin:         req.Origin,
		Destination:    req.Destination,
		DriverID:       req.DriverID,
		TotalSeats:     req.TotalSeats,
		BaseFare:       req.BaseFare,
		DepartureTime:  req.DepartureTime,
		ArrivalTime:    req.ArrivalTime,
		BoardingPoints: points,
		ConfirmedSeats: []int{},
		Holds:          []models.Hold{},
		CreatedAt:      s.Now(),
	}
	if err := s.Repo.CreateTrip(ctx, trip); err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}
	s.Logger.Info("Trip scheduled",
		zap.String("tripId", trip.ID),
		zap.String("driverId", trip.DriverID),
		zap.Int("totalSeats", trip.TotalSeats),
		zap.Time("departure", trip.DepartureTime),
	)
	return trip, nil
}

func (s *DefaultTripService) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	trip, err := s.Repo.GetTrip(ctx, tripID)
	if errors.Is(err, reservationRepo.ErrNotFound) {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load trip: %w", err)
	}
	return trip, nil
}

func (s *DefaultTripService) DeleteTrip(ctx context.Context, tripID string) (int64, error) {
	removed, err := s.Repo.DeleteTrip(ctx, tripID)
	if errors.Is(err, reservationRepo.ErrNotFound) {
		return 0, ErrTripNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to delete trip: %w", err)
	}
	s.Logger.Warn("Trip deleted with its bookings", zap.String("tripId", tripID), zap.Int64("bookingsRemoved", removed))
	return removed, nil
}
