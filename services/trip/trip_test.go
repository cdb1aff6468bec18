package trip

import (
	"context"
	"testing"
	"time"

	reservationRepo "busreserve/database/repository/reservation"
	"busreserve/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() models.CreateTripRequest {
	dep := time.Date(2026, 6, 1, 18, 30, 0, 0, time.UTC)
	return models.CreateTripRequest{
		BusNumber:      "KBX 101A",
		Origin:         "Nairobi",
		Destination:    "Mombasa",
		DriverID:       "driver-1",
		TotalSeats:     54,
		BaseFare:       1500,
		DepartureTime:  dep,
		ArrivalTime:    dep.Add(8 * time.Hour),
		BoardingPoints: []string{" Central ", ""},
	}
}

func TestCreateTrip(t *testing.T) {
	repo := reservationRepo.NewMemoryReservationRepo()
	svc := NewDefaultTripService(repo, nil)

	trip, err := svc.CreateTrip(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, trip.ID)
	assert.Equal(t, []string{"Central"}, trip.BoardingPoints)
	assert.Equal(t, int64(0), trip.Version)

	stored, err := svc.GetTrip(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, "KBX 101A", stored.BusNumber)
}

func TestCreateTripValidation(t *testing.T) {
	svc := NewDefaultTripService(reservationRepo.NewMemoryReservationRepo(), nil)

	mutations := map[string]func(*models.CreateTripRequest){
		"seat catalog":  func(r *models.CreateTripRequest) { r.TotalSeats = 50 },
		"base fare":     func(r *models.CreateTripRequest) { r.BaseFare = 0 },
		"arrival order": func(r *models.CreateTripRequest) { r.ArrivalTime = r.DepartureTime },
		"driver":        func(r *models.CreateTripRequest) { r.DriverID = " " },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			req := validRequest()
			mutate(&req)
			_, err := svc.CreateTrip(context.Background(), req)
			var invalid InvalidTripError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestDeleteTripCascadesBookings(t *testing.T) {
	ctx := context.Background()
	repo := reservationRepo.NewMemoryReservationRepo()
	svc := NewDefaultTripService(repo, nil)

	trip, err := svc.CreateTrip(ctx, validRequest())
	require.NoError(t, err)
	require.NoError(t, repo.CommitBooking(ctx, &models.Booking{ID: "b1", TripID: trip.ID, Seats: []int{1}}, 0, nil))

	removed, err := svc.DeleteTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = svc.DeleteTrip(ctx, trip.ID)
	assert.ErrorIs(t, err, ErrTripNotFound)
	_, err = svc.GetTrip(ctx, trip.ID)
	assert.ErrorIs(t, err, ErrTripNotFound)
}
