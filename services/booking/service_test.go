package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	reservationRepo "busreserve/database/repository/reservation"
	"busreserve/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testTripID   = "trip-54"
	testDriverID = "driver-1"
	serviceDate  = "2026-05-01"
)

var baseNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

type recordingDispatcher struct {
	mu      sync.Mutex
	events  []models.Event
	err     error
	onEvent func(models.Event)
}

func (r *recordingDispatcher) Dispatch(_ context.Context, event models.Event) error {
	if r.onEvent != nil {
		r.onEvent(event)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recordingDispatcher) ofType(t models.EventType) []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	svc    *DefaultBookingService
	repo   *reservationRepo.MemoryReservationRepo
	events *recordingDispatcher
	clock  time.Time
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := reservationRepo.NewMemoryReservationRepo()
	trip := &models.Trip{
		ID:             testTripID,
		DriverID:       testDriverID,
		TotalSeats:     54,
		BaseFare:       500,
		DepartureTime:  time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC),
		ArrivalTime:    time.Date(2026, 5, 2, 2, 0, 0, 0, time.UTC),
		BoardingPoints: []string{"Central", "Airport"},
	}
	require.NoError(t, repo.CreateTrip(context.Background(), trip))

	f := &fixture{repo: repo, events: &recordingDispatcher{}, clock: baseNow}
	f.svc = NewDefaultBookingService(repo, f.events, time.UTC, 10*time.Minute, zap.NewNop())
	f.svc.Now = func() time.Time { return f.clock }
	return f
}

func passengers(n int) []models.Passenger {
	out := make([]models.Passenger, n)
	for i := range out {
		out[i] = models.Passenger{Name: "Rider", Age: 30, Gender: "female"}
	}
	return out
}

func bookingRequest(seats []int, quoted float64) models.CreateBookingRequest {
	return models.CreateBookingRequest{
		TripID:     testTripID,
		Seats:      seats,
		TravelDate: serviceDate,
		QuotedFare: quoted,
		Contact:    models.Contact{Email: "rider@example.com", Phone: "+254700000000", State: "Nairobi"},
		Passengers: passengers(len(seats)),
	}
}

// book holds and commits seats for user at the reference fare for two window seats.
func (f *fixture) book(t *testing.T, user string, seats []int) string {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.AcquireHold(ctx, testTripID, user, seats)
	require.NoError(t, err)
	quote, err := f.svc.Quote(ctx, testTripID, seats, serviceDate)
	require.NoError(t, err)
	resp, err := f.svc.Create(ctx, user, bookingRequest(seats, quote.Total))
	require.NoError(t, err)
	return resp.BookingID
}

func requireCode(t *testing.T, err error, code ErrorCode) *Error {
	t.Helper()
	require.Error(t, err)
	var be *Error
	require.ErrorAs(t, err, &be)
	require.Equal(t, code, be.Code, be.Message)
	return be
}
