package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"busreserve/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireHoldConcurrentOverlapExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	const attempts = 24

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   []string
		conflicts int
		others    []error
	)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			<-start
			_, err := f.svc.AcquireHold(context.Background(), testTripID, user, []int{5, 6})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, user)
			case CodeOf(err) == CodeSeatConflict:
				conflicts++
			default:
				others = append(others, err)
			}
		}(fmt.Sprintf("user-%d", i))
	}
	close(start)
	wg.Wait()

	require.Empty(t, others)
	require.Len(t, winners, 1)
	assert.Equal(t, attempts-1, conflicts)

	trip, err := f.repo.GetTrip(context.Background(), testTripID)
	require.NoError(t, err)
	require.Len(t, trip.Holds, 1)
	assert.Equal(t, winners[0], trip.Holds[0].UserID)
}

func TestAcquireHoldSetsLease(t *testing.T) {
	f := newFixture(t)

	hold, err := f.svc.AcquireHold(context.Background(), testTripID, "u1", []int{3, 1})
	require.NoError(t, err)
	assert.NotEmpty(t, hold.ID)
	assert.Equal(t, []int{3, 1}, hold.Seats)
	assert.Equal(t, baseNow, hold.CreatedAt)
	assert.Equal(t, baseNow.Add(10*time.Minute), hold.ExpiresAt)
}

func TestAcquireHoldReplacesRequestersPreviousHold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AcquireHold(ctx, testTripID, "u1", []int{1, 2})
	require.NoError(t, err)
	_, err = f.svc.AcquireHold(ctx, testTripID, "u1", []int{2, 3})
	require.NoError(t, err)

	avail, err := f.svc.Availability(ctx, testTripID)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, avail.HeldSeats)
	assert.Contains(t, avail.AvailableSeats, 1)

	_, err = f.svc.AcquireHold(ctx, testTripID, "u2", []int{1})
	assert.NoError(t, err)
}

func TestAcquireHoldValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string][]int{
		"empty":        {},
		"duplicate":    {4, 4},
		"zero":         {0},
		"out of range": {55},
	}
	for name, seats := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.AcquireHold(ctx, testTripID, "u1", seats)
			requireCode(t, err, CodeValidation)
		})
	}

	_, err := f.svc.AcquireHold(ctx, "missing", "u1", []int{1})
	requireCode(t, err, CodeNotFound)
}

func TestAcquireHoldConflictReportsAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AcquireHold(ctx, testTripID, "u1", []int{1, 2})
	require.NoError(t, err)

	_, err = f.svc.AcquireHold(ctx, testTripID, "u2", []int{2, 3})
	be := requireCode(t, err, CodeSeatConflict)
	assert.Equal(t, []int{2}, be.ConflictingSeats)
	assert.Len(t, be.AvailableSeats, 51)
	assert.NotContains(t, be.AvailableSeats, 1)
	assert.NotContains(t, be.AvailableSeats, 3)
	assert.Equal(t, 4, be.AvailableSeats[0])
}

func TestExpiredHoldIsNotTaken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AcquireHold(ctx, testTripID, "u1", []int{7})
	require.NoError(t, err)

	// Expiry is exclusive: at exactly ExpiresAt the hold no longer protects its seats.
	f.advance(10 * time.Minute)

	avail, err := f.svc.Availability(ctx, testTripID)
	require.NoError(t, err)
	assert.Empty(t, avail.HeldSeats)

	_, err = f.svc.AcquireHold(ctx, testTripID, "u2", []int{7})
	require.NoError(t, err)

	trip, err := f.repo.GetTrip(ctx, testTripID)
	require.NoError(t, err)
	require.Len(t, trip.Holds, 1, "expired hold is dropped on the next write")
	assert.Equal(t, "u2", trip.Holds[0].UserID)
}

func TestReleaseHold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.ReleaseHold(ctx, testTripID, "u1")
	requireCode(t, err, CodeNoReservation)

	_, err = f.svc.AcquireHold(ctx, testTripID, "u1", []int{8})
	require.NoError(t, err)
	require.NoError(t, f.svc.ReleaseHold(ctx, testTripID, "u1"))

	_, err = f.svc.AcquireHold(ctx, testTripID, "u2", []int{8})
	assert.NoError(t, err)
}

func TestConfirmedSeatsSelfHeals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	drifted := &models.Trip{
		ID:             "drifted",
		DriverID:       testDriverID,
		TotalSeats:     45,
		BaseFare:       300,
		DepartureTime:  baseNow.Add(5 * time.Hour),
		ArrivalTime:    baseNow.Add(9 * time.Hour),
		ConfirmedSeats: []int{9, 10},
	}
	require.NoError(t, f.repo.CreateTrip(ctx, drifted))

	avail, err := f.svc.Availability(ctx, "drifted")
	require.NoError(t, err)
	assert.Empty(t, avail.ConfirmedSeats)
	assert.Len(t, avail.AvailableSeats, 45)

	trip, err := f.repo.GetTrip(ctx, "drifted")
	require.NoError(t, err)
	assert.Empty(t, trip.ConfirmedSeats)
	assert.Equal(t, int64(0), trip.Version, "healing the cache does not bump the version")
}
