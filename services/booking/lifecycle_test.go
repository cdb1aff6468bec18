package booking

import (
	"context"
	"testing"
	"time"

	"busreserve/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancelTwiceIsAlreadyTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookingID := f.book(t, "u1", []int{1, 2})

	require.NoError(t, f.svc.Cancel(ctx, bookingID, "u1", "change of plans"))

	avail, err := f.svc.Availability(ctx, testTripID)
	require.NoError(t, err)
	assert.Empty(t, avail.ConfirmedSeats)

	// Another rider takes the released seats.
	f.book(t, "u2", []int{1, 2})

	err = f.svc.Cancel(ctx, bookingID, "u1", "change of plans")
	requireCode(t, err, CodeAlreadyTerminal)

	avail, err = f.svc.Availability(ctx, testTripID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, avail.ConfirmedSeats, "seats are not released twice")
	assert.Len(t, f.events.ofType(models.EventBookingCancelled), 1)

	stored, err := f.repo.GetBooking(ctx, bookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)
	assert.Equal(t, "change of plans", stored.CancellationReason)
	assert.False(t, stored.ChatEnabled)
}

func TestCancelGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookingID := f.book(t, "u1", []int{3})

	requireCode(t, f.svc.Cancel(ctx, bookingID, "u1", "no"), CodeValidation)
	requireCode(t, f.svc.Cancel(ctx, bookingID, "u2", "not mine"), CodeUnauthorized)
	requireCode(t, f.svc.Cancel(ctx, "missing", "u1", "gone away"), CodeNotFound)
}

func TestCompleteLateArrivalEmitsOneDelayAlertBeforeTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookingID := f.book(t, "u1", []int{4})

	var statusAtAlert models.BookingStatus
	f.events.onEvent = func(e models.Event) {
		if e.Type != models.EventDelayAlert {
			return
		}
		b, err := f.repo.GetBooking(ctx, e.BookingID)
		if err == nil {
			statusAtAlert = b.Status
		}
	}

	f.advance(16 * time.Hour)
	scheduledArrival := time.Date(2026, 5, 2, 2, 0, 0, 0, time.UTC)
	err := f.svc.Complete(ctx, bookingID, testDriverID, models.CompleteBookingRequest{
		ActualDeparture: time.Date(2026, 5, 1, 20, 5, 0, 0, time.UTC),
		ActualArrival:   scheduledArrival.Add(45 * time.Minute),
		Earnings:        1200,
	})
	require.NoError(t, err)

	alerts := f.events.ofType(models.EventDelayAlert)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.SeverityHigh, alerts[0].Severity)
	assert.Equal(t, 45, alerts[0].DelayMinutes)
	assert.Equal(t, models.StatusConfirmed, statusAtAlert)

	var alertAt, completedAt int
	for i, e := range f.events.events {
		switch e.Type {
		case models.EventDelayAlert:
			alertAt = i
		case models.EventBookingCompleted:
			completedAt = i
		}
	}
	assert.Less(t, alertAt, completedAt)

	stored, err := f.repo.GetBooking(ctx, bookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	require.NotNil(t, stored.ActualArrival)

	earned, err := f.repo.GetDriverEarnings(ctx, testDriverID)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, earned)
}

func TestCompleteGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookingID := f.book(t, "u1", []int{5})
	onTime := models.CompleteBookingRequest{
		ActualDeparture: time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC),
		ActualArrival:   time.Date(2026, 5, 2, 2, 10, 0, 0, time.UTC),
		Earnings:        900,
	}

	requireCode(t, f.svc.Complete(ctx, bookingID, "driver-2", onTime), CodeUnauthorized)

	negative := onTime
	negative.Earnings = -1
	requireCode(t, f.svc.Complete(ctx, bookingID, testDriverID, negative), CodeValidation)

	require.NoError(t, f.svc.Complete(ctx, bookingID, testDriverID, onTime))
	assert.Empty(t, f.events.ofType(models.EventDelayAlert), "a 10 minute delay raises no alert")
	assert.Len(t, f.events.ofType(models.EventBookingCompleted), 1)

	requireCode(t, f.svc.Complete(ctx, bookingID, testDriverID, onTime), CodeInvalidState)
	requireCode(t, f.svc.Cancel(ctx, bookingID, "u1", "too late now"), CodeAlreadyTerminal)

	cancelled := f.book(t, "u2", []int{6})
	require.NoError(t, f.svc.Cancel(ctx, cancelled, "u2", "illness"))
	requireCode(t, f.svc.Complete(ctx, cancelled, testDriverID, onTime), CodeInvalidState)
}

func TestAnnotateDelay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookingID := f.book(t, "u1", []int{9})

	requireCode(t, f.svc.AnnotateDelay(ctx, bookingID, "driver-2", "traffic"), CodeUnauthorized)
	requireCode(t, f.svc.AnnotateDelay(ctx, bookingID, testDriverID, "  "), CodeValidation)
	require.NoError(t, f.svc.AnnotateDelay(ctx, bookingID, testDriverID, "Traffic at the border, 20 minutes"))

	stored, err := f.repo.GetBooking(ctx, bookingID)
	require.NoError(t, err)
	assert.Equal(t, "Traffic at the border, 20 minutes", stored.DelayNotice)

	require.NoError(t, f.svc.Cancel(ctx, bookingID, "u1", "not travelling"))
	requireCode(t, f.svc.AnnotateDelay(ctx, bookingID, testDriverID, "late"), CodeInvalidState)
}

func TestGetBookingVisibilityAndChatFlag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookingID := f.book(t, "u1", []int{12})

	owner := models.Participant{Kind: models.ParticipantUser, ID: "u1"}
	got, err := f.svc.GetBooking(ctx, bookingID, owner)
	require.NoError(t, err)
	assert.True(t, got.ChatEnabled)

	_, err = f.svc.GetBooking(ctx, bookingID, models.Participant{Kind: models.ParticipantDriver, ID: testDriverID})
	require.NoError(t, err)

	_, err = f.svc.GetBooking(ctx, bookingID, models.Participant{Kind: models.ParticipantUser, ID: "stranger"})
	requireCode(t, err, CodeUnauthorized)

	_, err = f.svc.GetBooking(ctx, bookingID, models.Participant{Kind: models.ParticipantDriver, ID: "driver-2"})
	requireCode(t, err, CodeUnauthorized)

	// The day after travel the flag turns off without any write.
	f.advance(24 * time.Hour)
	got, err = f.svc.GetBooking(ctx, bookingID, owner)
	require.NoError(t, err)
	assert.False(t, got.ChatEnabled)

	list, err := f.svc.ListUserBookings(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].ChatEnabled)

	empty, err := f.svc.ListUserBookings(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
