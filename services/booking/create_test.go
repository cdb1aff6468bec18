package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"busreserve/models"
	"busreserve/services/fare"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBookingReferenceFare(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AcquireHold(ctx, testTripID, "u1", []int{1, 2})
	require.NoError(t, err)

	resp, err := f.svc.Create(ctx, "u1", bookingRequest([]int{1, 2}, 1466))
	require.NoError(t, err)
	assert.Equal(t, 1466.0, resp.FinalFare)
	assert.Equal(t, 633.0, resp.Breakdown.PerSeatDynamicFare)
	assert.Equal(t, 200.0, resp.Breakdown.WindowSeatSurcharge)
	assert.Equal(t, models.StatusConfirmed, resp.Status)

	avail, err := f.svc.Availability(ctx, testTripID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, avail.ConfirmedSeats)
	assert.Empty(t, avail.HeldSeats, "the authorizing hold is consumed by the commit")

	created := f.events.ofType(models.EventBookingCreated)
	require.Len(t, created, 1)
	assert.Equal(t, resp.BookingID, created[0].BookingID)
	assert.Equal(t, []int{1, 2}, created[0].Seats)
	assert.True(t, created[0].ChatEnabled)
	assert.Empty(t, f.events.ofType(models.EventGroupInvite))
}

func TestCreateWithoutHoldFailsNoReservation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), "u1", bookingRequest([]int{1, 2}, 1466))
	requireCode(t, err, CodeNoReservation)
	assert.Empty(t, f.events.ofType(models.EventBookingCreated))
}

func TestCreateRequiresHoldCoveringSeats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AcquireHold(ctx, testTripID, "u1", []int{1})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, "u1", bookingRequest([]int{1, 2}, 1466))
	requireCode(t, err, CodeNoReservation)
}

func TestCreateAfterHoldExpiredAndSeatsRetaken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AcquireHold(ctx, testTripID, "u1", []int{1, 2})
	require.NoError(t, err)
	f.advance(11 * time.Minute)
	_, err = f.svc.AcquireHold(ctx, testTripID, "u2", []int{2})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, "u1", bookingRequest([]int{1, 2}, 1466))
	be := requireCode(t, err, CodeSeatConflict)
	assert.Equal(t, []int{2}, be.ConflictingSeats)
}

func TestCreateFareMismatchReturnsAuthoritativeFare(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AcquireHold(ctx, testTripID, "u1", []int{1, 2})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, "u1", bookingRequest([]int{1, 2}, 1400))
	be := requireCode(t, err, CodeValidation)
	require.NotNil(t, be.AuthoritativeFare)
	assert.Equal(t, 1466.0, be.AuthoritativeFare.Total)

	// Within one currency unit is accepted.
	_, err = f.svc.Create(ctx, "u1", bookingRequest([]int{1, 2}, 1465.5))
	assert.NoError(t, err)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.AcquireHold(ctx, testTripID, "u1", []int{1, 2})
	require.NoError(t, err)

	t.Run("contact email", func(t *testing.T) {
		req := bookingRequest([]int{1, 2}, 1466)
		req.Contact.Email = "not-an-email"
		be := requireCode(t, createErr(f, req), CodeValidation)
		assert.Equal(t, "email", be.Fields["contact.email"])
	})
	t.Run("passenger gender", func(t *testing.T) {
		req := bookingRequest([]int{1, 2}, 1466)
		req.Passengers[0].Gender = "unknown"
		be := requireCode(t, createErr(f, req), CodeValidation)
		assert.Equal(t, "oneof", be.Fields["passengers[0].gender"])
	})
	t.Run("passenger age", func(t *testing.T) {
		req := bookingRequest([]int{1, 2}, 1466)
		req.Passengers[1].Age = 0
		requireCode(t, createErr(f, req), CodeValidation)
	})
	t.Run("passenger count", func(t *testing.T) {
		req := bookingRequest([]int{1, 2}, 1466)
		req.Passengers = req.Passengers[:1]
		requireCode(t, createErr(f, req), CodeValidation)
	})
	t.Run("group size", func(t *testing.T) {
		req := bookingRequest([]int{1, 2}, 1466)
		req.Group = &models.GroupRequest{}
		requireCode(t, createErr(f, req), CodeValidation)
	})
	t.Run("group member identity", func(t *testing.T) {
		req := bookingRequest([]int{1, 2}, 1466)
		req.Group = &models.GroupRequest{Members: []models.GroupMember{{}}}
		requireCode(t, createErr(f, req), CodeValidation)
	})
	t.Run("travel date", func(t *testing.T) {
		req := bookingRequest([]int{1, 2}, 1466)
		req.TravelDate = "2026-05-02"
		requireCode(t, createErr(f, req), CodeValidation)
	})
	t.Run("boarding point", func(t *testing.T) {
		req := bookingRequest([]int{1, 2}, 1466)
		req.BoardingPoint = "Nowhere"
		requireCode(t, createErr(f, req), CodeValidation)
	})

	trip, err := f.repo.GetTrip(ctx, testTripID)
	require.NoError(t, err)
	assert.Empty(t, trip.ConfirmedSeats)
}

func TestCreateRejectsDepartedTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.AcquireHold(ctx, testTripID, "u1", []int{1, 2})
	require.NoError(t, err)

	f.advance(10 * time.Hour)
	_, err = f.svc.Create(ctx, "u1", bookingRequest([]int{1, 2}, 1466))
	requireCode(t, err, CodeValidation)
}

func TestCreateSurvivesDispatchFailure(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker unavailable")
	ctx := context.Background()

	_, err := f.svc.AcquireHold(ctx, testTripID, "u1", []int{1, 2})
	require.NoError(t, err)
	resp, err := f.svc.Create(ctx, "u1", bookingRequest([]int{1, 2}, 1466))
	require.NoError(t, err)

	stored, err := f.repo.GetBooking(ctx, resp.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, stored.Status)
}

func TestGroupBookingInvitesAndConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seats := []int{20, 21, 22, 23}

	_, err := f.svc.AcquireHold(ctx, testTripID, "lead", seats)
	require.NoError(t, err)
	quote, err := f.svc.Quote(ctx, testTripID, seats, serviceDate)
	require.NoError(t, err)
	assert.Equal(t, fare.GroupDiscountRate, quote.GroupDiscountRate)
	assert.Empty(t, quote.WindowSeats)
	assert.Equal(t, 2405.4, quote.Total)

	req := bookingRequest(seats, quote.Total)
	req.Group = &models.GroupRequest{Members: []models.GroupMember{
		{Email: "Ann@Example.com"},
		{Email: "bob@example.com"},
		{UserID: "u-carol"},
	}}
	resp, err := f.svc.Create(ctx, "lead", req)
	require.NoError(t, err)

	invites := f.events.ofType(models.EventGroupInvite)
	require.Len(t, invites, 3)
	assert.Equal(t, "ann@example.com", invites[0].MemberEmail)
	assert.Equal(t, "u-carol", invites[2].MemberUserID)

	require.NoError(t, f.svc.ConfirmGroupMember(ctx, resp.BookingID, " ANN@example.com "))
	requireCode(t, f.svc.ConfirmGroupMember(ctx, resp.BookingID, "dave@example.com"), CodeMemberNotFound)
	requireCode(t, f.svc.ConfirmGroupMember(ctx, "missing", "ann@example.com"), CodeNotFound)

	stored, err := f.repo.GetBooking(ctx, resp.BookingID)
	require.NoError(t, err)
	require.NotNil(t, stored.Group)
	assert.Equal(t, "lead", stored.Group.LeadUserID)
	assert.Equal(t, 4, stored.Group.Size)
	assert.True(t, stored.Group.Members[0].IsConfirmed)
	assert.False(t, stored.Group.Members[1].IsConfirmed)

	// A group member identified by user id can read the booking.
	got, err := f.svc.GetBooking(ctx, resp.BookingID, models.Participant{Kind: models.ParticipantUser, ID: "u-carol"})
	require.NoError(t, err)
	assert.Equal(t, resp.BookingID, got.ID)
}

func createErr(f *fixture, req models.CreateBookingRequest) error {
	_, err := f.svc.Create(context.Background(), "u1", req)
	return err
}
