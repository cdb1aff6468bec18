package reservationRepo

import (
	"context"
	"slices"
	"sync"
	"time"

	"busreserve/models"
)

// MemoryReservationRepo is an in-process ReservationRepository with the same version-check
// semantics as the Mongo implementation. It backs STORE_DRIVER=memory and the service tests.
type MemoryReservationRepo struct {
	mu       sync.Mutex
	trips    map[string]*models.Trip
	bookings map[string]*models.Booking
	earnings map[string]*models.DriverEarnings
}

var _ ReservationRepository = (*MemoryReservationRepo)(nil)

func NewMemoryReservationRepo() *MemoryReservationRepo {
	return &MemoryReservationRepo{
		trips:    make(map[string]*models.Trip),
		bookings: make(map[string]*models.Booking),
		earnings: make(map[string]*models.DriverEarnings),
	}
}

func (m *MemoryReservationRepo) CreateTrip(_ context.Context, trip *models.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.trips[trip.ID]; exists {
		return ErrVersionConflict
	}
	if trip.ConfirmedSeats == nil {
		trip.ConfirmedSeats = []int{}
	}
	if trip.Holds == nil {
		trip.Holds = []models.Hold{}
	}
	m.trips[trip.ID] = cloneTrip(trip)
	return nil
}

func (m *MemoryReservationRepo) GetTrip(_ context.Context, tripID string) (*models.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	trip, ok := m.trips[tripID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneTrip(trip), nil
}

func (m *MemoryReservationRepo) DeleteTrip(_ context.Context, tripID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.trips[tripID]; !ok {
		return 0, ErrNotFound
	}
	delete(m.trips, tripID)
	var removed int64
	for id, b := range m.bookings {
		if b.TripID == tripID {
			delete(m.bookings, id)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryReservationRepo) ReplaceHolds(_ context.Context, tripID string, expectedVersion int64, holds []models.Hold) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	trip, err := m.tripAt(tripID, expectedVersion)
	if err != nil {
		return err
	}
	trip.Holds = cloneHolds(holds)
	trip.Version++
	return nil
}

func (m *MemoryReservationRepo) SyncConfirmedSeats(_ context.Context, tripID string, expectedVersion int64, seats []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	trip, err := m.tripAt(tripID, expectedVersion)
	if err != nil {
		return err
	}
	trip.ConfirmedSeats = cloneSeats(seats)
	return nil
}

func (m *MemoryReservationRepo) PurgeExpiredHolds(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var modified int64
	for _, trip := range m.trips {
		kept := trip.Holds[:0]
		for _, h := range trip.Holds {
			if h.ExpiresAt.After(now) {
				kept = append(kept, h)
			}
		}
		if len(kept) != len(trip.Holds) {
			modified++
		}
		trip.Holds = kept
	}
	return modified, nil
}

func (m *MemoryReservationRepo) GetBooking(_ context.Context, bookingID string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[bookingID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneBooking(b), nil
}

func (m *MemoryReservationRepo) ListBookingsByUser(_ context.Context, userID string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, *cloneBooking(b))
		}
	}
	slices.SortFunc(out, func(a, b models.Booking) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (m *MemoryReservationRepo) ListActiveBookings(_ context.Context, tripID, travelDate string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Booking
	for _, b := range m.bookings {
		if b.TripID == tripID && b.TravelDate == travelDate && b.Status != models.StatusCancelled {
			out = append(out, *cloneBooking(b))
		}
	}
	return out, nil
}

func (m *MemoryReservationRepo) CommitBooking(_ context.Context, booking *models.Booking, expectedVersion int64, holds []models.Hold) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	trip, err := m.tripAt(booking.TripID, expectedVersion)
	if err != nil {
		return err
	}
	if _, exists := m.bookings[booking.ID]; exists {
		return ErrVersionConflict
	}
	m.bookings[booking.ID] = cloneBooking(booking)
	trip.Holds = cloneHolds(holds)
	for _, s := range booking.Seats {
		if !slices.Contains(trip.ConfirmedSeats, s) {
			trip.ConfirmedSeats = append(trip.ConfirmedSeats, s)
		}
	}
	trip.Version++
	return nil
}

func (m *MemoryReservationRepo) CancelBooking(_ context.Context, booking *models.Booking, reason string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.bookings[booking.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status != models.StatusPending && stored.Status != models.StatusConfirmed {
		return ErrStatusConflict
	}
	stored.Status = models.StatusCancelled
	stored.CancellationReason = reason
	cancelledAt := at
	stored.CancelledAt = &cancelledAt
	stored.ChatEnabled = false
	stored.UpdatedAt = at

	if trip, ok := m.trips[stored.TripID]; ok {
		trip.ConfirmedSeats = slices.DeleteFunc(trip.ConfirmedSeats, func(s int) bool {
			return slices.Contains(stored.Seats, s)
		})
		trip.Version++
	}
	return nil
}

func (m *MemoryReservationRepo) CompleteBooking(_ context.Context, bookingID, driverID string, completion models.Completion) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.bookings[bookingID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status != models.StatusConfirmed {
		return ErrStatusConflict
	}
	dep, arr := completion.ActualDeparture, completion.ActualArrival
	stored.Status = models.StatusCompleted
	stored.ActualDeparture = &dep
	stored.ActualArrival = &arr
	stored.DriverEarnings = completion.Earnings
	stored.ChatEnabled = false
	stored.UpdatedAt = completion.CompletedAt

	total, ok := m.earnings[driverID]
	if !ok {
		total = &models.DriverEarnings{DriverID: driverID}
		m.earnings[driverID] = total
	}
	total.TotalEarnings += completion.Earnings
	total.CompletedTrips++
	total.UpdatedAt = completion.CompletedAt
	return nil
}

func (m *MemoryReservationRepo) SetDelayNotice(_ context.Context, bookingID, notice string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.bookings[bookingID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status.Terminal() {
		return ErrStatusConflict
	}
	stored.DelayNotice = notice
	stored.UpdatedAt = at
	return nil
}

func (m *MemoryReservationRepo) ConfirmGroupMember(_ context.Context, bookingID, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.bookings[bookingID]
	if !ok {
		return ErrNotFound
	}
	if stored.Group == nil {
		return ErrMemberNotFound
	}
	for i := range stored.Group.Members {
		if stored.Group.Members[i].Email == email {
			stored.Group.Members[i].IsConfirmed = true
			return nil
		}
	}
	return ErrMemberNotFound
}

func (m *MemoryReservationRepo) GetDriverEarnings(_ context.Context, driverID string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if total, ok := m.earnings[driverID]; ok {
		return total.TotalEarnings, nil
	}
	return 0, nil
}

// tripAt returns the stored trip if it is still at expectedVersion. Callers hold m.mu.
func (m *MemoryReservationRepo) tripAt(tripID string, expectedVersion int64) (*models.Trip, error) {
	trip, ok := m.trips[tripID]
	if !ok {
		return nil, ErrNotFound
	}
	if trip.Version != expectedVersion {
		return nil, ErrVersionConflict
	}
	return trip, nil
}

func cloneSeats(seats []int) []int {
	if seats == nil {
		return []int{}
	}
	return slices.Clone(seats)
}

func cloneHolds(holds []models.Hold) []models.Hold {
	out := make([]models.Hold, len(holds))
	for i, h := range holds {
		h.Seats = cloneSeats(h.Seats)
		out[i] = h
	}
	return out
}

func cloneTrip(t *models.Trip) *models.Trip {
	c := *t
	c.ConfirmedSeats = cloneSeats(t.ConfirmedSeats)
	c.Holds = cloneHolds(t.Holds)
	c.BoardingPoints = slices.Clone(t.BoardingPoints)
	return &c
}

func cloneBooking(b *models.Booking) *models.Booking {
	c := *b
	c.Seats = cloneSeats(b.Seats)
	c.Passengers = slices.Clone(b.Passengers)
	if b.Group != nil {
		g := *b.Group
		g.Members = slices.Clone(b.Group.Members)
		c.Group = &g
	}
	if b.CancelledAt != nil {
		t := *b.CancelledAt
		c.CancelledAt = &t
	}
	if b.ActualDeparture != nil {
		t := *b.ActualDeparture
		c.ActualDeparture = &t
	}
	if b.ActualArrival != nil {
		t := *b.ActualArrival
		c.ActualArrival = &t
	}
	return &c
}
