package fare

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eveningTrip(confirmed int) Snapshot {
	return Snapshot{
		TotalSeats:     54,
		ConfirmedCount: confirmed,
		Departure:      time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC),
	}
}

func TestComputeReferenceExample(t *testing.T) {
	calc := NewCalculator(time.UTC)
	travel := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	q := calc.Compute(Input{
		BaseFare:   500,
		Seats:      []int{1, 2},
		Snapshot:   eveningTrip(0),
		TravelDate: travel,
		At:         travel.Add(-10 * time.Hour),
	})

	assert.Equal(t, 1.0, q.DemandMultiplier)
	assert.Equal(t, 1.15, q.TimeMultiplier)
	assert.Equal(t, 1.1, q.UrgencyMultiplier)
	assert.Equal(t, 1.0, q.AvailabilityMultiplier)
	assert.Equal(t, 633.0, q.PerSeatDynamicFare)
	assert.Equal(t, []int{1, 2}, q.WindowSeats)
	assert.Equal(t, 200.0, q.WindowSeatSurcharge)
	assert.Equal(t, 0.0, q.GroupDiscountRate)
	assert.Equal(t, 1466.0, q.Total)
}

func TestComputeIsDeterministic(t *testing.T) {
	calc := NewCalculator(time.UTC)
	in := Input{
		BaseFare:   742.5,
		Seats:      []int{3, 17, 45, 50},
		Snapshot:   eveningTrip(33),
		TravelDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		At:         time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC),
	}

	first := calc.Compute(in)
	for i := 0; i < 50; i++ {
		require.Equal(t, first, calc.Compute(in))
	}
}

func TestComputeGroupDiscountAndScarcity(t *testing.T) {
	calc := NewCalculator(time.UTC)
	travel := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	// 45 of 54 confirmed: occupancy 83%, availability 16.7%.
	q := calc.Compute(Input{
		BaseFare:   400,
		Seats:      []int{20, 21, 30, 31},
		Snapshot:   Snapshot{TotalSeats: 54, ConfirmedCount: 45, Departure: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
		TravelDate: travel,
		At:         travel.Add(-72 * time.Hour),
	})

	assert.Equal(t, 1.2, q.DemandMultiplier)
	assert.Equal(t, 1.0, q.TimeMultiplier)
	assert.Equal(t, 1.0, q.UrgencyMultiplier)
	assert.Equal(t, 1.25, q.AvailabilityMultiplier)
	assert.Equal(t, 600.0, q.PerSeatDynamicFare)
	assert.Empty(t, q.WindowSeats)
	assert.Equal(t, GroupDiscountRate, q.GroupDiscountRate)
	assert.Equal(t, 2280.0, q.Total)
	assert.Equal(t, 120.0, q.GroupDiscountAmount)
}

func TestMultiplierBands(t *testing.T) {
	assert.Equal(t, 1.0, DemandMultiplier(0.5))
	assert.Equal(t, 1.1, DemandMultiplier(0.51))
	assert.Equal(t, 1.1, DemandMultiplier(0.7))
	assert.Equal(t, 1.2, DemandMultiplier(0.71))

	assert.Equal(t, 1.0, TimeMultiplier(16))
	assert.Equal(t, 1.15, TimeMultiplier(17))
	assert.Equal(t, 1.15, TimeMultiplier(22))
	assert.Equal(t, 1.0, TimeMultiplier(23))

	assert.Equal(t, 1.1, UrgencyMultiplier(23*time.Hour))
	assert.Equal(t, 1.0, UrgencyMultiplier(24*time.Hour))
	assert.Equal(t, 1.1, UrgencyMultiplier(-2*time.Hour))

	assert.Equal(t, 1.25, AvailabilityMultiplier(0.19))
	assert.Equal(t, 1.15, AvailabilityMultiplier(0.2))
	assert.Equal(t, 1.15, AvailabilityMultiplier(0.39))
	assert.Equal(t, 1.0, AvailabilityMultiplier(0.4))
}

func TestWindowSeats(t *testing.T) {
	assert.Len(t, WindowSeats(54), 21)
	assert.Equal(t, []int{1, 11, 12, 22, 23, 24, 34, 35, 45}, WindowSeats(45))
	assert.Nil(t, WindowSeats(30))

	assert.Equal(t, []int{11, 45}, SelectedWindowSeats([]int{45, 20, 11}, 54))
	assert.Equal(t, []int{12}, SelectedWindowSeats([]int{12, 13}, 45))
}

func TestWithinTolerance(t *testing.T) {
	assert.True(t, WithinTolerance(1466, 1466))
	assert.True(t, WithinTolerance(1465, 1466))
	assert.True(t, WithinTolerance(1467, 1466))
	assert.False(t, WithinTolerance(1464.5, 1466))
}
