// Package fare computes dynamic per-trip fares. Everything here is pure: a quote taken at hold
// time and the recomputation at commit time agree whenever they see the same inputs.
package fare

import (
	"math"
	"time"

	"busreserve/models"
)

const (
	WindowSeatSurcharge = 100.0
	GroupDiscountRate   = 0.05
	GroupDiscountSeats  = 4
	// QuoteTolerance is the largest accepted difference between a client quote and the server figure.
	QuoteTolerance = 1.0
)

// Snapshot is the part of a trip the calculator reads.
type Snapshot struct {
	TotalSeats     int
	ConfirmedCount int
	Departure      time.Time
}

// SnapshotOf builds a Snapshot from a trip and its confirmed seat count.
func SnapshotOf(trip *models.Trip, confirmed int) Snapshot {
	return Snapshot{
		TotalSeats:     trip.TotalSeats,
		ConfirmedCount: confirmed,
		Departure:      trip.DepartureTime,
	}
}

type Input struct {
	BaseFare   float64
	Seats      []int
	Snapshot   Snapshot
	TravelDate time.Time
	// At is the instant the quote is evaluated for.
	At time.Time
}

// Calculator evaluates departure hours in Location.
type Calculator struct {
	Location *time.Location
}

func NewCalculator(loc *time.Location) Calculator {
	if loc == nil {
		loc = time.UTC
	}
	return Calculator{Location: loc}
}

// Compute returns the itemized fare for in.
func (c Calculator) Compute(in Input) models.FareBreakdown {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	snap := in.Snapshot
	seatCount := len(in.Seats)

	var occupancy, availability float64
	if snap.TotalSeats > 0 {
		occupancy = float64(snap.ConfirmedCount) / float64(snap.TotalSeats)
		availability = float64(snap.TotalSeats-snap.ConfirmedCount) / float64(snap.TotalSeats)
	}

	demand := DemandMultiplier(occupancy)
	timeOfDay := TimeMultiplier(snap.Departure.In(loc).Hour())
	urgency := UrgencyMultiplier(in.TravelDate.Sub(in.At))
	avail := AvailabilityMultiplier(availability)

	perSeat := math.Round(in.BaseFare * demand * timeOfDay * urgency * avail)
	windows := SelectedWindowSeats(in.Seats, snap.TotalSeats)
	surcharge := WindowSeatSurcharge * float64(len(windows))

	discount := 0.0
	if seatCount >= GroupDiscountSeats {
		discount = GroupDiscountRate
	}

	subtotal := perSeat*float64(seatCount) + surcharge
	total := roundCents(subtotal * (1 - discount))

	return models.FareBreakdown{
		BaseFare:               in.BaseFare,
		SeatCount:              seatCount,
		DemandMultiplier:       demand,
		TimeMultiplier:         timeOfDay,
		UrgencyMultiplier:      urgency,
		AvailabilityMultiplier: avail,
		OccupancyRate:          occupancy,
		AvailabilityRate:       availability,
		PerSeatDynamicFare:     perSeat,
		SeatsSubtotal:          perSeat * float64(seatCount),
		WindowSeats:            windows,
		WindowSeatSurcharge:    surcharge,
		GroupDiscountRate:      discount,
		GroupDiscountAmount:    roundCents(subtotal - total),
		Total:                  total,
	}
}

// WithinTolerance reports whether a quoted total matches the authoritative one.
func WithinTolerance(quoted, authoritative float64) bool {
	return math.Abs(quoted-authoritative) <= QuoteTolerance
}

func DemandMultiplier(occupancy float64) float64 {
	switch {
	case occupancy > 0.7:
		return 1.2
	case occupancy > 0.5:
		return 1.1
	default:
		return 1.0
	}
}

// TimeMultiplier applies the evening surcharge for departures between 17:00 and 22:59.
func TimeMultiplier(departureHour int) float64 {
	if departureHour >= 17 && departureHour <= 22 {
		return 1.15
	}
	return 1.0
}

func UrgencyMultiplier(untilTravel time.Duration) float64 {
	if untilTravel < 24*time.Hour {
		return 1.1
	}
	return 1.0
}

func AvailabilityMultiplier(availability float64) float64 {
	switch {
	case availability < 0.2:
		return 1.25
	case availability < 0.4:
		return 1.15
	default:
		return 1.0
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
