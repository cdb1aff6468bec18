package models

import (
	"slices"
	"time"
)

// Seat catalogues a bus can be configured with.
const (
	SeatCatalog45 = 45
	SeatCatalog54 = 54
)

// ValidSeatCatalog reports whether n is one of the supported bus layouts.
func ValidSeatCatalog(n int) bool {
	return n == SeatCatalog45 || n == SeatCatalog54
}

// Trip is one scheduled bus run. Holds and ConfirmedSeats are embedded in the trip document
// and every seat-affecting write bumps Version, which is the compare-and-swap token.
type Trip struct {
	ID             string    `bson:"id" json:"id"`
	BusNumber      string    `bson:"bus_number,omitempty" json:"busNumber,omitempty"`
	Origin         string    `bson:"origin,omitempty" json:"origin,omitempty"`
	Destination    string    `bson:"destination,omitempty" json:"destination,omitempty"`
	DriverID       string    `bson:"driver_id" json:"driverId"`
	TotalSeats     int       `bson:"total_seats" json:"totalSeats"`
	BaseFare       float64   `bson:"base_fare" json:"baseFare"`
	DepartureTime  time.Time `bson:"departure_time" json:"departureTime"`
	ArrivalTime    time.Time `bson:"arrival_time" json:"arrivalTime"`
	BoardingPoints []string  `bson:"boarding_points,omitempty" json:"boardingPoints,omitempty"`
	ConfirmedSeats []int     `bson:"confirmed_seats" json:"confirmedSeats"` // denormalized cache
	Holds          []Hold    `bson:"holds" json:"-"`
	Version        int64     `bson:"version" json:"version"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
}

// ServiceDate is the calendar date of the run in loc.
func (t *Trip) ServiceDate(loc *time.Location) string {
	return t.DepartureTime.In(loc).Format("2006-01-02")
}

// HasBoardingPoint reports whether point is configured. Trips without boarding points accept any.
func (t *Trip) HasBoardingPoint(point string) bool {
	if len(t.BoardingPoints) == 0 {
		return true
	}
	return slices.Contains(t.BoardingPoints, point)
}

// CreateTripRequest is the admin payload for scheduling a run.
type CreateTripRequest struct {
	BusNumber      string    `json:"busNumber"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DriverID       string    `json:"driverId" binding:"required"`
	TotalSeats     int       `json:"totalSeats" binding:"required"`
	BaseFare       float64   `json:"baseFare" binding:"required,gt=0"`
	DepartureTime  time.Time `json:"departureTime" binding:"required"`
	ArrivalTime    time.Time `json:"arrivalTime" binding:"required"`
	BoardingPoints []string  `json:"boardingPoints"`
}
