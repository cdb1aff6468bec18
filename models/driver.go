package models

import "time"

// DriverEarnings is the running total credited to a driver on each completed booking.
type DriverEarnings struct {
	DriverID       string    `bson:"driver_id" json:"driverId"`
	TotalEarnings  float64   `bson:"total_earnings" json:"totalEarnings"`
	CompletedTrips int       `bson:"completed_trips" json:"completedTrips"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updatedAt"`
}
