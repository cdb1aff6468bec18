package models

import "time"

// Hold is a time-limited claim on seats by one requester. A hold stops protecting its seats
// once ExpiresAt is no longer after the current instant; it is removed on the next write.
type Hold struct {
	ID        string    `bson:"id" json:"holdId"`
	UserID    string    `bson:"user_id" json:"userId"`
	Seats     []int     `bson:"seats" json:"seats"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	ExpiresAt time.Time `bson:"expires_at" json:"expiresAt"`
}

// Active reports whether the hold still protects its seats at now.
func (h Hold) Active(now time.Time) bool {
	return h.ExpiresAt.After(now)
}

// Covers reports whether every seat in seats is part of the hold.
func (h Hold) Covers(seats []int) bool {
	held := make(map[int]struct{}, len(h.Seats))
	for _, s := range h.Seats {
		held[s] = struct{}{}
	}
	for _, s := range seats {
		if _, ok := held[s]; !ok {
			return false
		}
	}
	return true
}

// ReserveSeatsRequest is the body of a hold request.
type ReserveSeatsRequest struct {
	Seats []int `json:"seats" binding:"required"`
}

// SeatAvailability is the read view of a trip's seat map.
type SeatAvailability struct {
	TripID         string `json:"tripId"`
	TotalSeats     int    `json:"totalSeats"`
	ConfirmedSeats []int  `json:"confirmedSeats"`
	HeldSeats      []int  `json:"heldSeats"`
	AvailableSeats []int  `json:"availableSeats"`
}
