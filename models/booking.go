package models

import "time"

type BookingStatus string

const (
	// StatusPending is a schema slot for a future two-step confirmation flow; nothing creates it today.
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// Terminal reports whether no further seat or fare mutation is permitted.
func (s BookingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Contact struct {
	Email string `bson:"email" json:"email" validate:"required,email"`
	Phone string `bson:"phone" json:"phone" validate:"required"`
	State string `bson:"state" json:"state" validate:"required"`
}

type Passenger struct {
	Name   string `bson:"name" json:"name" validate:"required"`
	Age    int    `bson:"age" json:"age" validate:"gte=1"`
	Gender string `bson:"gender" json:"gender" validate:"required,oneof=male female other"`
}

// GroupMember is invited by email or by identity reference.
type GroupMember struct {
	Email       string `bson:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
	UserID      string `bson:"user_id,omitempty" json:"userId,omitempty"`
	IsConfirmed bool   `bson:"is_confirmed" json:"isConfirmed"`
}

type GroupInfo struct {
	LeadUserID string        `bson:"lead_user_id" json:"leadUserId"`
	Size       int           `bson:"size" json:"size"`
	Members    []GroupMember `bson:"members" json:"members" validate:"dive"`
}

// Booking represents a committed purchase of seats on a trip.
type Booking struct {
	ID                 string        `bson:"id" json:"id"`
	TripID             string        `bson:"trip_id" json:"tripId"`
	UserID             string        `bson:"user_id" json:"userId"`
	Seats              []int         `bson:"seats" json:"seats"`
	TravelDate         string        `bson:"travel_date" json:"travelDate"` // "2006-01-02"
	Fare               float64       `bson:"fare" json:"fare"`
	FareBreakdown      FareBreakdown `bson:"fare_breakdown" json:"fareBreakdown"`
	Status             BookingStatus `bson:"status" json:"status"`
	Contact            Contact       `bson:"contact" json:"contact"`
	Passengers         []Passenger   `bson:"passengers" json:"passengers"`
	BoardingPoint      string        `bson:"boarding_point,omitempty" json:"boardingPoint,omitempty"`
	Group              *GroupInfo    `bson:"group,omitempty" json:"group,omitempty"`
	CancellationReason string        `bson:"cancellation_reason,omitempty" json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time    `bson:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`

	// Operational fields, written only by the assigned driver.
	ActualDeparture *time.Time `bson:"actual_departure,omitempty" json:"actualDeparture,omitempty"`
	ActualArrival   *time.Time `bson:"actual_arrival,omitempty" json:"actualArrival,omitempty"`
	DelayNotice     string     `bson:"delay_notice,omitempty" json:"delayNotice,omitempty"`
	DriverEarnings  float64    `bson:"driver_earnings,omitempty" json:"driverEarnings,omitempty"`

	// ChatEnabled is only an initial default; readers use IsChatEnabled.
	ChatEnabled bool      `bson:"chat_enabled" json:"chatEnabled"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsChatEnabled derives the chat flag: confirmed and travelling today or later in loc.
func (b *Booking) IsChatEnabled(now time.Time, loc *time.Location) bool {
	if b.Status != StatusConfirmed {
		return false
	}
	return b.TravelDate >= now.In(loc).Format("2006-01-02")
}

// Completion carries the driver's trip report.
type Completion struct {
	ActualDeparture time.Time
	ActualArrival   time.Time
	Earnings        float64
	CompletedAt     time.Time
}

// CreateBookingRequest is the body of a booking commit.
type CreateBookingRequest struct {
	TripID        string        `json:"tripId" binding:"required"`
	Seats         []int         `json:"seats" binding:"required"`
	TravelDate    string        `json:"travelDate" binding:"required"`
	QuotedFare    float64       `json:"quotedFare"`
	Contact       Contact       `json:"contact"`
	Passengers    []Passenger   `json:"passengers" validate:"required,dive"`
	BoardingPoint string        `json:"boardingPoint,omitempty"`
	Group         *GroupRequest `json:"groupInfo,omitempty"`
}

// GroupRequest lists the members travelling with the lead requester.
type GroupRequest struct {
	Members []GroupMember `json:"members" validate:"dive"`
}

// CreateBookingResponse is returned by a successful commit.
type CreateBookingResponse struct {
	BookingID string        `json:"bookingId"`
	FinalFare float64       `json:"finalFare"`
	Breakdown FareBreakdown `json:"breakdown"`
	Status    BookingStatus `json:"status"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type CompleteBookingRequest struct {
	ActualDeparture time.Time `json:"actualDeparture" binding:"required"`
	ActualArrival   time.Time `json:"actualArrival" binding:"required"`
	Earnings        float64   `json:"earnings"`
}

type DelayNoticeRequest struct {
	Notice string `json:"notice" binding:"required"`
}

type ConfirmGroupMemberRequest struct {
	Email string `json:"email" binding:"required"`
}
