package models

import "time"

type EventType string

const (
	EventBookingCreated   EventType = "BookingCreated"
	EventBookingCancelled EventType = "BookingCancelled"
	EventBookingCompleted EventType = "BookingCompleted"
	EventDelayAlert       EventType = "DelayAlert"
	EventGroupInvite      EventType = "GroupInvite"
)

const (
	SeverityInfo = "info"
	SeverityHigh = "high"
)

// Event is the flat lifecycle record handed to the notification dispatcher.
// Formatting and delivery are the dispatcher's concern.
type Event struct {
	ID           string        `json:"id"`
	Type         EventType     `json:"type"`
	BookingID    string        `json:"bookingId"`
	TripID       string        `json:"tripId"`
	UserID       string        `json:"userId,omitempty"`
	DriverID     string        `json:"driverId,omitempty"`
	Seats        []int         `json:"seats,omitempty"`
	Status       BookingStatus `json:"status,omitempty"`
	ChatEnabled  bool          `json:"chatEnabled"`
	Severity     string        `json:"severity,omitempty"`
	DelayMinutes int           `json:"delayMinutes,omitempty"`
	MemberEmail  string        `json:"memberEmail,omitempty"`
	MemberUserID string        `json:"memberUserId,omitempty"`
	Reason       string        `json:"reason,omitempty"`
	OccurredAt   time.Time     `json:"occurredAt"`
}
