package notification

import (
	"fmt"
	"strconv"
	"strings"

	"busreserve/models"
)

// Render builds the human-readable title and body for an event.
func Render(event models.Event) (string, string) {
	switch event.Type {
	case models.EventBookingCreated:
		return "Booking confirmed 🎟️", fmt.Sprintf("Your seats %s are confirmed.", seatList(event.Seats))
	case models.EventBookingCancelled:
		return "Booking cancelled", fmt.Sprintf("Booking %s was cancelled: %s", event.BookingID, event.Reason)
	case models.EventBookingCompleted:
		return "Trip completed", "Thanks for travelling with us. Your trip is complete."
	case models.EventDelayAlert:
		return "Trip delayed ⚠️", fmt.Sprintf("Trip %s arrived %d minutes late.", event.TripID, event.DelayMinutes)
	case models.EventGroupInvite:
		return "You're invited to a group trip", fmt.Sprintf("You have a seat on trip %s. Confirm to join the group.", event.TripID)
	default:
		return string(event.Type), ""
	}
}

// Data flattens the event into the string map push payloads carry.
func Data(event models.Event) map[string]string {
	data := map[string]string{
		"type":      string(event.Type),
		"eventId":   event.ID,
		"bookingId": event.BookingID,
		"tripId":    event.TripID,
	}
	if event.Status != "" {
		data["status"] = string(event.Status)
	}
	if len(event.Seats) > 0 {
		data["seats"] = seatList(event.Seats)
	}
	if event.Severity != "" {
		data["severity"] = event.Severity
	}
	if event.DelayMinutes > 0 {
		data["delayMinutes"] = strconv.Itoa(event.DelayMinutes)
	}
	data["chatEnabled"] = strconv.FormatBool(event.ChatEnabled)
	return data
}

func seatList(seats []int) string {
	parts := make([]string, len(seats))
	for i, s := range seats {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ", ")
}
