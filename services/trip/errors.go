package trip

import "errors"

// ErrTripNotFound is returned when the trip does not exist.
var ErrTripNotFound = errors.New("trip not found")

// InvalidTripError reports a trip definition that cannot be scheduled.
type InvalidTripError struct {
	Reason string
}

func (e InvalidTripError) Error() string {
	return "invalid trip: " + e.Reason
}
