package models

// FareBreakdown itemizes a fare computation for audit and display.
type FareBreakdown struct {
	BaseFare               float64 `bson:"base_fare" json:"baseFare"`
	SeatCount              int     `bson:"seat_count" json:"seatCount"`
	DemandMultiplier       float64 `bson:"demand_multiplier" json:"demandMultiplier"`
	TimeMultiplier         float64 `bson:"time_multiplier" json:"timeMultiplier"`
	UrgencyMultiplier      float64 `bson:"urgency_multiplier" json:"urgencyMultiplier"`
	AvailabilityMultiplier float64 `bson:"availability_multiplier" json:"availabilityMultiplier"`
	OccupancyRate          float64 `bson:"occupancy_rate" json:"occupancyRate"`
	AvailabilityRate       float64 `bson:"availability_rate" json:"availabilityRate"`
	PerSeatDynamicFare     float64 `bson:"per_seat_dynamic_fare" json:"perSeatDynamicFare"`
	SeatsSubtotal          float64 `bson:"seats_subtotal" json:"seatsSubtotal"`
	WindowSeats            []int   `bson:"window_seats,omitempty" json:"windowSeats,omitempty"`
	WindowSeatSurcharge    float64 `bson:"window_seat_surcharge" json:"windowSeatSurcharge"`
	GroupDiscountRate      float64 `bson:"group_discount_rate" json:"groupDiscountRate"`
	GroupDiscountAmount    float64 `bson:"group_discount_amount" json:"groupDiscountAmount"`
	Total                  float64 `bson:"total" json:"total"`
}

// FareQuoteRequest asks for a quote on a set of seats.
type FareQuoteRequest struct {
	Seats      []int  `json:"seats" binding:"required"`
	TravelDate string `json:"travelDate" binding:"required"`
}
