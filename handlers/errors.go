package handlers

import (
	"errors"
	"net/http"

	"busreserve/config"
	"busreserve/services/booking"
	"busreserve/services/trip"
	"busreserve/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var statusByCode = map[booking.ErrorCode]int{
	booking.CodeValidation:      http.StatusBadRequest,
	booking.CodeSeatConflict:    http.StatusConflict,
	booking.CodeNoReservation:   http.StatusPreconditionFailed,
	booking.CodeUnauthorized:    http.StatusForbidden,
	booking.CodeAlreadyTerminal: http.StatusConflict,
	booking.CodeInvalidState:    http.StatusConflict,
	booking.CodeMemberNotFound:  http.StatusNotFound,
	booking.CodeNotFound:        http.StatusNotFound,
	booking.CodeStore:           http.StatusInternalServerError,
}

// ErrorDetails is the structured payload accompanying a booking error.
type ErrorDetails struct {
	Fields            map[string]string `json:"fields,omitempty"`
	ConflictingSeats  []int             `json:"conflictingSeats,omitempty"`
	AvailableSeats    []int             `json:"availableSeats,omitempty"`
	AuthoritativeFare any               `json:"authoritativeFare,omitempty"`
	Cause             string            `json:"cause,omitempty"`
}

// writeError maps service errors onto the HTTP error taxonomy.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var be *booking.Error
	if errors.As(err, &be) {
		status, ok := statusByCode[be.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		details := ErrorDetails{
			Fields:           be.Fields,
			ConflictingSeats: be.ConflictingSeats,
			AvailableSeats:   be.AvailableSeats,
		}
		if be.AuthoritativeFare != nil {
			details.AuthoritativeFare = be.AuthoritativeFare
		}
		if status >= http.StatusInternalServerError {
			logger.Error("Booking operation failed", zap.Error(err))
			if !config.IsProduction() && be.Err != nil {
				details.Cause = be.Err.Error()
			}
		}
		if isEmpty(details) {
			utils.JSONError(c, status, string(be.Code), be.Message, nil)
			return
		}
		utils.JSONError(c, status, string(be.Code), be.Message, details)
		return
	}

	var invalid trip.InvalidTripError
	switch {
	case errors.As(err, &invalid):
		utils.JSONError(c, http.StatusBadRequest, string(booking.CodeValidation), invalid.Error(), nil)
	case errors.Is(err, trip.ErrTripNotFound):
		utils.JSONError(c, http.StatusNotFound, string(booking.CodeNotFound), "trip not found", nil)
	default:
		logger.Error("Unexpected handler error", zap.Error(err))
		var details any
		if !config.IsProduction() {
			details = err.Error()
		}
		utils.JSONError(c, http.StatusInternalServerError, string(booking.CodeStore), "internal error", details)
	}
}

func isEmpty(d ErrorDetails) bool {
	return len(d.Fields) == 0 && len(d.ConflictingSeats) == 0 && len(d.AvailableSeats) == 0 &&
		d.AuthoritativeFare == nil && d.Cause == ""
}

// badRequest answers a body that could not be bound.
func badRequest(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, string(booking.CodeValidation), "invalid request body", err.Error())
}
