package booking

import (
	"errors"
	"fmt"

	"busreserve/models"
)

type ErrorCode string

const (
	CodeValidation      ErrorCode = "ValidationError"
	CodeSeatConflict    ErrorCode = "SeatConflict"
	CodeNoReservation   ErrorCode = "NoReservation"
	CodeUnauthorized    ErrorCode = "Unauthorized"
	CodeAlreadyTerminal ErrorCode = "AlreadyTerminal"
	CodeInvalidState    ErrorCode = "InvalidState"
	CodeMemberNotFound  ErrorCode = "MemberNotFound"
	CodeNotFound        ErrorCode = "NotFound"
	CodeStore           ErrorCode = "StoreError"
)

// Error is the structured result every booking operation fails with.
type Error struct {
	Code    ErrorCode
	Message string
	// Fields maps request fields to the rule they broke.
	Fields map[string]string
	// ConflictingSeats and AvailableSeats accompany SeatConflict.
	ConflictingSeats []int
	AvailableSeats   []int
	// AuthoritativeFare accompanies a fare mismatch so the caller can retry with the server figure.
	AuthoritativeFare *models.FareBreakdown
	Err               error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf extracts the error code, or "" for errors that did not come from this package.
func CodeOf(err error) ErrorCode {
	var be *Error
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func newError(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func validationError(msg string) *Error {
	return newError(CodeValidation, msg)
}

func seatConflict(conflicting, available []int) *Error {
	return &Error{
		Code:             CodeSeatConflict,
		Message:          "one or more selected seats are no longer available",
		ConflictingSeats: conflicting,
		AvailableSeats:   available,
	}
}

func storeError(op string, err error) *Error {
	return &Error{Code: CodeStore, Message: op + " failed", Err: err}
}
