package booking

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"busreserve/models"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// validateCreateRequest checks the structural fields of a booking request: contact details,
// passengers, seat/passenger counts and the group member list.
func validateCreateRequest(req *models.CreateBookingRequest) *Error {
	if err := getValidator().Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return validationError(err.Error())
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fieldPath(fe.Namespace())] = fe.Tag()
		}
		return &Error{Code: CodeValidation, Message: "invalid booking request", Fields: fields}
	}

	if len(req.Passengers) != len(req.Seats) {
		return validationError("passenger count must equal seat count")
	}

	if req.Group != nil {
		if len(req.Group.Members) != len(req.Seats)-1 {
			return validationError("group must list one member per seat besides the lead")
		}
		for i := range req.Group.Members {
			m := &req.Group.Members[i]
			m.Email = strings.ToLower(strings.TrimSpace(m.Email))
			m.UserID = strings.TrimSpace(m.UserID)
			if m.Email == "" && m.UserID == "" {
				return validationError("each group member needs an email or a user id")
			}
		}
	}
	return nil
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
