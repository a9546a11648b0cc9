package request

import (
	"errors"
	"sync"
	"time"

	"travel-backoffice/internal/domain/booking"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const DateLayout = "2006-01-02"

var registerOnce sync.Once

// RegisterValidators installs the booking tags on gin's validator engine.
// It is safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err = v.RegisterValidation("booking_status", validateStatus); err != nil {
			return
		}
		if err = v.RegisterValidation("currency", validateCurrency); err != nil {
			return
		}
		err = v.RegisterValidation("date", validateDate)
	})
	return err
}

func validateStatus(fl validator.FieldLevel) bool {
	_, err := booking.NewStatus(fl.Field().String())
	return err == nil
}

func validateCurrency(fl validator.FieldLevel) bool {
	return booking.IsValidCurrency(fl.Field().String())
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

// FieldError is one entry of a VALIDATION_ERROR details list.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// Details flattens binding errors for the error envelope. Non-validation
// errors (malformed JSON) yield nil.
func Details(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}
