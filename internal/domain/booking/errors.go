package booking

import "travel-backoffice/internal/pkg/errs"

// ErrValidation marks every rule violation below so callers can map them as one class.
var ErrValidation = errs.New("booking validation failed")

var (
	ErrEmptyCustomerName   = invalid("customer name cannot be empty")
	ErrCustomerNameTooLong = invalid("customer name exceeds maximum length")
	ErrInvalidEmail        = invalid("invalid email format")
	ErrEmptyDestination    = invalid("destination cannot be empty")
	ErrDestinationTooLong  = invalid("destination exceeds maximum length")
	ErrInvalidStatus       = invalid("invalid booking status")
	ErrMissingDeparture    = invalid("departure date is required")
	ErrReturnBeforeDepart  = invalid("return date must not be before departure date")
	ErrInvalidTravelers    = invalid("travelers must be between 1 and 99")
	ErrNegativePrice       = invalid("total price cannot be negative")
	ErrInvalidCurrency     = invalid("currency must be a three-letter ISO 4217 code")
	ErrNotesTooLong        = invalid("notes exceed maximum length")
	ErrEmptyPatch          = invalid("no fields to update")
)

func invalid(msg string) error {
	return errs.Mark(errs.New(msg), ErrValidation)
}
