package booking

import (
	"strings"
	"time"
	"unicode/utf8"

	"travel-backoffice/internal/pkg/patch"

	"github.com/google/uuid"
)

// Details is the mutable business payload of a booking. The concurrency
// protocol treats it as opaque; only NewDetails knows its rules.
type Details struct {
	CustomerName    string
	CustomerEmail   *string
	Destination     string
	Status          Status
	DepartureDate   time.Time
	ReturnDate      *time.Time
	Travelers       int
	TotalPriceCents int64
	Currency        string
	Notes           *string
}

// NewDetails normalizes d and applies defaults, then validates the result.
func NewDetails(d Details) (Details, error) {
	var err error

	if d.CustomerName, err = normalizeName(d.CustomerName, ErrEmptyCustomerName, ErrCustomerNameTooLong); err != nil {
		return Details{}, err
	}
	if d.Destination, err = normalizeName(d.Destination, ErrEmptyDestination, ErrDestinationTooLong); err != nil {
		return Details{}, err
	}

	d.CustomerEmail = normalizeOptional(d.CustomerEmail)
	if d.CustomerEmail != nil && !IsValidEmail(*d.CustomerEmail) {
		return Details{}, ErrInvalidEmail
	}

	if d.Status == "" {
		d.Status = StatusPending
	}
	if !d.Status.IsValid() {
		return Details{}, ErrInvalidStatus
	}

	if d.DepartureDate.IsZero() {
		return Details{}, ErrMissingDeparture
	}
	d.DepartureDate = Date(d.DepartureDate)
	if d.ReturnDate != nil {
		r := Date(*d.ReturnDate)
		if r.Before(d.DepartureDate) {
			return Details{}, ErrReturnBeforeDepart
		}
		d.ReturnDate = &r
	}

	if d.Travelers == 0 {
		d.Travelers = DefaultTravelers
	}
	if d.Travelers < MinTravelers || d.Travelers > MaxTravelers {
		return Details{}, ErrInvalidTravelers
	}

	if d.TotalPriceCents < 0 {
		return Details{}, ErrNegativePrice
	}

	d.Currency = strings.ToUpper(strings.TrimSpace(d.Currency))
	if d.Currency == "" {
		d.Currency = DefaultCurrency
	}
	if !IsValidCurrency(d.Currency) {
		return Details{}, ErrInvalidCurrency
	}

	d.Notes = normalizeOptional(d.Notes)
	if d.Notes != nil && utf8.RuneCountInString(*d.Notes) > MaxNotesLength {
		return Details{}, ErrNotesTooLong
	}

	return d, nil
}

// Patch carries a partial update. A nil field keeps the stored value.
type Patch struct {
	CustomerName    *string
	CustomerEmail   *string
	Destination     *string
	Status          *Status
	DepartureDate   *time.Time
	ReturnDate      *time.Time
	Travelers       *int
	TotalPriceCents *int64
	Currency        *string
	Notes           *string
}

func (p Patch) IsEmpty() bool {
	return !patch.AnySet(
		p.CustomerName, p.CustomerEmail, p.Destination, p.Status, p.DepartureDate,
		p.ReturnDate, p.Travelers, p.TotalPriceCents, p.Currency, p.Notes,
	)
}

// Merge overlays p onto d and validates the merged payload as a whole.
func (d Details) Merge(p Patch) (Details, error) {
	if p.IsEmpty() {
		return Details{}, ErrEmptyPatch
	}

	merged := Details{
		CustomerName:    patch.Coalesce(p.CustomerName, d.CustomerName),
		CustomerEmail:   patch.CoalescePtr(p.CustomerEmail, d.CustomerEmail),
		Destination:     patch.Coalesce(p.Destination, d.Destination),
		Status:          patch.Coalesce(p.Status, d.Status),
		DepartureDate:   patch.Coalesce(p.DepartureDate, d.DepartureDate),
		ReturnDate:      patch.CoalescePtr(p.ReturnDate, d.ReturnDate),
		Travelers:       patch.Coalesce(p.Travelers, d.Travelers),
		TotalPriceCents: patch.Coalesce(p.TotalPriceCents, d.TotalPriceCents),
		Currency:        patch.Coalesce(p.Currency, d.Currency),
		Notes:           patch.CoalescePtr(p.Notes, d.Notes),
	}
	return NewDetails(merged)
}

type Booking struct {
	id        uuid.UUID
	version   int64
	details   Details
	createdBy uuid.UUID
	createdAt time.Time
	updatedAt time.Time
}

func NewBooking(id uuid.UUID, details Details, createdBy uuid.UUID, now time.Time) (*Booking, error) {
	d, err := NewDetails(details)
	if err != nil {
		return nil, err
	}

	if id == uuid.Nil {
		id = uuid.New()
	}

	return &Booking{
		id:        id,
		version:   InitialVersion,
		details:   d,
		createdBy: createdBy,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a booking from storage without re-running validation.
func Reconstruct(id uuid.UUID, version int64, details Details, createdBy uuid.UUID, createdAt, updatedAt time.Time) *Booking {
	return &Booking{
		id:        id,
		version:   version,
		details:   details,
		createdBy: createdBy,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (b *Booking) ID() uuid.UUID        { return b.id }
func (b *Booking) Version() int64       { return b.version }
func (b *Booking) Details() Details     { return b.details }
func (b *Booking) CreatedBy() uuid.UUID { return b.createdBy }
func (b *Booking) CreatedAt() time.Time { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }
