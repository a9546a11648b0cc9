package request

import (
	"time"

	"travel-backoffice/internal/domain/booking"
)

// BookingRequest is the full payload for POST and PUT.
type BookingRequest struct {
	CustomerName    string  `json:"customerName" binding:"required,max=200"`
	CustomerEmail   *string `json:"customerEmail" binding:"omitempty,email"`
	Destination     string  `json:"destination" binding:"required,max=200"`
	Status          *string `json:"status" binding:"omitempty,booking_status"`
	DepartureDate   string  `json:"departureDate" binding:"required,date"`
	ReturnDate      *string `json:"returnDate" binding:"omitempty,date"`
	Travelers       *int    `json:"travelers" binding:"omitempty,min=1,max=99"`
	TotalPriceCents int64   `json:"totalPriceCents" binding:"min=0"`
	Currency        *string `json:"currency" binding:"omitempty,currency"`
	Notes           *string `json:"notes" binding:"omitempty,max=2000"`
}

// UpdateBookingRequest is a PATCH body. Absent and null keys keep the stored value.
type UpdateBookingRequest struct {
	CustomerName    *string `json:"customerName" binding:"omitempty,max=200"`
	CustomerEmail   *string `json:"customerEmail" binding:"omitempty,email"`
	Destination     *string `json:"destination" binding:"omitempty,max=200"`
	Status          *string `json:"status" binding:"omitempty,booking_status"`
	DepartureDate   *string `json:"departureDate" binding:"omitempty,date"`
	ReturnDate      *string `json:"returnDate" binding:"omitempty,date"`
	Travelers       *int    `json:"travelers" binding:"omitempty,min=1,max=99"`
	TotalPriceCents *int64  `json:"totalPriceCents" binding:"omitempty,min=0"`
	Currency        *string `json:"currency" binding:"omitempty,currency"`
	Notes           *string `json:"notes" binding:"omitempty,max=2000"`
}

func (r *BookingRequest) ToDomain() (booking.Details, error) {
	departure, err := parseDate(r.DepartureDate)
	if err != nil {
		return booking.Details{}, err
	}
	returnDate, err := parseDatePtr(r.ReturnDate)
	if err != nil {
		return booking.Details{}, err
	}

	d := booking.Details{
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		Destination:     r.Destination,
		DepartureDate:   departure,
		ReturnDate:      returnDate,
		TotalPriceCents: r.TotalPriceCents,
		Notes:           r.Notes,
	}
	if r.Status != nil {
		if d.Status, err = booking.NewStatus(*r.Status); err != nil {
			return booking.Details{}, err
		}
	}
	if r.Travelers != nil {
		d.Travelers = *r.Travelers
	}
	if r.Currency != nil {
		d.Currency = *r.Currency
	}
	return d, nil
}

func (r *UpdateBookingRequest) ToDomain() (booking.Patch, error) {
	departure, err := parseDatePtr(r.DepartureDate)
	if err != nil {
		return booking.Patch{}, err
	}
	returnDate, err := parseDatePtr(r.ReturnDate)
	if err != nil {
		return booking.Patch{}, err
	}

	p := booking.Patch{
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		Destination:     r.Destination,
		DepartureDate:   departure,
		ReturnDate:      returnDate,
		Travelers:       r.Travelers,
		TotalPriceCents: r.TotalPriceCents,
		Currency:        r.Currency,
		Notes:           r.Notes,
	}
	if r.Status != nil {
		s, err := booking.NewStatus(*r.Status)
		if err != nil {
			return booking.Patch{}, err
		}
		p.Status = &s
	}
	return p, nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
