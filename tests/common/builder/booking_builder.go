//go:build unit || e2e

package builder

import (
	"time"

	"travel-backoffice/internal/domain/booking"
	reqdto "travel-backoffice/internal/handler/dto/request"
	sqlc "travel-backoffice/internal/infra/sqlc/generated"
	"travel-backoffice/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type BookingBuilder struct {
	ID              uuid.UUID
	Version         int64
	CustomerName    string
	CustomerEmail   *string
	Destination     string
	Status          string
	DepartureDate   time.Time
	ReturnDate      *time.Time
	Travelers       int
	TotalPriceCents int64
	Currency        string
	Notes           *string
	CreatedBy       uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewBookingBuilder() *BookingBuilder {
	email := "hanako@example.com"
	departure := time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC)
	ret := departure.AddDate(0, 0, 4)
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	return &BookingBuilder{
		ID:              uuid.New(),
		Version:         booking.InitialVersion,
		CustomerName:    "Hanako Sato",
		CustomerEmail:   &email,
		Destination:     "Kyoto",
		Status:          booking.StatusPending.String(),
		DepartureDate:   departure,
		ReturnDate:      &ret,
		Travelers:       2,
		TotalPriceCents: 12000000,
		Currency:        booking.DefaultCurrency,
		CreatedBy:       uuid.New(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) WithVersion(v int64) *BookingBuilder {
	b.Version = v
	return b
}

func (b *BookingBuilder) Details() booking.Details {
	return booking.Details{
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		Destination:     b.Destination,
		Status:          booking.Status(b.Status),
		DepartureDate:   b.DepartureDate,
		ReturnDate:      b.ReturnDate,
		Travelers:       b.Travelers,
		TotalPriceCents: b.TotalPriceCents,
		Currency:        b.Currency,
		Notes:           b.Notes,
	}
}

// Build methods
func (b *BookingBuilder) BuildDomain() *booking.Booking {
	return booking.Reconstruct(b.ID, b.Version, b.Details(), b.CreatedBy, b.CreatedAt, b.UpdatedAt)
}

func (b *BookingBuilder) BuildInfra() sqlc.Bookings {
	row := sqlc.Bookings{
		ID:              b.ID,
		Version:         b.Version,
		CustomerName:    b.CustomerName,
		Destination:     b.Destination,
		Status:          b.Status,
		DepartureDate:   pgtype.Date{Time: b.DepartureDate, Valid: true},
		Travelers:       int32(b.Travelers),
		TotalPriceCents: b.TotalPriceCents,
		Currency:        b.Currency,
		CreatedBy:       b.CreatedBy,
		CreatedAt:       pgtype.Timestamptz{Time: b.CreatedAt, Valid: true},
		UpdatedAt:       pgtype.Timestamptz{Time: b.UpdatedAt, Valid: true},
	}
	if b.CustomerEmail != nil {
		row.CustomerEmail = pgtype.Text{String: *b.CustomerEmail, Valid: true}
	}
	if b.ReturnDate != nil {
		row.ReturnDate = pgtype.Date{Time: *b.ReturnDate, Valid: true}
	}
	if b.Notes != nil {
		row.Notes = pgtype.Text{String: *b.Notes, Valid: true}
	}
	return row
}

func (b *BookingBuilder) BuildReadModel() *queries.BookingView {
	return &queries.BookingView{
		ID:              b.ID,
		Version:         b.Version,
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		Destination:     b.Destination,
		Status:          b.Status,
		DepartureDate:   b.DepartureDate,
		ReturnDate:      b.ReturnDate,
		Travelers:       b.Travelers,
		TotalPriceCents: b.TotalPriceCents,
		Currency:        b.Currency,
		Notes:           b.Notes,
		CreatedBy:       b.CreatedBy,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func (b *BookingBuilder) BuildRequestDTO() reqdto.BookingRequest {
	status := b.Status
	travelers := b.Travelers
	currency := b.Currency
	req := reqdto.BookingRequest{
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		Destination:     b.Destination,
		Status:          &status,
		DepartureDate:   b.DepartureDate.Format(reqdto.DateLayout),
		Travelers:       &travelers,
		TotalPriceCents: b.TotalPriceCents,
		Currency:        &currency,
		Notes:           b.Notes,
	}
	if b.ReturnDate != nil {
		ret := b.ReturnDate.Format(reqdto.DateLayout)
		req.ReturnDate = &ret
	}
	return req
}
