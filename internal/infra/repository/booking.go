package repository

import (
	"context"
	"log/slog"
	"time"

	"travel-backoffice/internal/domain/booking"
	"travel-backoffice/internal/infra"
	sqlc "travel-backoffice/internal/infra/sqlc/generated"
	"travel-backoffice/internal/pkg/pgconv"
	"travel-backoffice/internal/usecase/shared"

	"github.com/google/uuid"
)

type BookingWriteQueries interface {
	GetBookingByID(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Bookings, error)
	GetBookingVersion(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (int64, error)
	InsertBooking(ctx context.Context, db sqlc.DBTX, arg sqlc.InsertBookingParams) error
	CompareAndSwapBooking(ctx context.Context, db sqlc.DBTX, arg sqlc.CompareAndSwapBookingParams) (sqlc.Bookings, error)
	CompareAndDeleteBooking(ctx context.Context, db sqlc.DBTX, arg sqlc.CompareAndDeleteBookingParams) (int64, error)
}

// BookingRepository keeps the version store in PostgreSQL. The conditional
// UPDATE/DELETE carry "AND version = $expected", so row locking inside the
// single statement serializes concurrent writers on the same id.
type BookingRepository struct {
	queries BookingWriteQueries
	db      sqlc.DBTX
	logger  *slog.Logger
}

var _ shared.BookingStore = (*BookingRepository)(nil)

func NewBookingRepository(queries BookingWriteQueries, db sqlc.DBTX, logger *slog.Logger) *BookingRepository {
	return &BookingRepository{
		queries: queries,
		db:      db,
		logger:  logger,
	}
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	row, err := r.queries.GetBookingByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "booking not found", err)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to find booking by ID", err)
	}
	return toBooking(row), nil
}

func (r *BookingRepository) Insert(ctx context.Context, b *booking.Booking) error {
	d := b.Details()
	params := sqlc.InsertBookingParams{
		ID:              b.ID(),
		Version:         b.Version(),
		CustomerName:    d.CustomerName,
		CustomerEmail:   pgconv.StringPtrToPgtype(d.CustomerEmail),
		Destination:     d.Destination,
		Status:          d.Status.String(),
		DepartureDate:   pgconv.DateToPgtype(d.DepartureDate),
		ReturnDate:      pgconv.DatePtrToPgtype(d.ReturnDate),
		Travelers:       int32(d.Travelers),
		TotalPriceCents: d.TotalPriceCents,
		Currency:        d.Currency,
		Notes:           pgconv.StringPtrToPgtype(d.Notes),
		CreatedBy:       b.CreatedBy(),
		CreatedAt:       pgconv.TimeToPgtype(b.CreatedAt()),
		UpdatedAt:       pgconv.TimeToPgtype(b.UpdatedAt()),
	}

	if err := r.queries.InsertBooking(ctx, r.db, params); err != nil {
		return infra.WrapRepoErr(r.logger, infra.ClassifyPgError(err), "failed to insert booking", err)
	}
	return nil
}

func (r *BookingRepository) CompareAndSwap(ctx context.Context, id uuid.UUID, expected int64, details booking.Details, now time.Time) (*booking.Booking, error) {
	params := sqlc.CompareAndSwapBookingParams{
		ID:              id,
		Version:         expected,
		CustomerName:    details.CustomerName,
		CustomerEmail:   pgconv.StringPtrToPgtype(details.CustomerEmail),
		Destination:     details.Destination,
		Status:          details.Status.String(),
		DepartureDate:   pgconv.DateToPgtype(details.DepartureDate),
		ReturnDate:      pgconv.DatePtrToPgtype(details.ReturnDate),
		Travelers:       int32(details.Travelers),
		TotalPriceCents: details.TotalPriceCents,
		Currency:        details.Currency,
		Notes:           pgconv.StringPtrToPgtype(details.Notes),
		UpdatedAt:       pgconv.TimeToPgtype(now),
	}

	row, err := r.queries.CompareAndSwapBooking(ctx, r.db, params)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, r.classifyMiss(ctx, id, expected)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to compare-and-swap booking", err)
	}
	return toBooking(row), nil
}

func (r *BookingRepository) CompareAndDelete(ctx context.Context, id uuid.UUID, expected int64) error {
	n, err := r.queries.CompareAndDeleteBooking(ctx, r.db, sqlc.CompareAndDeleteBookingParams{
		ID:      id,
		Version: expected,
	})
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to compare-and-delete booking", err)
	}
	if n == 0 {
		return r.classifyMiss(ctx, id, expected)
	}
	return nil
}

// classifyMiss tells apart a vanished row from a version that moved on after a
// conditional statement touched zero rows.
func (r *BookingRepository) classifyMiss(ctx context.Context, id uuid.UUID, expected int64) error {
	current, err := r.queries.GetBookingVersion(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return infra.WrapRepoErr(r.logger, infra.KindNotFound, "booking not found", err)
		}
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to read booking version", err)
	}
	r.logger.Debug("compare-and-swap rejected",
		slog.String("booking_id", id.String()),
		slog.Int64("expected_version", expected),
		slog.Int64("current_version", current))
	return infra.NewVersionMismatch(current)
}

func toBooking(row sqlc.Bookings) *booking.Booking {
	details := booking.Details{
		CustomerName:    row.CustomerName,
		CustomerEmail:   pgconv.StringPtrFromPgtype(row.CustomerEmail),
		Destination:     row.Destination,
		Status:          booking.Status(row.Status),
		DepartureDate:   pgconv.DateFromPgtype(row.DepartureDate),
		ReturnDate:      pgconv.DatePtrFromPgtype(row.ReturnDate),
		Travelers:       int(row.Travelers),
		TotalPriceCents: row.TotalPriceCents,
		Currency:        row.Currency,
		Notes:           pgconv.StringPtrFromPgtype(row.Notes),
	}
	return booking.Reconstruct(
		row.ID,
		row.Version,
		details,
		row.CreatedBy,
		pgconv.TimeFromPgtype(row.CreatedAt),
		pgconv.TimeFromPgtype(row.UpdatedAt),
	)
}
