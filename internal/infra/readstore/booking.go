package readstore

import (
	"context"
	"log/slog"
	"time"

	"travel-backoffice/internal/infra"
	sqlc "travel-backoffice/internal/infra/sqlc/generated"
	"travel-backoffice/internal/pkg/pgconv"
	"travel-backoffice/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingReadQueries interface {
	GetBookingByID(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Bookings, error)
	ListBookingsFirstPage(ctx context.Context, db sqlc.DBTX, arg sqlc.ListBookingsFirstPageParams) ([]sqlc.Bookings, error)
	ListBookingsKeyset(ctx context.Context, db sqlc.DBTX, arg sqlc.ListBookingsKeysetParams) ([]sqlc.Bookings, error)
}

type BookingReadStore struct {
	queries BookingReadQueries
	db      sqlc.DBTX
	logger  *slog.Logger
}

var _ queries.BookingReadStore = (*BookingReadStore)(nil)

func NewBookingReadStore(q BookingReadQueries, db sqlc.DBTX, logger *slog.Logger) *BookingReadStore {
	return &BookingReadStore{
		queries: q,
		db:      db,
		logger:  logger,
	}
}

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	row, err := r.queries.GetBookingByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "booking not found", err)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to find booking by ID", err)
	}
	return ToBookingView(row), nil
}

func (r *BookingReadStore) ListFirstPage(ctx context.Context, status *string, limit int32) ([]*queries.BookingView, error) {
	rows, err := r.queries.ListBookingsFirstPage(ctx, r.db, sqlc.ListBookingsFirstPageParams{
		Status: pgconv.StringPtrToPgtype(status),
		Limit:  limit,
	})
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list bookings", err)
	}
	return toBookingViews(rows), nil
}

func (r *BookingReadStore) ListKeyset(ctx context.Context, status *string, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.BookingView, error) {
	rows, err := r.queries.ListBookingsKeyset(ctx, r.db, sqlc.ListBookingsKeysetParams{
		Status:    pgconv.StringPtrToPgtype(status),
		CreatedAt: pgconv.TimeToPgtype(lastCreatedAt),
		ID:        lastID,
		Limit:     limit,
	})
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list bookings with keyset", err)
	}
	return toBookingViews(rows), nil
}

func ToBookingView(row sqlc.Bookings) *queries.BookingView {
	return &queries.BookingView{
		ID:              row.ID,
		Version:         row.Version,
		CustomerName:    row.CustomerName,
		CustomerEmail:   pgconv.StringPtrFromPgtype(row.CustomerEmail),
		Destination:     row.Destination,
		Status:          row.Status,
		DepartureDate:   pgconv.DateFromPgtype(row.DepartureDate),
		ReturnDate:      pgconv.DatePtrFromPgtype(row.ReturnDate),
		Travelers:       int(row.Travelers),
		TotalPriceCents: row.TotalPriceCents,
		Currency:        row.Currency,
		Notes:           pgconv.StringPtrFromPgtype(row.Notes),
		CreatedBy:       row.CreatedBy,
		CreatedAt:       pgconv.TimeFromPgtype(row.CreatedAt),
		UpdatedAt:       pgconv.TimeFromPgtype(row.UpdatedAt),
	}
}

func toBookingViews(rows []sqlc.Bookings) []*queries.BookingView {
	views := make([]*queries.BookingView, 0, len(rows))
	for _, row := range rows {
		views = append(views, ToBookingView(row))
	}
	return views
}
