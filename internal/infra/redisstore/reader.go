package redisstore

import (
	"context"
	"time"

	"travel-backoffice/internal/domain/booking"
	"travel-backoffice/internal/infra"
	"travel-backoffice/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ReadStore serves list and detail reads from the same hashes the Store
// writes. Status filtering happens after the index scan.
type ReadStore struct {
	store *Store
}

var _ queries.BookingReadStore = (*ReadStore)(nil)

func NewReadStore(store *Store) *ReadStore {
	return &ReadStore{store: store}
}

func (r *ReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	b, err := r.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toView(b), nil
}

func (r *ReadStore) ListFirstPage(ctx context.Context, status *string, limit int32) ([]*queries.BookingView, error) {
	return r.scan(ctx, "+inf", status, limit, func(*booking.Booking) bool { return true })
}

func (r *ReadStore) ListKeyset(ctx context.Context, status *string, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.BookingView, error) {
	lastScore := score(lastCreatedAt)
	last := lastID.String()
	return r.scan(ctx, formatScore(lastScore), status, limit, func(b *booking.Booking) bool {
		s := score(b.CreatedAt())
		return s < lastScore || (s == lastScore && b.ID().String() < last)
	})
}

// scan walks the index newest first from the given score, keeping bookings
// that pass the keyset predicate and status filter until limit rows are
// collected.
func (r *ReadStore) scan(ctx context.Context, from string, status *string, limit int32, after func(*booking.Booking) bool) ([]*queries.BookingView, error) {
	s := r.store
	views := make([]*queries.BookingView, 0, limit)
	var offset int64

	for int32(len(views)) < limit {
		members, err := s.client.ZRevRangeByScore(ctx, s.indexKey(), &redis.ZRangeBy{
			Max:    from,
			Min:    "-inf",
			Offset: offset,
			Count:  scanBatch,
		}).Result()
		if err != nil {
			return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to scan booking index", err)
		}
		if len(members) == 0 {
			break
		}
		offset += int64(len(members))

		bookings, err := r.load(ctx, members)
		if err != nil {
			return nil, err
		}
		for _, b := range bookings {
			if !after(b) {
				continue
			}
			if status != nil && b.Details().Status.String() != *status {
				continue
			}
			views = append(views, toView(b))
			if int32(len(views)) == limit {
				break
			}
		}
		if len(members) < scanBatch {
			break
		}
	}
	return views, nil
}

// load fetches hashes in one pipeline. Members deleted between the index scan
// and the fetch come back empty and are skipped.
func (r *ReadStore) load(ctx context.Context, members []string) ([]*booking.Booking, error) {
	s := r.store
	ids := make([]uuid.UUID, 0, len(members))
	cmds := make([]*redis.MapStringStringCmd, 0, len(members))

	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, m := range members {
			id, err := uuid.Parse(m)
			if err != nil {
				continue
			}
			ids = append(ids, id)
			cmds = append(cmds, p.HGetAll(ctx, s.bookingKey(id)))
		}
		return nil
	})
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to load booking hashes", err)
	}

	out := make([]*booking.Booking, 0, len(cmds))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		b, err := fromHash(ids[i], fields)
		if err != nil {
			return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to decode booking hash", err)
		}
		out = append(out, b)
	}
	return out, nil
}

func toView(b *booking.Booking) *queries.BookingView {
	d := b.Details()
	return &queries.BookingView{
		ID:              b.ID(),
		Version:         b.Version(),
		CustomerName:    d.CustomerName,
		CustomerEmail:   d.CustomerEmail,
		Destination:     d.Destination,
		Status:          d.Status.String(),
		DepartureDate:   d.DepartureDate,
		ReturnDate:      d.ReturnDate,
		Travelers:       d.Travelers,
		TotalPriceCents: d.TotalPriceCents,
		Currency:        d.Currency,
		Notes:           d.Notes,
		CreatedBy:       b.CreatedBy(),
		CreatedAt:       b.CreatedAt(),
		UpdatedAt:       b.UpdatedAt(),
	}
}
