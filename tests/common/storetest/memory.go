//go:build unit || e2e

// Package storetest provides an in-memory booking store with the same
// compare-and-swap contract as the real backends.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"travel-backoffice/internal/domain/booking"
	"travel-backoffice/internal/infra"
	"travel-backoffice/internal/usecase/queries"
	"travel-backoffice/internal/usecase/shared"

	"github.com/google/uuid"
)

type Memory struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*booking.Booking

	// AfterFind runs outside the lock after every FindByID. Tests use it to
	// hold concurrent writers between their read and their swap.
	AfterFind func()
}

var _ shared.BookingStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{rows: make(map[uuid.UUID]*booking.Booking)}
}

func (m *Memory) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	m.mu.Lock()
	b, ok := m.rows[id]
	hook := m.AfterFind
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	if !ok {
		return nil, infra.RepositoryError{Kind: infra.KindNotFound}
	}
	return b, nil
}

func (m *Memory) Insert(_ context.Context, b *booking.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[b.ID()]; ok {
		return infra.RepositoryError{Kind: infra.KindDuplicateKey}
	}
	m.rows[b.ID()] = b
	return nil
}

func (m *Memory) CompareAndSwap(_ context.Context, id uuid.UUID, expected int64, details booking.Details, now time.Time) (*booking.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[id]
	if !ok {
		return nil, infra.RepositoryError{Kind: infra.KindNotFound}
	}
	if cur.Version() != expected {
		return nil, infra.NewVersionMismatch(cur.Version())
	}
	next := booking.Reconstruct(id, booking.NextVersion(expected), details, cur.CreatedBy(), cur.CreatedAt(), now)
	m.rows[id] = next
	return next, nil
}

func (m *Memory) CompareAndDelete(_ context.Context, id uuid.UUID, expected int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[id]
	if !ok {
		return infra.RepositoryError{Kind: infra.KindNotFound}
	}
	if cur.Version() != expected {
		return infra.NewVersionMismatch(cur.Version())
	}
	delete(m.rows, id)
	return nil
}

// Reader exposes the same rows through the read-model port.
func (m *Memory) Reader() queries.BookingReadStore {
	return memoryReader{m: m}
}

type memoryReader struct {
	m *Memory
}

func (r memoryReader) FindByID(_ context.Context, id uuid.UUID) (*queries.BookingView, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.rows[id]
	if !ok {
		return nil, infra.RepositoryError{Kind: infra.KindNotFound}
	}
	return toView(b), nil
}

func (r memoryReader) ListFirstPage(_ context.Context, status *string, limit int32) ([]*queries.BookingView, error) {
	return r.list(status, limit, func(*booking.Booking) bool { return true })
}

func (r memoryReader) ListKeyset(_ context.Context, status *string, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.BookingView, error) {
	return r.list(status, limit, func(b *booking.Booking) bool {
		if b.CreatedAt().Equal(lastCreatedAt) {
			return b.ID().String() < lastID.String()
		}
		return b.CreatedAt().Before(lastCreatedAt)
	})
}

func (r memoryReader) list(status *string, limit int32, keep func(*booking.Booking) bool) ([]*queries.BookingView, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	out := make([]*queries.BookingView, 0, len(r.m.rows))
	for _, b := range r.m.rows {
		if status != nil && b.Details().Status.String() != *status {
			continue
		}
		if keep(b) {
			out = append(out, toView(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() > out[j].ID.String()
	})
	if int32(len(out)) > limit {
		out = out[:limit]
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
