package shared

import (
	"context"
	"time"

	"travel-backoffice/internal/domain/booking"

	"github.com/google/uuid"
)

// BookingStore is the single source of truth for (id -> version, details).
//
// CompareAndSwap and CompareAndDelete are atomic per id: of any callers that
// present the same expected version concurrently, at most one succeeds. Losers
// get an infra.RepositoryError of kind VERSION_MISMATCH carrying the current
// version, or NOT_FOUND when the row is gone.
type BookingStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	Insert(ctx context.Context, b *booking.Booking) error
	CompareAndSwap(ctx context.Context, id uuid.UUID, expected int64, details booking.Details, now time.Time) (*booking.Booking, error)
	CompareAndDelete(ctx context.Context, id uuid.UUID, expected int64) error
}

type BookingEventType string

const (
	BookingCreated  BookingEventType = "booking.created"
	BookingUpdated  BookingEventType = "booking.updated"
	BookingReplaced BookingEventType = "booking.replaced"
	BookingDeleted  BookingEventType = "booking.deleted"
)

// BookingEvent is emitted after a write has committed. Version is the version
// the write produced (or removed, for deletes).
type BookingEvent struct {
	ID         uuid.UUID        `json:"id"`
	Type       BookingEventType `json:"type"`
	BookingID  uuid.UUID        `json:"booking_id"`
	Version    int64            `json:"version"`
	ActorID    uuid.UUID        `json:"actor_id"`
	OccurredAt time.Time        `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event BookingEvent) error
}
