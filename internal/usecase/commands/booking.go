package commands

import (
	"context"
	"fmt"
	"log/slog"

	"travel-backoffice/internal/domain/booking"
	"travel-backoffice/internal/infra"
	"travel-backoffice/internal/pkg/clock"
	"travel-backoffice/internal/pkg/errs"
	"travel-backoffice/internal/pkg/metrics"
	"travel-backoffice/internal/usecase/precondition"
	"travel-backoffice/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound      = errs.New("booking not found")
	ErrPreconditionRequired = errs.New("precondition required")
)

// VersionConflictError reports a write rejected because the booking is no
// longer at the version the caller presented.
type VersionConflictError struct {
	Current int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict: current version is %d", e.Current)
}

const (
	opUpdate  = "update"
	opReplace = "replace"
	opDelete  = "delete"
)

type CreateBookingCommand struct {
	Details booking.Details
	ActorID uuid.UUID
}

type UpdateBookingCommand struct {
	ID      uuid.UUID
	IfMatch precondition.Condition
	Patch   booking.Patch
	ActorID uuid.UUID
}

type ReplaceBookingCommand struct {
	ID      uuid.UUID
	IfMatch precondition.Condition
	Details booking.Details
	ActorID uuid.UUID
}

type DeleteBookingCommand struct {
	ID      uuid.UUID
	IfMatch precondition.Condition
	ActorID uuid.UUID
}

type BookingCommands interface {
	Create(ctx context.Context, cmd CreateBookingCommand) (*booking.Booking, error)
	Update(ctx context.Context, cmd UpdateBookingCommand) (*booking.Booking, error)
	Replace(ctx context.Context, cmd ReplaceBookingCommand) (*booking.Booking, error)
	Delete(ctx context.Context, cmd DeleteBookingCommand) error
}

type bookingCommandsImpl struct {
	store  shared.BookingStore
	events shared.EventPublisher
	clock  clock.Clock
}

func NewBookingCommands(store shared.BookingStore, events shared.EventPublisher, clk clock.Clock) BookingCommands {
	return &bookingCommandsImpl{store: store, events: events, clock: clk}
}

func (uc *bookingCommandsImpl) Create(ctx context.Context, cmd CreateBookingCommand) (*booking.Booking, error) {
	b, err := booking.NewBooking(uuid.Nil, cmd.Details, cmd.ActorID, uc.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := uc.store.Insert(ctx, b); err != nil {
		return nil, err
	}

	uc.publish(ctx, shared.BookingCreated, b.ID(), b.Version(), cmd.ActorID)
	return b, nil
}

func (uc *bookingCommandsImpl) Update(ctx context.Context, cmd UpdateBookingCommand) (*booking.Booking, error) {
	if cmd.Patch.IsEmpty() {
		return nil, booking.ErrEmptyPatch
	}

	updated, err := uc.swap(ctx, opUpdate, cmd.ID, cmd.IfMatch, func(current *booking.Booking) (booking.Details, error) {
		return current.Details().Merge(cmd.Patch)
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, shared.BookingUpdated, updated.ID(), updated.Version(), cmd.ActorID)
	return updated, nil
}

func (uc *bookingCommandsImpl) Replace(ctx context.Context, cmd ReplaceBookingCommand) (*booking.Booking, error) {
	details, err := booking.NewDetails(cmd.Details)
	if err != nil {
		return nil, err
	}

	updated, err := uc.swap(ctx, opReplace, cmd.ID, cmd.IfMatch, func(*booking.Booking) (booking.Details, error) {
		return details, nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, shared.BookingReplaced, updated.ID(), updated.Version(), cmd.ActorID)
	return updated, nil
}

func (uc *bookingCommandsImpl) Delete(ctx context.Context, cmd DeleteBookingCommand) error {
	current, err := uc.authorize(ctx, opDelete, cmd.ID, cmd.IfMatch)
	if err != nil {
		return err
	}

	if err := uc.store.CompareAndDelete(ctx, cmd.ID, current.Version()); err != nil {
		return uc.casFailure(ctx, opDelete, cmd.ID, current.Version(), cmd.IfMatch, err)
	}

	uc.publish(ctx, shared.BookingDeleted, cmd.ID, current.Version(), cmd.ActorID)
	return nil
}

// swap runs one read, evaluate, write cycle. It never loops: a lost race
// surfaces as a VersionConflictError for the caller to resolve.
func (uc *bookingCommandsImpl) swap(
	ctx context.Context,
	op string,
	id uuid.UUID,
	ifMatch precondition.Condition,
	build func(current *booking.Booking) (booking.Details, error),
) (*booking.Booking, error) {
	current, err := uc.authorize(ctx, op, id, ifMatch)
	if err != nil {
		return nil, err
	}

	details, err := build(current)
	if err != nil {
		return nil, err
	}

	updated, err := uc.store.CompareAndSwap(ctx, id, current.Version(), details, uc.clock.Now())
	if err != nil {
		return nil, uc.casFailure(ctx, op, id, current.Version(), ifMatch, err)
	}
	return updated, nil
}

// authorize reads the current version and evaluates If-Match against it.
func (uc *bookingCommandsImpl) authorize(ctx context.Context, op string, id uuid.UUID, ifMatch precondition.Condition) (*booking.Booking, error) {
	current, err := uc.store.FindByID(ctx, id)
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return nil, err
	}

	in := precondition.Input{Kind: precondition.Write, Exists: current != nil, IfMatch: ifMatch}
	if current != nil {
		in.Current = current.Version()
	}

	outcome := precondition.Evaluate(in)
	metrics.ObservePrecondition(op, outcome.String())

	switch outcome {
	case precondition.Allow:
		return current, nil
	case precondition.NotFound:
		return nil, ErrBookingNotFound
	case precondition.Required:
		return nil, ErrPreconditionRequired
	default:
		return nil, &VersionConflictError{Current: current.Version()}
	}
}

// casFailure maps a rejected conditional write. A version mismatch is run back
// through the evaluator against the winning version and always reported as a
// conflict; the write is not attempted again.
func (uc *bookingCommandsImpl) casFailure(ctx context.Context, op string, id uuid.UUID, expected int64, ifMatch precondition.Condition, err error) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return ErrBookingNotFound
	}

	current, ok := infra.CurrentVersion(err)
	if !ok {
		return err
	}

	metrics.ObserveCASConflict(op)
	outcome := precondition.Evaluate(precondition.Input{
		Kind:    precondition.Write,
		Exists:  true,
		Current: current,
		IfMatch: ifMatch,
	})
	slog.InfoContext(ctx, "conditional write lost race",
		"operation", op,
		"booking_id", id.String(),
		"expected_version", expected,
		"current_version", current,
		"reevaluated", outcome.String())

	return &VersionConflictError{Current: current}
}

func (uc *bookingCommandsImpl) publish(ctx context.Context, typ shared.BookingEventType, id uuid.UUID, version int64, actor uuid.UUID) {
	event := shared.BookingEvent{
		ID:         uuid.New(),
		Type:       typ,
		BookingID:  id,
		Version:    version,
		ActorID:    actor,
		OccurredAt: uc.clock.Now(),
	}

	// The write has committed; a client disconnect must not drop the event.
	if err := uc.events.Publish(context.WithoutCancel(ctx), event); err != nil {
		metrics.ObserveEventPublishError()
		slog.WarnContext(ctx, "failed to publish booking event",
			"type", string(typ),
			"booking_id", id.String(),
			"version", version,
			"error", err.Error())
	}
}
