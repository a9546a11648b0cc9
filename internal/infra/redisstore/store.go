// Package redisstore keeps the booking version store in Redis. Conditional
// writes run as Lua scripts so the compare and the swap happen in one step
// on the server.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"travel-backoffice/internal/domain/booking"
	"travel-backoffice/internal/infra"
	"travel-backoffice/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const scanBatch = 100

type Store struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

var _ shared.BookingStore = (*Store)(nil)

func NewStore(client redis.UniversalClient, prefix string, logger *slog.Logger) *Store {
	return &Store{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

// Keys share a hash tag so scripts touching a booking and the index stay in
// one cluster slot.
func (s *Store) bookingKey(id uuid.UUID) string {
	return "{" + s.prefix + "}:booking:" + id.String()
}

func (s *Store) indexKey() string {
	return "{" + s.prefix + "}:index"
}

type detailsRecord struct {
	CustomerName    string     `json:"customer_name"`
	CustomerEmail   *string    `json:"customer_email,omitempty"`
	Destination     string     `json:"destination"`
	Status          string     `json:"status"`
	DepartureDate   time.Time  `json:"departure_date"`
	ReturnDate      *time.Time `json:"return_date,omitempty"`
	Travelers       int        `json:"travelers"`
	TotalPriceCents int64      `json:"total_price_cents"`
	Currency        string     `json:"currency"`
	Notes           *string    `json:"notes,omitempty"`
}

func encodeDetails(d booking.Details) (string, error) {
	b, err := json.Marshal(detailsRecord{
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
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeDetails(raw string) (booking.Details, error) {
	var r detailsRecord
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return booking.Details{}, err
	}
	return booking.Details{
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		Destination:     r.Destination,
		Status:          booking.Status(r.Status),
		DepartureDate:   booking.Date(r.DepartureDate),
		ReturnDate:      datePtr(r.ReturnDate),
		Travelers:       r.Travelers,
		TotalPriceCents: r.TotalPriceCents,
		Currency:        r.Currency,
		Notes:           r.Notes,
	}, nil
}

func datePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := booking.Date(*t)
	return &d
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// score orders the index by creation time. Microseconds fit a float64 exactly.
func score(t time.Time) float64 {
	return float64(t.UnixMicro())
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	fields, err := s.client.HGetAll(ctx, s.bookingKey(id)).Result()
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to read booking hash", err)
	}
	if len(fields) == 0 {
		return nil, infra.WrapRepoErr(s.logger, infra.KindNotFound, "booking not found", nil)
	}
	b, err := fromHash(id, fields)
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to decode booking hash", err)
	}
	return b, nil
}

func (s *Store) Insert(ctx context.Context, b *booking.Booking) error {
	details, err := encodeDetails(b.Details())
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to encode booking details", err)
	}

	applied, err := insertScript.Run(ctx, s.client,
		[]string{s.bookingKey(b.ID()), s.indexKey()},
		b.Version(),
		details,
		b.CreatedBy().String(),
		formatTime(b.CreatedAt()),
		formatTime(b.UpdatedAt()),
		score(b.CreatedAt()),
		b.ID().String(),
	).Int64()
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to insert booking", err)
	}
	if applied == 0 {
		return infra.WrapRepoErr(s.logger, infra.KindDuplicateKey, "booking already exists", nil)
	}
	return nil
}

func (s *Store) CompareAndSwap(ctx context.Context, id uuid.UUID, expected int64, details booking.Details, now time.Time) (*booking.Booking, error) {
	encoded, err := encodeDetails(details)
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to encode booking details", err)
	}

	reply, err := compareAndSwapScript.Run(ctx, s.client,
		[]string{s.bookingKey(id)},
		expected,
		encoded,
		formatTime(now),
	).Slice()
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to compare-and-swap booking", err)
	}

	status, version, err := scriptStatus(reply)
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "unexpected compare-and-swap reply", err)
	}
	if err := s.miss(id, expected, status, version); err != nil {
		return nil, err
	}

	if len(reply) < 4 {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "unexpected compare-and-swap reply",
			fmt.Errorf("reply has %d elements", len(reply)))
	}
	createdBy, err := uuid.Parse(fmt.Sprint(reply[2]))
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to decode booking creator", err)
	}
	createdAt, err := parseTime(fmt.Sprint(reply[3]))
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to decode booking creation time", err)
	}
	stored, err := decodeDetails(encoded)
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to decode booking details", err)
	}
	return booking.Reconstruct(id, version, stored, createdBy, createdAt, now.UTC()), nil
}

func (s *Store) CompareAndDelete(ctx context.Context, id uuid.UUID, expected int64) error {
	reply, err := compareAndDeleteScript.Run(ctx, s.client,
		[]string{s.bookingKey(id), s.indexKey()},
		expected,
		id.String(),
	).Slice()
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to compare-and-delete booking", err)
	}
	status, version, err := scriptStatus(reply)
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "unexpected compare-and-delete reply", err)
	}
	return s.miss(id, expected, status, version)
}

func (s *Store) miss(id uuid.UUID, expected, status, current int64) error {
	switch status {
	case statusApplied:
		return nil
	case statusMissing:
		return infra.WrapRepoErr(s.logger, infra.KindNotFound, "booking not found", nil)
	case statusMismatch:
		s.logger.Debug("compare-and-swap rejected",
			slog.String("booking_id", id.String()),
			slog.Int64("expected_version", expected),
			slog.Int64("current_version", current))
		return infra.NewVersionMismatch(current)
	default:
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "unexpected script status",
			fmt.Errorf("status %d", status))
	}
}

func scriptStatus(reply []interface{}) (status, version int64, err error) {
	if len(reply) < 2 {
		return 0, 0, fmt.Errorf("reply has %d elements", len(reply))
	}
	status, ok := reply[0].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("status is %T", reply[0])
	}
	version, ok = reply[1].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("version is %T", reply[1])
	}
	return status, version, nil
}

func fromHash(id uuid.UUID, fields map[string]string) (*booking.Booking, error) {
	version, err := strconv.ParseInt(fields["version"], 10, 64)
	if err != nil {
		return nil, err
	}
	details, err := decodeDetails(fields["details"])
	if err != nil {
		return nil, err
	}
	createdBy, err := uuid.Parse(fields["created_by"])
	if err != nil {
		return nil, err
	}
	createdAt, err := parseTime(fields["created_at"])
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTime(fields["updated_at"])
	if err != nil {
		return nil, err
	}
	return booking.Reconstruct(id, version, details, createdBy, createdAt, updatedAt), nil
}
