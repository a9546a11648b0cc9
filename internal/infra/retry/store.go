// Package retry wraps a booking store with bounded retries of transient
// failures. Version mismatches are decisions, not failures, and pass through
// untouched.
package retry

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"net"
	"time"

	"travel-backoffice/internal/domain/booking"
	"travel-backoffice/internal/infra"
	"travel-backoffice/internal/pkg/errs"
	"travel-backoffice/internal/pkg/metrics"
	"travel-backoffice/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var ErrMaxRetriesExceeded = errs.New("store operation failed after max retries")

type Store struct {
	next       shared.BookingStore
	driver     string
	maxRetries int
	base       time.Duration
	logger     *slog.Logger
}

var _ shared.BookingStore = (*Store)(nil)

func NewStore(next shared.BookingStore, driver string, maxRetries int, base time.Duration, logger *slog.Logger) *Store {
	return &Store{
		next:       next,
		driver:     driver,
		maxRetries: maxRetries,
		base:       base,
		logger:     logger,
	}
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	var out *booking.Booking
	err := s.do(ctx, "find", isRetryableRead, func(ctx context.Context) error {
		var err error
		out, err = s.next.FindByID(ctx, id)
		return err
	})
	return out, err
}

func (s *Store) Insert(ctx context.Context, b *booking.Booking) error {
	return s.do(ctx, "insert", isRetryableWrite, func(ctx context.Context) error {
		return s.next.Insert(ctx, b)
	})
}

func (s *Store) CompareAndSwap(ctx context.Context, id uuid.UUID, expected int64, details booking.Details, now time.Time) (*booking.Booking, error) {
	var out *booking.Booking
	err := s.do(ctx, "compare_and_swap", isRetryableWrite, func(ctx context.Context) error {
		var err error
		out, err = s.next.CompareAndSwap(ctx, id, expected, details, now)
		return err
	})
	return out, err
}

func (s *Store) CompareAndDelete(ctx context.Context, id uuid.UUID, expected int64) error {
	return s.do(ctx, "compare_and_delete", isRetryableWrite, func(ctx context.Context) error {
		return s.next.CompareAndDelete(ctx, id, expected)
	})
}

func (s *Store) do(ctx context.Context, op string, retryable func(error) bool, fn func(ctx context.Context) error) error {
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		if attempt >= s.maxRetries {
			s.logger.Error("store operation failed after max retries",
				"operation", op,
				"driver", s.driver,
				"attempts", attempt+1,
				"error", err.Error())
			return errs.Mark(err, ErrMaxRetriesExceeded)
		}

		waitTime := calculateBackoff(attempt, s.base)
		metrics.ObserveStoreRetry(s.driver)
		s.logger.Warn("retrying store operation due to transient error",
			"operation", op,
			"driver", s.driver,
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- masked to a non-negative value above
	return int64(uval) % n
}

// isRetryableWrite only accepts errors where the write is known not to have
// been applied, so a retried compare-and-swap cannot trip over its own
// earlier success.
func isRetryableWrite(err error) bool {
	if isDecision(err) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
			return true
		}
		return false
	}
	return pgconn.SafeToRetry(err)
}

func isRetryableRead(err error) bool {
	if isDecision(err) {
		return false
	}
	if isRetryableWrite(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isDecision(err error) bool {
	return infra.IsKind(err, infra.KindNotFound) ||
		infra.IsKind(err, infra.KindVersionMismatch) ||
		infra.IsKind(err, infra.KindDuplicateKey) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
