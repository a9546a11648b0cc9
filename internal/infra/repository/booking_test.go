//go:build unit

package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"travel-backoffice/internal/infra"
	sqlc "travel-backoffice/internal/infra/sqlc/generated"
	"travel-backoffice/tests/common/builder"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingWriteQueries struct {
	mock.Mock
}

func (m *MockBookingWriteQueries) GetBookingByID(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Bookings, error) {
	args := m.Called(ctx, db, id)
	return args.Get(0).(sqlc.Bookings), args.Error(1)
}

func (m *MockBookingWriteQueries) GetBookingVersion(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, db, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingWriteQueries) InsertBooking(ctx context.Context, db sqlc.DBTX, arg sqlc.InsertBookingParams) error {
	args := m.Called(ctx, db, arg)
	return args.Error(0)
}

func (m *MockBookingWriteQueries) CompareAndSwapBooking(ctx context.Context, db sqlc.DBTX, arg sqlc.CompareAndSwapBookingParams) (sqlc.Bookings, error) {
	args := m.Called(ctx, db, arg)
	return args.Get(0).(sqlc.Bookings), args.Error(1)
}

func (m *MockBookingWriteQueries) CompareAndDeleteBooking(ctx context.Context, db sqlc.DBTX, arg sqlc.CompareAndDeleteBookingParams) (int64, error) {
	args := m.Called(ctx, db, arg)
	return args.Get(0).(int64), args.Error(1)
}

func newTestRepository(q *MockBookingWriteQueries) *BookingRepository {
	return NewBookingRepository(q, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFindByID(t *testing.T) {
	b := builder.NewBookingBuilder().WithVersion(3)

	tests := []struct {
		name      string
		row       sqlc.Bookings
		mockError error
		wantKind  infra.RepositoryErrorKind
	}{
		{name: "success", row: b.BuildInfra()},
		{name: "not found", row: sqlc.Bookings{}, mockError: pgx.ErrNoRows, wantKind: infra.KindNotFound},
		{name: "database error", row: sqlc.Bookings{}, mockError: assert.AnError, wantKind: infra.KindDBFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := new(MockBookingWriteQueries)
			q.On("GetBookingByID", mock.Anything, mock.Anything, b.ID).Return(tt.row, tt.mockError)

			got, err := newTestRepository(q).FindByID(context.Background(), b.ID)

			if tt.wantKind != "" {
				require.Error(t, err)
				assert.True(t, infra.IsKind(err, tt.wantKind))
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, b.ID, got.ID())
				assert.Equal(t, int64(3), got.Version())
				assert.Equal(t, b.Details(), got.Details())
			}
			q.AssertExpectations(t)
		})
	}
}

func TestInsert(t *testing.T) {
	b := builder.NewBookingBuilder()

	t.Run("success", func(t *testing.T) {
		q := new(MockBookingWriteQueries)
		q.On("InsertBooking", mock.Anything, mock.Anything, mock.MatchedBy(func(p sqlc.InsertBookingParams) bool {
			return p.ID == b.ID && p.Version == 1 && p.Status == "pending" && p.CustomerEmail.Valid && !p.Notes.Valid
		})).Return(nil)

		err := newTestRepository(q).Insert(context.Background(), b.BuildDomain())

		require.NoError(t, err)
		q.AssertExpectations(t)
	})

	t.Run("duplicate key", func(t *testing.T) {
		q := new(MockBookingWriteQueries)
		q.On("InsertBooking", mock.Anything, mock.Anything, mock.Anything).Return(&pgconn.PgError{Code: "23505"})

		err := newTestRepository(q).Insert(context.Background(), b.BuildDomain())

		require.Error(t, err)
		assert.True(t, infra.IsKind(err, infra.KindDuplicateKey))
	})
}

func TestCompareAndSwap(t *testing.T) {
	now := time.Date(2026, 10, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		expected    int64
		casRow      sqlc.Bookings
		casErr      error
		versionCall bool
		current     int64
		versionErr  error
		wantVersion int64
		wantKind    infra.RepositoryErrorKind
		wantCurrent int64
	}{
		{
			name:        "matching version is swapped",
			expected:    2,
			casRow:      builder.NewBookingBuilder().WithVersion(3).BuildInfra(),
			wantVersion: 3,
		},
		{
			name:        "stale version reports the current one",
			expected:    2,
			casErr:      pgx.ErrNoRows,
			versionCall: true,
			current:     5,
			wantKind:    infra.KindVersionMismatch,
			wantCurrent: 5,
		},
		{
			name:        "row deleted meanwhile",
			expected:    2,
			casErr:      pgx.ErrNoRows,
			versionCall: true,
			versionErr:  pgx.ErrNoRows,
			wantKind:    infra.KindNotFound,
		},
		{
			name:     "database error",
			expected: 2,
			casErr:   assert.AnError,
			wantKind: infra.KindDBFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			details := builder.NewBookingBuilder().Details()
			q := new(MockBookingWriteQueries)
			q.On("CompareAndSwapBooking", mock.Anything, mock.Anything, mock.MatchedBy(func(p sqlc.CompareAndSwapBookingParams) bool {
				return p.ID == id && p.Version == tt.expected && p.UpdatedAt.Time.Equal(now)
			})).Return(tt.casRow, tt.casErr)
			if tt.versionCall {
				q.On("GetBookingVersion", mock.Anything, mock.Anything, id).Return(tt.current, tt.versionErr)
			}

			got, err := newTestRepository(q).CompareAndSwap(context.Background(), id, tt.expected, details, now)

			if tt.wantKind != "" {
				require.Error(t, err)
				assert.True(t, infra.IsKind(err, tt.wantKind))
				current, ok := infra.CurrentVersion(err)
				assert.Equal(t, tt.wantKind == infra.KindVersionMismatch, ok)
				assert.Equal(t, tt.wantCurrent, current)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantVersion, got.Version())
			}
			q.AssertExpectations(t)
		})
	}
}

func TestCompareAndDelete(t *testing.T) {
	tests := []struct {
		name        string
		affected    int64
		deleteErr   error
		versionCall bool
		current     int64
		versionErr  error
		wantKind    infra.RepositoryErrorKind
	}{
		{name: "deleted", affected: 1},
		{name: "stale version", affected: 0, versionCall: true, current: 4, wantKind: infra.KindVersionMismatch},
		{name: "already gone", affected: 0, versionCall: true, versionErr: pgx.ErrNoRows, wantKind: infra.KindNotFound},
		{name: "database error", deleteErr: assert.AnError, wantKind: infra.KindDBFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			q := new(MockBookingWriteQueries)
			q.On("CompareAndDeleteBooking", mock.Anything, mock.Anything, sqlc.CompareAndDeleteBookingParams{ID: id, Version: 3}).
				Return(tt.affected, tt.deleteErr)
			if tt.versionCall {
				q.On("GetBookingVersion", mock.Anything, mock.Anything, id).Return(tt.current, tt.versionErr)
			}

			err := newTestRepository(q).CompareAndDelete(context.Background(), id, 3)

			if tt.wantKind != "" {
				require.Error(t, err)
				assert.True(t, infra.IsKind(err, tt.wantKind))
			} else {
				require.NoError(t, err)
			}
			q.AssertExpectations(t)
		})
	}
}
