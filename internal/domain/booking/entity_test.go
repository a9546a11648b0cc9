//go:build unit

package booking_test

import (
	"strings"
	"testing"
	"time"

	"travel-backoffice/internal/domain/booking"
	"travel-backoffice/internal/pkg/errs"
	"travel-backoffice/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cmpOpts = []cmp.Option{
	cmpopts.IgnoreUnexported(booking.Booking{}),
	cmpopts.EquateEmpty(),
}

type testCase struct {
	name   string
	mutate func(*builder.BookingBuilder)
	errIs  error
}

func ptr[T any](v T) *T { return &v }

func TestBooking(t *testing.T) {
	t.Run("基本成功ケース", func(t *testing.T) {
		b := builder.NewBookingBuilder()

		actual, err := booking.NewBooking(uuid.Nil, b.Details(), b.CreatedBy, b.CreatedAt)
		require.NoError(t, err)
		require.NotNil(t, actual)

		if diff := cmp.Diff(b.Details(), actual.Details(), cmpOpts...); diff != "" {
			t.Errorf("Details mismatch (-want +got):\n%s", diff)
		}
		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, booking.InitialVersion, actual.Version())
		assert.Equal(t, b.CreatedBy, actual.CreatedBy())
		assert.Equal(t, b.CreatedAt, actual.CreatedAt())
		assert.Equal(t, actual.CreatedAt(), actual.UpdatedAt())
	})

	t.Run("IDを指定した場合はそのまま使う", func(t *testing.T) {
		id := uuid.New()
		b := builder.NewBookingBuilder()

		actual, err := booking.NewBooking(id, b.Details(), b.CreatedBy, b.CreatedAt)
		require.NoError(t, err)
		assert.Equal(t, id, actual.ID())
	})

	t.Run("デフォルト値と正規化", func(t *testing.T) {
		b := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
			b.CustomerName = "  Hanako Sato  "
			b.Status = ""
			b.Travelers = 0
			b.Currency = " usd "
			b.Notes = ptr("   ")
			b.CustomerEmail = ptr("")
			b.DepartureDate = time.Date(2026, 11, 3, 15, 30, 0, 0, time.UTC)
		})

		actual, err := booking.NewBooking(uuid.Nil, b.Details(), b.CreatedBy, b.CreatedAt)
		require.NoError(t, err)

		d := actual.Details()
		assert.Equal(t, "Hanako Sato", d.CustomerName)
		assert.Equal(t, booking.StatusPending, d.Status)
		assert.Equal(t, booking.DefaultTravelers, d.Travelers)
		assert.Equal(t, "USD", d.Currency)
		assert.Nil(t, d.Notes)
		assert.Nil(t, d.CustomerEmail)
		assert.Equal(t, time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC), d.DepartureDate)
	})

	t.Run("顧客名検証", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "最大長OK",
				mutate: func(b *builder.BookingBuilder) { b.CustomerName = strings.Repeat("あ", booking.MaxNameLength) },
			},
			{
				name:   "空の顧客名NG",
				mutate: func(b *builder.BookingBuilder) { b.CustomerName = "   " },
				errIs:  booking.ErrEmptyCustomerName,
			},
			{
				name:   "最大長超過NG",
				mutate: func(b *builder.BookingBuilder) { b.CustomerName = strings.Repeat("a", booking.MaxNameLength+1) },
				errIs:  booking.ErrCustomerNameTooLong,
			},
			{
				name:   "無効なメールアドレスNG",
				mutate: func(b *builder.BookingBuilder) { b.CustomerEmail = ptr("invalid-email") },
				errIs:  booking.ErrInvalidEmail,
			},
		})
	})

	t.Run("旅程検証", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "空の目的地NG",
				mutate: func(b *builder.BookingBuilder) { b.Destination = "" },
				errIs:  booking.ErrEmptyDestination,
			},
			{
				name:   "出発日なしNG",
				mutate: func(b *builder.BookingBuilder) { b.DepartureDate = time.Time{} },
				errIs:  booking.ErrMissingDeparture,
			},
			{
				name: "帰着日が出発日と同日OK",
				mutate: func(b *builder.BookingBuilder) {
					b.ReturnDate = ptr(b.DepartureDate)
				},
			},
			{
				name: "帰着日が出発日より前NG",
				mutate: func(b *builder.BookingBuilder) {
					b.ReturnDate = ptr(b.DepartureDate.AddDate(0, 0, -1))
				},
				errIs: booking.ErrReturnBeforeDepart,
			},
			{
				name:   "帰着日なしOK",
				mutate: func(b *builder.BookingBuilder) { b.ReturnDate = nil },
			},
		})
	})

	t.Run("人数と金額の検証", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "人数上限OK",
				mutate: func(b *builder.BookingBuilder) { b.Travelers = booking.MaxTravelers },
			},
			{
				name:   "人数上限超過NG",
				mutate: func(b *builder.BookingBuilder) { b.Travelers = booking.MaxTravelers + 1 },
				errIs:  booking.ErrInvalidTravelers,
			},
			{
				name:   "人数マイナスNG",
				mutate: func(b *builder.BookingBuilder) { b.Travelers = -1 },
				errIs:  booking.ErrInvalidTravelers,
			},
			{
				name:   "金額ゼロOK",
				mutate: func(b *builder.BookingBuilder) { b.TotalPriceCents = 0 },
			},
			{
				name:   "金額マイナスNG",
				mutate: func(b *builder.BookingBuilder) { b.TotalPriceCents = -1 },
				errIs:  booking.ErrNegativePrice,
			},
			{
				name:   "無効な通貨NG",
				mutate: func(b *builder.BookingBuilder) { b.Currency = "YENN" },
				errIs:  booking.ErrInvalidCurrency,
			},
			{
				name:   "備考の最大長超過NG",
				mutate: func(b *builder.BookingBuilder) { b.Notes = ptr(strings.Repeat("a", booking.MaxNotesLength+1)) },
				errIs:  booking.ErrNotesTooLong,
			},
		})
	})

	t.Run("ステータス検証", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "confirmed OK",
				mutate: func(b *builder.BookingBuilder) { b.Status = "confirmed" },
			},
			{
				name:   "completed OK",
				mutate: func(b *builder.BookingBuilder) { b.Status = "completed" },
			},
			{
				name:   "無効なステータスNG",
				mutate: func(b *builder.BookingBuilder) { b.Status = "lost" },
				errIs:  booking.ErrInvalidStatus,
			},
		})
	})
}

func TestDetailsMerge(t *testing.T) {
	current := builder.NewBookingBuilder().Details()

	t.Run("指定したフィールドのみ上書き", func(t *testing.T) {
		confirmed := booking.StatusConfirmed
		merged, err := current.Merge(booking.Patch{Status: &confirmed, Travelers: ptr(3)})
		require.NoError(t, err)

		want := current
		want.Status = booking.StatusConfirmed
		want.Travelers = 3
		if diff := cmp.Diff(want, merged, cmpOpts...); diff != "" {
			t.Errorf("Merge mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("空のパッチNG", func(t *testing.T) {
		_, err := current.Merge(booking.Patch{})
		require.ErrorIs(t, err, booking.ErrEmptyPatch)
		assert.True(t, booking.Patch{}.IsEmpty())
	})

	t.Run("マージ後の整合性を検証", func(t *testing.T) {
		early := current.DepartureDate.AddDate(0, 0, -10)
		late := current.ReturnDate.AddDate(0, 0, 1)

		_, err := current.Merge(booking.Patch{DepartureDate: &late})
		require.ErrorIs(t, err, booking.ErrReturnBeforeDepart)

		merged, err := current.Merge(booking.Patch{DepartureDate: &early})
		require.NoError(t, err)
		assert.Equal(t, early, merged.DepartureDate)
	})

	t.Run("元のDetailsは変更されない", func(t *testing.T) {
		before := current
		_, err := current.Merge(booking.Patch{Destination: ptr("Osaka")})
		require.NoError(t, err)
		assert.Equal(t, before, current)
	})
}

func TestValidationMark(t *testing.T) {
	for _, err := range []error{
		booking.ErrEmptyCustomerName,
		booking.ErrInvalidStatus,
		booking.ErrReturnBeforeDepart,
		booking.ErrEmptyPatch,
	} {
		assert.True(t, errs.Is(err, booking.ErrValidation), err.Error())
	}
	assert.False(t, errs.Is(errs.New("other"), booking.ErrValidation))
}

func TestStatusAndVersion(t *testing.T) {
	s, err := booking.NewStatus(" Confirmed ")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, s)

	_, err = booking.NewStatus("")
	require.ErrorIs(t, err, booking.ErrInvalidStatus)

	assert.Equal(t, int64(2), booking.NextVersion(booking.InitialVersion))
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := builder.NewBookingBuilder().With(c.mutate)

			actual, err := booking.NewBooking(uuid.Nil, b.Details(), b.CreatedBy, b.CreatedAt)

			if c.errIs == nil {
				require.NotNil(t, actual)
				require.NoError(t, err)
			} else {
				require.Nil(t, actual)
				require.Error(t, err)
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}
