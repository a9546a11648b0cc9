//go:build unit || e2e

package dbtest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"travel-backoffice/internal/domain/booking"
	"travel-backoffice/tests/common/builder"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// InsertBooking writes a row directly, bypassing the API, so tests can start
// from an arbitrary version.
func InsertBooking(t *testing.T, db DBLike, b *builder.BookingBuilder) *booking.Booking {
	t.Helper()

	row := b.BuildInfra()
	_, err := db.Exec(context.Background(), `
		INSERT INTO bookings (id, version, customer_name, customer_email, destination, status,
		    departure_date, return_date, travelers, total_price_cents, currency, notes,
		    created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		row.ID, row.Version, row.CustomerName, row.CustomerEmail, row.Destination, row.Status,
		row.DepartureDate, row.ReturnDate, row.Travelers, row.TotalPriceCents, row.Currency, row.Notes,
		row.CreatedBy, row.CreatedAt, row.UpdatedAt)
	require.NoError(t, err)

	return b.BuildDomain()
}

// BookingVersion reads the stored version; -1 when the row is gone.
func BookingVersion(t *testing.T, db DBLike, id uuid.UUID) int64 {
	t.Helper()

	var v int64
	err := db.QueryRow(context.Background(), "SELECT version FROM bookings WHERE id = $1", id).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return -1
	}
	require.NoError(t, err)
	return v
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations', 'atlas_schema_revisions')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}
