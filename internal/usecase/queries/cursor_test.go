//go:build unit

package queries_test

import (
	"encoding/base64"
	"testing"
	"time"

	"travel-backoffice/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 10, 17, 12, 34, 56, 789123000, time.UTC)
	id := uuid.New()

	ts, got, err := queries.DecodeAfterCursor(queries.EncodeAfterCursor(at, id))
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.True(t, at.Equal(ts))
}

func TestCursorTruncatesToMicroseconds(t *testing.T) {
	at := time.Date(2026, 10, 17, 0, 0, 0, 1999, time.UTC)

	ts, _, err := queries.DecodeAfterCursor(queries.EncodeAfterCursor(at, uuid.New()))
	require.NoError(t, err)
	assert.True(t, at.Truncate(time.Microsecond).Equal(ts), "got %s", ts)
}

func TestDecodeAfterCursorErrors(t *testing.T) {
	enc := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }

	cases := []struct {
		name   string
		cursor string
	}{
		{name: "empty", cursor: ""},
		{name: "not base64", cursor: "!!"},
		{name: "unknown version", cursor: enc("v2:1-" + uuid.NewString())},
		{name: "missing separator", cursor: enc("v1:12345")},
		{name: "bad timestamp", cursor: enc("v1:abc-" + uuid.NewString())},
		{name: "bad uuid", cursor: enc("v1:12345-not-a-uuid")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := queries.DecodeAfterCursor(c.cursor)
			assert.Error(t, err)
		})
	}
}

func TestValidateLimit(t *testing.T) {
	assert.Equal(t, queries.DefaultListLimit, queries.ValidateLimit(0))
	assert.Equal(t, queries.DefaultListLimit, queries.ValidateLimit(-3))
	assert.Equal(t, 7, queries.ValidateLimit(7))
	assert.Equal(t, queries.MaxListLimit, queries.ValidateLimit(queries.MaxListLimit+1))
}
