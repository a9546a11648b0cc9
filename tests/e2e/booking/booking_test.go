//go:build e2e

package booking_test

import (
	"net/http"
	nethttptest "net/http/httptest"
	"sync"
	"testing"
	"time"

	"travel-backoffice/internal/domain/user"
	"travel-backoffice/internal/handler/conditional"
	"travel-backoffice/internal/handler/dto/response"
	"travel-backoffice/internal/handler/httperr"
	"travel-backoffice/tests/common/authtest"
	"travel-backoffice/tests/common/builder"
	"travel-backoffice/tests/common/dbtest"
	"travel-backoffice/tests/common/httptest"
	"travel-backoffice/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const bookingsURL = "/api/bookings"

type BookingSuite struct {
	e2e.SharedSuite
	jwt *authtest.JWTHelper
}

func (s *BookingSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	s.jwt = authtest.NewJWTHelper(s.Config.JWT)
}

func (s *BookingSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestBookingSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(BookingSuite))
}

func (s *BookingSuite) token(role user.Role) string {
	return s.jwt.GenerateToken(s.T(), uuid.New(), role)
}

func ifMatch(tag string) map[string]string {
	return map[string]string{"If-Match": tag}
}

// =============================================================================
// TestCreateBooking
// =============================================================================

func (s *BookingSuite) TestCreateBooking() {
	s.Run("Normal case: new booking starts at version 1", func() {
		t := s.T()
		token := s.token(user.RoleOperator)
		reqBody := builder.NewBookingBuilder().BuildRequestDTO()

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL, reqBody, token)

		var created response.Envelope[response.BookingResponse]
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &created)
		require.Equal(t, `"1"`, w.Header().Get("ETag"))
		require.Equal(t, bookingsURL+"/"+created.Data.ID.String(), w.Header().Get("Location"))
		require.Equal(t, int64(1), dbtest.BookingVersion(t, s.DB, created.Data.ID))

		dw := httptest.PerformRequest(t, s.Router, http.MethodGet, bookingsURL+"/"+created.Data.ID.String(), nil, token)
		var got response.Envelope[response.BookingResponse]
		httptest.AssertSuccessResponse(t, dw, http.StatusOK, &got)

		opts := []cmp.Option{
			cmpopts.IgnoreFields(response.BookingResponse{}, "CreatedAt", "UpdatedAt"),
		}
		if diff := cmp.Diff(created.Data, got.Data, opts...); diff != "" {
			t.Errorf("Booking response mismatch (-want +got):\n%s", diff)
		}
	})

	s.Run("Error case: viewer cannot create", func() {
		t := s.T()
		reqBody := builder.NewBookingBuilder().BuildRequestDTO()

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL, reqBody, s.token(user.RoleViewer))

		httptest.AssertErrorCode(t, w, http.StatusForbidden, httperr.CodeForbidden)
	})

	s.Run("Error case: unauthenticated request", func() {
		t := s.T()
		w := httptest.PerformRequest(t, s.Router, http.MethodGet, bookingsURL, nil, "")

		httptest.AssertErrorCode(t, w, http.StatusUnauthorized, httperr.CodeUnauthorized)
	})
}

// =============================================================================
// TestConditionalRead
// =============================================================================

func (s *BookingSuite) TestConditionalRead() {
	s.Run("Normal case: matching If-None-Match returns 304", func() {
		t := s.T()
		b := dbtest.InsertBooking(t, s.DB, builder.NewBookingBuilder().WithVersion(5))
		url := bookingsURL + "/" + b.ID().String()
		token := s.token(user.RoleViewer)

		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodGet, url, nil, token, map[string]string{"If-None-Match": `"5"`})
		require.Equal(t, http.StatusNotModified, w.Code)
		require.Empty(t, w.Body.String())
		require.Equal(t, `"5"`, w.Header().Get("ETag"))

		w = httptest.PerformRequestWithHeaders(t, s.Router, http.MethodGet, url, nil, token, map[string]string{"If-None-Match": `"4"`})
		httptest.AssertSuccessResponse(t, w, http.StatusOK, nil)
		require.Equal(t, `"5"`, w.Header().Get("ETag"))
	})

	s.Run("Error case: unknown id is 404", func() {
		t := s.T()
		w := httptest.PerformRequest(t, s.Router, http.MethodGet, bookingsURL+"/"+uuid.NewString(), nil, s.token(user.RoleViewer))

		httptest.AssertErrorCode(t, w, http.StatusNotFound, httperr.CodeNotFound)
	})
}

// =============================================================================
// TestConditionalWrite
// =============================================================================

func (s *BookingSuite) TestConditionalWrite() {
	s.Run("Error case: write without If-Match is 428 and leaves the row untouched", func() {
		t := s.T()
		b := dbtest.InsertBooking(t, s.DB, builder.NewBookingBuilder().WithVersion(2))
		url := bookingsURL + "/" + b.ID().String()

		w := httptest.PerformRequest(t, s.Router, http.MethodPatch, url, map[string]any{"travelers": 4}, s.token(user.RoleOperator))

		httptest.AssertErrorCode(t, w, http.StatusPreconditionRequired, httperr.CodePreconditionRequired)
		require.Equal(t, int64(2), dbtest.BookingVersion(t, s.DB, b.ID()))
	})

	s.Run("Normal case: versions increase by one per successful write", func() {
		t := s.T()
		b := dbtest.InsertBooking(t, s.DB, builder.NewBookingBuilder())
		url := bookingsURL + "/" + b.ID().String()
		token := s.token(user.RoleOperator)

		for want := int64(2); want <= 4; want++ {
			w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPatch, url,
				map[string]any{"travelers": int(want)}, token, ifMatch(conditional.FormatETag(want-1)))

			var got response.Envelope[response.BookingResponse]
			httptest.AssertSuccessResponse(t, w, http.StatusOK, &got)
			require.Equal(t, want, got.Data.Version)
			require.Equal(t, want, dbtest.BookingVersion(t, s.DB, b.ID()))
		}

		reqBody := builder.NewBookingBuilder().With(func(r *builder.BookingBuilder) { r.Destination = "Naha" }).BuildRequestDTO()
		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPut, url, reqBody, token, ifMatch(`"4"`))
		var replaced response.Envelope[response.BookingResponse]
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &replaced)
		require.Equal(t, `"5"`, w.Header().Get("ETag"))
		require.Equal(t, "Naha", replaced.Data.Destination)
	})

	s.Run("Error case: stale If-Match is 412 with the current version", func() {
		t := s.T()
		b := dbtest.InsertBooking(t, s.DB, builder.NewBookingBuilder().WithVersion(3))
		url := bookingsURL + "/" + b.ID().String()

		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPatch, url, map[string]any{"notes": "late"}, s.token(user.RoleOperator), ifMatch(`"2"`))

		body := httptest.AssertErrorCode(t, w, http.StatusPreconditionFailed, httperr.CodePreconditionFailed)
		require.NotNil(t, body.CurrentVersion)
		require.Equal(t, int64(3), *body.CurrentVersion)
		require.Equal(t, int64(3), dbtest.BookingVersion(t, s.DB, b.ID()))
	})

	s.Run("Concurrent case: writers racing on one version, exactly one wins", func() {
		t := s.T()
		b := dbtest.InsertBooking(t, s.DB, builder.NewBookingBuilder())
		url := bookingsURL + "/" + b.ID().String()
		token := s.token(user.RoleOperator)

		const writers = 8
		results := make([]*nethttptest.ResponseRecorder, writers)
		start := make(chan struct{})
		var wg sync.WaitGroup
		for i := range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				results[i] = httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPatch, url,
					map[string]any{"travelers": i + 1}, token, ifMatch(`"1"`))
			}()
		}
		close(start)
		wg.Wait()

		won := 0
		for _, w := range results {
			switch w.Code {
			case http.StatusOK:
				won++
				require.Equal(t, `"2"`, w.Header().Get("ETag"))
			case http.StatusPreconditionFailed:
				body := httptest.AssertErrorCode(t, w, http.StatusPreconditionFailed, httperr.CodePreconditionFailed)
				require.NotNil(t, body.CurrentVersion)
				require.Equal(t, int64(2), *body.CurrentVersion)
			default:
				t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
			}
		}
		require.Equal(t, 1, won)
		require.Equal(t, int64(2), dbtest.BookingVersion(t, s.DB, b.ID()))
	})
}

// =============================================================================
// TestDeleteBooking
// =============================================================================

func (s *BookingSuite) TestDeleteBooking() {
	s.Run("Normal case: admin deletes with the current tag", func() {
		t := s.T()
		b := dbtest.InsertBooking(t, s.DB, builder.NewBookingBuilder().WithVersion(2))
		url := bookingsURL + "/" + b.ID().String()
		token := s.token(user.RoleAdmin)

		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodDelete, url, nil, token, ifMatch(`"1"`))
		httptest.AssertErrorCode(t, w, http.StatusPreconditionFailed, httperr.CodePreconditionFailed)

		w = httptest.PerformRequestWithHeaders(t, s.Router, http.MethodDelete, url, nil, token, ifMatch(`"2"`))
		require.Equal(t, http.StatusNoContent, w.Code)
		require.Equal(t, int64(-1), dbtest.BookingVersion(t, s.DB, b.ID()))

		w = httptest.PerformRequestWithHeaders(t, s.Router, http.MethodDelete, url, nil, token, ifMatch("*"))
		httptest.AssertErrorCode(t, w, http.StatusNotFound, httperr.CodeNotFound)
	})

	s.Run("Error case: operator cannot delete", func() {
		t := s.T()
		b := dbtest.InsertBooking(t, s.DB, builder.NewBookingBuilder())

		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodDelete, bookingsURL+"/"+b.ID().String(), nil, s.token(user.RoleOperator), ifMatch(`"1"`))

		httptest.AssertErrorCode(t, w, http.StatusForbidden, httperr.CodeForbidden)
	})
}

// =============================================================================
// TestListBookings
// =============================================================================

func (s *BookingSuite) TestListBookings() {
	s.Run("Normal case: keyset pages carry versions", func() {
		t := s.T()
		base := builder.NewBookingBuilder().CreatedAt
		for i := range 3 {
			dbtest.InsertBooking(t, s.DB, builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
				b.CreatedAt = base.Add(-time.Duration(i) * time.Hour)
				b.Version = int64(i + 1)
			}))
		}
		token := s.token(user.RoleViewer)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, bookingsURL+"?limit=2", nil, token)
		var page response.Envelope[response.BookingListResponse]
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &page)
		require.Len(t, page.Data.Items, 2)
		require.Equal(t, int64(1), page.Data.Items[0].Version)
		require.Equal(t, int64(2), page.Data.Items[1].Version)
		require.NotEmpty(t, page.Data.NextCursor)

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, bookingsURL+"?limit=2&after="+page.Data.NextCursor, nil, token)
		var next response.Envelope[response.BookingListResponse]
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &next)
		require.Len(t, next.Data.Items, 1)
		require.Equal(t, int64(3), next.Data.Items[0].Version)
		require.Empty(t, next.Data.NextCursor)
	})
}
