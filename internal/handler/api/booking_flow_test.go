//go:build unit

package api_test

import (
	"log/slog"
	"net/http"
	nethttptest "net/http/httptest"
	"sync"
	"testing"
	"time"

	"travel-backoffice/internal/domain/user"
	"travel-backoffice/internal/handler/api"
	reqdto "travel-backoffice/internal/handler/dto/request"
	resdto "travel-backoffice/internal/handler/dto/response"
	"travel-backoffice/internal/handler/httperr"
	"travel-backoffice/internal/handler/middleware"
	"travel-backoffice/internal/infra/events"
	"travel-backoffice/internal/pkg/clock"
	"travel-backoffice/internal/pkg/config"
	"travel-backoffice/internal/usecase/commands"
	"travel-backoffice/internal/usecase/queries"
	"travel-backoffice/tests/common/builder"
	"travel-backoffice/tests/common/httptest"
	"travel-backoffice/tests/common/storetest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlowRouter(t *testing.T, store *storetest.Memory) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, reqdto.RegisterValidators())

	clk := clock.NewMockClock(time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC))
	cmds := commands.NewBookingCommands(store, events.NewNoopPublisher(slog.Default()), clk)
	h := api.NewBookingHandler(cmds, queries.NewBookingQueries(store.Reader()))

	router := gin.New()
	router.Use(middleware.NewLogger(config.NewTestConfig().Log).LoggingMiddleware())
	router.Use(func(c *gin.Context) {
		middleware.SetIdentity(c, uuid.New(), user.RoleAdmin)
		c.Next()
	})
	router.GET("/bookings/:id", h.Get)
	router.POST("/bookings", h.Create)
	router.PATCH("/bookings/:id", h.Update)
	router.DELETE("/bookings/:id", h.Delete)
	return router
}

func TestConcurrentUpdatesOneWinner(t *testing.T) {
	store := storetest.NewMemory()
	router := newFlowRouter(t, store)

	rec := httptest.PerformRequest(t, router, http.MethodPost, "/bookings", builder.NewBookingBuilder().BuildRequestDTO(), "token")
	var created resdto.Envelope[resdto.BookingResponse]
	httptest.AssertSuccessResponse(t, rec, http.StatusCreated, &created)
	require.Equal(t, `"1"`, rec.Header().Get("ETag"))
	url := "/bookings/" + created.Data.ID.String()

	// both writers read version 1 before either swaps
	var arrived sync.WaitGroup
	arrived.Add(2)
	store.AfterFind = func() {
		arrived.Done()
		arrived.Wait()
	}

	bodies := []map[string]any{{"notes": "Update 1"}, {"notes": "Update 2"}}
	results := make([]*nethttptest.ResponseRecorder, len(bodies))
	var wg sync.WaitGroup
	for i, body := range bodies {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = httptest.PerformRequestWithHeaders(t, router, http.MethodPatch, url, body, "token", ifMatch(`"1"`))
		}()
	}
	wg.Wait()
	store.AfterFind = nil

	var won, lost *nethttptest.ResponseRecorder
	winner := -1
	for i, r := range results {
		switch r.Code {
		case http.StatusOK:
			won = r
			winner = i
		case http.StatusPreconditionFailed:
			lost = r
		default:
			t.Fatalf("unexpected status %d: %s", r.Code, r.Body.String())
		}
	}
	require.NotNil(t, won, "one writer must win")
	require.NotNil(t, lost, "one writer must lose")
	assert.Equal(t, `"2"`, won.Header().Get("ETag"))

	conflict := httptest.AssertErrorCode(t, lost, http.StatusPreconditionFailed, httperr.CodePreconditionFailed)
	require.NotNil(t, conflict.CurrentVersion)
	assert.Equal(t, int64(2), *conflict.CurrentVersion)

	// stored fields are exactly the winner's payload
	rec = httptest.PerformRequest(t, router, http.MethodGet, url, nil, "token")
	var got resdto.Envelope[resdto.BookingResponse]
	httptest.AssertSuccessResponse(t, rec, http.StatusOK, &got)
	assert.Equal(t, int64(2), got.Data.Version)
	require.NotNil(t, got.Data.Notes)
	assert.Equal(t, bodies[winner]["notes"], *got.Data.Notes)

	// the loser retries with the version it was told about
	rec = httptest.PerformRequestWithHeaders(t, router, http.MethodPatch, url, map[string]any{"notes": "window seat"}, "token", ifMatch(`"2"`))
	httptest.AssertSuccessResponse(t, rec, http.StatusOK, nil)
	assert.Equal(t, `"3"`, rec.Header().Get("ETag"))
}

func TestConditionalLifecycle(t *testing.T) {
	store := storetest.NewMemory()
	router := newFlowRouter(t, store)

	rec := httptest.PerformRequest(t, router, http.MethodPost, "/bookings", builder.NewBookingBuilder().BuildRequestDTO(), "token")
	var created resdto.Envelope[resdto.BookingResponse]
	httptest.AssertSuccessResponse(t, rec, http.StatusCreated, &created)
	url := "/bookings/" + created.Data.ID.String()

	rec = httptest.PerformRequestWithHeaders(t, router, http.MethodGet, url, nil, "token", map[string]string{"If-None-Match": `"1"`})
	assert.Equal(t, http.StatusNotModified, rec.Code)

	rec = httptest.PerformRequest(t, router, http.MethodPatch, url, map[string]any{"travelers": 3}, "token")
	httptest.AssertErrorCode(t, rec, http.StatusPreconditionRequired, httperr.CodePreconditionRequired)

	rec = httptest.PerformRequestWithHeaders(t, router, http.MethodPatch, url, map[string]any{"travelers": 3}, "token", ifMatch(`"1"`))
	httptest.AssertSuccessResponse(t, rec, http.StatusOK, nil)

	rec = httptest.PerformRequestWithHeaders(t, router, http.MethodGet, url, nil, "token", map[string]string{"If-None-Match": `"1"`})
	var got resdto.Envelope[resdto.BookingResponse]
	httptest.AssertSuccessResponse(t, rec, http.StatusOK, &got)
	assert.Equal(t, `"2"`, rec.Header().Get("ETag"))
	assert.Equal(t, 3, got.Data.Travelers)

	rec = httptest.PerformRequestWithHeaders(t, router, http.MethodDelete, url, nil, "token", ifMatch(`"1"`))
	httptest.AssertErrorCode(t, rec, http.StatusPreconditionFailed, httperr.CodePreconditionFailed)

	rec = httptest.PerformRequestWithHeaders(t, router, http.MethodDelete, url, nil, "token", ifMatch(`"2"`))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.PerformRequestWithHeaders(t, router, http.MethodDelete, url, nil, "token", ifMatch("*"))
	httptest.AssertErrorCode(t, rec, http.StatusNotFound, httperr.CodeNotFound)

	rec = httptest.PerformRequest(t, router, http.MethodGet, url, nil, "token")
	httptest.AssertErrorCode(t, rec, http.StatusNotFound, httperr.CodeNotFound)
}
