package api

import (
	"errors"
	"net/http"
	"strconv"

	"travel-backoffice/internal/domain/booking"
	"travel-backoffice/internal/handler/conditional"
	reqdto "travel-backoffice/internal/handler/dto/request"
	resdto "travel-backoffice/internal/handler/dto/response"
	"travel-backoffice/internal/handler/httperr"
	"travel-backoffice/internal/handler/middleware"
	"travel-backoffice/internal/pkg/errs"
	"travel-backoffice/internal/pkg/metrics"
	"travel-backoffice/internal/usecase/commands"
	"travel-backoffice/internal/usecase/precondition"
	"travel-backoffice/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errUnauthenticated = errors.New("no authenticated caller on context")

type BookingHandler struct {
	cmds commands.BookingCommands
	q    queries.BookingQueries
}

func NewBookingHandler(cmds commands.BookingCommands, q queries.BookingQueries) *BookingHandler {
	return &BookingHandler{cmds: cmds, q: q}
}

// @Summary Get booking
// @Description Get a booking by ID. Send If-None-Match with a previous ETag to receive 304 when unchanged.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param If-None-Match header string false "ETag from a previous response"
// @Success 200 {object} resdto.Envelope[resdto.BookingResponse]
// @Success 304 "Not Modified"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil && !errs.Is(err, queries.ErrBookingNotFound) {
		h.abort(c, err)
		return
	}

	in := precondition.Input{
		Kind:        precondition.Read,
		Exists:      view != nil,
		IfNoneMatch: conditional.ParseIfNoneMatch(c.GetHeader(conditional.HeaderIfNoneMatch)),
	}
	if view != nil {
		in.Current = view.Version
	}
	outcome := precondition.Evaluate(in)
	metrics.ObservePrecondition("read", outcome.String())

	switch outcome {
	case precondition.NotFound:
		h.abort(c, queries.ErrBookingNotFound)
		return
	case precondition.NotModified:
		c.Header(conditional.HeaderETag, conditional.FormatETag(view.Version))
		c.Status(http.StatusNotModified)
		c.Writer.WriteHeaderNow()
		return
	}

	res, err := resdto.FromBookingView(view)
	if err != nil {
		h.abort(c, err)
		return
	}

	c.Header(conditional.HeaderETag, conditional.FormatETag(view.Version))
	if c.Request.Method == http.MethodHead {
		c.Status(http.StatusOK)
		c.Writer.WriteHeaderNow()
		return
	}
	c.JSON(http.StatusOK, resdto.Envelope[*resdto.BookingResponse]{Data: res})
}

// @Summary List bookings
// @Description List bookings newest first with keyset pagination. Each item carries its version for If-Match.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status (pending, confirmed, cancelled, completed)"
// @Param limit query int false "Max items (default 20, max 100)"
// @Param after query string false "Cursor for keyset pagination"
// @Success 200 {object} resdto.Envelope[resdto.BookingListResponse]
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	var filters queries.BookingFilters
	if v := c.Query("status"); v != "" {
		status, err := booking.NewStatus(v)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, httperr.CodeValidation, err, "Invalid status filter", nil)
			return
		}
		s := status.String()
		filters.Status = &s
	}

	limit := queries.DefaultListLimit
	if v := c.Query("limit"); v != "" {
		iv, err := strconv.Atoi(v)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, httperr.CodeValidation, err, "Invalid limit", nil)
			return
		}
		limit = queries.ValidateLimit(iv)
	}

	var cursor *queries.Cursor
	if after := c.Query("after"); after != "" {
		cursor = &queries.Cursor{After: after}
	}

	items, next, err := h.q.List(c.Request.Context(), filters, cursor, limit)
	if err != nil {
		h.abort(c, err)
		return
	}

	res, err := resdto.FromBookingViews(items)
	if err != nil {
		h.abort(c, err)
		return
	}
	out := resdto.BookingListResponse{Items: res}
	if next != nil {
		out.NextCursor = next.After
	}
	c.JSON(http.StatusOK, resdto.Envelope[resdto.BookingListResponse]{Data: out})
}

// @Summary Create booking
// @Description Create a booking. The new booking starts at version 1 and its ETag is returned.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.BookingRequest true "Booking"
// @Success 201 {object} resdto.Envelope[resdto.BookingResponse]
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	var req reqdto.BookingRequest
	if !bind(c, &req) {
		return
	}
	details, err := req.ToDomain()
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, httperr.CodeValidation, err, "Invalid request", nil)
		return
	}

	created, err := h.cmds.Create(c.Request.Context(), commands.CreateBookingCommand{Details: details, ActorID: actorID})
	if err != nil {
		h.abort(c, err)
		return
	}

	c.Header("Location", "/api/bookings/"+created.ID().String())
	h.respond(c, http.StatusCreated, created)
}

// @Summary Update booking
// @Description Partially update a booking. If-Match with the current ETag is required.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param If-Match header string true "Current ETag of the booking"
// @Param request body reqdto.UpdateBookingRequest true "Fields to change"
// @Success 200 {object} resdto.Envelope[resdto.BookingResponse]
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 412 {object} httperr.Response
// @Failure 428 {object} httperr.Response
// @Router /bookings/{id} [patch]
func (h *BookingHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	actorID, ok := actor(c)
	if !ok {
		return
	}

	var req reqdto.UpdateBookingRequest
	if !bind(c, &req) {
		return
	}
	p, err := req.ToDomain()
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, httperr.CodeValidation, err, "Invalid request", nil)
		return
	}

	updated, err := h.cmds.Update(c.Request.Context(), commands.UpdateBookingCommand{
		ID:      id,
		IfMatch: conditional.ParseIfMatch(c.GetHeader(conditional.HeaderIfMatch)),
		Patch:   p,
		ActorID: actorID,
	})
	if err != nil {
		h.abort(c, err)
		return
	}
	h.respond(c, http.StatusOK, updated)
}

// @Summary Replace booking
// @Description Replace every mutable field of a booking. If-Match with the current ETag is required.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param If-Match header string true "Current ETag of the booking"
// @Param request body reqdto.BookingRequest true "Booking"
// @Success 200 {object} resdto.Envelope[resdto.BookingResponse]
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 412 {object} httperr.Response
// @Failure 428 {object} httperr.Response
// @Router /bookings/{id} [put]
func (h *BookingHandler) Replace(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	actorID, ok := actor(c)
	if !ok {
		return
	}

	var req reqdto.BookingRequest
	if !bind(c, &req) {
		return
	}
	details, err := req.ToDomain()
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, httperr.CodeValidation, err, "Invalid request", nil)
		return
	}

	replaced, err := h.cmds.Replace(c.Request.Context(), commands.ReplaceBookingCommand{
		ID:      id,
		IfMatch: conditional.ParseIfMatch(c.GetHeader(conditional.HeaderIfMatch)),
		Details: details,
		ActorID: actorID,
	})
	if err != nil {
		h.abort(c, err)
		return
	}
	h.respond(c, http.StatusOK, replaced)
}

// @Summary Delete booking
// @Description Delete a booking. If-Match with the current ETag is required.
// @Tags bookings
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param If-Match header string true "Current ETag of the booking"
// @Success 204 "No Content"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 412 {object} httperr.Response
// @Failure 428 {object} httperr.Response
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	actorID, ok := actor(c)
	if !ok {
		return
	}

	err := h.cmds.Delete(c.Request.Context(), commands.DeleteBookingCommand{
		ID:      id,
		IfMatch: conditional.ParseIfMatch(c.GetHeader(conditional.HeaderIfMatch)),
		ActorID: actorID,
	})
	if err != nil {
		h.abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BookingHandler) respond(c *gin.Context, status int, b *booking.Booking) {
	c.Header(conditional.HeaderETag, conditional.FormatETag(b.Version()))
	c.JSON(status, resdto.Envelope[*resdto.BookingResponse]{Data: resdto.FromBooking(b)})
}

func (h *BookingHandler) abort(c *gin.Context, err error) {
	var conflict *commands.VersionConflictError

	switch {
	case errs.As(err, &conflict):
		httperr.AbortPreconditionFailed(c, err, conflict.Current)
	case errs.Is(err, commands.ErrPreconditionRequired):
		httperr.AbortWithError(c, http.StatusPreconditionRequired, httperr.CodePreconditionRequired, err,
			"If-Match header is required; GET the booking first and send its ETag", nil)
	case errs.Is(err, commands.ErrBookingNotFound), errs.Is(err, queries.ErrBookingNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, httperr.CodeNotFound, err, "Booking not found", nil)
	case errs.Is(err, booking.ErrValidation):
		httperr.AbortWithError(c, http.StatusBadRequest, httperr.CodeValidation, err, err.Error(), nil)
	case errs.Is(err, queries.ErrInvalidCursor):
		httperr.AbortWithError(c, http.StatusBadRequest, httperr.CodeValidation, err, "Invalid cursor", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, httperr.CodeInternal, err, "Internal error", nil)
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, httperr.CodeValidation, err, "Invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func actor(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, httperr.CodeUnauthorized, errUnauthenticated, "Unauthorized", nil)
		return uuid.Nil, false
	}
	return id, true
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var details any
		if fields := reqdto.Details(err); len(fields) > 0 {
			details = fields
		}
		httperr.AbortWithError(c, http.StatusBadRequest, httperr.CodeValidation, err, "Invalid request", details)
		return false
	}
	return true
}
