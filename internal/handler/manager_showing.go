package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lynriescoop/cinema-booking/internal/model"
	"github.com/lynriescoop/cinema-booking/internal/repository"
)

// ManagerShowingHandler schedules showings. Creation and rescheduling
// run check-and-insert inside one transaction: the room row is locked
// first, then the overlap query runs, so two managers scheduling into
// the same room serialize and the second sees the first's showing.
type ManagerShowingHandler struct {
	DB       *sql.DB
	Showings *repository.ShowingRepo
	Rooms    *repository.RoomRepo
	Movies   *repository.MovieRepo
}

func NewManagerShowingHandler(db *sql.DB, showings *repository.ShowingRepo, rooms *repository.RoomRepo, movies *repository.MovieRepo) *ManagerShowingHandler {
	if db == nil || showings == nil || rooms == nil || movies == nil {
		panic("nil dependency passed to NewManagerShowingHandler")
	}
	return &ManagerShowingHandler{DB: db, Showings: showings, Rooms: rooms, Movies: movies}
}

type showingReq struct {
	MovieID    uint64    `json:"movie_id"`
	RoomID     uint64    `json:"room_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	PriceCents uint32    `json:"price_cents"`
}

func (r *showingReq) validate() string {
	if r.MovieID == 0 || r.RoomID == 0 {
		return "movie_id and room_id required"
	}
	if r.StartTime.IsZero() || r.EndTime.IsZero() || !r.StartTime.Before(r.EndTime) {
		return "start_time must be before end_time"
	}
	if r.PriceCents == 0 {
		return "price_cents must be positive"
	}
	return ""
}

// Create handles POST /v1/manager/showings.
func (h *ManagerShowingHandler) Create(c echo.Context) error {
	var req showingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx := c.Request().Context()
	if _, err := h.Movies.GetByID(ctx, req.MovieID); err != nil {
		return fail(c, err)
	}

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := h.Rooms.LockByIDTx(ctx, tx, req.RoomID); err != nil {
		return fail(c, err)
	}
	overlaps, err := h.Showings.FindOverlappingTx(ctx, tx, req.RoomID, req.StartTime, req.EndTime)
	if err != nil {
		return fail(c, err)
	}
	if len(overlaps) > 0 {
		return conflictResponse(c, overlaps)
	}

	s := model.Showing{
		MovieID:    req.MovieID,
		RoomID:     req.RoomID,
		StartTime:  req.StartTime.UTC(),
		EndTime:    req.EndTime.UTC(),
		PriceCents: req.PriceCents,
		Status:     model.ShowingScheduled,
	}
	if err := h.Showings.CreateTx(ctx, tx, &s); err != nil {
		return fail(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusCreated, s)
}

// Update handles PUT /v1/manager/showings/:id. The overlap check
// excludes the showing itself so keeping the same slot is always
// legal.
func (h *ManagerShowingHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req showingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx := c.Request().Context()
	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	s, err := h.Showings.GetByIDTx(ctx, tx, id)
	if err != nil {
		return fail(c, err)
	}
	if s.Status != model.ShowingScheduled {
		return fail(c, repository.ErrShowingNotBookable)
	}
	if req.MovieID != s.MovieID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie cannot change; delete and recreate the showing"})
	}

	if _, err := h.Rooms.LockByIDTx(ctx, tx, req.RoomID); err != nil {
		return fail(c, err)
	}
	overlaps, err := h.Showings.FindOverlappingExcludingTx(ctx, tx, req.RoomID, req.StartTime, req.EndTime, s.ID)
	if err != nil {
		return fail(c, err)
	}
	if len(overlaps) > 0 {
		return conflictResponse(c, overlaps)
	}

	s.RoomID = req.RoomID
	s.StartTime = req.StartTime.UTC()
	s.EndTime = req.EndTime.UTC()
	s.PriceCents = req.PriceCents
	if err := h.Showings.UpdateScheduleTx(ctx, tx, s); err != nil {
		return fail(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusOK, s)
}

// Cancel handles POST /v1/manager/showings/:id/cancel. A cancelled
// showing stops conflicting with new showings in its room and refuses
// new bookings.
func (h *ManagerShowingHandler) Cancel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Showings.SetStatus(c.Request().Context(), id, model.ShowingCancelled); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /v1/manager/showings/:id and refuses when any
// booking references the showing.
func (h *ManagerShowingHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Showings.Delete(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListByRoom handles GET /v1/manager/rooms/:id/showings?from=&to=.
func (h *ManagerShowingHandler) ListByRoom(c echo.Context) error {
	roomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	from, to, err := timeRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	showings, err := h.Showings.ListByRoom(c.Request().Context(), roomID, from, to)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"showings": showings})
}

func conflictResponse(c echo.Context, overlaps []*model.Showing) error {
	ids := make([]uint64, len(overlaps))
	for i, o := range overlaps {
		ids[i] = o.ID
	}
	return c.JSON(http.StatusConflict, echo.Map{
		"error":            "time conflict with another showing in this room",
		"conflicting_with": ids,
	})
}

// timeRange parses optional from/to query params, defaulting to the
// coming week.
func timeRange(c echo.Context) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from, to := now, now.Add(7*24*time.Hour)
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = t
	}
	return from, to, nil
}
