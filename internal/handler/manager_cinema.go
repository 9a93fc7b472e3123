package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lynriescoop/cinema-booking/internal/model"
	"github.com/lynriescoop/cinema-booking/internal/repository"
)

// ManagerCinemaHandler lets managers maintain cinemas and their rooms.
type ManagerCinemaHandler struct {
	Cinemas *repository.CinemaRepo
	Rooms   *repository.RoomRepo
}

func NewManagerCinemaHandler(cinemas *repository.CinemaRepo, rooms *repository.RoomRepo) *ManagerCinemaHandler {
	if cinemas == nil || rooms == nil {
		panic("nil repository passed to NewManagerCinemaHandler")
	}
	return &ManagerCinemaHandler{Cinemas: cinemas, Rooms: rooms}
}

type cinemaReq struct {
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	PostalCode *string `json:"postal_code"`
	Phone      *string `json:"phone"`
	IsActive   *bool   `json:"is_active"`
}

// CreateCinema handles POST /v1/manager/cinemas.
func (h *ManagerCinemaHandler) CreateCinema(c echo.Context) error {
	var req cinemaReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || strings.TrimSpace(req.City) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and city required"})
	}
	cin := model.Cinema{
		Name:       req.Name,
		Address:    strings.TrimSpace(req.Address),
		City:       strings.TrimSpace(req.City),
		PostalCode: req.PostalCode,
		Phone:      req.Phone,
		IsActive:   true,
	}
	if err := h.Cinemas.Create(c.Request().Context(), &cin); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, cin)
}

// UpdateCinema handles PUT /v1/manager/cinemas/:id.
func (h *ManagerCinemaHandler) UpdateCinema(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req cinemaReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx := c.Request().Context()
	cin, err := h.Cinemas.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		cin.Name = name
	}
	if addr := strings.TrimSpace(req.Address); addr != "" {
		cin.Address = addr
	}
	if city := strings.TrimSpace(req.City); city != "" {
		cin.City = city
	}
	if req.PostalCode != nil {
		cin.PostalCode = req.PostalCode
	}
	if req.Phone != nil {
		cin.Phone = req.Phone
	}
	if req.IsActive != nil {
		cin.IsActive = *req.IsActive
	}
	if err := h.Cinemas.Update(ctx, cin); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, cin)
}

type roomReq struct {
	Name     string `json:"name"`
	Capacity uint32 `json:"capacity"`
	Has3D    bool   `json:"has_3d"`
	HasIMAX  bool   `json:"has_imax"`
	HasDolby bool   `json:"has_dolby"`
}

// CreateRoom handles POST /v1/manager/cinemas/:id/rooms. Capacity is
// fixed at creation; it is the ceiling the ticket ledger enforces.
func (h *ManagerCinemaHandler) CreateRoom(c echo.Context) error {
	cinemaID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and positive capacity required"})
	}
	ctx := c.Request().Context()
	if _, err := h.Cinemas.GetByID(ctx, cinemaID); err != nil {
		return fail(c, err)
	}
	room := model.Room{
		CinemaID: cinemaID,
		Name:     req.Name,
		Capacity: req.Capacity,
		Has3D:    req.Has3D,
		HasIMAX:  req.HasIMAX,
		HasDolby: req.HasDolby,
	}
	if err := h.Rooms.Create(ctx, &room); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

// ListRooms handles GET /v1/manager/cinemas/:id/rooms.
func (h *ManagerCinemaHandler) ListRooms(c echo.Context) error {
	cinemaID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	rooms, err := h.Rooms.ListByCinema(c.Request().Context(), cinemaID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": rooms})
}
