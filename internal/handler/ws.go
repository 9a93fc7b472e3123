package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/net/websocket"

	"github.com/lynriescoop/cinema-booking/internal/notifier"
	"github.com/lynriescoop/cinema-booking/internal/repository"
)

// WSHandler streams availability updates for one showing over a
// websocket. Each connection is a hub subscription; the hub drops
// connections that stop reading, which surfaces here as a closed
// channel and ends the connection.
type WSHandler struct {
	Hub      *notifier.Hub
	Showings *repository.ShowingRepo
	Rooms    *repository.RoomRepo
}

func NewWSHandler(hub *notifier.Hub, showings *repository.ShowingRepo, rooms *repository.RoomRepo) *WSHandler {
	if hub == nil || showings == nil || rooms == nil {
		panic("nil dependency passed to NewWSHandler")
	}
	return &WSHandler{Hub: hub, Showings: showings, Rooms: rooms}
}

// Subscribe handles GET /ws/showings/:id. The current availability is
// sent immediately, then every change until either side disconnects.
func (h *WSHandler) Subscribe(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()
	s, err := h.Showings.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	room, err := h.Rooms.GetByID(ctx, s.RoomID)
	if err != nil {
		return fail(c, err)
	}

	var available uint32
	if room.Capacity > s.BookedCount {
		available = room.Capacity - s.BookedCount
	}
	first := notifier.Update{ShowingID: id, AvailableTickets: available, TotalCapacity: room.Capacity}

	websocket.Handler(func(ws *websocket.Conn) {
		defer ws.Close()

		sub := h.Hub.Subscribe(id)
		defer h.Hub.Unsubscribe(sub)

		if err := sendUpdate(ws, first); err != nil {
			return
		}
		// Drain client frames so closes are noticed; inbound data is
		// ignored.
		clientGone := make(chan struct{})
		go func() {
			defer close(clientGone)
			var discard string
			for {
				if err := websocket.Message.Receive(ws, &discard); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case u, ok := <-sub.C:
				if !ok {
					return
				}
				if err := sendUpdate(ws, u); err != nil {
					return
				}
			case <-clientGone:
				return
			}
		}
	}).ServeHTTP(c.Response(), c.Request())
	return nil
}

func sendUpdate(ws *websocket.Conn, u notifier.Update) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return websocket.Message.Send(ws, string(b))
}
