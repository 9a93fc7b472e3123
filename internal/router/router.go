// Package router wires handlers onto the Echo instance. Public browse
// endpoints carry no auth; /v1/manager requires the MANAGER role and
// /v1/bookings the CUSTOMER role.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lynriescoop/cinema-booking/internal/handler"
	"github.com/lynriescoop/cinema-booking/internal/middleware"
	"github.com/lynriescoop/cinema-booking/internal/model"
)

// RegisterCore registers the health check and the Prometheus metrics
// endpoint.
func RegisterCore(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers session endpoints. Register, login, refresh
// and logout need no access token; /v1/me does.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers the unauthenticated browse surface.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, ws *handler.WSHandler) {
	e.GET("/v1/movies", p.ListMovies)
	e.GET("/v1/movies/:id", p.GetMovie)
	e.GET("/v1/movies/:id/showings", p.ListShowings)
	e.GET("/v1/cinemas", p.ListCinemas)
	e.GET("/v1/showings/:id", p.GetShowing)
	e.GET("/v1/showings/:id/seats", p.GetSeatMap)

	// Live availability stream, also unauthenticated: the data mirrors
	// what GET /v1/showings/:id already exposes.
	e.GET("/ws/showings/:id", ws.Subscribe)
}

// RegisterManager registers catalog and scheduling endpoints for
// MANAGER users.
func RegisterManager(e *echo.Echo, m *handler.ManagerMovieHandler, cin *handler.ManagerCinemaHandler, sh *handler.ManagerShowingHandler, jwtSecret string) {
	g := e.Group(
		"/v1/manager",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleManager),
	)
	g.POST("/movies", m.Create)

	g.POST("/cinemas", cin.CreateCinema)
	g.PUT("/cinemas/:id", cin.UpdateCinema)
	g.POST("/cinemas/:id/rooms", cin.CreateRoom)
	g.GET("/cinemas/:id/rooms", cin.ListRooms)

	g.POST("/showings", sh.Create)
	g.PUT("/showings/:id", sh.Update)
	g.POST("/showings/:id/cancel", sh.Cancel)
	g.DELETE("/showings/:id", sh.Delete)
	g.GET("/rooms/:id/showings", sh.ListByRoom)
}

// RegisterCustomer registers booking endpoints for CUSTOMER users.
func RegisterCustomer(e *echo.Echo, b *handler.CustomerBookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1/bookings",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer),
	)
	g.POST("", b.Create)
	g.GET("", b.List)
	g.GET("/:id", b.Get)
	g.POST("/:id/cancel", b.Cancel)
	g.GET("/:id/ticket", b.Ticket)
}
