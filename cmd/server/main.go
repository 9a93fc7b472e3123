package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/lynriescoop/cinema-booking/internal/booking"
	"github.com/lynriescoop/cinema-booking/internal/config"
	"github.com/lynriescoop/cinema-booking/internal/database"
	"github.com/lynriescoop/cinema-booking/internal/handler"
	"github.com/lynriescoop/cinema-booking/internal/mailer"
	"github.com/lynriescoop/cinema-booking/internal/middleware"
	"github.com/lynriescoop/cinema-booking/internal/notifier"
	"github.com/lynriescoop/cinema-booking/internal/queue"
	"github.com/lynriescoop/cinema-booking/internal/repository"
	"github.com/lynriescoop/cinema-booking/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories.
	movies := repository.NewMovieRepo(db)
	cinemas := repository.NewCinemaRepo(db)
	rooms := repository.NewRoomRepo(db)
	showings := repository.NewShowingRepo(db)
	bookings := repository.NewBookingRepo(db)
	seats := repository.NewSeatReservationRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Availability fan-out and broker plumbing.
	hub := notifier.NewHub()
	publisher := queue.NewPublisher(cfg.AMQPURL)
	coordinator := booking.NewCoordinator(db, showings, bookings, seats, rooms, users, hub, publisher)

	// Confirmation mail consumer.
	mail := mailer.New(cfg.MailAPIKey, cfg.MailFrom)
	go queue.NewConsumer(cfg.AMQPURL, mail).Run(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	// Redis-backed rate limiting and response caching. A missing Redis
	// disables both and the API keeps serving.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and caching disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterCore(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e,
		handler.NewPublicHandler(movies, cinemas, rooms, showings, seats),
		handler.NewWSHandler(hub, showings, rooms))
	router.RegisterManager(e,
		handler.NewManagerMovieHandler(movies),
		handler.NewManagerCinemaHandler(cinemas, rooms),
		handler.NewManagerShowingHandler(db, showings, rooms, movies),
		cfg.JWTSecret)
	router.RegisterCustomer(e,
		handler.NewCustomerBookingHandler(coordinator, bookings, seats),
		cfg.JWTSecret)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
