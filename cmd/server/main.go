package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/config"
	"github.com/iliyamo/room-reservation/internal/database"
	"github.com/iliyamo/room-reservation/internal/handler"
	"github.com/iliyamo/room-reservation/internal/queue"
	"github.com/iliyamo/room-reservation/internal/repository"
	"github.com/iliyamo/room-reservation/internal/router"
	"github.com/iliyamo/room-reservation/internal/service"
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

	initial, err := service.InitialStatus(cfg.BookingInitialStatus)
	if err != nil {
		log.Fatalf("BOOKING_INITIAL_STATUS: %v", err)
	}

	rooms := repository.NewRoomRepo(db)
	bookings := repository.NewBookingRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	svc := service.NewBookingService(
		repository.NewTxManager(db),
		rooms,
		bookings,
		service.WithInitialStatus(initial),
		service.WithPublisher(queue.PublishBookingEvent),
	)

	// The consumer drains booking.events into the audit log.  It
	// reconnects on its own, so a failure here never blocks the API.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	rdb := config.NewRedisClient()
	rl := config.LoadRateLimitConfig()

	authH := handler.NewAuthHandler(cfg, users, tokens)
	roomH := handler.NewRoomHandler(rooms)
	bookingH := handler.NewBookingHandler(svc)
	adminUserH := handler.NewAdminUserHandler(users, tokens)

	e := echo.New()
	e.HideBanner = true
	router.RegisterPublic(e, authH, roomH)
	router.RegisterUser(e, authH, bookingH, cfg.JWTSecret, rl, rdb)
	router.RegisterAdmin(e, roomH, bookingH, adminUserH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
