package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/cinereserve/booking-api/internal/config"
	"github.com/cinereserve/booking-api/internal/database"
	"github.com/cinereserve/booking-api/internal/handler"
	"github.com/cinereserve/booking-api/internal/notify"
	"github.com/cinereserve/booking-api/internal/queue"
	"github.com/cinereserve/booking-api/internal/repository"
	"github.com/cinereserve/booking-api/internal/router"
	"github.com/cinereserve/booking-api/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "booking-api").Logger()
	if cfg.Env == "dev" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("schema migration failed")
	}
	cancel()

	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	movies := repository.NewMovieRepo(db)
	showtimes := repository.NewShowtimeRepo(db)
	seats := repository.NewSeatRepo(db)
	reservations := repository.NewReservationRepo(db)
	reports := repository.NewReportRepo(db)
	bookings := repository.NewBookingStore(db, reservations, seats, showtimes)

	mailer := notify.NewSender(cfg.SMTPAddr, cfg.SMTPFrom, logger)
	posters := storage.NewDiskPosterStore(cfg.PosterDir, cfg.PosterBaseURL)

	h := router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, tokens, mailer, logger),
		Movies:       handler.NewMovieHandler(movies),
		Showtimes:    handler.NewShowtimeHandler(showtimes),
		Seats:        handler.NewSeatHandler(seats, showtimes),
		Reservations: handler.NewReservationHandler(cfg, bookings, reservations, movies, users, logger),
		Admin:        handler.NewAdminHandler(cfg, reports, reservations),
		Posters:      handler.NewPosterHandler(movies, posters, logger),
	}

	// Confirmation emails are driven by broker events so a slow SMTP server
	// never sits on the booking path.
	go queue.StartConfirmationConsumer(logger, mailer)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, h.Auth, cfg.JWTSecret)
	router.RegisterPublic(e, h, rdb)
	router.RegisterReservations(e, h, cfg.JWTSecret)
	router.RegisterAdmin(e, h, cfg.JWTSecret)
	router.RegisterStatic(e, cfg.PosterDir)

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
