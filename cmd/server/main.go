package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/database"
	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/logging"
	"github.com/iliyamo/hotel-reservation/internal/metrics"
	appmw "github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/objectstore"
	"github.com/iliyamo/hotel-reservation/internal/queue"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/router"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional, real deployments set the environment

	cfg := config.Load()
	log := logging.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	blobs, err := objectstore.NewS3Store(ctx, objectstore.Config{
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect object store")
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unreachable, rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	metrics.Register()

	bookingRepo := repository.NewBookingRepo(db)
	hotelRepo := repository.NewHotelRepo(db)
	roomRepo := repository.NewRoomRepo(db)
	documentRepo := repository.NewDocumentRepo(db)

	publisher := queue.NewPublisher(cfg.AMQPURL, log)
	go queue.StartAuditConsumer(cfg.AMQPURL, log)

	reservations := service.NewReservationService(bookingRepo, hotelRepo, publisher, log)
	vault := service.NewVaultService(documentRepo, blobs, int64(cfg.VaultMaxBytes), log)

	bookingHandler := handler.NewBookingHandler(reservations)
	ownerBookingHandler := handler.NewOwnerBookingHandler(reservations, bookingRepo, hotelRepo, roomRepo)
	hotelHandler := handler.NewHotelHandler(hotelRepo)
	roomHandler := handler.NewRoomHandler(roomRepo, hotelRepo)
	documentHandler := handler.NewDocumentHandler(vault, time.Duration(cfg.PresignTTLMin)*time.Minute)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterOps(e, db)
	router.RegisterPublic(e, hotelHandler, roomHandler)
	router.RegisterBooking(e, bookingHandler, cfg.JWTSecret)
	router.RegisterOwner(e, hotelHandler, roomHandler, ownerBookingHandler, cfg.JWTSecret)
	router.RegisterVault(e, documentHandler, cfg.JWTSecret)

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
