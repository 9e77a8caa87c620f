package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/brickmart/booking-api/config"
	"github.com/brickmart/booking-api/internal/handler"
	availabilityHandler "github.com/brickmart/booking-api/internal/handler/availability"
	bookingHandler "github.com/brickmart/booking-api/internal/handler/booking"
	templateHandler "github.com/brickmart/booking-api/internal/handler/template"
	"github.com/brickmart/booking-api/internal/middleware"
	"github.com/brickmart/booking-api/internal/notifier"
	"github.com/brickmart/booking-api/internal/repository/postgres"
	"github.com/brickmart/booking-api/internal/router"
	availabilityService "github.com/brickmart/booking-api/internal/service/availability"
	bookingService "github.com/brickmart/booking-api/internal/service/booking"
	templateService "github.com/brickmart/booking-api/internal/service/template"
	"github.com/brickmart/booking-api/pkg/logger"
	"github.com/brickmart/booking-api/pkg/messaging/redis"
	"github.com/brickmart/booking-api/pkg/metrics"
	"github.com/brickmart/booking-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)
	m := metrics.NewMetrics("booking_api")

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	templateRepo := postgres.NewSlotTemplateRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), appLogger.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	changeNotifier := notifier.NewNotifier(broker, appLogger)

	availabilitySvc := availabilityService.NewService(templateRepo, bookingRepo, cfg.Availability.CacheTTL, m)
	changeNotifier.Register(availabilitySvc)

	bookingSvc := bookingService.NewService(bookingRepo, templateRepo, changeNotifier, m)
	templateSvc := templateService.NewService(templateRepo)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	h := handler.NewHandler(db)
	availabilityH := availabilityHandler.NewHandler(availabilitySvc)
	bookingH := bookingHandler.NewHandler(bookingSvc)
	templateH := templateHandler.NewHandler(templateSvc)

	r := router.NewRouter(
		authMiddleware,
		availabilityH,
		bookingH,
		templateH,
		h,
		router.RouterConfig{
			RateLimit:     rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:     cfg.RateLimit.Burst,
			Timeout:       cfg.Server.Timeout,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "booking_api_http",
		},
	)
	r.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Relay cross-instance change events into the local availability cache
	go func() {
		if err := changeNotifier.Start(ctx); err != nil {
			appLogger.Error(err, "change notifier stopped")
		}
	}()

	outboxProcessor := worker.NewOutboxProcessor(outboxRepo, broker, cfg.Outbox.ToWorkerConfig(), appLogger, m)
	go outboxProcessor.Start(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	appLogger.Info("server started", "port", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info("server exited properly")
}
