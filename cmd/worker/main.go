package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/brickmart/booking-api/config"
	"github.com/brickmart/booking-api/internal/repository/postgres"
	"github.com/brickmart/booking-api/internal/service/notification"
	"github.com/brickmart/booking-api/pkg/logger"
	"github.com/brickmart/booking-api/pkg/messaging"
	"github.com/brickmart/booking-api/pkg/messaging/redis"
	"github.com/brickmart/booking-api/pkg/metrics"
	"github.com/brickmart/booking-api/pkg/worker"

	emailpkg "github.com/brickmart/booking-api/internal/email"
)

// workerEnv carries the deployment knobs that differ between worker
// replicas and therefore come from the environment, not the shared
// config file.
type workerEnv struct {
	HealthPort    string `envconfig:"HEALTH_PORT" default:"8081"`
	Notifications bool   `envconfig:"NOTIFICATIONS_ENABLED" default:"true"`
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	var env workerEnv
	if err := envconfig.Process("worker", &env); err != nil {
		log.Fatal().Err(err).Msg("failed to read worker environment")
	}

	appLogger := logger.NewLogger(nil)
	m := metrics.NewMetrics("booking_worker")

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), appLogger.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)
	processor := worker.NewOutboxProcessor(outboxRepo, broker, cfg.Outbox.ToWorkerConfig(), appLogger, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if env.Notifications {
		notificationSvc := notification.NewService(emailpkg.NewGomailService(cfg.SMTP.ToEmailConfig()), appLogger)
		events, err := broker.Subscribe(ctx, messaging.TopicBookingCreated)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to subscribe to booking events")
		}
		go func() {
			for payload := range events {
				if err := notificationSvc.HandleBookingCreated(ctx, payload); err != nil {
					appLogger.Error(err, "failed to handle booking event")
				}
			}
		}()
	}

	setupHealthCheck(env.HealthPort, appLogger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		appLogger.Info("shutting down...")
		cancel()
	}()

	processor.Start(ctx)
}

func setupHealthCheck(port string, appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			appLogger.Error(err, "health check server failed")
			os.Exit(1)
		}
	}()
}
