package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"vigil/internal/alert"
	"vigil/internal/disposition"
	"vigil/internal/platform/config"
	"vigil/internal/platform/httpserver"
	"vigil/internal/platform/logger"
	"vigil/internal/platform/postgres"
	"vigil/internal/platform/redis"
	"vigil/internal/rescreen"
	rescreenhandler "vigil/internal/rescreen/handler"
	rescreenmetrics "vigil/internal/rescreen/metrics"
	"vigil/internal/screening"
	screeninghandler "vigil/internal/screening/handler"
	screeningmetrics "vigil/internal/screening/metrics"
	"vigil/internal/screening/snapshot"
	"vigil/internal/subject"
	httptransport "vigil/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal domain packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	var (
		subjects     subject.Store
		dispositions disposition.Store
	)
	if db != nil {
		subjects = subject.NewPostgres(db)
		dispositions = disposition.NewPostgres(db)
	} else {
		log.Warn("no database configured, using in-memory stores")
		subjects = subject.NewInMemoryStore()
		dispositions = disposition.NewInMemoryStore()
	}

	var alerts disposition.AlertSink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := alert.NewKafkaSink(cfg.KafkaBrokers, cfg.AlertTopic, log)
		if err != nil {
			log.Error("kafka alert sink failed", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		alerts = kafkaSink
	} else {
		log.Warn("no kafka brokers configured, alerts stay in process memory")
		alerts = alert.NewMemorySink()
	}

	tracker, err := disposition.NewTracker(dispositions, alerts, log)
	if err != nil {
		log.Error("tracker init failed", "error", err)
		os.Exit(1)
	}

	loader := snapshot.NewLoader(cfg.SnapshotDir, log, snapshot.WithBuiltinFallback())
	svc, err := screening.NewService(loader, subjects, tracker, log, screeningmetrics.New())
	if err != nil {
		log.Error("screening service init failed", "error", err)
		os.Exit(1)
	}

	var lock rescreen.Locker = rescreen.NoopLock{}
	if redisClient != nil {
		lock = rescreen.NewRedisLock(redisClient, 15*time.Minute)
	}
	scheduler, err := rescreen.NewScheduler(
		subjects, loader, svc, tracker, lock, log, rescreenmetrics.New(),
		cfg.RescreenConcurrency, cfg.RescreenDeadline,
	)
	if err != nil {
		log.Error("rescreen scheduler init failed", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Screening:      screeninghandler.New(svc, log),
		Rescreen:       rescreenhandler.New(scheduler, log),
		RescreenSecret: cfg.RescreenSecret,
		Ready: func(ctx context.Context) error {
			if db != nil {
				if err := db.PingContext(ctx); err != nil {
					return err
				}
			}
			if redisClient != nil {
				return redisClient.Health(ctx)
			}
			return nil
		},
		Logger: log,
	})

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting vigil", "addr", cfg.Addr, "snapshot_dir", cfg.SnapshotDir)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
