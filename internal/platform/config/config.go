package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration for the screening service.
type Config struct {
	Addr string

	// DatabaseURL selects the Postgres-backed stores when set; the in-memory
	// stores are used otherwise (development and tests).
	DatabaseURL string

	// RedisURL enables the rescreen run lock when set.
	RedisURL string

	// SnapshotDir holds one JSON snapshot file per watchlist source.
	SnapshotDir string

	// RescreenSecret authenticates the internal batch trigger.
	RescreenSecret string

	// RescreenConcurrency bounds parallel subjects during a batch run.
	RescreenConcurrency int

	// RescreenDeadline caps a single batch run; zero means no deadline.
	RescreenDeadline time.Duration

	// KafkaBrokers and AlertTopic configure the Kafka alert sink. Alerts fall
	// back to the in-process sink when no brokers are configured.
	KafkaBrokers []string
	AlertTopic   string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:                envOr("VIGIL_ADDR", ":8080"),
		DatabaseURL:         os.Getenv("VIGIL_DATABASE_URL"),
		RedisURL:            os.Getenv("VIGIL_REDIS_URL"),
		SnapshotDir:         envOr("VIGIL_SNAPSHOT_DIR", "snapshots"),
		RescreenSecret:      os.Getenv("VIGIL_RESCREEN_SECRET"),
		RescreenConcurrency: envInt("VIGIL_RESCREEN_CONCURRENCY", 8),
		AlertTopic:          envOr("VIGIL_ALERT_TOPIC", "vigil.alerts"),
	}
	if brokers := os.Getenv("VIGIL_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	if d, err := time.ParseDuration(os.Getenv("VIGIL_RESCREEN_DEADLINE")); err == nil {
		cfg.RescreenDeadline = d
	}
	if cfg.RescreenSecret == "" {
		// Use a default for development - must be overridden in production.
		cfg.RescreenSecret = "dev-rescreen-secret-change-in-production"
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
