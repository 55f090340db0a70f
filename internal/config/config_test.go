package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	cfg, err := Load(missing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr != ":8080" || cfg.Store != StoreJSON || cfg.History != HistoryMemory || cfg.EventBroker != BrokerMemory {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.BookingsFile != "data/bookings.json" {
		t.Fatalf("expected default bookings file, got %q", cfg.BookingsFile)
	}
	if cfg.AlertWindowDays != 3 || cfg.ShutdownTimeout != 5*time.Second {
		t.Fatalf("unexpected window/timeout: %d %s", cfg.AlertWindowDays, cfg.ShutdownTimeout)
	}
	if cfg.SessionIdleTTL != 24*time.Hour {
		t.Fatalf("unexpected session idle ttl: %s", cfg.SessionIdleTTL)
	}
	if len(cfg.KafkaBrokers) != 1 || cfg.KafkaBrokers[0] != "localhost:9092" {
		t.Fatalf("unexpected kafka brokers: %v", cfg.KafkaBrokers)
	}
	if cfg.NeedsRedis() {
		t.Fatal("default config should not need redis")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BUSFINDER_STORE", "Postgres")
	t.Setenv("BUSFINDER_POSTGRES_DSN", "host=db user=bus")
	t.Setenv("BUSFINDER_HISTORY", "redis")
	t.Setenv("BUSFINDER_EVENT_BROKER", "kafka")
	t.Setenv("BUSFINDER_KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("BUSFINDER_REDIS_DB", "2")
	t.Setenv("BUSFINDER_ALERT_WINDOW_DAYS", "7")
	t.Setenv("BUSFINDER_SHUTDOWN_TIMEOUT", "250ms")
	t.Setenv("BUSFINDER_SESSION_IDLE_TTL", "30m")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Store != StorePostgres || cfg.PostgresDSN != "host=db user=bus" {
		t.Fatalf("unexpected store config: %+v", cfg)
	}
	if !cfg.NeedsRedis() || cfg.RedisDB != 2 {
		t.Fatalf("unexpected redis config: %+v", cfg)
	}
	if strings.Join(cfg.KafkaBrokers, "|") != "k1:9092|k2:9092" {
		t.Fatalf("unexpected kafka brokers: %v", cfg.KafkaBrokers)
	}
	if cfg.SessionIdleTTL != 30*time.Minute {
		t.Fatalf("unexpected session idle ttl: %s", cfg.SessionIdleTTL)
	}
	if cfg.AlertWindowDays != 7 || cfg.ShutdownTimeout != 250*time.Millisecond {
		t.Fatalf("unexpected window/timeout: %d %s", cfg.AlertWindowDays, cfg.ShutdownTimeout)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("BUSFINDER_ADDR=:9090\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("BUSFINDER_ADDR") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("expected addr from .env, got %q", cfg.Addr)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("BUSFINDER_STORE", "sqlite")
	t.Setenv("BUSFINDER_REDIS_DB", "zero")
	t.Setenv("BUSFINDER_ALERT_WINDOW_DAYS", "-1")
	t.Setenv("BUSFINDER_SHUTDOWN_TIMEOUT", "soon")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err == nil {
		t.Fatal("expected error for invalid values")
	}
	for _, key := range []string{"BUSFINDER_STORE", "BUSFINDER_REDIS_DB", "BUSFINDER_ALERT_WINDOW_DAYS", "BUSFINDER_SHUTDOWN_TIMEOUT"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected error to mention %s, got %v", key, err)
		}
	}
}

func TestLoadRequiresDSNForPostgres(t *testing.T) {
	t.Setenv("BUSFINDER_STORE", "postgres")
	t.Setenv("BUSFINDER_POSTGRES_DSN", "")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error without DSN")
	}
}
