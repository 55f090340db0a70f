// Package config carrega a configuração do busfinder a partir do ambiente.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreJSON     = "json"
	StorePostgres = "postgres"

	HistoryMemory = "memory"
	HistoryRedis  = "redis"

	BrokerMemory    = "memory"
	BrokerGoChannel = "gochannel"
	BrokerRedis     = "redis"
	BrokerKafka     = "kafka"
)

type Config struct {
	Addr            string
	Store           string
	BookingsFile    string
	PostgresDSN     string
	History         string
	EventBroker     string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	KafkaBrokers    []string
	AlertWindowDays int
	LogLevel        string
	ShutdownTimeout time.Duration
	SessionIdleTTL  time.Duration
}

// NeedsRedis indica se algum componente configurado usa Redis.
func (c Config) NeedsRedis() bool {
	return c.History == HistoryRedis || c.EventBroker == BrokerRedis
}

// Load lê um .env opcional e depois o ambiente. Variável ausente usa o padrão;
// valor inválido é erro.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var errs []error
	cfg := Config{
		Addr:          get("BUSFINDER_ADDR", ":8080"),
		Store:         oneOf(&errs, "BUSFINDER_STORE", StoreJSON, StorePostgres),
		BookingsFile:  get("BUSFINDER_BOOKINGS_FILE", "data/bookings.json"),
		PostgresDSN:   os.Getenv("BUSFINDER_POSTGRES_DSN"),
		History:       oneOf(&errs, "BUSFINDER_HISTORY", HistoryMemory, HistoryRedis),
		EventBroker:   oneOf(&errs, "BUSFINDER_EVENT_BROKER", BrokerMemory, BrokerGoChannel, BrokerRedis, BrokerKafka),
		RedisAddr:     get("BUSFINDER_REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("BUSFINDER_REDIS_PASSWORD"),
		RedisDB:       intVar(&errs, "BUSFINDER_REDIS_DB", 0),
		KafkaBrokers:  list(get("BUSFINDER_KAFKA_BROKERS", "localhost:9092")),
		LogLevel:      get("BUSFINDER_LOG_LEVEL", "info"),
	}
	cfg.AlertWindowDays = intVar(&errs, "BUSFINDER_ALERT_WINDOW_DAYS", 3)
	cfg.ShutdownTimeout = durationVar(&errs, "BUSFINDER_SHUTDOWN_TIMEOUT", 5*time.Second)
	cfg.SessionIdleTTL = durationVar(&errs, "BUSFINDER_SESSION_IDLE_TTL", 24*time.Hour)

	if cfg.AlertWindowDays < 0 {
		errs = append(errs, fmt.Errorf("BUSFINDER_ALERT_WINDOW_DAYS must not be negative: %d", cfg.AlertWindowDays))
	}
	if cfg.SessionIdleTTL < 0 {
		errs = append(errs, fmt.Errorf("BUSFINDER_SESSION_IDLE_TTL must not be negative: %s", cfg.SessionIdleTTL))
	}
	if cfg.Store == StorePostgres && cfg.PostgresDSN == "" {
		errs = append(errs, errors.New("BUSFINDER_POSTGRES_DSN is required when BUSFINDER_STORE=postgres"))
	}
	if cfg.EventBroker == BrokerKafka && len(cfg.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("BUSFINDER_KAFKA_BROKERS is required when BUSFINDER_EVENT_BROKER=kafka"))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// oneOf aceita só os valores permitidos; o primeiro é o padrão.
func oneOf(errs *[]error, key string, allowed ...string) string {
	v := strings.ToLower(get(key, allowed[0]))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	*errs = append(*errs, fmt.Errorf("invalid %s %q: want one of %s", key, v, strings.Join(allowed, ", ")))
	return allowed[0]
}

func intVar(errs *[]error, key string, fallback int) int {
	s := get(key, "")
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid int for %s: %q", key, s))
		return fallback
	}
	return n
}

func durationVar(errs *[]error, key string, fallback time.Duration) time.Duration {
	s := get(key, "")
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid duration for %s: %q", key, s))
		return fallback
	}
	return d
}

func list(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
