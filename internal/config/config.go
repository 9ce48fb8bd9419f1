// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"spacevents/internal/planner"
)

const (
	defaultAddr        = "127.0.0.1:8080"
	defaultDataDir     = "."
	defaultServiceName = "spacevents"
	defaultSubmitRate  = 5.0
	defaultSubmitBurst = 5
)

// StoreKind selects the persistence backend.
type StoreKind string

const (
	StoreJSON     StoreKind = "json"
	StorePostgres StoreKind = "postgres"
)

// Config holds the process settings read from the environment.
type Config struct {
	Addr         string
	DataDir      string
	Mode         planner.Mode
	Store        StoreKind
	DatabaseURL  string
	SubmitRate   float64
	SubmitBurst  int
	OTLPEndpoint string
	ServiceName  string

	// Fault injection on saves, off by default.
	ChaosFailureRate float64
	ChaosLatency     time.Duration
}

// Load reads an optional .env file and then the environment. Unset values
// fall back to their defaults; malformed ones are an error.
func Load(logger *log.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Printf("no .env file loaded, using process environment")
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, which has the signature of os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := Config{
		Addr:         get("SPACEVENTS_ADDR", defaultAddr),
		DataDir:      get("SPACEVENTS_DATA_DIR", defaultDataDir),
		DatabaseURL:  get("DATABASE_URL", ""),
		OTLPEndpoint: get("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:  get("SERVICE_NAME", defaultServiceName),
	}

	mode, err := planner.ParseMode(get("SPACEVENTS_MODE", string(planner.ModeSelection)))
	if err != nil {
		return Config{}, fmt.Errorf("SPACEVENTS_MODE: %w", err)
	}
	cfg.Mode = mode

	switch kind := StoreKind(strings.ToLower(get("SPACEVENTS_STORE", string(StoreJSON)))); kind {
	case StoreJSON, StorePostgres:
		cfg.Store = kind
	default:
		return Config{}, fmt.Errorf("SPACEVENTS_STORE: unknown store %q", kind)
	}
	if cfg.Store == StorePostgres && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required when SPACEVENTS_STORE=%s", StorePostgres)
	}

	cfg.SubmitRate, err = strconv.ParseFloat(get("SPACEVENTS_SUBMIT_RATE", strconv.FormatFloat(defaultSubmitRate, 'f', -1, 64)), 64)
	if err != nil || cfg.SubmitRate <= 0 {
		return Config{}, fmt.Errorf("SPACEVENTS_SUBMIT_RATE: must be a positive number")
	}
	cfg.SubmitBurst, err = strconv.Atoi(get("SPACEVENTS_SUBMIT_BURST", strconv.Itoa(defaultSubmitBurst)))
	if err != nil || cfg.SubmitBurst < 1 {
		return Config{}, fmt.Errorf("SPACEVENTS_SUBMIT_BURST: must be a positive integer")
	}

	cfg.ChaosFailureRate, err = strconv.ParseFloat(get("SPACEVENTS_CHAOS_FAILURE_RATE", "0"), 64)
	if err != nil || cfg.ChaosFailureRate < 0 || cfg.ChaosFailureRate > 1 {
		return Config{}, fmt.Errorf("SPACEVENTS_CHAOS_FAILURE_RATE: must be between 0 and 1")
	}
	cfg.ChaosLatency, err = time.ParseDuration(get("SPACEVENTS_CHAOS_LATENCY", "0s"))
	if err != nil || cfg.ChaosLatency < 0 {
		return Config{}, fmt.Errorf("SPACEVENTS_CHAOS_LATENCY: must be a non-negative duration")
	}

	return cfg, nil
}
