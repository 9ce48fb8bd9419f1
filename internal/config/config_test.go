package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacevents/internal/planner"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(env(nil))
	require.NoError(t, err)

	assert.Equal(t, Config{
		Addr:        "127.0.0.1:8080",
		DataDir:     ".",
		Mode:        planner.ModeSelection,
		Store:       StoreJSON,
		SubmitRate:  5,
		SubmitBurst: 5,
		ServiceName: "spacevents",
	}, cfg)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"SPACEVENTS_ADDR":               ":9090",
		"SPACEVENTS_DATA_DIR":           "/var/lib/spacevents",
		"SPACEVENTS_MODE":               "defaults",
		"SPACEVENTS_STORE":              "Postgres",
		"DATABASE_URL":                  "postgres://localhost/spacevents",
		"SPACEVENTS_SUBMIT_RATE":        "0.5",
		"SPACEVENTS_SUBMIT_BURST":       "2",
		"OTEL_EXPORTER_OTLP_ENDPOINT":   "localhost:4318",
		"SERVICE_NAME":                  "planner",
		"SPACEVENTS_CHAOS_FAILURE_RATE": "0.25",
		"SPACEVENTS_CHAOS_LATENCY":      "150ms",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "/var/lib/spacevents", cfg.DataDir)
	assert.Equal(t, planner.ModeDefaults, cfg.Mode)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "postgres://localhost/spacevents", cfg.DatabaseURL)
	assert.Equal(t, 0.5, cfg.SubmitRate)
	assert.Equal(t, 2, cfg.SubmitBurst)
	assert.Equal(t, "localhost:4318", cfg.OTLPEndpoint)
	assert.Equal(t, "planner", cfg.ServiceName)
	assert.Equal(t, 0.25, cfg.ChaosFailureRate)
	assert.Equal(t, 150*time.Millisecond, cfg.ChaosLatency)
}

func TestFromEnv_BlankValuesUseDefaults(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{"SPACEVENTS_ADDR": "  ", "SPACEVENTS_MODE": ""}))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
	assert.Equal(t, planner.ModeSelection, cfg.Mode)
}

func TestFromEnv_Rejects(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"unknown mode", map[string]string{"SPACEVENTS_MODE": "auto"}, "SPACEVENTS_MODE"},
		{"unknown store", map[string]string{"SPACEVENTS_STORE": "redis"}, "SPACEVENTS_STORE"},
		{"postgres without url", map[string]string{"SPACEVENTS_STORE": "postgres"}, "DATABASE_URL"},
		{"rate not a number", map[string]string{"SPACEVENTS_SUBMIT_RATE": "fast"}, "SPACEVENTS_SUBMIT_RATE"},
		{"negative rate", map[string]string{"SPACEVENTS_SUBMIT_RATE": "-1"}, "SPACEVENTS_SUBMIT_RATE"},
		{"zero rate", map[string]string{"SPACEVENTS_SUBMIT_RATE": "0"}, "SPACEVENTS_SUBMIT_RATE"},
		{"zero burst", map[string]string{"SPACEVENTS_SUBMIT_BURST": "0"}, "SPACEVENTS_SUBMIT_BURST"},
		{"failure rate above one", map[string]string{"SPACEVENTS_CHAOS_FAILURE_RATE": "2"}, "SPACEVENTS_CHAOS_FAILURE_RATE"},
		{"bad latency", map[string]string{"SPACEVENTS_CHAOS_LATENCY": "soon"}, "SPACEVENTS_CHAOS_LATENCY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(env(tt.vars))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
