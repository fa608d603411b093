package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	// Addr is the listen address for the websocket endpoint.
	Addr string

	// External api-service collaborator.
	APIBaseURL string
	APIKey     string

	// Symmetric secret shared with the api service for access token checks.
	AccessTokenSecret string

	// Token emission pacing per call, and the cadence of new simulated calls.
	MinTokenInterval time.Duration
	MaxTokenInterval time.Duration
	CallInterval     time.Duration

	// Websocket write behaviour.
	WSWriteTimeout time.Duration
	WSPingInterval time.Duration

	// Operational defaults.
	ReadHeaderTimeout   time.Duration
	ShutdownGracePeriod time.Duration
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:              envOr("CALLS_ADDR", ":8081"),
		APIBaseURL:        strings.TrimSpace(os.Getenv("CALLS_API_BASE_URL")),
		APIKey:            strings.TrimSpace(os.Getenv("CALLS_API_KEY")),
		AccessTokenSecret: strings.TrimSpace(os.Getenv("CALLS_ACCESS_TOKEN_SECRET")),
	}

	durations := []struct {
		key string
		dst *time.Duration
		def time.Duration
	}{
		{"CALLS_MIN_TOKEN_INTERVAL", &cfg.MinTokenInterval, 250 * time.Millisecond},
		{"CALLS_MAX_TOKEN_INTERVAL", &cfg.MaxTokenInterval, time.Second},
		{"CALLS_CALL_INTERVAL", &cfg.CallInterval, 5 * time.Second},
		{"CALLS_WS_WRITE_TIMEOUT", &cfg.WSWriteTimeout, 5 * time.Second},
		{"CALLS_WS_PING_INTERVAL", &cfg.WSPingInterval, 20 * time.Second},
		{"CALLS_READ_HEADER_TIMEOUT", &cfg.ReadHeaderTimeout, 10 * time.Second},
		{"CALLS_SHUTDOWN_GRACE_PERIOD", &cfg.ShutdownGracePeriod, 30 * time.Second},
	}
	for _, d := range durations {
		v, err := envDurationOr(d.key, d.def)
		if err != nil {
			return Config{}, err
		}
		*d.dst = v
	}

	if cfg.APIBaseURL == "" {
		return Config{}, fmt.Errorf("CALLS_API_BASE_URL must be set")
	}
	if cfg.APIKey == "" {
		return Config{}, fmt.Errorf("CALLS_API_KEY must be set")
	}
	if cfg.AccessTokenSecret == "" {
		return Config{}, fmt.Errorf("CALLS_ACCESS_TOKEN_SECRET must be set")
	}
	if cfg.MinTokenInterval <= 0 {
		return Config{}, fmt.Errorf("CALLS_MIN_TOKEN_INTERVAL must be > 0")
	}
	if cfg.MaxTokenInterval <= 0 {
		return Config{}, fmt.Errorf("CALLS_MAX_TOKEN_INTERVAL must be > 0")
	}
	if cfg.MinTokenInterval > cfg.MaxTokenInterval {
		return Config{}, fmt.Errorf("CALLS_MIN_TOKEN_INTERVAL must be <= CALLS_MAX_TOKEN_INTERVAL")
	}
	if cfg.CallInterval <= 0 {
		return Config{}, fmt.Errorf("CALLS_CALL_INTERVAL must be > 0")
	}
	if cfg.WSWriteTimeout <= 0 {
		return Config{}, fmt.Errorf("CALLS_WS_WRITE_TIMEOUT must be > 0")
	}
	if cfg.WSPingInterval <= 0 {
		return Config{}, fmt.Errorf("CALLS_WS_PING_INTERVAL must be > 0")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		return Config{}, fmt.Errorf("CALLS_READ_HEADER_TIMEOUT must be > 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return Config{}, fmt.Errorf("CALLS_SHUTDOWN_GRACE_PERIOD must be > 0")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envDurationOr(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	return d, nil
}
