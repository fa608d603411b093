package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("CALLS_API_BASE_URL", "http://localhost:3000")
	t.Setenv("CALLS_API_KEY", "service-key")
	t.Setenv("CALLS_ACCESS_TOKEN_SECRET", "secret")
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" {
		t.Fatalf("addr = %q", cfg.Addr)
	}
	if cfg.MinTokenInterval != 250*time.Millisecond || cfg.MaxTokenInterval != time.Second {
		t.Fatalf("token intervals = %v/%v", cfg.MinTokenInterval, cfg.MaxTokenInterval)
	}
	if cfg.CallInterval != 5*time.Second {
		t.Fatalf("call interval = %v", cfg.CallInterval)
	}
}

func TestLoadFromEnv_MissingRequired(t *testing.T) {
	cases := []string{"CALLS_API_BASE_URL", "CALLS_API_KEY", "CALLS_ACCESS_TOKEN_SECRET"}
	for _, missing := range cases {
		t.Run(missing, func(t *testing.T) {
			setRequired(t)
			t.Setenv(missing, "")
			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("expected error when %s is unset", missing)
			}
		})
	}
}

func TestLoadFromEnv_IntervalOrdering(t *testing.T) {
	setRequired(t)
	t.Setenv("CALLS_MIN_TOKEN_INTERVAL", "2s")
	t.Setenv("CALLS_MAX_TOKEN_INTERVAL", "1s")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatalf("expected error when min > max")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("CALLS_ADDR", ":9999")
	t.Setenv("CALLS_MIN_TOKEN_INTERVAL", "10ms")
	t.Setenv("CALLS_MAX_TOKEN_INTERVAL", "20ms")
	t.Setenv("CALLS_CALL_INTERVAL", "100ms")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Fatalf("addr = %q", cfg.Addr)
	}
	if cfg.MinTokenInterval != 10*time.Millisecond || cfg.MaxTokenInterval != 20*time.Millisecond {
		t.Fatalf("token intervals = %v/%v", cfg.MinTokenInterval, cfg.MaxTokenInterval)
	}
	if cfg.CallInterval != 100*time.Millisecond {
		t.Fatalf("call interval = %v", cfg.CallInterval)
	}
}

func TestLoadFromEnv_BadDurationIsRejected(t *testing.T) {
	cases := []string{
		"CALLS_MIN_TOKEN_INTERVAL",
		"CALLS_CALL_INTERVAL",
		"CALLS_SHUTDOWN_GRACE_PERIOD",
	}
	for _, key := range cases {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "not-a-duration")
			_, err := LoadFromEnv()
			if err == nil {
				t.Fatalf("expected error for malformed %s", key)
			}
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("error %q does not name %s", err, key)
			}
		})
	}
}
