package configs

import (
	"testing"
	"time"
)

var configKeys = []string{
	"ENVIRONMENT", "SERVER_HOST", "SERVER_PORT", "SERVER_NAME",
	"HISTORY_SIZE", "MAX_LINE_BYTES", "SEND_QUEUE_SIZE", "WRITE_TIMEOUT_SECONDS",
	"CONN_RATE", "CONN_BURST", "STATUS_PORT", "ALLOWED_ORIGINS",
}

// clearEnv blanks every variable LoadConfig reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Addr() != "127.0.0.1:8000" {
		t.Errorf("Addr() = %q, want %q", cfg.Addr(), "127.0.0.1:8000")
	}
	if cfg.ServerName != "server" {
		t.Errorf("ServerName = %q, want %q", cfg.ServerName, "server")
	}
	if cfg.HistorySize != 20 {
		t.Errorf("HistorySize = %d, want 20", cfg.HistorySize)
	}
	if cfg.WriteTimeout != 10*time.Second {
		t.Errorf("WriteTimeout = %v, want 10s", cfg.WriteTimeout)
	}
	if cfg.StatusPort != 0 {
		t.Errorf("StatusPort = %d, want 0", cfg.StatusPort)
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true by default")
	}
	if cfg.ThrottlesConnections() {
		t.Error("ThrottlesConnections() = true, want connection throttling off by default")
	}
}

func TestLoadConfigZeroRateDisablesThrottling(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONN_RATE", "0")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.ThrottlesConnections() {
		t.Error("ThrottlesConnections() = true with CONN_RATE=0")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SERVER_HOST", "::1")
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("SERVER_NAME", "  hub  ")
	t.Setenv("HISTORY_SIZE", "5")
	t.Setenv("WRITE_TIMEOUT_SECONDS", "3")
	t.Setenv("CONN_RATE", "0.5")
	t.Setenv("CONN_BURST", "2")
	t.Setenv("STATUS_PORT", "9101")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Addr() != "[::1]:9100" {
		t.Errorf("Addr() = %q, want %q", cfg.Addr(), "[::1]:9100")
	}
	if cfg.ServerName != "hub" {
		t.Errorf("ServerName = %q, want %q", cfg.ServerName, "hub")
	}
	if cfg.HistorySize != 5 || cfg.WriteTimeout != 3*time.Second {
		t.Errorf("HistorySize = %d, WriteTimeout = %v, want 5, 3s", cfg.HistorySize, cfg.WriteTimeout)
	}
	if cfg.ConnRate != 0.5 || cfg.ConnBurst != 2 {
		t.Errorf("ConnRate = %v, ConnBurst = %d, want 0.5, 2", cfg.ConnRate, cfg.ConnBurst)
	}
	if cfg.StatusPort != 9101 {
		t.Errorf("StatusPort = %d, want 9101", cfg.StatusPort)
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true for production")
	}
	if !cfg.ThrottlesConnections() {
		t.Error("ThrottlesConnections() = false with CONN_RATE=0.5")
	}

	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins = %q, want %q", cfg.AllowedOrigins, want)
	}
	for i := range want {
		if cfg.AllowedOrigins[i] != want[i] {
			t.Errorf("AllowedOrigins[%d] = %q, want %q", i, cfg.AllowedOrigins[i], want[i])
		}
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non-numeric port", key: "SERVER_PORT", value: "http"},
		{name: "port zero", key: "SERVER_PORT", value: "0"},
		{name: "port too large", key: "SERVER_PORT", value: "70000"},
		{name: "zero history", key: "HISTORY_SIZE", value: "0"},
		{name: "negative queue", key: "SEND_QUEUE_SIZE", value: "-1"},
		{name: "zero line limit", key: "MAX_LINE_BYTES", value: "0"},
		{name: "bad rate", key: "CONN_RATE", value: "fast"},
		{name: "negative rate", key: "CONN_RATE", value: "-1"},
		{name: "negative status port", key: "STATUS_PORT", value: "-5"},
		{name: "status port equals chat port", key: "STATUS_PORT", value: "8000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := LoadConfig(); err == nil {
				t.Errorf("LoadConfig() with %s=%q succeeded, want error", tt.key, tt.value)
			}
		})
	}
}
