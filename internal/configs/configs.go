/*
Package configs is responsible for loading and parsing the application's configuration settings.

Settings come from operating system environment variables, optionally seeded from a
.env file in the working directory. They cover the chat listener address, the name the
server signs its notices with, the replay history size, per-connection limits, and the
optional HTTP status API.
*/
package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultHost          = "127.0.0.1"
	DefaultPort          = 8000
	DefaultServerName    = "server"
	DefaultHistorySize   = 20
	DefaultMaxLineBytes  = 4096
	DefaultSendQueueSize = 256
	DefaultWriteTimeout  = 10 * time.Second
	DefaultConnRate      = 0.0
	DefaultConnBurst     = 5
)

// AppConfig contains all configuration parameters required for the application to run.
type AppConfig struct {
	// General Server Settings
	Environment string
	Host        string
	Port        int
	ServerName  string

	// Chat Settings
	HistorySize   int
	MaxLineBytes  int
	SendQueueSize int
	WriteTimeout  time.Duration

	// Connection Throttling (per remote IP); ConnRate 0 disables it.
	ConnRate  float64
	ConnBurst int

	// Status API Settings; StatusPort 0 disables the API.
	StatusPort     int
	AllowedOrigins []string
}

// Addr returns the chat listener address in host:port form.
func (c *AppConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ThrottlesConnections reports whether new chat connections are rate limited per IP.
func (c *AppConfig) ThrottlesConnections() bool {
	return c.ConnRate > 0
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// Default returns the configuration used when no environment variable is set.
func Default() *AppConfig {
	return &AppConfig{
		Environment:    "development",
		Host:           DefaultHost,
		Port:           DefaultPort,
		ServerName:     DefaultServerName,
		HistorySize:    DefaultHistorySize,
		MaxLineBytes:   DefaultMaxLineBytes,
		SendQueueSize:  DefaultSendQueueSize,
		WriteTimeout:   DefaultWriteTimeout,
		ConnRate:       DefaultConnRate,
		ConnBurst:      DefaultConnBurst,
		AllowedOrigins: []string{},
	}
}

// LoadConfig reads and parses the application configuration from environment variables.
// A .env file in the working directory is loaded first when present; variables already
// set in the environment take precedence over it.
func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := Default()

	// --- General Server Settings ---
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		cfg.Environment = env
	}

	if host := os.Getenv("SERVER_HOST"); host != "" {
		cfg.Host = host
	}

	port, err := intFromEnv("SERVER_PORT", cfg.Port)
	if err != nil {
		return nil, err
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the valid range (1-65535)", port)
	}
	cfg.Port = port

	if name := strings.TrimSpace(os.Getenv("SERVER_NAME")); name != "" {
		cfg.ServerName = name
	}

	// --- Chat Settings ---
	if cfg.HistorySize, err = positiveIntFromEnv("HISTORY_SIZE", cfg.HistorySize); err != nil {
		return nil, err
	}
	if cfg.MaxLineBytes, err = positiveIntFromEnv("MAX_LINE_BYTES", cfg.MaxLineBytes); err != nil {
		return nil, err
	}
	if cfg.SendQueueSize, err = positiveIntFromEnv("SEND_QUEUE_SIZE", cfg.SendQueueSize); err != nil {
		return nil, err
	}

	writeTimeout, err := positiveIntFromEnv("WRITE_TIMEOUT_SECONDS", int(cfg.WriteTimeout/time.Second))
	if err != nil {
		return nil, err
	}
	cfg.WriteTimeout = time.Duration(writeTimeout) * time.Second

	// --- Connection Throttling ---
	if rateStr := os.Getenv("CONN_RATE"); rateStr != "" {
		connRate, err := strconv.ParseFloat(rateStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid CONN_RATE environment variable: %w", err)
		}
		if connRate < 0 {
			return nil, fmt.Errorf("CONN_RATE must not be negative, got %v", connRate)
		}
		cfg.ConnRate = connRate
	}
	if cfg.ConnBurst, err = positiveIntFromEnv("CONN_BURST", cfg.ConnBurst); err != nil {
		return nil, err
	}

	// --- Status API Settings ---
	statusPort, err := intFromEnv("STATUS_PORT", 0)
	if err != nil {
		return nil, err
	}
	if statusPort < 0 || statusPort > 65535 {
		return nil, fmt.Errorf("status port number %d is outside the valid range (0-65535)", statusPort)
	}
	if statusPort != 0 && statusPort == cfg.Port {
		return nil, fmt.Errorf("STATUS_PORT must differ from SERVER_PORT (%d)", cfg.Port)
	}
	cfg.StatusPort = statusPort

	if originsStr := os.Getenv("ALLOWED_ORIGINS"); originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}

	return cfg, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return value, nil
}

func positiveIntFromEnv(key string, fallback int) (int, error) {
	value, err := intFromEnv(key, fallback)
	if err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, value)
	}
	return value, nil
}
