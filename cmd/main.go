/*
Package main is the entry point for the line chat server.

It loads configuration, initializes the global logger, starts the TCP chat listener
and the optional HTTP status API, and shuts both down gracefully on SIGINT or SIGTERM.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"linechat/internal/app/chat"
	"linechat/internal/configs"
	"linechat/internal/handler"
	"linechat/internal/pkg/limiter"
	"linechat/internal/pkg/logx"
)

const (
	statusRate  = 5
	statusBurst = 10
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Str("addr", cfg.Addr()).
		Str("server_name", cfg.ServerName).
		Int("history_size", cfg.HistorySize).
		Int("status_port", cfg.StatusPort).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chatServer := chat.NewServer(cfg)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- chatServer.ListenAndServe(ctx)
	}()

	var statusServer *http.Server
	var statusLimiter *limiter.IPRateLimiter

	if cfg.StatusPort > 0 {
		statusLimiter = limiter.NewIPRateLimiter(rate.Limit(statusRate), statusBurst)

		statusServer = &http.Server{
			Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.StatusPort),
			Handler: handler.Router(&handler.AppDeps{
				Hub:     chatServer.Hub(),
				Config:  cfg,
				Limiter: statusLimiter,
			}),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		go func() {
			logx.Info("Status API starting", "addr", statusServer.Addr)
			if err := statusServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logx.Fatal(err, "Status API failed to start")
			}
		}()
	}

	select {
	case <-ctx.Done():
		logx.Info("Received shutdown signal. Starting graceful shutdown...")
	case err := <-serveErr:
		if err != nil {
			logx.Fatal(err, "Chat server failed")
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if statusServer != nil {
		if err := statusServer.Shutdown(shutdownCtx); err != nil {
			logx.Error(err, "Status API forced to shutdown")
		}
		statusLimiter.Close()
	}

	if err := chatServer.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Chat server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}
