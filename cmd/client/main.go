/*
Package main is a thin terminal client for the line chat server.

It connects to SERVER_HOST:SERVER_PORT, prints every line the server sends, and
forwards every line typed on stdin.
*/
package main

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"linechat/internal/configs"
	"linechat/internal/pkg/logx"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Addr())
	if err != nil {
		logx.Fatal(err, "Lost connection with the server", "addr", cfg.Addr())
	}
	defer conn.Close()

	logx.Debug("Connected", "addr", cfg.Addr())

	serverClosed := make(chan struct{})
	go func() {
		defer close(serverClosed)
		printLines(conn)
	}()

	go func() {
		sendLines(conn)
		// stdin is exhausted; the server sees EOF and closes its side
		if tcp, ok := conn.(*net.TCPConn); ok {
			_ = tcp.CloseWrite()
		}
	}()

	select {
	case <-ctx.Done():
	case <-serverClosed:
	}

	logx.Info("Close the connection")
}

// printLines copies server lines to stdout until the connection ends.
func printLines(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		fmt.Println(strings.TrimSpace(scanner.Text()))
	}

	if err := scanner.Err(); err != nil {
		logx.Debug("Server read ended", "error", err.Error())
	}
}

// sendLines forwards stdin lines to the server until stdin ends or a write fails.
func sendLines(conn net.Conn) {
	stdin := bufio.NewScanner(os.Stdin)
	for stdin.Scan() {
		if _, err := fmt.Fprintf(conn, "%s\n", stdin.Text()); err != nil {
			logx.Error(err, "Failed to send message")
			return
		}
	}
}
