/*
Package chat contains the line-oriented chat core.

This file defines Server, which owns the TCP listener and the Hub. It accepts
connections, throttles them per remote IP, runs one Handler goroutine per connection,
and shuts everything down on request.
*/
package chat

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"linechat/internal/configs"
	"linechat/internal/pkg/errs"
	"linechat/internal/pkg/limiter"
	"linechat/internal/pkg/logx"
)

const (
	// rejectWriteWait bounds the write of the rejection notice to a throttled peer.
	rejectWriteWait = 2 * time.Second

	// acceptRetryDelay is the pause after a non-fatal Accept error.
	acceptRetryDelay = 50 * time.Millisecond
)

// Server accepts chat connections and serves them through a shared Hub.
type Server struct {
	// Config holds the read-only configuration.
	config *configs.AppConfig

	hub *Hub

	// connLimiter throttles new connections per remote IP. nil when throttling is off.
	connLimiter *limiter.IPRateLimiter

	// mu protects listeners and conns.
	mu        sync.Mutex
	listeners map[net.Listener]struct{}
	conns     map[net.Conn]struct{}

	// wg tracks one entry per served connection.
	wg sync.WaitGroup

	shuttingDown atomic.Bool

	// structured logger with Server context.
	logger zerolog.Logger
}

// NewServer constructs a Server and its Hub from cfg.
func NewServer(cfg *configs.AppConfig) *Server {
	s := &Server{
		config:    cfg,
		hub:       NewHub(cfg),
		listeners: make(map[net.Listener]struct{}),
		conns:     make(map[net.Conn]struct{}),
		logger:    logx.Component("Server"),
	}

	if cfg.ThrottlesConnections() {
		s.connLimiter = limiter.NewIPRateLimiter(rate.Limit(cfg.ConnRate), cfg.ConnBurst)
	}

	return s
}

// Hub returns the Hub shared by all connections.
func (s *Server) Hub() *Hub {
	return s.hub
}

// ListenAndServe listens on the configured host and port and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr(), err)
	}

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done or Shutdown is called.
// It returns nil on a requested stop. Connections already accepted keep running
// until Shutdown closes them.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if !s.trackListener(ln) {
		ln.Close()
		return nil
	}
	defer s.untrackListener(ln)

	stop := make(chan struct{})
	defer close(stop)

	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-stop:
		}
	}()

	s.logger.Info().
		Str("addr", ln.Addr().String()).
		Str("server_name", s.config.ServerName).
		Msg("The server is running and waiting for connections.")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.shuttingDown.Load() || ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.logger.Info().Msg("Accept loop stopped.")
				return nil
			}

			s.logger.Warn().Err(err).Msg("Accept failed, retrying.")
			time.Sleep(acceptRetryDelay)
			continue
		}

		remoteAddr := conn.RemoteAddr().String()

		if s.connLimiter != nil && !s.connLimiter.AllowAddr(remoteAddr) {
			s.logger.Warn().Str("remote_ip", logx.AnonymizeIP(remoteAddr)).Msg("Connection rejected: rate limit exceeded.")
			go s.reject(conn)
			continue
		}

		if !s.trackConn(conn) {
			conn.Close()
			continue
		}

		go func() {
			defer s.wg.Done()
			defer s.untrackConn(conn)

			s.serveConn(conn)
		}()
	}
}

// serveConn runs the protocol for conn and waits for its writer to finish.
func (s *Server) serveConn(conn net.Conn) {
	sess := NewSession(conn, s.config.SendQueueSize, s.config.WriteTimeout)

	NewHandler(s.hub, sess, s.config.MaxLineBytes).Run()

	<-sess.Done()
}

// reject tells a throttled peer why it is being dropped and closes the connection.
func (s *Server) reject(conn net.Conn) {
	defer conn.Close()

	notice := s.hub.ServerLine(errs.NewError(errs.ErrRateLimitExceeded).Message)

	if err := conn.SetWriteDeadline(time.Now().Add(rejectWriteWait)); err != nil {
		return
	}
	if _, err := conn.Write([]byte(frame(notice))); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to write rejection notice.")
	}
}

// Shutdown stops accepting, closes every live connection and waits for their
// goroutines to finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down chat server...")

	s.shuttingDown.Store(true)

	s.mu.Lock()
	for ln := range s.listeners {
		ln.Close()
	}
	for conn := range s.conns {
		conn.Close()
	}
	openConns := len(s.conns)
	s.mu.Unlock()

	if s.connLimiter != nil {
		s.connLimiter.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info().Int("closed_connections", openConns).Msg("Chat server shutdown complete.")
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("Chat server shutdown timed out; some connections may still be running.")
		return ctx.Err()
	}
}

func (s *Server) trackListener(ln net.Listener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shuttingDown.Load() {
		return false
	}
	s.listeners[ln] = struct{}{}
	return true
}

func (s *Server) untrackListener(ln net.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.listeners, ln)
}

// trackConn records conn and adds it to wg; it refuses once shutdown has begun.
func (s *Server) trackConn(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shuttingDown.Load() {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrackConn(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conns, conn)
}

// isClosedConnError reports errors caused by using an already closed connection.
func isClosedConnError(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
