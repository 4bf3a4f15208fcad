/*
Package chat contains the line-oriented chat core: sessions, the user registry,
the replay history, message fan-out, command parsing and the per-connection
protocol state machine.

This file defines Session, the state of one accepted TCP connection. A Session owns
a bounded outbound queue drained by its WritePump goroutine, so slow peers never
block the goroutine that produced a message.
*/
package chat

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"linechat/internal/pkg/logx"
	"linechat/internal/pkg/randx"
)

// lineTerminator ends every server-to-client line.
const lineTerminator = "\r\n"

// Phase is the lifecycle state of a Session.
type Phase int

const (
	// PhaseAwaitingName is the handshake phase; the session has no name yet.
	PhaseAwaitingName Phase = iota

	// PhaseActive means the session is registered under its name.
	PhaseActive

	// PhaseClosed means the output sink is closed. It is terminal.
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingName:
		return "awaiting_name"
	case PhaseActive:
		return "active"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session represents one connection's protocol state.
type Session struct {
	// ID identifies the connection. It is unique per accept, unlike the user name.
	ID string

	// RemoteAddr is the peer address, kept for logging.
	RemoteAddr string

	// underlying TCP connection. nil for sessions that are never served.
	conn net.Conn

	// mu guards every field below it.
	mu sync.Mutex

	// name is valid only when named is true. It is assigned once.
	name  string
	named bool

	phase Phase

	// send queues framed lines for WritePump. Closed exactly once, by Close.
	send chan string

	// done is closed when WritePump returns.
	done chan struct{}

	// timeout applied to every socket write.
	writeTimeout time.Duration

	// structured logger with session context.
	logger zerolog.Logger
}

// NewSession constructs a Session for conn with an outbound queue of queueSize lines.
func NewSession(conn net.Conn, queueSize int, writeTimeout time.Duration) *Session {
	if queueSize < 1 {
		queueSize = 1
	}

	id := randx.SessionID()
	remoteAddr := ""
	if conn != nil && conn.RemoteAddr() != nil {
		remoteAddr = conn.RemoteAddr().String()
	}

	return &Session{
		ID:           id,
		RemoteAddr:   remoteAddr,
		conn:         conn,
		phase:        PhaseAwaitingName,
		send:         make(chan string, queueSize),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
		logger:       logx.SessionLogger(id, remoteAddr),
	}
}

// Name returns the user name and whether the handshake has assigned one.
func (s *Session) Name() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.name, s.named
}

// SetName assigns the user name. Only the first call has an effect; it reports whether it did.
func (s *Session) SetName(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.named {
		return false
	}

	s.name = name
	s.named = true
	return true
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.phase
}

// activate moves a named, open session to PhaseActive.
func (s *Session) activate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseAwaitingName || !s.named {
		return false
	}

	s.phase = PhaseActive
	return true
}

// deliveryResult is the outcome of queueing one line.
type deliveryResult int

const (
	delivered deliveryResult = iota
	deliveryClosed
	deliveryQueueFull
)

// Deliver queues line for this connection without blocking.
// It returns false when the session is closed or its queue is full.
func (s *Session) Deliver(line string) bool {
	return s.tryDeliver(line) == delivered
}

func (s *Session) tryDeliver(line string) deliveryResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseClosed {
		return deliveryClosed
	}

	select {
	case s.send <- frame(line):
		return delivered
	default:
		s.logger.Warn().Int("queue_len", len(s.send)).Msg("Session send queue full, dropping line")
		return deliveryQueueFull
	}
}

// Close closes the output sink. Already queued lines are still flushed by WritePump,
// which then closes the connection. It reports whether this call did the closing.
func (s *Session) Close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseClosed {
		return false
	}

	s.phase = PhaseClosed
	close(s.send)
	return true
}

// Abort closes the underlying connection immediately, discarding queued output.
func (s *Session) Abort() {
	if s.conn == nil {
		return
	}

	if err := s.conn.Close(); err != nil && !isClosedConnError(err) {
		s.logger.Debug().Err(err).Msg("Connection close error on abort")
	}
}

// Done is closed once WritePump has returned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// WritePump writes queued lines to the connection until the queue is closed or a write fails.
// The connection is closed on return.
func (s *Session) WritePump() {
	defer close(s.done)

	defer func() {
		if err := s.conn.Close(); err != nil && !isClosedConnError(err) {
			s.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	w := bufio.NewWriter(s.conn)

	for line := range s.send {
		if s.writeTimeout > 0 {
			if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
				s.logger.Debug().Err(err).Msg("Failed to set write deadline")
				return
			}
		}

		if _, err := w.WriteString(line); err != nil {
			s.logger.Info().Err(err).Msg("Error writing line")
			return
		}

		// flush once the queue is drained so bursts share one syscall
		if len(s.send) == 0 {
			if err := w.Flush(); err != nil {
				s.logger.Info().Err(err).Msg("Error flushing connection")
				return
			}
		}
	}

	if err := w.Flush(); err != nil {
		s.logger.Debug().Err(err).Msg("Error flushing connection on close")
	}
}

// frame trims line and appends the CRLF terminator.
func frame(line string) string {
	return strings.TrimSpace(line) + lineTerminator
}
