/*
Package chat contains the line-oriented chat core.

This file defines Hub, the process-wide owner of the user registry and the replay
history. Every registry mutation, every fan-out iteration and every history access
happens under Hub.mu, so joins, leaves and broadcasts are totally ordered.
*/
package chat

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"linechat/internal/configs"
	"linechat/internal/pkg/errs"
	"linechat/internal/pkg/logx"
	"linechat/internal/pkg/ring"
)

// UserSummary describes one online user name.
type UserSummary struct {
	Name     string `json:"name"`
	Sessions int    `json:"sessions"`
}

// Hub coordinates message delivery between sessions.
type Hub struct {
	// serverName tags every server-originated line.
	serverName string

	// mu protects users and history.
	mu sync.Mutex

	users *Registry

	// history keeps the most recent public lines, already tagged.
	history *ring.Buffer[string]

	// structured logger with Hub context.
	logger zerolog.Logger
}

// NewHub constructs a Hub using the server name and history size from cfg.
func NewHub(cfg *configs.AppConfig) *Hub {
	return &Hub{
		serverName: cfg.ServerName,
		users:      NewRegistry(),
		history:    ring.New[string](cfg.HistorySize),
		logger:     logx.Component("Hub"),
	}
}

// ServerLine tags text as a server-originated message.
func (h *Hub) ServerLine(text string) string {
	return tagLine(h.serverName, text)
}

// Join registers a named session and moves it to PhaseActive.
// The first session under a name triggers a join notice to every other session.
// The replay history is queued to sess under the same lock, so it always precedes
// live traffic. Join returns false if sess is unnamed or already closed.
func (h *Hub) Join(sess *Session) bool {
	name, named := sess.Name()
	if !named {
		return false
	}

	h.mu.Lock()

	if !sess.activate() {
		h.mu.Unlock()
		return false
	}

	first := h.users.Register(name, sess.ID, sess)

	var failed []*Session
	if first {
		failed = h.fanOutLocked(h.ServerLine(fmt.Sprintf("The new user [%s] has just connected", name)), sess.ID)
	}

	for _, line := range h.history.Get() {
		if !sess.Deliver(line) {
			failed = append(failed, sess)
			break
		}
	}

	total := h.users.Count(name)
	h.mu.Unlock()

	h.logger.Info().
		Str("user", name).
		Str("session_id", sess.ID).
		Bool("first_session", first).
		Int("user_sessions", total).
		Msg("Session joined.")

	h.dropFailed(failed)
	return true
}

// Leave tears sess down: it closes the output sink and removes the session from the
// registry. When that empties the name, every remaining session gets a leave notice.
// Calling Leave on an already closed session does nothing.
func (h *Hub) Leave(sess *Session) {
	if !sess.Close() {
		return
	}

	name, named := sess.Name()
	if !named {
		h.logger.Info().Str("session_id", sess.ID).Msg("Session closed before handshake completed.")
		return
	}

	h.mu.Lock()

	removed := h.users.Unregister(name, sess.ID)

	var failed []*Session
	if removed {
		failed = h.fanOutLocked(h.ServerLine(fmt.Sprintf("The user [%s] has left", name)), sess.ID)
	}

	h.mu.Unlock()

	h.logger.Info().
		Str("user", name).
		Str("session_id", sess.ID).
		Bool("user_left", removed).
		Msg("Stopped serving session.")

	h.dropFailed(failed)
}

// Broadcast sends message to every registered session except exclude.
// The line is tagged with the server name when fromServer is set, otherwise with
// exclude's user name; user messages are recorded into the history before fan-out.
func (h *Hub) Broadcast(message string, exclude *Session, fromServer bool) {
	tag := h.serverName
	excludeID := ""

	if exclude != nil {
		excludeID = exclude.ID
		if !fromServer {
			if name, named := exclude.Name(); named {
				tag = name
			}
		}
	}

	line := tagLine(tag, message)

	h.mu.Lock()
	if !fromServer {
		h.history.Add(line)
	}
	failed := h.fanOutLocked(line, excludeID)
	h.mu.Unlock()

	h.dropFailed(failed)
}

// SendPrivate delivers message to every session registered under toName except from itself.
// It returns an ErrUserNotFound error when nobody uses toName, otherwise whether at least
// one session accepted the line. Private lines are never recorded into the history.
func (h *Hub) SendPrivate(from *Session, toName, message string) (bool, error) {
	fromName, _ := from.Name()
	line := fmt.Sprintf("[%s] -> [%s] %s", fromName, toName, strings.TrimSpace(message))

	h.mu.Lock()

	if !h.users.Has(toName) {
		h.mu.Unlock()
		return false, errs.NewError(errs.ErrUserNotFound, toName)
	}

	var failed []*Session
	sent := 0

	for _, target := range h.users.SessionsFor(toName) {
		if target.ID == from.ID {
			continue
		}

		switch target.Session.tryDeliver(line) {
		case delivered:
			sent++
		case deliveryQueueFull:
			failed = append(failed, target.Session)
		}
	}

	h.mu.Unlock()

	h.dropFailed(failed)
	return sent > 0, nil
}

// OnlineUsers returns every online user name with its session count, sorted by name.
func (h *Hub) OnlineUsers() []UserSummary {
	h.mu.Lock()
	defer h.mu.Unlock()

	names := h.users.Names()
	out := make([]UserSummary, 0, len(names))
	for _, name := range names {
		out = append(out, UserSummary{Name: name, Sessions: h.users.Count(name)})
	}
	return out
}

// History returns the recorded public lines, oldest first.
func (h *Hub) History() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.history.Get()
}

// fanOutLocked queues line to every registered session except excludeID and
// returns the sessions that could not accept it. h.mu must be held.
func (h *Hub) fanOutLocked(line, excludeID string) []*Session {
	var failed []*Session

	for _, entry := range h.users.AllSessions() {
		if entry.ID == excludeID {
			continue
		}

		// closed sessions are mid-teardown and only need skipping
		if entry.Session.tryDeliver(line) == deliveryQueueFull {
			failed = append(failed, entry.Session)
		}
	}

	return failed
}

// dropFailed tears down sessions whose delivery failed. h.mu must not be held.
func (h *Hub) dropFailed(failed []*Session) {
	for _, sess := range failed {
		h.logger.Warn().Str("session_id", sess.ID).Msg("Delivery failed, dropping session.")
		sess.Abort()
		h.Leave(sess)
	}
}

// tagLine formats "[tag] text".
func tagLine(tag, text string) string {
	return fmt.Sprintf("[%s] %s", tag, strings.TrimSpace(text))
}
