/*
Package chat contains the line-oriented chat core.

This file defines Handler, the protocol state machine that drives one connection
from the name handshake through the chat loop to teardown.
*/
package chat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"linechat/internal/pkg/errs"
)

const (
	// PromptName is sent at the start of every handshake attempt.
	PromptName = "Welcome. Enter your name:"

	welcomeFormat = "Hello [%s]. Enter /q to exit or enter /h if you need help."
)

// Handler runs the protocol for one Session.
type Handler struct {
	hub     *Hub
	session *Session
	scanner *bufio.Scanner
	logger  zerolog.Logger
}

// NewHandler builds a Handler reading lines of at most maxLineBytes from the session's connection.
func NewHandler(hub *Hub, sess *Session, maxLineBytes int) *Handler {
	scanner := bufio.NewScanner(sess.conn)

	initial := 4096
	if maxLineBytes < initial {
		initial = maxLineBytes
	}
	scanner.Buffer(make([]byte, 0, initial), maxLineBytes)

	return &Handler{
		hub:     hub,
		session: sess,
		scanner: scanner,
		logger:  sess.logger,
	}
}

// Run serves the connection until the peer disconnects or quits.
// It starts the session's WritePump and always ends with the teardown path.
func (h *Handler) Run() {
	go h.session.WritePump()
	defer h.hub.Leave(h.session)

	h.logger.Info().Msg("New client connected.")

	name, ok := h.awaitName()
	if !ok {
		return
	}

	h.session.SetName(name)
	h.logger = h.logger.With().Str("user", name).Logger()
	h.logger.Info().Msg("Client chose a name.")

	if !h.reply(fmt.Sprintf(welcomeFormat, name)) {
		return
	}

	if !h.hub.Join(h.session) {
		return
	}

	h.chatLoop()
}

// awaitName runs the handshake and returns the trimmed user name.
// ok is false once the connection ends before a valid name arrives.
func (h *Handler) awaitName() (name string, ok bool) {
	for {
		if !h.reply(PromptName) {
			return "", false
		}

		line, err := h.readLine()
		if err != nil {
			h.logReadEnd(err, "Connection ended during handshake.")
			return "", false
		}

		if !utf8.ValidString(line) {
			h.replyError(errs.NewError(errs.ErrEncoding))
			continue
		}

		name = strings.TrimSpace(line)
		if name == "" {
			h.replyError(errs.NewError(errs.ErrEmptyName))
			continue
		}

		return name, true
	}
}

// chatLoop reads lines until the connection ends or the user quits.
func (h *Handler) chatLoop() {
	for {
		line, err := h.readLine()
		if err != nil {
			h.logReadEnd(err, "Connection ended.")
			return
		}

		if !utf8.ValidString(line) {
			h.replyError(errs.NewError(errs.ErrEncodingNotSent))
			continue
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}

		h.logger.Debug().Str("line", text).Msg("Received line.")

		if cmd, isCommand := ParseCommand(text); isCommand {
			if !h.dispatch(cmd) {
				return
			}
			continue
		}

		h.hub.Broadcast(text, h.session, false)
	}
}

// dispatch executes cmd and reports whether the chat loop should continue.
func (h *Handler) dispatch(cmd Command) bool {
	switch cmd.Kind {
	case CommandQuit:
		h.logger.Info().Msg("Client quit.")
		h.hub.Leave(h.session)
		return false

	case CommandHelp:
		for _, line := range HelpLines {
			h.notify(line)
		}

	case CommandPrivate:
		h.sendPrivate(cmd.Target, cmd.Body)

	case CommandInvalid:
		h.notify(errs.NewError(errs.ErrInputError).Message)

	case CommandUnknown:
		h.notify(errs.NewError(errs.ErrUnknownCommand).Message)
	}

	return true
}

// sendPrivate handles the private message command.
func (h *Handler) sendPrivate(target, body string) {
	if name, _ := h.session.Name(); target == name {
		h.replyError(errs.NewError(errs.ErrSelfMessage))
		return
	}

	sent, err := h.hub.SendPrivate(h.session, target, body)
	if errs.Is(err, errs.ErrUserNotFound) {
		h.replyError(errs.NewError(errs.ErrUserNotFound, target))
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("to", target).Msg("Private message failed.")
		return
	}

	logEvent := h.logger.Debug().Str("to", target).Str("body", body)
	if !sent {
		logEvent.Msg("Private message not delivered.")
		h.notify(errs.NewError(errs.ErrMessageNotSent, target).Message)
		return
	}
	logEvent.Msg("Private message delivered.")
}

// readLine returns the next line without its terminator.
// A clean end of stream is reported as io.EOF.
func (h *Handler) readLine() (string, error) {
	if h.scanner.Scan() {
		return h.scanner.Text(), nil
	}

	err := h.scanner.Err()
	if err == nil {
		return "", io.EOF
	}

	if errors.Is(err, bufio.ErrTooLong) {
		h.replyError(errs.NewError(errs.ErrLineTooLong))
	}
	return "", err
}

// reply queues line to this session only. A full queue tears the session down.
func (h *Handler) reply(line string) bool {
	if h.session.Deliver(line) {
		return true
	}

	h.session.Abort()
	h.hub.Leave(h.session)
	return false
}

// replyError sends the error's message untagged.
func (h *Handler) replyError(customErr *errs.CustomError) bool {
	return h.reply(customErr.Message)
}

// notify sends a server-tagged line to this session only.
func (h *Handler) notify(text string) bool {
	return h.reply(h.hub.ServerLine(text))
}

func (h *Handler) logReadEnd(err error, msg string) {
	if errors.Is(err, io.EOF) || isClosedConnError(err) {
		h.logger.Info().Msg(msg)
		return
	}
	h.logger.Info().Err(err).Msg(msg)
}
