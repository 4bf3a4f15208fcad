package chat

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CommandMarker introduces a command anywhere in a line.
const CommandMarker = "/"

// CommandKind enumerates the commands a client can issue.
type CommandKind int

const (
	// CommandUnknown is an empty command or an unrecognized letter.
	CommandUnknown CommandKind = iota

	// CommandQuit ends the session.
	CommandQuit

	// CommandHelp lists the available commands.
	CommandHelp

	// CommandPrivate sends Body to the sessions of Target.
	CommandPrivate

	// CommandInvalid is a private message missing its target or body.
	CommandInvalid
)

func (k CommandKind) String() string {
	switch k {
	case CommandQuit:
		return "quit"
	case CommandHelp:
		return "help"
	case CommandPrivate:
		return "private"
	case CommandInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Command is a parsed command line. Target and Body are set only for CommandPrivate.
type Command struct {
	Kind   CommandKind
	Target string
	Body   string
}

// HelpLines is the help text, one notice per entry.
var HelpLines = []string{
	"Possible actions are described below:",
	"/h - The help (this messages).",
	"/q - To exit.",
	"/p <user> <message> - Private message for the <user>",
}

// ParseCommand parses line if it contains CommandMarker; ok is false otherwise.
// The letter right after the first marker selects the command, case-insensitively.
func ParseCommand(line string) (cmd Command, ok bool) {
	idx := strings.Index(line, CommandMarker)
	if idx < 0 {
		return Command{}, false
	}

	rest := line[idx+len(CommandMarker):]
	if rest == "" {
		return Command{Kind: CommandUnknown}, true
	}

	letter, size := utf8.DecodeRuneInString(rest)
	args := rest[size:]

	switch unicode.ToLower(letter) {
	case 'q':
		return Command{Kind: CommandQuit}, true
	case 'h':
		return Command{Kind: CommandHelp}, true
	case 'p':
		fields := strings.Fields(args)
		if len(fields) < 2 {
			return Command{Kind: CommandInvalid}, true
		}
		return Command{
			Kind:   CommandPrivate,
			Target: fields[0],
			Body:   strings.Join(fields[1:], " "),
		}, true
	default:
		return Command{Kind: CommandUnknown}, true
	}
}
