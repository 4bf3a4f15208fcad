package chat

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		isCommand bool
		want      Command
	}{
		{name: "plain text", line: "hello there", isCommand: false},
		{name: "quit", line: "/q", isCommand: true, want: Command{Kind: CommandQuit}},
		{name: "quit uppercase with suffix", line: "/QUIT", isCommand: true, want: Command{Kind: CommandQuit}},
		{name: "marker mid-line", line: "see you /q", isCommand: true, want: Command{Kind: CommandQuit}},
		{name: "help", line: "/h", isCommand: true, want: Command{Kind: CommandHelp}},
		{
			name:      "private",
			line:      "/p bob hi   there  friend",
			isCommand: true,
			want:      Command{Kind: CommandPrivate, Target: "bob", Body: "hi there friend"},
		},
		{
			name:      "private uppercase",
			line:      "/P bob hi",
			isCommand: true,
			want:      Command{Kind: CommandPrivate, Target: "bob", Body: "hi"},
		},
		{name: "private missing body", line: "/p bob", isCommand: true, want: Command{Kind: CommandInvalid}},
		{name: "private missing everything", line: "/p", isCommand: true, want: Command{Kind: CommandInvalid}},
		{name: "empty command", line: "/", isCommand: true, want: Command{Kind: CommandUnknown}},
		{name: "unknown letter", line: "/x marks", isCommand: true, want: Command{Kind: CommandUnknown}},
		{name: "url-like text", line: "see http://example.com", isCommand: true, want: Command{Kind: CommandUnknown}},
		{name: "non-ascii letter", line: "/ÿ", isCommand: true, want: Command{Kind: CommandUnknown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCommand(tt.line)
			if ok != tt.isCommand {
				t.Fatalf("ParseCommand(%q) ok = %v, want %v", tt.line, ok, tt.isCommand)
			}
			if got != tt.want {
				t.Errorf("ParseCommand(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestCommandKindString(t *testing.T) {
	if got := CommandPrivate.String(); got != "private" {
		t.Errorf("CommandPrivate.String() = %q, want %q", got, "private")
	}
	if got := CommandKind(42).String(); got != "unknown" {
		t.Errorf("CommandKind(42).String() = %q, want %q", got, "unknown")
	}
}
