package main

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
)

func TestToolCallSummary(t *testing.T) {
	tests := []struct {
		name  string
		call  ToolCall
		width int
		want  string
	}{
		{name: "bash first line", call: ToolCall{Name: "Bash", Input: `{"command":"go test ./...\n-v"}`}, width: 80, want: "go test ./..."},
		{name: "read path", call: ToolCall{Name: "Read", Input: `{"file_path":"/src/main.go"}`}, width: 80, want: "/src/main.go"},
		{name: "grep with path", call: ToolCall{Name: "Grep", Input: `{"pattern":"func Test","path":"/src"}`}, width: 80, want: "func Test in /src"},
		{name: "glob without path", call: ToolCall{Name: "Glob", Input: `{"pattern":"**/*.go"}`}, width: 80, want: "**/*.go"},
		{name: "todo count", call: ToolCall{Name: "TodoWrite", Input: `{"todos":[{"content":"a"},{"content":"b"}]}`}, width: 80, want: "2 todos"},
		{name: "other tool url", call: ToolCall{Name: "WebFetch", Input: `{"url":"https://go.dev","prompt":"summarize"}`}, width: 80, want: "https://go.dev"},
		{name: "other tool without known keys", call: ToolCall{Name: "Task", Input: `{"n":1}`}, width: 80, want: `{"n":1}`},
		{name: "input not JSON", call: ToolCall{Name: "Bash", Input: "ls -la\npwd"}, width: 80, want: "ls -la"},
		{name: "no input", call: ToolCall{Name: "KillBash"}, width: 80, want: ""},
		{name: "clipped", call: ToolCall{Name: "Bash", Input: `{"command":"docker compose up --build"}`}, width: 10, want: "docker co…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.call.Summary(tt.width); got != tt.want {
				t.Errorf("Summary(%d) = %q, want %q", tt.width, got, tt.want)
			}
		})
	}
}

func TestStatsRecentToolCalls(t *testing.T) {
	s := &Session{ID: "abc", Meta: SessionMeta{ToolStats: map[string]int{"Bash": 25}}}
	for i := range 25 {
		s.Meta.ToolCalls = append(s.Meta.ToolCalls, ToolCall{Name: "Bash", Input: fmt.Sprintf(`{"command":"cmd-%02d"}`, i)})
	}

	m := NewStatsModel()
	m.SetSize(80, 40)
	m.SetSession(s)
	out := ansi.Strip(m.render())

	for _, want := range []string{"Recent tool calls", "cmd-05", "cmd-24"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats are missing %q", want)
		}
	}
	if strings.Contains(out, "cmd-04") {
		t.Error("stats list more than the most recent tool calls")
	}
}

func TestStatsDurationsAndFiles(t *testing.T) {
	s := &Session{
		ID: "abc",
		Meta: SessionMeta{
			ToolStats:     map[string]int{},
			ModifiedFiles: []string{"/src/a.go", "/src/b.go"},
			TotalDuration: 95*time.Second + 400*time.Millisecond,
			UserDuration:  time.Minute,
			ModelDuration: 35 * time.Second,
		},
	}

	m := NewStatsModel()
	m.SetSize(80, 40)
	m.SetSession(s)
	out := ansi.Strip(m.render())

	for _, want := range []string{"1m35s (you 1m0s, model 35s)", "Files changed", "/src/a.go", "/src/b.go"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats are missing %q:\n%s", want, out)
		}
	}
}
