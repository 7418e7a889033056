package main

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"
)

// recentToolCalls bounds the tool call list on the stats tab.
const recentToolCalls = 20

// StatsModel shows what the loader learned about the session: model, token counts and tool use.
type StatsModel struct {
	viewport viewport.Model
	session  *Session
	width    int
	height   int
}

func NewStatsModel() StatsModel {
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	return StatsModel{viewport: vp}
}

func (m *StatsModel) SetSession(s *Session) {
	m.session = s
	m.viewport.SetContent(m.render())
	m.viewport.GotoTop()
}

func (m StatsModel) Update(msg tea.Msg) (StatsModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m StatsModel) render() string {
	s := m.session
	if s == nil {
		return ""
	}
	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Width(14)
	headStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	toolStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	var lines []string
	row := func(label, value string) {
		lines = append(lines, labelStyle.Render(label)+value)
	}

	row("Session", s.ID)
	row("File", s.Path)
	if s.Meta.Model != "" {
		row("Model", s.Meta.Model)
	}
	row("Entries", humanize.Comma(int64(len(s.Entries))))
	row("Turns", humanize.Comma(int64(s.Meta.Turns)))
	row("Tokens", fmt.Sprintf("%s in / %s out (%s total)",
		humanize.Comma(int64(s.Meta.InputTokens)),
		humanize.Comma(int64(s.Meta.OutputTokens)),
		humanize.Comma(int64(s.Meta.TotalTokens()))))
	if d := s.Meta.TotalDuration; d > 0 {
		row("Duration", fmt.Sprintf("%s (you %s, model %s)",
			d.Round(time.Second), s.Meta.UserDuration.Round(time.Second), s.Meta.ModelDuration.Round(time.Second)))
	}
	if n := len(s.Meta.ModifiedFiles); n > 0 {
		row("Files changed", humanize.Comma(int64(n)))
	}
	if s.Meta.Skipped > 0 {
		row("Skipped", fmt.Sprintf("%d malformed lines", s.Meta.Skipped))
	}

	byRole := make(map[Role]int)
	for _, e := range s.Entries {
		byRole[e.Role]++
	}
	lines = append(lines, "", headStyle.Render("Entries by role"))
	for _, r := range []Role{RoleUser, RoleAssistant, RoleTool, RoleSystem} {
		if n := byRole[r]; n > 0 {
			row("  "+roleLabel(r), humanize.Comma(int64(n)))
		}
	}

	if len(s.Meta.ToolStats) > 0 {
		lines = append(lines, "", headStyle.Render("Tool use"))
		names := slices.SortedFunc(maps.Keys(s.Meta.ToolStats), func(a, b string) int {
			if c := cmp.Compare(s.Meta.ToolStats[b], s.Meta.ToolStats[a]); c != 0 {
				return c
			}
			return strings.Compare(a, b)
		})
		for _, name := range names {
			row("  "+name, humanize.Comma(int64(s.Meta.ToolStats[name])))
		}
	}

	if files := s.Meta.ModifiedFiles; len(files) > 0 {
		lines = append(lines, "", headStyle.Render("Files changed"))
		for _, f := range files {
			lines = append(lines, "  "+clip(f, max(m.width-4, 20)))
		}
	}

	if calls := s.Meta.ToolCalls; len(calls) > 0 {
		lines = append(lines, "", headStyle.Render("Recent tool calls"))
		maxLen := max(m.width-20, 20)
		for _, c := range calls[max(len(calls)-recentToolCalls, 0):] {
			lines = append(lines, "  "+toolStyle.Render("⚙ "+c.Name)+" "+dimStyle.Render(c.Summary(maxLen)))
		}
	}

	return strings.Join(lines, "\n")
}

// summaryKeys are tried in order for tools without a dedicated summary.
var summaryKeys = []string{"command", "file_path", "path", "pattern", "query", "url", "prompt", "description"}

// Summary returns the argument that best describes the call, on one line of at most
// width cells. Calls whose input is not JSON show the first line of the input.
func (c ToolCall) Summary(width int) string {
	if !gjson.Valid(c.Input) {
		return firstLine(c.Input, width)
	}
	args := gjson.Parse(c.Input)

	var summary string
	switch c.Name {
	case "Bash":
		summary = args.Get("command").String()
	case "Read", "Write", "Edit", "MultiEdit", "NotebookEdit":
		summary = args.Get("file_path").String()
	case "Glob", "Grep":
		summary = args.Get("pattern").String()
		if path := args.Get("path").String(); path != "" && summary != "" {
			summary += " in " + path
		}
	case "TodoWrite":
		if n := len(args.Get("todos").Array()); n > 0 {
			summary = fmt.Sprintf("%d todos", n)
		}
	default:
		for _, key := range summaryKeys {
			if v := args.Get(key); v.Type == gjson.String && v.Str != "" {
				summary = v.Str
				break
			}
		}
	}

	if summary == "" {
		return firstLine(c.Input, width)
	}
	return firstLine(summary, width)
}

func (m *StatsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.SetWidth(w)
	m.viewport.SetHeight(h)
	m.viewport.SetContent(m.render())
}

func (m StatsModel) View() string {
	return m.viewport.View()
}
