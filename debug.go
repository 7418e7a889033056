package main

import (
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// DebugModel is the debug tab showing load results and diagnostics.
type DebugModel struct {
	viewport viewport.Model
	lines    []string
	policy   TruncationPolicy
	width    int
	height   int
}

// NewDebugModel creates a new debug tab model.
func NewDebugModel(policy TruncationPolicy) DebugModel {
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	return DebugModel{
		viewport: vp,
		policy:   policy.normalized(),
	}
}

// Update handles messages for the debug tab.
func (m DebugModel) Update(msg tea.Msg) (DebugModel, tea.Cmd) {
	switch msg := msg.(type) {
	case SessionLoadedMsg:
		if msg.Err != nil {
			m.addEntry("error", "9", msg.Err.Error())
			return m, nil
		}
		s := msg.Session
		m.addEntry("load", "10", fmt.Sprintf("path=%s entries=%d tools=%d", msg.Path, len(s.Entries), len(s.Meta.ToolCalls)))
		if s.Meta.Skipped > 0 {
			m.addEntry("skip", "11", fmt.Sprintf("%d malformed lines skipped", s.Meta.Skipped))
		}
		for _, d := range entryDiagnostics(s, m.policy) {
			m.addEntry("entry", "12", d)
		}
		return m, nil

	case DiagnosticMsg:
		m.addEntry(msg.Label, "11", msg.Message)
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// entryDiagnostics reports entries worth a look: those carrying images and those that
// start collapsed.
func entryDiagnostics(s *Session, policy TruncationPolicy) []string {
	var out []string
	for i, e := range s.Entries {
		doc := Render(e.Content)
		if imgs := doc.Images(); len(imgs) > 0 {
			mimes := make([]string, len(imgs))
			for j, img := range imgs {
				mimes[j] = img.MIMEType
			}
			out = append(out, fmt.Sprintf("#%d %s: %d images (%s)", i, e.Role, len(imgs), strings.Join(mimes, ", ")))
		}
		if t := NewTruncation(doc, policy); t.IsLong() {
			out = append(out, fmt.Sprintf("#%d %s: %d lines, %d hidden while collapsed", i, e.Role, t.TotalLines(), t.Remaining()))
		}
	}
	return out
}

func (m *DebugModel) addEntry(label, color, text string) {
	ts := time.Now().Format("15:04:05.000")
	tsStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
	line := fmt.Sprintf("%s %s %s", tsStyle.Render(ts), labelStyle.Render(fmt.Sprintf("[%-6s]", label)), text)
	m.lines = append(m.lines, line)
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

// SetSize updates the debug tab dimensions.
func (m *DebugModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.SetWidth(w)
	m.viewport.SetHeight(h)
}

// View renders the debug tab.
func (m DebugModel) View() string {
	return m.viewport.View()
}
