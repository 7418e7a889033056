package main

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// RawLogModel is the raw tab: every entry's untranscoded content, color-coded by role.
type RawLogModel struct {
	viewport viewport.Model
	entries  []TranscriptEntry
	width    int
	height   int
}

// NewRawLogModel creates a new raw log tab model.
func NewRawLogModel() RawLogModel {
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	return RawLogModel{
		viewport: vp,
	}
}

// SetSession replaces the displayed entries.
func (m *RawLogModel) SetSession(s *Session) {
	m.entries = s.Entries
	m.refresh()
	m.viewport.GotoTop()
}

// Update handles messages for the raw log tab.
func (m RawLogModel) Update(msg tea.Msg) (RawLogModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *RawLogModel) refresh() {
	m.viewport.SetContent(rawLogContent(m.entries, max(m.width-1, 20)))
}

// rawLogContent lists entries as recorded, each body wrapped to width cells.
func rawLogContent(entries []TranscriptEntry, width int) string {
	dirStyle := lipgloss.NewStyle().Bold(true)
	tsStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	blocks := make([]string, 0, len(entries))
	for i, e := range entries {
		direction := "←"
		if e.Role == RoleUser {
			direction = "→"
		}
		header := dirStyle.Render(fmt.Sprintf("%s [%s] #%d", direction, e.Role, i))
		if !e.Timestamp.IsZero() {
			header += " " + tsStyle.Render(e.Timestamp.Local().Format(timestampLayout))
		}
		body := roleStyle(e.Role).Render(ansi.Wrap(e.Content, width, ""))
		blocks = append(blocks, header+"\n"+body)
	}
	return strings.Join(blocks, "\n\n")
}

func roleStyle(r Role) lipgloss.Style {
	switch r {
	case RoleSystem:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	case RoleAssistant:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	case RoleTool:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	case RoleUser:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	default:
		return lipgloss.NewStyle()
	}
}

// SetSize updates the raw log tab dimensions.
func (m *RawLogModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.SetWidth(w)
	m.viewport.SetHeight(h)
	m.refresh()
}

// View renders the raw log tab.
func (m RawLogModel) View() string {
	return m.viewport.View()
}
