package main

import (
	"log/slog"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

const (
	tabTranscript = iota
	tabRaw
	tabStats
	tabDebug
	numTabs
)

var tabNames = [numTabs]string{"Transcript", "Raw", "Stats", "Debug"}

// tabBarHeight is the tab bar line plus the blank line under it.
const tabBarHeight = 2

// Model is the root TUI model with tabs for the transcript, raw entries, stats and diagnostics.
type Model struct {
	activeTab  int
	width      int
	height     int
	path       string
	transcript TranscriptModel
	raw        RawLogModel
	stats      StatsModel
	debug      DebugModel
	pending    *Session
}

// NewModel creates the root model for a loaded session.
func NewModel(s *Session, cfg Config) Model {
	m := Model{
		path:       s.Path,
		transcript: NewTranscriptModel(cfg.TruncationPolicy()),
		raw:        NewRawLogModel(),
		stats:      NewStatsModel(),
		debug:      NewDebugModel(cfg.TruncationPolicy()),
		pending:    s,
	}
	m.transcript.topOffset = tabBarHeight
	return m
}

func (m Model) Init() tea.Cmd {
	s := m.pending
	return func() tea.Msg {
		return SessionLoadedMsg{Path: s.Path, Session: s}
	}
}

// reloadSession reads the session file again in the background.
func reloadSession(path string) tea.Cmd {
	return func() tea.Msg {
		s, err := LoadSession(path)
		return SessionLoadedMsg{Path: path, Session: s, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if m.activeTab == tabTranscript && m.transcript.Searching() {
			var cmd tea.Cmd
			m.transcript, cmd = m.transcript.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "tab":
			m.activeTab = (m.activeTab + 1) % numTabs
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + numTabs - 1) % numTabs
			return m, nil
		case "ctrl+1", "ctrl+2", "ctrl+3", "ctrl+4":
			m.activeTab = int(msg.String()[len("ctrl+")] - '1')
			return m, nil
		case "r":
			slog.Debug("Reloading session", "path", m.path)
			return m, reloadSession(m.path)
		case "q", "ctrl+c", "ctrl+q":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		contentHeight := m.height - tabBarHeight
		m.transcript.SetSize(m.width, contentHeight)
		m.raw.SetSize(m.width, contentHeight)
		m.stats.SetSize(m.width, contentHeight)
		m.debug.SetSize(m.width, contentHeight)
		return m, nil

	case SessionLoadedMsg:
		m.pending = nil
		if msg.Err != nil {
			slog.Error("Reload failed", "path", msg.Path, "error", msg.Err)
			var cmd tea.Cmd
			m.debug, cmd = m.debug.Update(DiagnosticMsg{Label: "error", Message: msg.Err.Error()})
			return m, cmd
		}
		m.transcript.SetSession(msg.Session)
		m.raw.SetSession(msg.Session)
		m.stats.SetSession(msg.Session)
		var cmd tea.Cmd
		m.debug, cmd = m.debug.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case DiagnosticMsg:
		var cmd tea.Cmd
		m.debug, cmd = m.debug.Update(msg)
		return m, cmd
	}

	// Delegate to active tab
	var cmd tea.Cmd
	switch m.activeTab {
	case tabTranscript:
		m.transcript, cmd = m.transcript.Update(msg)
	case tabRaw:
		m.raw, cmd = m.raw.Update(msg)
	case tabStats:
		m.stats, cmd = m.stats.Update(msg)
	case tabDebug:
		m.debug, cmd = m.debug.Update(msg)
	}
	if cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() tea.View {
	if m.width == 0 {
		v := tea.NewView("Loading...")
		v.AltScreen = true
		v.MouseMode = tea.MouseModeCellMotion
		return v
	}

	var content string
	switch m.activeTab {
	case tabTranscript:
		content = m.transcript.View()
	case tabRaw:
		content = m.raw.View()
	case tabStats:
		content = m.stats.View()
	case tabDebug:
		content = m.debug.View()
	}

	v := tea.NewView(m.renderTabBar() + "\n\n" + content)
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

func (m Model) renderTabBar() string {
	activeStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("4")).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("7")).
		Padding(0, 1)
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	var parts []string
	for i, tab := range tabNames {
		if i == m.activeTab {
			parts = append(parts, activeStyle.Render(tab))
		} else {
			parts = append(parts, inactiveStyle.Render(tab))
		}
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	help := helpStyle.Render("  Tab: switch | /: search | r: reload | q: quit")
	return bar + help
}
