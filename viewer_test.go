package main

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/require"
)

func viewerSession() *Session {
	return &Session{
		ID: "s1",
		Entries: []TranscriptEntry{
			{Role: RoleUser, Content: "show me"},
			{Role: RoleAssistant, Content: numberedLines(1, 10)},
			{Role: RoleTool, Content: "<tool-result>ok</tool-result>"},
		},
	}
}

func newTestTranscript(t *testing.T) TranscriptModel {
	t.Helper()
	m := NewTranscriptModel(TruncationPolicy{MaxLines: 4})
	m.SetSize(80, 200)
	m.SetSession(viewerSession())
	return m
}

func TestTranscriptModelInitialState(t *testing.T) {
	m := newTestTranscript(t)

	require.Len(t, m.entries, 3)
	require.Len(t, m.cardZones, 3)
	require.True(t, m.entries[0].trunc.Expanded())
	require.False(t, m.entries[1].trunc.Expanded())
	require.Equal(t, 6, m.entries[1].trunc.Remaining())
	require.Contains(t, m.viewport.View(), "Show remaining 6 lines")
}

func TestTranscriptModelToggle(t *testing.T) {
	m := newTestTranscript(t)

	m.moveCursor(1)
	require.Equal(t, 1, m.cursor)

	m.toggle(m.cursor)
	require.True(t, m.entries[1].trunc.Expanded())
	require.Contains(t, m.viewport.View(), "Show less")

	m.toggle(m.cursor)
	require.False(t, m.entries[1].trunc.Expanded())

	// Short entries have nothing to toggle.
	m.toggle(0)
	require.True(t, m.entries[0].trunc.Expanded())
}

func TestTranscriptModelExpandCollapseAll(t *testing.T) {
	m := newTestTranscript(t)

	m.setAllExpanded(true)
	for _, e := range m.entries {
		require.True(t, e.trunc.Expanded())
	}
	m.setAllExpanded(false)
	require.False(t, m.entries[1].trunc.Expanded())
	require.True(t, m.entries[0].trunc.Expanded())
}

func TestTranscriptModelClickToggles(t *testing.T) {
	m := newTestTranscript(t)
	z := m.cardZones[1]

	m, _ = m.Update(tea.MouseClickMsg{X: 5, Y: m.topOffset + z.startLine + 1, Button: tea.MouseLeft})
	require.Equal(t, 1, m.cursor)
	require.True(t, m.entries[1].trunc.Expanded())
}

func TestTranscriptModelCursorClamped(t *testing.T) {
	m := newTestTranscript(t)

	m.moveCursor(-3)
	require.Equal(t, 0, m.cursor)
	m.moveCursor(99)
	require.Equal(t, 2, m.cursor)
	require.Contains(t, m.View(), "entry 3/3")
}

func TestTranscriptModelSearchPrompt(t *testing.T) {
	m := newTestTranscript(t)

	m, _ = m.Update(tea.KeyPressMsg{Code: '/', Text: "/"})
	require.True(t, m.Searching())

	m.searchInput.SetValue("OK")
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.False(t, m.Searching())
	require.Equal(t, []int{2}, m.matches)
	require.Equal(t, 2, m.cursor)
	require.Contains(t, m.View(), "/OK: match 1/1")

	m, _ = m.Update(tea.KeyPressMsg{Code: '/', Text: "/"})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.False(t, m.Searching())
	require.Equal(t, "OK", m.query)
}

func TestTranscriptModelSearchCycles(t *testing.T) {
	m := newTestTranscript(t)

	// "show me" and the tool output header both contain an "o".
	m.search("o")
	require.Equal(t, []int{0, 2}, m.matches)
	require.Equal(t, 0, m.cursor)

	m, _ = m.Update(tea.KeyPressMsg{Code: 'n', Text: "n"})
	require.Equal(t, 2, m.cursor)
	m, _ = m.Update(tea.KeyPressMsg{Code: 'n', Text: "n"})
	require.Equal(t, 0, m.cursor)
	m, _ = m.Update(tea.KeyPressMsg{Code: 'N', Text: "N"})
	require.Equal(t, 2, m.cursor)

	m.search("zebra")
	require.Empty(t, m.matches)
	require.Equal(t, 2, m.cursor)
	require.Contains(t, m.View(), "/zebra: no matches")

	m.search("")
	require.NotContains(t, m.View(), "/zebra")
}

func TestModelSearchPromptKeepsKeys(t *testing.T) {
	var tm tea.Model = NewModel(viewerSession(), DefaultConfig())
	tm, _ = tm.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	tm, _ = tm.Update(SessionLoadedMsg{Session: viewerSession()})
	tm, _ = tm.Update(tea.KeyPressMsg{Code: '/', Text: "/"})
	tm, _ = tm.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	tm, _ = tm.Update(tea.KeyPressMsg{Code: tea.KeyTab})

	m := tm.(Model)
	require.Equal(t, tabTranscript, m.activeTab)
	require.True(t, m.transcript.Searching())
	require.Equal(t, "q", m.transcript.searchInput.Value())
}
