package main

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
)

type viewerEntry struct {
	entry TranscriptEntry
	doc   Document
	trunc *Truncation
	text  string          // searchable text
	cache map[bool]string // rendered body keyed by expanded state
}

type transcriptKeyMap struct {
	Next        key.Binding
	Prev        key.Binding
	Toggle      key.Binding
	ExpandAll   key.Binding
	CollapseAll key.Binding
	Top         key.Binding
	Bottom      key.Binding
	Search      key.Binding
	NextMatch   key.Binding
	PrevMatch   key.Binding
}

func defaultTranscriptKeyMap() transcriptKeyMap {
	return transcriptKeyMap{
		Next:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "next")),
		Prev:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "prev")),
		Toggle:      key.NewBinding(key.WithKeys("enter", "space"), key.WithHelp("enter", "expand/collapse")),
		ExpandAll:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "expand all")),
		CollapseAll: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "collapse all")),
		Top:         key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:      key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		NextMatch:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n/N", "next/prev match")),
		PrevMatch:   key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "prev match")),
	}
}

// TranscriptModel is the transcript tab: one card per entry, long entries collapsed to the
// line policy and toggled with enter or a click.
type TranscriptModel struct {
	viewport  viewport.Model
	entries   []viewerEntry
	cursor    int
	title     string
	width     int
	height    int
	topOffset int // screen row of the first viewport line
	policy    TruncationPolicy
	renderer  *glamour.TermRenderer
	cardZones []cardZone
	keys      transcriptKeyMap

	searchInput textinput.Model
	searching   bool
	query       string
	matches     []int // entry indexes
	matchIdx    int

	styleTitle          lipgloss.Style
	styleCard           lipgloss.Style
	styleCardSelected   lipgloss.Style
	styleUserLabel      lipgloss.Style
	styleAssistantLabel lipgloss.Style
	styleToolLabel      lipgloss.Style
	styleToggle         lipgloss.Style
	styleImage          lipgloss.Style
	styleDim            lipgloss.Style
}

// NewTranscriptModel creates the transcript tab.
func NewTranscriptModel(policy TruncationPolicy) TranscriptModel {
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.KeyMap.Left = key.NewBinding(key.WithDisabled())
	vp.KeyMap.Right = key.NewBinding(key.WithDisabled())
	// Up and down move between entries instead of scrolling.
	vp.KeyMap.Up = key.NewBinding(key.WithDisabled())
	vp.KeyMap.Down = key.NewBinding(key.WithDisabled())

	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(74),
	)

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("238")).
		Padding(0, 1)

	si := textinput.New()
	si.Prompt = "/"
	si.Placeholder = "search..."
	si.CharLimit = 100

	return TranscriptModel{
		viewport:            vp,
		searchInput:         si,
		policy:              policy.normalized(),
		renderer:            r,
		keys:                defaultTranscriptKeyMap(),
		styleTitle:          lipgloss.NewStyle().Bold(true).Padding(0, 1).Background(lipgloss.Color("236")),
		styleCard:           card,
		styleCardSelected:   card.BorderForeground(lipgloss.Color("4")),
		styleUserLabel:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		styleAssistantLabel: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		styleToolLabel:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		styleToggle:         lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		styleImage:          lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		styleDim:            lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// SetSession replaces the displayed entries. Every entry is transcoded once here;
// toggling only recomputes the visible slice.
func (m *TranscriptModel) SetSession(s *Session) {
	m.entries = m.entries[:0]
	for _, e := range s.Entries {
		doc := Render(e.Content)
		m.entries = append(m.entries, viewerEntry{
			entry: e,
			doc:   doc,
			trunc: NewTruncation(doc, m.policy),
			text:  entryText(doc),
			cache: make(map[bool]string, 2),
		})
	}
	m.title = s.Title(200)
	m.cursor = 0
	m.refreshViewport()
	m.viewport.GotoTop()
	m.search(m.query)
}

// Update handles messages for the transcript tab.
func (m TranscriptModel) Update(msg tea.Msg) (TranscriptModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Search):
			m.searching = true
			m.searchInput.SetValue(m.query)
			return m, m.searchInput.Focus()
		case key.Matches(msg, m.keys.NextMatch):
			m.jumpToMatch(m.matchIdx + 1)
			return m, nil
		case key.Matches(msg, m.keys.PrevMatch):
			m.jumpToMatch(m.matchIdx - 1)
			return m, nil
		case key.Matches(msg, m.keys.Next):
			m.moveCursor(m.cursor + 1)
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.moveCursor(m.cursor - 1)
			return m, nil
		case key.Matches(msg, m.keys.Toggle):
			m.toggle(m.cursor)
			return m, nil
		case key.Matches(msg, m.keys.ExpandAll):
			m.setAllExpanded(true)
			return m, nil
		case key.Matches(msg, m.keys.CollapseAll):
			m.setAllExpanded(false)
			return m, nil
		case key.Matches(msg, m.keys.Top):
			m.moveCursor(0)
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.Bottom):
			m.moveCursor(len(m.entries) - 1)
			m.viewport.GotoBottom()
			return m, nil
		}

	case tea.MouseClickMsg:
		if msg.Button == tea.MouseLeft {
			line := msg.Y - m.topOffset + m.viewport.YOffset()
			if idx := zoneAt(m.cardZones, line); idx >= 0 {
				m.cursor = idx
				m.toggle(idx)
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m TranscriptModel) updateSearch(msg tea.KeyPressMsg) (TranscriptModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	case "enter":
		m.searching = false
		m.searchInput.Blur()
		m.search(m.searchInput.Value())
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// Searching reports whether the search prompt has the keyboard.
func (m TranscriptModel) Searching() bool { return m.searching }

// search records the entries matching query and moves to the first match at or after
// the cursor. An empty query clears the search.
func (m *TranscriptModel) search(query string) {
	m.query = strings.TrimSpace(query)
	m.matches = nil
	m.matchIdx = 0
	re, err := compileQuery(m.query)
	if err != nil {
		return
	}
	first := -1
	for i, e := range m.entries {
		if re.MatchString(e.text) {
			if first < 0 && i >= m.cursor {
				first = len(m.matches)
			}
			m.matches = append(m.matches, i)
		}
	}
	if len(m.matches) == 0 {
		return
	}
	m.jumpToMatch(max(first, 0))
}

// jumpToMatch selects match i, wrapping around at both ends.
func (m *TranscriptModel) jumpToMatch(i int) {
	n := len(m.matches)
	if n == 0 {
		return
	}
	m.matchIdx = (i%n + n) % n
	m.moveCursor(m.matches[m.matchIdx])
}

// toggle flips the collapse state of entry idx, keeping its card in view.
func (m *TranscriptModel) toggle(idx int) {
	if idx < 0 || idx >= len(m.entries) {
		return
	}
	e := &m.entries[idx]
	if !e.trunc.IsLong() {
		return
	}
	e.trunc.Toggle()
	m.refreshViewport()
	m.scrollToCursor()
}

func (m *TranscriptModel) setAllExpanded(expanded bool) {
	for i := range m.entries {
		t := m.entries[i].trunc
		if t.IsLong() && t.Expanded() != expanded {
			t.Toggle()
		}
	}
	m.refreshViewport()
	m.scrollToCursor()
}

func (m *TranscriptModel) moveCursor(idx int) {
	if len(m.entries) == 0 {
		return
	}
	m.cursor = max(0, min(idx, len(m.entries)-1))
	m.refreshViewport()
	m.scrollToCursor()
}

// scrollToCursor moves the viewport when the selected card's top is out of view.
func (m *TranscriptModel) scrollToCursor() {
	if m.cursor >= len(m.cardZones) {
		return
	}
	z := m.cardZones[m.cursor]
	top := m.viewport.YOffset()
	if z.startLine < top || z.startLine >= top+m.viewport.Height() {
		m.viewport.SetYOffset(z.startLine)
	}
}

// SetSize updates the transcript tab dimensions.
func (m *TranscriptModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.SetWidth(w)
	m.viewport.SetHeight(max(h-1, 1))

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(w-8, 20)),
	)
	if err == nil {
		m.renderer = r
	}
	for i := range m.entries {
		clear(m.entries[i].cache)
	}
	m.refreshViewport()
}

// View renders the transcript tab.
func (m TranscriptModel) View() string {
	status := "no entries"
	if n := len(m.entries); n > 0 {
		status = fmt.Sprintf("entry %d/%d", m.cursor+1, n)
	}
	if m.searching {
		return m.viewport.View() + "\n" + m.searchInput.View()
	}
	help := []string{status}
	if m.query != "" {
		if len(m.matches) == 0 {
			help = append(help, fmt.Sprintf("/%s: no matches", m.query))
		} else {
			help = append(help, fmt.Sprintf("/%s: match %d/%d", m.query, m.matchIdx+1, len(m.matches)))
		}
	}
	for _, b := range []key.Binding{m.keys.Next, m.keys.Prev, m.keys.Toggle, m.keys.ExpandAll, m.keys.Search} {
		h := b.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	return m.viewport.View() + "\n" + m.styleDim.Render(strings.Join(help, " · "))
}
