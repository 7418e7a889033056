package main

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"
)

const timestampLayout = "2006-01-02 15:04:05"

// roleLabel is the display name of an entry's author.
func roleLabel(r Role) string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Claude"
	case RoleTool:
		return "Tool"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// entryHeading is "<label> · <timestamp>", or just the label when the entry has no time.
func entryHeading(e TranscriptEntry) string {
	if e.Timestamp.IsZero() {
		return roleLabel(e.Role)
	}
	return roleLabel(e.Role) + " · " + e.Timestamp.Local().Format(timestampLayout)
}

// toggleLabel is the affordance shown under a long entry.
func toggleLabel(t *Truncation) string {
	if t.Expanded() {
		return "▴ Show less"
	}
	return fmt.Sprintf("▾ Show remaining %d lines", t.Remaining())
}

// imageLabel describes an image segment for outputs that cannot draw it.
func imageLabel(seg Segment) string {
	_, payload := splitDataURI(seg.Src)
	return fmt.Sprintf("🖼  image %d · %s · %s", seg.Ordinal, seg.MIMEType, humanize.Bytes(uint64(decodedLen(payload))))
}

// decodedLen returns the byte length a base64 payload decodes to.
func decodedLen(payload string) int {
	n := len(payload) * 3 / 4
	if strings.HasSuffix(payload, "==") {
		n -= 2
	} else if strings.HasSuffix(payload, "=") {
		n--
	}
	return max(n, 0)
}

// cardZone records which viewport lines a card occupies, for click hit-testing.
type cardZone struct {
	entry     int
	startLine int
	endLine   int
}

// zoneAt returns the entry whose card covers line, or -1.
func zoneAt(zones []cardZone, line int) int {
	for _, z := range zones {
		if line >= z.startLine && line <= z.endLine {
			return z.entry
		}
	}
	return -1
}

func (m *TranscriptModel) refreshViewport() {
	m.cardZones = m.cardZones[:0]
	var sb strings.Builder
	var lineCount int

	cardWidth := max(m.width-2, 20)

	if m.title != "" {
		header := m.styleTitle.Width(cardWidth).Render(clip(m.title, cardWidth-2))
		sb.WriteString(header + "\n\n")
		lineCount += strings.Count(header, "\n") + 2
	}

	for i := range m.entries {
		if i > 0 {
			sb.WriteString("\n")
			lineCount++
		}
		m.renderCard(&sb, &lineCount, i, cardWidth)
	}

	if len(m.entries) == 0 {
		sb.WriteString(m.styleDim.Render("No entries in this session."))
	}

	m.viewport.SetContent(sb.String())
}

// renderCard renders one entry inside a bordered card: heading, the visible segments and,
// for long entries, the expand or collapse affordance.
func (m *TranscriptModel) renderCard(sb *strings.Builder, lineCount *int, idx, width int) {
	e := &m.entries[idx]
	selected := idx == m.cursor

	var body strings.Builder
	body.WriteString(m.headingStyle(e.entry.Role).Render(entryHeading(e.entry)))
	body.WriteString("\n")
	body.WriteString(m.renderBody(e, width-4))
	if e.trunc.IsLong() {
		body.WriteString("\n")
		body.WriteString(m.styleToggle.Render(toggleLabel(e.trunc)))
	}

	style := m.styleCard
	if selected {
		style = m.styleCardSelected
	}
	rendered := style.Width(width).Render(body.String())

	startLine := *lineCount
	sb.WriteString(rendered)
	sb.WriteByte('\n')
	*lineCount += strings.Count(rendered, "\n") + 1
	m.cardZones = append(m.cardZones, cardZone{entry: idx, startLine: startLine, endLine: *lineCount - 1})
}

// renderBody renders the visible segments of e, reusing the cached output for the
// current collapse state.
func (m *TranscriptModel) renderBody(e *viewerEntry, width int) string {
	if cached, ok := e.cache[e.trunc.Expanded()]; ok {
		return cached
	}

	var parts []string
	for _, seg := range e.trunc.Visible(e.doc) {
		switch seg.Kind {
		case SegmentText:
			parts = append(parts, m.renderMarkdown(seg.Text, width))
		case SegmentImage:
			parts = append(parts, m.styleImage.Render(imageLabel(seg)))
		}
	}
	out := strings.Join(parts, "\n")
	e.cache[e.trunc.Expanded()] = out
	return out
}

func (m *TranscriptModel) renderMarkdown(text string, width int) string {
	if m.renderer == nil {
		return lipgloss.NewStyle().Width(width).Render(text)
	}
	rendered, err := m.renderer.Render(text)
	if err != nil {
		return lipgloss.NewStyle().Width(width).Render(text)
	}
	return strings.Trim(rendered, "\n")
}

func (m *TranscriptModel) headingStyle(r Role) lipgloss.Style {
	switch r {
	case RoleUser:
		return m.styleUserLabel
	case RoleAssistant:
		return m.styleAssistantLabel
	case RoleTool:
		return m.styleToolLabel
	default:
		return m.styleDim
	}
}
