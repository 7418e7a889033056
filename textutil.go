package main

import (
	"strings"

	"github.com/rivo/uniseg"
)

// clip shortens s to at most width terminal cells, ending in "…" when anything was cut.
// Wide and combined characters are never split.
func clip(s string, width int) string {
	if width <= 0 || uniseg.StringWidth(s) <= width {
		return s
	}
	var sb strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		if used+g.Width() > width-1 {
			break
		}
		used += g.Width()
		sb.WriteString(g.Str())
	}
	return sb.String() + "…"
}

// firstLine returns the first line of s that has text on it, clipped to width cells.
func firstLine(s string, width int) string {
	for line := range strings.Lines(s) {
		if line = strings.TrimSpace(line); line != "" {
			return clip(line, width)
		}
	}
	return ""
}
