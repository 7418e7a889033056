package main

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ExportFormat selects the output of the render command.
type ExportFormat string

const (
	FormatTerm     ExportFormat = "term"
	FormatMarkdown ExportFormat = "markdown"
	FormatHTML     ExportFormat = "html"
)

// ExportOptions controls Export.
type ExportOptions struct {
	Format ExportFormat
	Expand bool // show long entries in full
	Policy TruncationPolicy
	Width  int // wrap width for term output
}

// Export writes every entry of s in the requested format.
func Export(w io.Writer, s *Session, opts ExportOptions) error {
	switch opts.Format {
	case FormatTerm, "":
		return exportTerm(w, s, opts)
	case FormatMarkdown:
		return exportMarkdown(w, s, opts)
	case FormatHTML:
		return exportHTML(w, s, opts)
	default:
		return fmt.Errorf("unknown format %q: want term, markdown or html", opts.Format)
	}
}

// visibleDocument transcodes one entry and applies the collapse policy.
func visibleDocument(e TranscriptEntry, opts ExportOptions) (Document, *Truncation) {
	doc := Render(e.Content)
	t := NewTruncation(doc, opts.Policy)
	if opts.Expand && !t.Expanded() {
		t.Toggle()
	}
	return t.Visible(doc), t
}

// exportMarkdown writes the transcoded markdown, images kept in marker form.
func exportMarkdown(w io.Writer, s *Session, opts ExportOptions) error {
	for i, e := range s.Entries {
		visible, t := visibleDocument(e, opts)
		if i > 0 {
			if _, err := io.WriteString(w, "\n---\n\n"); err != nil {
				return err
			}
		}
		var sb strings.Builder
		sb.WriteString("## " + entryHeading(e) + "\n\n")
		sb.WriteString(visible.String())
		if !t.Expanded() {
			sb.WriteString(fmt.Sprintf("\n\n_%d more lines_\n", t.Remaining()))
		} else {
			sb.WriteString("\n")
		}
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

func exportTerm(w io.Writer, s *Session, opts ExportOptions) error {
	width := opts.Width
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	headStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	imageStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	for _, e := range s.Entries {
		visible, t := visibleDocument(e, opts)
		var sb strings.Builder
		sb.WriteString(headStyle.Render(entryHeading(e)) + "\n")
		for _, seg := range visible {
			switch seg.Kind {
			case SegmentText:
				rendered, err := r.Render(seg.Text)
				if err != nil {
					rendered = seg.Text
				}
				sb.WriteString(strings.Trim(rendered, "\n") + "\n")
			case SegmentImage:
				sb.WriteString("  " + imageStyle.Render(imageLabel(seg)) + "\n")
			}
		}
		if !t.Expanded() {
			sb.WriteString("  " + dimStyle.Render(fmt.Sprintf("… %d more lines (--expand to show)", t.Remaining())) + "\n")
		}
		sb.WriteString("\n")
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

// newHTMLMarkdown returns a goldmark converter that passes raw HTML through, so the
// collapsible JSON blocks of tool results survive.
func newHTMLMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
}

const htmlHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 52rem; margin: 2rem auto; line-height: 1.5; }
.entry { border: 1px solid #ddd; border-radius: 6px; padding: 0 1rem; margin: 1rem 0; }
.entry h2 { font-size: 1rem; }
.role-user h2 { color: #1a5fb4; }
.role-assistant h2 { color: #26a269; }
.role-tool h2 { color: #c64600; }
pre { background: #f6f8fa; padding: .5rem; overflow-x: auto; }
img { max-width: 100%%; }
.more { color: #777; font-style: italic; }
</style>
</head>
<body>
`

func exportHTML(w io.Writer, s *Session, opts ExportOptions) error {
	md := newHTMLMarkdown()

	title := s.Title(80)
	if title == "" {
		title = s.ID
	}
	var out bytes.Buffer
	fmt.Fprintf(&out, htmlHead, html.EscapeString(title))

	for _, e := range s.Entries {
		visible, t := visibleDocument(e, opts)
		fmt.Fprintf(&out, "<section class=\"entry role-%s\">\n<h2>%s</h2>\n", html.EscapeString(string(e.Role)), html.EscapeString(entryHeading(e)))
		for _, seg := range visible {
			switch seg.Kind {
			case SegmentText:
				if err := md.Convert([]byte(ansi.Strip(seg.Text)), &out); err != nil {
					return fmt.Errorf("convert entry: %w", err)
				}
			case SegmentImage:
				fmt.Fprintf(&out, "<p><img alt=\"image %d\" src=\"%s\"></p>\n", seg.Ordinal, html.EscapeString(seg.Src))
			}
		}
		if !t.Expanded() {
			fmt.Fprintf(&out, "<p class=\"more\">%d more lines</p>\n", t.Remaining())
		}
		out.WriteString("</section>\n")
	}
	out.WriteString("</body>\n</html>\n")

	_, err := w.Write(out.Bytes())
	return err
}
