package main

import (
	"regexp"
	"strconv"
	"strings"
)

// SegmentKind identifies the type of a Segment.
type SegmentKind string

const (
	SegmentText  SegmentKind = "text"
	SegmentImage SegmentKind = "image"
)

// Segment is a contiguous renderable unit of an entry: a run of markdown text or one image.
type Segment struct {
	Kind SegmentKind

	// Text fields, set when Kind=SegmentText
	Text string

	// Image fields, set when Kind=SegmentImage
	Src      string // data URI
	MIMEType string
	Ordinal  int // index of the attachment within its tool result
}

// NewTextSegment creates a text segment.
func NewTextSegment(text string) Segment {
	return Segment{Kind: SegmentText, Text: text}
}

// NewImageSegment creates an image segment from a canonical data URI.
func NewImageSegment(src string, ordinal int) Segment {
	mime, _ := splitDataURI(src)
	return Segment{Kind: SegmentImage, Src: src, MIMEType: mime, Ordinal: ordinal}
}

// Document is the ordered segment list of one rendered entry. Adjacent text is always
// merged and empty text segments are never stored.
type Document []Segment

// AppendText appends s, merging it into a trailing text segment.
func (d Document) AppendText(s string) Document {
	if s == "" {
		return d
	}
	if n := len(d); n > 0 && d[n-1].Kind == SegmentText {
		d[n-1].Text += s
		return d
	}
	return append(d, NewTextSegment(s))
}

// AppendDocument appends every segment of other, keeping the merge invariant.
func (d Document) AppendDocument(other Document) Document {
	for _, seg := range other {
		if seg.Kind == SegmentText {
			d = d.AppendText(seg.Text)
		} else {
			d = append(d, seg)
		}
	}
	return d
}

// Images returns the image segments in order.
func (d Document) Images() []Segment {
	var out []Segment
	for _, seg := range d {
		if seg.Kind == SegmentImage {
			out = append(out, seg)
		}
	}
	return out
}

// String serializes the document into its marker form:
//
//	text[IMAGE_START]data:image/png;base64,...[IMAGE_END:0]text
func (d Document) String() string {
	var sb strings.Builder
	for _, seg := range d {
		switch seg.Kind {
		case SegmentText:
			sb.WriteString(seg.Text)
		case SegmentImage:
			sb.WriteString(imageMarker(seg.Src, seg.Ordinal))
		}
	}
	return sb.String()
}

const (
	markerStart = "[IMAGE_START]"
	markerEnd   = "[IMAGE_END:"
)

var markerRe = regexp.MustCompile(`(?s)\[IMAGE_START\](.*?)\[IMAGE_END:(\d+)\]`)

func imageMarker(src string, ordinal int) string {
	return markerStart + src + markerEnd + strconv.Itoa(ordinal) + "]"
}

// SplitSegments parses transcoded text containing image markers back into a Document.
// Text without markers becomes a single text segment.
func SplitSegments(transcoded string) Document {
	var doc Document
	last := 0
	for _, m := range markerRe.FindAllStringSubmatchIndex(transcoded, -1) {
		ordinal, err := strconv.Atoi(transcoded[m[4]:m[5]])
		if err != nil {
			continue
		}
		doc = doc.AppendText(transcoded[last:m[0]])
		doc = append(doc, NewImageSegment(transcoded[m[2]:m[3]], ordinal))
		last = m[1]
	}
	return doc.AppendText(transcoded[last:])
}

// splitDataURI returns the media type and payload of a "data:<mime>;base64,<payload>" URI.
func splitDataURI(uri string) (mime, payload string) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", uri
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", uri
	}
	mime, _, _ = strings.Cut(header, ";")
	return mime, payload
}

const (
	defaultMaxLines = 30
	defaultEllipsis = "..."
)

// TruncationPolicy bounds the collapsed view of an entry.
type TruncationPolicy struct {
	MaxLines int    // text lines shown while collapsed
	Ellipsis string // appended after the last visible line
}

// DefaultTruncationPolicy returns the 30-line policy.
func DefaultTruncationPolicy() TruncationPolicy {
	return TruncationPolicy{MaxLines: defaultMaxLines, Ellipsis: defaultEllipsis}
}

func (p TruncationPolicy) normalized() TruncationPolicy {
	if p.MaxLines <= 0 {
		p.MaxLines = defaultMaxLines
	}
	if p.Ellipsis == "" {
		p.Ellipsis = defaultEllipsis
	}
	return p
}

// CountLines returns the number of lines of the document's text read as one run, as if
// the image segments were cut out. A newline on either side of an image therefore ends a
// line only once. Images count zero; a document without text has no lines.
func CountLines(d Document) int {
	n := 0
	for _, seg := range d {
		if seg.Kind != SegmentText {
			continue
		}
		if n == 0 {
			n = 1
		}
		n += strings.Count(seg.Text, "\n")
	}
	return n
}

// Truncation is the collapse state of one rendered entry.
type Truncation struct {
	policy     TruncationPolicy
	totalLines int
	expanded   bool
}

// NewTruncation computes the initial state for doc: long documents start collapsed.
func NewTruncation(doc Document, policy TruncationPolicy) *Truncation {
	t := &Truncation{policy: policy.normalized(), totalLines: CountLines(doc)}
	t.expanded = !t.IsLong()
	return t
}

// TotalLines returns the line count the state was computed from.
func (t *Truncation) TotalLines() int { return t.totalLines }

// IsLong reports whether the document exceeds the line budget.
func (t *Truncation) IsLong() bool { return t.totalLines > t.policy.MaxLines }

// Expanded reports whether all segments are shown.
func (t *Truncation) Expanded() bool { return t.expanded }

// Toggle flips between collapsed and expanded. Short documents are always expanded.
func (t *Truncation) Toggle() {
	if !t.IsLong() {
		return
	}
	t.expanded = !t.expanded
}

// Remaining returns how many lines the collapsed view hides.
func (t *Truncation) Remaining() int {
	if !t.IsLong() {
		return 0
	}
	return t.totalLines - t.policy.MaxLines
}

// Visible returns the segments to render in the current state. While collapsed, text is
// cut once the line budget is exhausted and everything after the cut is dropped. Lines are
// counted the way CountLines does. Images before the cut are kept; an image that follows
// the last line of the budget on the same line is past the cut.
func (t *Truncation) Visible(doc Document) Document {
	if t.expanded {
		return doc
	}
	budget := t.policy.MaxLines
	used := 0 // lines started so far
	lineStart := true
	var out Document
	for _, seg := range doc {
		if seg.Kind == SegmentImage {
			if used >= budget && !lineStart {
				return out.AppendText("\n" + t.policy.Ellipsis)
			}
			out = append(out, seg)
			continue
		}
		lines := strings.Split(seg.Text, "\n")
		started := len(lines)
		if used > 0 {
			// The first line continues the last line of the previous text.
			started--
		}
		if used+started <= budget {
			out = append(out, seg)
			used += started
			lineStart = strings.HasSuffix(seg.Text, "\n")
			continue
		}
		keep := budget - used
		if used > 0 {
			keep++
		}
		return append(out, NewTextSegment(strings.Join(lines[:keep], "\n")+"\n"+t.policy.Ellipsis))
	}
	return out
}
