package main

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	defaultSearchLimit = 50
	snippetWidth       = 80
	snippetLead        = 24 // cells of context kept before a match
)

// SearchHit is one matching entry.
type SearchHit struct {
	Project   string    `json:"project"`
	SessionID string    `json:"session_id"`
	Path      string    `json:"path"`
	Entry     int       `json:"entry"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp,omitzero"`
	Snippet   string    `json:"snippet"`
}

// compileQuery matches query literally, ignoring case.
func compileQuery(query string) (*regexp.Regexp, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("empty search query")
	}
	return regexp.Compile("(?i)" + regexp.QuoteMeta(query))
}

// entryText is the text of an entry as shown, with image payloads left out.
func entryText(doc Document) string {
	var sb strings.Builder
	for _, seg := range doc {
		if seg.Kind == SegmentText {
			sb.WriteString(seg.Text)
		}
	}
	return sb.String()
}

// snippet returns the line holding the match at loc, starting a little before the match
// when the line is long.
func snippet(text string, loc []int, width int) string {
	start := strings.LastIndexByte(text[:loc[0]], '\n') + 1
	end := len(text)
	if i := strings.IndexByte(text[loc[0]:], '\n'); i >= 0 {
		end = loc[0] + i
	}
	line := text[start:end]
	at := loc[0] - start

	prefix := ""
	if at > snippetLead {
		cut := at - snippetLead
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		line = line[cut:]
		prefix = "…"
	}
	return clip(prefix+strings.TrimSpace(line), width)
}

// SearchSession returns the hits in s, in entry order.
func SearchSession(s *Session, re *regexp.Regexp) []SearchHit {
	var hits []SearchHit
	for i, e := range s.Entries {
		text := entryText(Render(e.Content))
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		hits = append(hits, SearchHit{
			SessionID: s.ID,
			Path:      s.Path,
			Entry:     i,
			Role:      e.Role,
			Timestamp: e.Timestamp,
			Snippet:   snippet(text, loc, snippetWidth),
		})
	}
	return hits
}

// SearchSessions looks for query in every session file, newest session first, and stops
// after limit hits. Files that cannot be read are logged and skipped.
func SearchSessions(ctx context.Context, files []SessionFile, query string, limit int) ([]SearchHit, error) {
	re, err := compileQuery(query)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var hits []SearchHit
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return hits, err
		}
		s, err := LoadSession(f.Path)
		if err != nil {
			slog.Warn("Skipping unreadable session", "path", f.Path, "error", err)
			continue
		}
		for _, h := range SearchSession(s, re) {
			h.Project = f.Project
			hits = append(hits, h)
			if len(hits) == limit {
				return hits, nil
			}
		}
	}
	return hits, nil
}
