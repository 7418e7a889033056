package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Role identifies who produced a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// TranscriptEntry is one recorded message. Content holds raw markup text.
type TranscriptEntry struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// TokenUsage holds token counts from an assistant message.
type TokenUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
}

// ToolCall records one tool_use block: the tool name and its raw JSON input.
type ToolCall struct {
	Name  string
	Input string
}

// SessionMeta aggregates what the loader learned about a session while reading it.
type SessionMeta struct {
	Model         string
	InputTokens   int
	OutputTokens  int
	Turns         int            // user turns, excluding tool-result carriers
	ToolStats     map[string]int // tool_use count per tool name
	ToolCalls     []ToolCall     // every tool_use in order
	ModifiedFiles []string       // paths written by file-changing tools, first use order
	Skipped       int            // lines that were not JSON objects

	// Time between the first and last timestamped entry. The gap before each entry is
	// the user's when the entry is a user message and the model's otherwise.
	TotalDuration time.Duration
	UserDuration  time.Duration
	ModelDuration time.Duration
}

// TotalTokens returns input plus output tokens.
func (m SessionMeta) TotalTokens() int {
	return m.InputTokens + m.OutputTokens
}

// Session is a loaded transcript.
type Session struct {
	ID      string
	Path    string
	Entries []TranscriptEntry
	Meta    SessionMeta
}

// ContentBlock is a single block of message content (text, thinking, tool_use or tool_result).
type ContentBlock struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	Thinking string          `json:"thinking,omitempty"`
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"name,omitempty"`
	Input    json.RawMessage `json:"input,omitempty"`
	Content  json.RawMessage `json:"content,omitempty"`
}

// maxLineSize bounds one JSONL line; tool results with images can be large.
const maxLineSize = 32 * 1024 * 1024

// LoadSession reads a JSONL session file.
func LoadSession(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer f.Close()

	s, err := ParseSession(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	s.Path = path
	s.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return s, nil
}

// ParseSession reads JSONL transcript lines from r. Lines that are not JSON are skipped
// and counted in Meta.Skipped.
func ParseSession(r io.Reader) (*Session, error) {
	s := &Session{Meta: SessionMeta{ToolStats: make(map[string]int)}}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 256*1024), maxLineSize)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		if !gjson.ValidBytes(raw) {
			s.Meta.Skipped++
			slog.Warn("Skipping malformed session line", "line", lineNo)
			continue
		}
		line := gjson.ParseBytes(raw)
		if !line.IsObject() {
			s.Meta.Skipped++
			slog.Warn("Skipping session line that is not an object", "line", lineNo)
			continue
		}
		if entry, ok := s.parseLine(line); ok {
			s.Entries = append(s.Entries, entry)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan line %d: %w", lineNo+1, err)
	}
	s.measureDurations()
	return s, nil
}

// parseLine converts one line into an entry, updating session metadata. Lines are read
// field by field, so a field of an unexpected type is ignored rather than failing the line.
// Two shapes are understood: the legacy {"role","content"} line and the
// {"type":"user|assistant","message":{...}} line.
func (s *Session) parseLine(line gjson.Result) (TranscriptEntry, bool) {
	var role Role
	var content string

	msg := line.Get("message")
	if msg.IsObject() {
		if model := msg.Get("model"); model.Type == gjson.String && model.Str != "" {
			s.Meta.Model = model.Str
		}
		if u := msg.Get("usage"); u.IsObject() {
			s.Meta.InputTokens += int(u.Get("input_tokens").Int())
			s.Meta.OutputTokens += int(u.Get("output_tokens").Int())
		}
	}

	typ := line.Get("type").String()
	switch r := line.Get("role"); {
	case r.Type == gjson.String && r.Str != "":
		role = Role(r.Str)
		content = rawText(json.RawMessage(line.Get("content").Raw))

	case (typ == "user" || typ == "assistant") && msg.Exists():
		role = Role(typ)
		raw := msg
		if msg.IsObject() {
			if r := msg.Get("role"); r.Type == gjson.String && r.Str != "" {
				role = Role(r.Str)
			}
			raw = msg.Get("content")
		}
		if role == RoleUser {
			s.Meta.Turns++
		}
		if raw.IsArray() {
			var hasText, hasToolResult bool
			content, hasText, hasToolResult = s.joinBlocks(raw.Array())
			if role == RoleUser && hasToolResult && !hasText {
				role = RoleTool
				s.Meta.Turns--
			}
		} else {
			content = rawText(json.RawMessage(raw.Raw))
		}
	}

	if role == "" || content == "" {
		return TranscriptEntry{}, false
	}
	return TranscriptEntry{Role: role, Content: content, Timestamp: parseTimestamp(line.Get("timestamp"))}, true
}

// joinBlocks serializes content blocks into markup text: tool calls, tool results and
// thinking become tags the transcoder understands. Blocks that do not decode are skipped.
func (s *Session) joinBlocks(items []gjson.Result) (content string, hasText, hasToolResult bool) {
	var sb strings.Builder
	for _, item := range items {
		var b ContentBlock
		if json.Unmarshal([]byte(item.Raw), &b) != nil {
			continue
		}
		switch b.Type {
		case "text":
			hasText = true
			sb.WriteString(b.Text)
		case "thinking":
			if b.Thinking != "" {
				sb.WriteString("\n<reasoning>" + b.Thinking + "</reasoning>\n")
			}
		case "tool_use":
			if b.Name != "" {
				s.Meta.ToolStats[b.Name]++
			}
			input := "{}"
			if len(b.Input) > 0 {
				input = prettyJSON(b.Input)
			}
			call := ToolCall{Name: b.Name, Input: rawText(b.Input)}
			s.Meta.ToolCalls = append(s.Meta.ToolCalls, call)
			s.noteModifiedFile(call)
			sb.WriteString("\n<tool-use name=\"" + b.Name + "\">\n" + input + "\n</tool-use>\n")
		case "tool_result":
			hasToolResult = true
			sb.WriteString("\n<tool-result>\n" + rawText(b.Content) + "\n</tool-result>\n")
		}
	}
	return sb.String(), hasText, hasToolResult
}

// fileChangeWords mark tools that change files; filePathKeys are the argument names
// such tools use for the path.
var (
	fileChangeWords = []string{"write", "edit", "replace", "create", "append"}
	filePathKeys    = []string{"path", "file_path", "TargetFile", "filename", "target_file", "file", "notebook_path"}
)

func (s *Session) noteModifiedFile(call ToolCall) {
	name := strings.ToLower(call.Name)
	if !slices.ContainsFunc(fileChangeWords, func(w string) bool { return strings.Contains(name, w) }) {
		return
	}
	args := gjson.Parse(call.Input)
	for _, key := range filePathKeys {
		if p := args.Get(key); p.Type == gjson.String && p.Str != "" {
			if !slices.Contains(s.Meta.ModifiedFiles, p.Str) {
				s.Meta.ModifiedFiles = append(s.Meta.ModifiedFiles, p.Str)
			}
			return
		}
	}
}

// measureDurations fills the duration fields from the entry timestamps.
func (s *Session) measureDurations() {
	var timed []TranscriptEntry
	for _, e := range s.Entries {
		if !e.Timestamp.IsZero() {
			timed = append(timed, e)
		}
	}
	if len(timed) < 2 {
		return
	}
	slices.SortStableFunc(timed, func(a, b TranscriptEntry) int { return a.Timestamp.Compare(b.Timestamp) })

	s.Meta.TotalDuration = timed[len(timed)-1].Timestamp.Sub(timed[0].Timestamp)
	for i := 1; i < len(timed); i++ {
		gap := timed[i].Timestamp.Sub(timed[i-1].Timestamp)
		if timed[i].Role == RoleUser {
			s.Meta.UserDuration += gap
		} else {
			s.Meta.ModelDuration += gap
		}
	}
}

// rawText returns a JSON string value as text, and any other JSON value compacted.
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var str string
	if json.Unmarshal(raw, &str) == nil {
		return str
	}
	var compact bytes.Buffer
	if json.Compact(&compact, raw) == nil {
		return compact.String()
	}
	return string(raw)
}

// parseTimestamp accepts RFC 3339 strings and Unix times in seconds or milliseconds.
func parseTimestamp(v gjson.Result) time.Time {
	switch v.Type {
	case gjson.String:
		if t, err := time.Parse(time.RFC3339Nano, v.Str); err == nil {
			return t
		}
	case gjson.Number:
		if n := v.Int(); n > 1e12 {
			return time.UnixMilli(n).UTC()
		} else if n > 0 {
			return time.Unix(n, 0).UTC()
		}
	}
	return time.Time{}
}

// prettyJSON formats raw JSON with indentation, falling back to the raw string on error.
func prettyJSON(raw []byte) string {
	var pretty bytes.Buffer
	if json.Indent(&pretty, raw, "", "  ") == nil {
		return pretty.String()
	}
	return string(raw)
}

// Title returns the first line of the first user entry.
func (s *Session) Title(maxLen int) string {
	for _, e := range s.Entries {
		if e.Role != RoleUser {
			continue
		}
		if t := firstLine(Transcode(e.Content), maxLen); t != "" {
			return t
		}
	}
	return ""
}
