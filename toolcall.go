package main

import (
	"strings"
	"sync"

	"github.com/tidwall/gjson"
)

// unknownToolName is used when a tool-use tag carries no name attribute.
const unknownToolName = "Unknown Tool"

// ToolFormatter renders one tool invocation from its parsed JSON arguments.
// It returns false when a field it needs is missing; the generic rendering is used instead.
type ToolFormatter interface {
	FormatTool(name string, args gjson.Result) (string, bool)
}

// ToolFormatterFunc is a function type that implements the [ToolFormatter] interface.
type ToolFormatterFunc func(name string, args gjson.Result) (string, bool)

// FormatTool implements the [ToolFormatter] interface.
func (f ToolFormatterFunc) FormatTool(name string, args gjson.Result) (string, bool) {
	return f(name, args)
}

// ToolFormatters maps exact tool names to formatters. Names without an entry always get
// the generic rendering, so the table is open for extension and never fails.
type ToolFormatters struct {
	mu         sync.RWMutex
	formatters map[string]ToolFormatter
}

// NewToolFormatters creates a registry holding the built-in formatters.
func NewToolFormatters() *ToolFormatters {
	r := &ToolFormatters{formatters: make(map[string]ToolFormatter)}
	r.Register("Bash", ToolFormatterFunc(formatBash))
	r.Register("Write", ToolFormatterFunc(formatWrite))
	r.Register("TodoWrite", ToolFormatterFunc(formatTodoWrite))
	r.Register("Read", ToolFormatterFunc(formatRead))
	r.Register("Edit", ToolFormatterFunc(formatEdit))
	r.Register("BashOutput", ToolFormatterFunc(formatBashOutput))
	r.Register("KillBash", ToolFormatterFunc(formatKillBash))
	r.Register("Grep", ToolFormatterFunc(formatGrep))
	r.Register("Glob", ToolFormatterFunc(formatGlob))
	return r
}

// Register adds or replaces the formatter for name.
func (r *ToolFormatters) Register(name string, f ToolFormatter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formatters[name] = f
}

// Interpret renders a tool invocation as markdown.
func (r *ToolFormatters) Interpret(name, argsRaw string) string {
	if name == "" {
		name = unknownToolName
	}
	if !gjson.Valid(argsRaw) {
		return genericToolUse(name, argsRaw)
	}

	r.mu.RLock()
	f, ok := r.formatters[name]
	r.mu.RUnlock()
	if ok {
		if out, ok := f.FormatTool(name, gjson.Parse(argsRaw)); ok {
			return out
		}
	}
	return genericToolUse(name, argsRaw)
}

var defaultToolFormatters = NewToolFormatters()

// InterpretToolUse renders a tool invocation with the built-in formatters.
func InterpretToolUse(name, argsRaw string) string {
	return defaultToolFormatters.Interpret(name, argsRaw)
}

// genericToolUse names the tool and shows the arguments exactly as recorded.
func genericToolUse(name, argsRaw string) string {
	return "\n**Tool Use: `" + name + "`**\n```json\n" + argsRaw + "\n```\n"
}

func toolHeader(name string) string {
	return "\n**Tool Use: " + name + "**\n"
}

// truthy reports whether a JSON value counts as present: not missing, null, false, 0 or "".
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	case gjson.True, gjson.JSON:
		return true
	default:
		return false
	}
}

// field returns args[key], or an empty result when args is not an object.
func field(args gjson.Result, key string) gjson.Result {
	if !args.IsObject() {
		return gjson.Result{}
	}
	return args.Get(key)
}

// fieldOr returns args[key] as a string, or def when it is not present.
func fieldOr(args gjson.Result, key, def string) string {
	if v := field(args, key); truthy(v) {
		return v.String()
	}
	return def
}

func formatBash(_ string, args gjson.Result) (string, bool) {
	cmd := field(args, "command")
	if !truthy(cmd) {
		return "", false
	}
	return "\n**🖥️ Terminal**\n```bash\n$ " + cmd.String() + "\n```\n", true
}

func formatWrite(name string, args gjson.Result) (string, bool) {
	fp := field(args, "file_path")
	if !truthy(fp) {
		return "", false
	}
	return toolHeader(name) + "> Writing to `" + fp.String() + "`\n", true
}

func formatTodoWrite(name string, args gjson.Result) (string, bool) {
	todos := field(args, "todos")
	if !truthy(todos) {
		return formatWrite(name, args)
	}
	if !todos.IsArray() {
		return "", false
	}

	items := todos.Array()
	lines := make([]string, 0, len(items))
	for _, t := range items {
		if !t.IsObject() {
			return "", false
		}
		lines = append(lines, "- "+todoMark(t.Get("status").String())+" "+t.Get("content").String())
	}
	return toolHeader(name) + strings.Join(lines, "\n") + "\n", true
}

func todoMark(status string) string {
	switch status {
	case "completed":
		return "✅"
	case "in_progress":
		return "🔄"
	default:
		return "⬜"
	}
}

func formatRead(name string, args gjson.Result) (string, bool) {
	fp := field(args, "file_path")
	if !truthy(fp) {
		return "", false
	}
	return toolHeader(name) + "> Reading `" + fp.String() + "`\n", true
}

func formatEdit(name string, args gjson.Result) (string, bool) {
	fp := field(args, "file_path")
	if !truthy(fp) {
		return "", false
	}
	return toolHeader(name) + "> Editing `" + fp.String() + "`\n", true
}

func formatBashOutput(name string, args gjson.Result) (string, bool) {
	if args.Type == gjson.Null {
		return "", false
	}
	return toolHeader(name) + "```\n" + fieldOr(args, "output", "") + "\n```\n", true
}

func formatKillBash(name string, _ gjson.Result) (string, bool) {
	return toolHeader(name) + "> Killing process\n", true
}

func formatGrep(name string, args gjson.Result) (string, bool) {
	pattern := field(args, "pattern")
	if !truthy(pattern) {
		return "", false
	}
	return toolHeader(name) + "> Searching for `" + pattern.String() + "` in `" + fieldOr(args, "path", ".") + "`\n", true
}

func formatGlob(name string, args gjson.Result) (string, bool) {
	pattern := field(args, "pattern")
	if !truthy(pattern) {
		return "", false
	}
	return toolHeader(name) + "> Finding files matching `" + pattern.String() + "` in `" + fieldOr(args, "path", ".") + "`\n", true
}
