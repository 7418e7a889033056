package main

import (
	"regexp"
	"strings"
)

// TokenKind identifies the type of a markup Token.
type TokenKind string

const (
	TokenText TokenKind = "text"
	TokenTag  TokenKind = "tag"
)

// Tag names understood by the transcoder.
const (
	TagCommandName        = "command-name"
	TagCommandMessage     = "command-message"
	TagLocalCommandStdout = "local-command-stdout"
	TagStdout             = "stdout"
	TagCommandArgs        = "command-args"
	TagReasoning          = "reasoning"
	TagToolUse            = "tool-use"
	TagToolResult         = "tool-result"
	TagSystemReminder     = "system-reminder"
)

// tagSpec describes how an opening tag may look and how its body is delimited.
type tagSpec struct {
	// attrs allows attributes after the tag name (<tool-use name="Bash">).
	attrs bool
	// singleLine requires the closing tag on the same line as the opening one.
	singleLine bool
}

var tagSpecs = map[string]tagSpec{
	TagCommandName:        {singleLine: true},
	TagCommandMessage:     {singleLine: true},
	TagLocalCommandStdout: {},
	TagStdout:             {},
	TagCommandArgs:        {},
	TagReasoning:          {},
	TagToolUse:            {attrs: true},
	TagToolResult:         {attrs: true},
	TagSystemReminder:     {},
}

// Tag is a recognized markup span.
type Tag struct {
	Name  string
	Attrs string // raw attribute text between the name and '>'
	Body  string
}

// Token is one lexer output item: either plain text or a complete tag.
type Token struct {
	Kind TokenKind
	Text string // set when Kind=TokenText
	Tag  Tag    // set when Kind=TokenTag
}

var nameAttrRe = regexp.MustCompile(`(?:^|\s)name="([^"]*)"`)

// NameAttr returns the value of the name="..." attribute, or "".
func (t Tag) NameAttr() string {
	if m := nameAttrRe.FindStringSubmatch(t.Attrs); m != nil {
		return m[1]
	}
	return ""
}

// Lex splits raw entry content into text and tag tokens in a single left-to-right pass.
// Unknown tags and tags without a closing tag stay in the surrounding text.
func Lex(s string) []Token {
	var tokens []Token
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			tokens = append(tokens, Token{Kind: TokenText, Text: text.String()})
			text.Reset()
		}
	}

	i := 0
	for i < len(s) {
		lt := strings.IndexByte(s[i:], '<')
		if lt < 0 {
			text.WriteString(s[i:])
			break
		}
		text.WriteString(s[i : i+lt])
		i += lt

		tag, n, ok := matchTag(s[i:])
		if !ok {
			text.WriteByte('<')
			i++
			continue
		}
		flush()
		tokens = append(tokens, Token{Kind: TokenTag, Tag: tag})
		i += n
	}
	flush()
	return tokens
}

// matchTag tries to read a complete known tag at the start of s. It returns the tag and
// the number of bytes consumed.
func matchTag(s string) (Tag, int, bool) {
	// s[0] == '<'
	end := 1
	for end < len(s) && (isNameByte(s[end])) {
		end++
	}
	name := s[1:end]
	spec, known := tagSpecs[name]
	if !known || end >= len(s) {
		return Tag{}, 0, false
	}

	var attrs string
	switch {
	case s[end] == '>':
		end++
	case spec.attrs && isSpace(s[end]):
		gt := strings.IndexByte(s[end:], '>')
		if gt < 0 {
			return Tag{}, 0, false
		}
		attrs = strings.TrimSpace(s[end : end+gt])
		end += gt + 1
	default:
		return Tag{}, 0, false
	}

	closing := "</" + name + ">"
	rest := s[end:]
	ci := strings.Index(rest, closing)
	if ci < 0 {
		return Tag{}, 0, false
	}
	body := rest[:ci]
	if spec.singleLine && strings.ContainsAny(body, "\r\n") {
		return Tag{}, 0, false
	}
	return Tag{Name: name, Attrs: attrs, Body: body}, end + ci + len(closing), true
}

func isNameByte(c byte) bool {
	return c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
