package main

import "strings"

// tagRule rewrites one tag kind into markdown.
type tagRule struct {
	name    string
	rewrite func(Tag) Document
}

// tagRules lists the rewrite for every known tag, in the order the rewrites are defined
// to apply. Prose bodies are transcoded again, so a rule still applies inside the output
// of another; code bodies and tool payloads are kept as they are.
var tagRules = []tagRule{
	{TagCommandName, prose("`", "`")},
	{TagCommandMessage, prose("> 🤖 *", "*\n")},
	{TagLocalCommandStdout, verbatim("\n```\n", "\n```\n")},
	{TagStdout, verbatim("\n```\n", "\n```\n")},
	{TagCommandArgs, verbatim("\n**Args**:\n```json\n", "\n```\n")},
	{TagReasoning, prose("> **Reasoning**:\n> ", "\n")},
	{TagToolUse, rewriteToolUse},
	{TagToolResult, rewriteToolResult},
	{TagSystemReminder, prose("> ⚠️ *", "*\n")},
}

var tagRulesByName = map[string]func(Tag) Document{}

func init() {
	for _, r := range tagRules {
		tagRulesByName[r.name] = r.rewrite
	}
}

// Render transcodes the raw content of one transcript entry into a Document.
// Text outside known tags is kept as is.
func Render(raw string) Document {
	var doc Document
	for _, tok := range Lex(raw) {
		if tok.Kind == TokenText {
			doc = doc.AppendText(tok.Text)
			continue
		}
		rewrite, ok := tagRulesByName[tok.Tag.Name]
		if !ok {
			continue
		}
		doc = doc.AppendDocument(rewrite(tok.Tag))
	}
	return doc
}

// Transcode returns the markdown form of raw, with images as inline markers.
func Transcode(raw string) string {
	return Render(raw).String()
}

func prose(prefix, suffix string) func(Tag) Document {
	return func(t Tag) Document {
		return Document{}.AppendText(prefix).AppendDocument(Render(t.Body)).AppendText(suffix)
	}
}

func verbatim(prefix, suffix string) func(Tag) Document {
	return func(t Tag) Document {
		return Document{}.AppendText(prefix + t.Body + suffix)
	}
}

func rewriteToolUse(t Tag) Document {
	return Document{}.AppendText(InterpretToolUse(t.NameAttr(), strings.TrimSpace(t.Body)))
}

func rewriteToolResult(t Tag) Document {
	return ClassifyToolResult(t.Body)
}
