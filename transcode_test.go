package main

import (
	"strings"
	"testing"
)

func TestTranscode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain text", in: "just text\nwith lines", want: "just text\nwith lines"},
		{name: "command name", in: "<command-name>/init</command-name>", want: "`/init`"},
		{name: "command message", in: "<command-message>init is running</command-message>", want: "> 🤖 *init is running*\n"},
		{name: "local stdout", in: "<local-command-stdout>ok</local-command-stdout>", want: "\n```\nok\n```\n"},
		{name: "stdout", in: "<stdout>a\nb</stdout>", want: "\n```\na\nb\n```\n"},
		{name: "command args", in: `<command-args>{"x":1}</command-args>`, want: "\n**Args**:\n```json\n{\"x\":1}\n```\n"},
		{name: "reasoning", in: "<reasoning>think first</reasoning>", want: "> **Reasoning**:\n> think first\n"},
		{name: "system reminder", in: "<system-reminder>be brief</system-reminder>", want: "> ⚠️ *be brief*\n"},
		{
			name: "tool use",
			in:   "<tool-use name=\"Bash\">\n{\"command\":\"ls -la\"}\n</tool-use>",
			want: "\n**🖥️ Terminal**\n```bash\n$ ls -la\n```\n",
		},
		{
			name: "tool use without name",
			in:   "<tool-use>{}</tool-use>",
			want: "\n**Tool Use: `Unknown Tool`**\n```json\n{}\n```\n",
		},
		{
			name: "tool result",
			in:   "<tool-result>\n  done  \n</tool-result>",
			want: "\n**📤 Output**\n```\ndone\n```\n",
		},
		{
			name: "prose body transcoded",
			in:   "<system-reminder>run <command-name>/x</command-name></system-reminder>",
			want: "> ⚠️ *run `/x`*\n",
		},
		{
			name: "stdout body verbatim",
			in:   "<stdout><command-name>/x</command-name></stdout>",
			want: "\n```\n<command-name>/x</command-name>\n```\n",
		},
		{
			name: "unterminated passes through",
			in:   "<reasoning>no end",
			want: "<reasoning>no end",
		},
		{
			name: "unknown tag passes through",
			in:   "<custom>x</custom>",
			want: "<custom>x</custom>",
		},
		{
			name: "mixed",
			in:   "Hi <command-name>/a</command-name> and <command-name>/b</command-name>.",
			want: "Hi `/a` and `/b`.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Transcode(tt.in)
			if got != tt.want {
				t.Errorf("Transcode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTranscodeIdempotentOnOutput(t *testing.T) {
	inputs := []string{
		"<command-name>/init</command-name> <command-message>init</command-message>",
		"<tool-use name=\"Read\">{\"file_path\":\"a.go\"}</tool-use><tool-result>package a</tool-result>",
		"<reasoning>plan</reasoning>\n<system-reminder>note</system-reminder>",
	}
	for _, in := range inputs {
		once := Transcode(in)
		if twice := Transcode(once); twice != once {
			t.Errorf("Transcode(Transcode(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestTranscodeUnknownToolKeepsBody(t *testing.T) {
	body := "{\n  \"query\": \"golang generics\",\n  \"limit\": 3\n}"
	got := Transcode("<tool-use name=\"WebSearch\">" + body + "</tool-use>")
	if !strings.Contains(got, "```json\n"+body+"\n```") {
		t.Errorf("Transcode() = %q, want fenced block with the original body", got)
	}
}

func TestRenderToolResultImages(t *testing.T) {
	raw := "Here:\n<tool-result>[{\"type\":\"image\",\"source\":{\"type\":\"base64\",\"media_type\":\"image/jpeg\",\"data\":\"/9j/AAAA...\"}}]</tool-result>\nDone."
	doc := Render(raw)

	if len(doc) != 3 {
		t.Fatalf("Render() returned %d segments, want 3: %#v", len(doc), doc)
	}
	if doc[0].Kind != SegmentText || !strings.HasPrefix(doc[0].Text, "Here:\n\n**📤 Output**\n") {
		t.Errorf("segment 0 = %#v", doc[0])
	}
	if doc[1].Kind != SegmentImage || doc[1].Src != "data:image/jpeg;base64,/9j/AAAA..." {
		t.Errorf("segment 1 = %#v", doc[1])
	}
	if doc[2].Kind != SegmentText || !strings.HasSuffix(doc[2].Text, "</details>\n\nDone.") {
		t.Errorf("segment 2 = %#v", doc[2])
	}
}
