package main

import (
	"strings"
	"testing"
)

func TestClassifyToolResultText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "plain output",
			body: "total 0\ndrwxr-xr-x  2 me  staff",
			want: "\n**📤 Output**\n```\ntotal 0\ndrwxr-xr-x  2 me  staff\n```\n",
		},
		{
			name: "surrounding whitespace trimmed",
			body: "\n  ok  \n",
			want: "\n**📤 Output**\n```\nok\n```\n",
		},
		{
			name: "JSON without images is pretty printed",
			body: `{"b":1,"a":[true]}`,
			want: "\n**📤 Output**\n```\n{\n  \"b\": 1,\n  \"a\": [\n    true\n  ]\n}\n```\n",
		},
		{
			name: "image with non-base64 source type",
			body: `[{"type":"image","source":{"type":"url","data":"https://example.com/a.png"}}]`,
			want: "\n**📤 Output**\n```\n[\n  {\n    \"type\": \"image\",\n    \"source\": {\n      \"type\": \"url\",\n      \"data\": \"https://example.com/a.png\"\n    }\n  }\n]\n```\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyToolResult(tt.body)
			if got != tt.want {
				t.Errorf("classifyToolResult(%q) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}

func TestClassifyToolResultSingleImage(t *testing.T) {
	body := `{"type":"image","source":{"type":"base64","media_type":"image/jpeg","data":"/9j/AAAA..."}}`
	doc := ClassifyToolResult(body)

	imgs := doc.Images()
	if len(imgs) != 1 {
		t.Fatalf("got %d images, want 1", len(imgs))
	}
	if want := "data:image/jpeg;base64,/9j/AAAA..."; imgs[0].Src != want {
		t.Errorf("Src = %q, want %q", imgs[0].Src, want)
	}
	if imgs[0].Ordinal != 0 || imgs[0].MIMEType != "image/jpeg" {
		t.Errorf("Ordinal = %d, MIMEType = %q", imgs[0].Ordinal, imgs[0].MIMEType)
	}
	if doc[0].Text != "\n**📤 Output**\n" {
		t.Errorf("first segment = %q, want output header", doc[0].Text)
	}
	last := doc[len(doc)-1].Text
	if !strings.HasPrefix(last, "\n\n<details>\n<summary>View JSON Data</summary>\n\n```json\n") ||
		!strings.HasSuffix(last, "\n```\n</details>\n") {
		t.Errorf("last segment = %q, want JSON disclosure", last)
	}
}

func TestTranscodedImageSurvivesSplit(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantSrc string
	}{
		{name: "elided payload", data: "/9j/AAAA...", wantSrc: "data:image/jpeg;base64,/9j/AAAA..."},
		{name: "ten characters", data: "0123456789", wantSrc: "data:image/jpeg;base64,0123456789"},
		{name: "url-ish payload", data: "not/really?base64!", wantSrc: "data:image/jpeg;base64,not/really?base64!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `<tool-result>{"type":"image","source":{"type":"base64","media_type":"image/jpeg","data":"` + tt.data + `"}}</tool-result>`
			imgs := SplitSegments(Transcode(raw)).Images()
			if len(imgs) != 1 {
				t.Fatalf("SplitSegments(Transcode(%q)) has %d images, want 1", raw, len(imgs))
			}
			if imgs[0].Src != tt.wantSrc || imgs[0].Ordinal != 0 {
				t.Errorf("image = (%q, %d), want (%q, 0)", imgs[0].Src, imgs[0].Ordinal, tt.wantSrc)
			}
		})
	}
}

func TestClassifyToolResultTwoImagesAndObject(t *testing.T) {
	body := `[
		{"type":"image","source":{"type":"base64","media_type":"image/png","data":"iVBORw0KGgoAAAANSUhEUg"}},
		{"type":"image","source":{"type":"base64","data":"R0lGODlhAQABAIAAAP"}},
		{"type":"text","text":"two screenshots"}
	]`
	doc := ClassifyToolResult(body)

	imgs := doc.Images()
	if len(imgs) != 2 {
		t.Fatalf("got %d images, want 2", len(imgs))
	}
	if imgs[0].Ordinal != 0 || imgs[0].MIMEType != "image/png" {
		t.Errorf("first image = %+v", imgs[0])
	}
	if imgs[1].Ordinal != 1 || imgs[1].MIMEType != "image/gif" {
		t.Errorf("second image = %+v", imgs[1])
	}

	details := doc[len(doc)-1].Text
	for _, want := range []string{"iVBORw0KGgoAAAANSUhEUg", "R0lGODlhAQABAIAAAP", `"text": "two screenshots"`} {
		if !strings.Contains(details, want) {
			t.Errorf("JSON disclosure is missing %q", want)
		}
	}
}

func TestClassifyToolResultInvalidImagesSkipped(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "too short", data: "iVBOR"},
		{name: "marker text", data: "AAAAAAAAAA[IMAGE_END:7]AAAA"},
		{name: "prefix only", data: "data:image/png;base64,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `[{"type":"image","source":{"type":"base64","data":"` + tt.data + `"}},` +
				`{"type":"image","source":{"type":"base64","data":"iVBORw0KGgoAAAANSUhEUg"}}]`
			doc := ClassifyToolResult(body)
			imgs := doc.Images()
			if len(imgs) != 1 {
				t.Fatalf("got %d images, want 1", len(imgs))
			}
			if imgs[0].Ordinal != 1 {
				t.Errorf("Ordinal = %d, want 1", imgs[0].Ordinal)
			}
			if got := SplitSegments(doc.String()); len(got.Images()) != 1 {
				t.Errorf("marker form split into %d images, want 1", len(got.Images()))
			}
		})
	}
}

func TestDecodeAttachmentMIME(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantSrc  string
		wantMIME string
	}{
		{
			name:     "declared type wins",
			body:     `{"type":"image","source":{"type":"base64","media_type":"image/webp","data":"iVBORw0KGgoAAAANSUhEUg"}}`,
			wantSrc:  "data:image/webp;base64,iVBORw0KGgoAAAANSUhEUg",
			wantMIME: "image/webp",
		},
		{
			name:     "data URI prefix",
			body:     `{"type":"image","source":{"type":"base64","data":"data:image/gif;base64,R0lGODlhAQABAIAAAP"}}`,
			wantSrc:  "data:image/gif;base64,R0lGODlhAQABAIAAAP",
			wantMIME: "image/gif",
		},
		{
			name:     "sniffed webp",
			body:     `{"type":"image","source":{"type":"base64","data":"UklGRiQAAABXRUJQ"}}`,
			wantSrc:  "data:image/webp;base64,UklGRiQAAABXRUJQ",
			wantMIME: "image/webp",
		},
		{
			name:     "unknown signature defaults to png",
			body:     `{"type":"image","source":{"type":"base64","data":"AAAAAAAAAAAAAAAA"}}`,
			wantSrc:  "data:image/png;base64,AAAAAAAAAAAAAAAA",
			wantMIME: "image/png",
		},
		{
			name:     "wrapped payload",
			body:     `{"type":"image","source":{"type":"base64","data":"/9j/4AAQ\nSkZJRg=="}}`,
			wantSrc:  "data:image/jpeg;base64,/9j/4AAQSkZJRg==",
			wantMIME: "image/jpeg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imgs := ClassifyToolResult(tt.body).Images()
			if len(imgs) != 1 {
				t.Fatalf("got %d images, want 1", len(imgs))
			}
			if imgs[0].Src != tt.wantSrc || imgs[0].MIMEType != tt.wantMIME {
				t.Errorf("image = (%q, %q), want (%q, %q)", imgs[0].Src, imgs[0].MIMEType, tt.wantSrc, tt.wantMIME)
			}
		})
	}
}
