package main

import (
	"strings"

	"github.com/tidwall/gjson"
)

// minImagePayload is the shortest base64 payload accepted as an image.
const minImagePayload = 10

// imageSignatures maps base64 prefixes of common image headers to their media type.
var imageSignatures = []struct {
	prefix string
	mime   string
}{
	{"iVBORw0KGgo", "image/png"},
	{"/9j/", "image/jpeg"},
	{"R0lGOD", "image/gif"},
	{"UklGR", "image/webp"},
}

// ImageAttachment is an image extracted from a tool result.
type ImageAttachment struct {
	MIMEType string
	Data     string // base64 payload without a data-URI prefix
}

// DataURI returns the canonical "data:<mime>;base64,<payload>" form.
func (a ImageAttachment) DataURI() string {
	return "data:" + a.MIMEType + ";base64," + a.Data
}

// ClassifyToolResult renders a tool-result body. Plain output and JSON without images
// become a fenced block; JSON carrying image attachments becomes image segments followed
// by a collapsible dump of the whole payload.
func ClassifyToolResult(body string) Document {
	body = strings.TrimSpace(body)
	if !gjson.Valid(body) {
		return Document{}.AppendText(outputBlock(body))
	}

	pretty := prettyJSON([]byte(body))
	items := gjson.Parse(body).Array()

	hasImage := false
	for _, item := range items {
		if _, ok := imageSource(item); ok {
			hasImage = true
			break
		}
	}
	if !hasImage {
		return Document{}.AppendText(outputBlock(pretty))
	}

	doc := Document{}.AppendText(outputHeader)
	for i, item := range items {
		src, ok := imageSource(item)
		if !ok {
			continue
		}
		img, ok := decodeAttachment(src)
		if !ok {
			continue
		}
		doc = append(doc, NewImageSegment(img.DataURI(), i))
		doc = doc.AppendText("\n\n")
	}
	return doc.AppendText("<details>\n<summary>View JSON Data</summary>\n\n```json\n" + pretty + "\n```\n</details>\n")
}

// classifyToolResult is the marker-serialized form of ClassifyToolResult.
func classifyToolResult(body string) string {
	return ClassifyToolResult(body).String()
}

const outputHeader = "\n**📤 Output**\n"

func outputBlock(content string) string {
	return outputHeader + "```\n" + content + "\n```\n"
}

// imageSource returns the source object of an item shaped like
// {"type":"image","source":{"type":"base64","data":"..."}}.
func imageSource(item gjson.Result) (gjson.Result, bool) {
	if !item.IsObject() || item.Get("type").String() != "image" {
		return gjson.Result{}, false
	}
	src := item.Get("source")
	if !src.IsObject() || src.Get("type").String() != "base64" {
		return gjson.Result{}, false
	}
	data := src.Get("data")
	if data.Type != gjson.String || data.Str == "" {
		return gjson.Result{}, false
	}
	return src, true
}

// decodeAttachment validates the payload of an image source and resolves its media type.
func decodeAttachment(src gjson.Result) (ImageAttachment, bool) {
	data := strings.TrimSpace(src.Get("data").Str)
	if len(data) < minImagePayload {
		return ImageAttachment{}, false
	}

	var uriMIME string
	if strings.HasPrefix(data, "data:") {
		uriMIME, data = splitDataURI(data)
	}
	// Line-wrapped base64 is folded onto one line.
	data = strings.Join(strings.Fields(data), "")
	if data == "" || strings.Contains(data, markerEnd) {
		return ImageAttachment{}, false
	}

	mime := src.Get("media_type").String()
	if mime == "" {
		mime = uriMIME
	}
	if mime == "" {
		mime = sniffImageType(data)
	}
	return ImageAttachment{MIMEType: mime, Data: data}, true
}

// sniffImageType guesses the media type from the base64-encoded magic bytes.
func sniffImageType(data string) string {
	for _, sig := range imageSignatures {
		if strings.HasPrefix(data, sig.prefix) {
			return sig.mime
		}
	}
	return "image/png"
}
