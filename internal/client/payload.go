// ABOUTME: Outbound payload normalization
// ABOUTME: Flattens rich-editor content objects into the string the backend stores

package client

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// normalizeContent replaces an object-valued top-level "content" field with
// its html, else its text, else its JSON encoding. Other bodies pass through.
func normalizeContent(body []byte) ([]byte, error) {
	if !gjson.ValidBytes(body) {
		return body, nil
	}
	content := gjson.GetBytes(body, "content")
	if !content.IsObject() {
		return body, nil
	}

	var flat string
	switch {
	case truthy(content.Get("html")):
		flat = content.Get("html").String()
	case truthy(content.Get("text")):
		flat = content.Get("text").String()
	default:
		flat = content.Raw
	}
	return sjson.SetBytes(body, "content", flat)
}

// truthy treats missing, null, false, zero and empty string as unset
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	default:
		return r.Exists()
	}
}
