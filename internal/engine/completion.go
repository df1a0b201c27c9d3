package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ResponseKind tags the shape a completion backend returned.
type ResponseKind int

const (
	KindUnknown ResponseKind = iota
	KindDirectText
	KindStructured
)

func (k ResponseKind) String() string {
	switch k {
	case KindDirectText:
		return "direct_text"
	case KindStructured:
		return "structured"
	default:
		return "unknown"
	}
}

// Response is a completion result in one of the shapes providers use:
// a top-level output_text, a list of output items, or something else
// entirely (kept in Raw for the string fallback).
type Response struct {
	Kind       ResponseKind
	OutputText string
	Output     []any
	Raw        any
}

// String renders the response for the last-resort fallback: Raw as JSON when
// present, otherwise the parsed fields.
func (r Response) String() string {
	switch raw := r.Raw.(type) {
	case nil:
	case string:
		return raw
	case json.RawMessage:
		return string(raw)
	default:
		if b, err := json.Marshal(raw); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%+v", raw)
	}
	return fmt.Sprintf("Response{kind=%s output_text=%q output=%v}", r.Kind, r.OutputText, r.Output)
}

// DecodeResponse parses a Responses API body. Bodies that are not a JSON
// object come back as KindUnknown with the raw text preserved.
func DecodeResponse(body []byte) Response {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return Response{Kind: KindUnknown, Raw: string(body)}
	}
	resp := Response{Raw: json.RawMessage(append([]byte(nil), body...))}
	if s, ok := m["output_text"].(string); ok {
		resp.OutputText = s
	}
	if out, ok := m["output"].([]any); ok {
		resp.Output = out
	}
	switch {
	case resp.OutputText != "":
		resp.Kind = KindDirectText
	case len(resp.Output) > 0:
		resp.Kind = KindStructured
	}
	return resp
}

// ExtractText pulls human-readable text out of a completion response.
// Priority: OutputText, then text collected from Output items, then the
// response's string form. It never fails.
func ExtractText(resp Response) string {
	if resp.OutputText != "" {
		return resp.OutputText
	}
	if len(resp.Output) > 0 {
		if text, ok := joinOutput(resp.Output); ok {
			return text
		}
	}
	return resp.String()
}

// joinOutput collects fragments from output items. Map items contribute their
// "content" (or "text" when content is empty); list content contributes each
// entry's "text" or each plain string. Any other item is stringified.
// ok is false when nothing was collected or a text entry is not a string.
func joinOutput(items []any) (string, bool) {
	var parts []string
	for _, item := range items {
		m, isMap := item.(map[string]any)
		if !isMap {
			parts = append(parts, fmt.Sprint(item))
			continue
		}
		content := m["content"]
		if !truthy(content) {
			content = m["text"]
		}
		switch c := content.(type) {
		case []any:
			for _, entry := range c {
				switch e := entry.(type) {
				case map[string]any:
					t, has := e["text"]
					if !has {
						continue
					}
					s, isStr := t.(string)
					if !isStr {
						return "", false
					}
					parts = append(parts, s)
				case string:
					parts = append(parts, e)
				}
			}
		case string:
			parts = append(parts, c)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

// truthy reports whether a decoded JSON value is non-empty.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}
