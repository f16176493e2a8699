package extract

import (
	"encoding/json"
	"strings"

	"github.com/MrWong99/reqsift/internal/requirements"
)

// DecodeDocument parses LLM response text into a requirements document.
// The text is first parsed as-is; if that fails, the widest {...} span is
// tried, since local models often wrap the JSON in prose. Categories absent
// from the response come back as empty lists. Anything unparseable returns a
// *ResponseParseError carrying the raw text.
func DecodeDocument(text string) (requirements.Document, error) {
	var doc requirements.Document

	direct := json.Unmarshal([]byte(text), &doc)
	if direct == nil {
		return doc, nil
	}

	if span, ok := jsonSpan(text); ok {
		doc = requirements.Document{}
		if err := json.Unmarshal([]byte(span), &doc); err == nil {
			return doc, nil
		}
	}

	return requirements.Document{}, &ResponseParseError{Raw: text, Err: direct}
}

// jsonSpan returns the widest substring from the first '{' to the last '}',
// the greedy span a model's surrounding prose would be stripped from.
func jsonSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
