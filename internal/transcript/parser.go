package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Format identifies a transcript input format.
type Format string

const (
	// FormatText is a plain text transcript with "Speaker: text" or
	// "[Speaker] text" lines.
	FormatText Format = "text"

	// FormatVTT is a WebVTT subtitle/caption file (Teams transcript export).
	FormatVTT Format = "vtt"

	// FormatJSON is a JSON transcript export (top-level array, or an object
	// containing one).
	FormatJSON Format = "json"
)

// DetectFormat maps a file name to a Format by extension. Unrecognised
// extensions fall back to plain text.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vtt":
		return FormatVTT
	case ".json":
		return FormatJSON
	default:
		return FormatText
	}
}

// ParseFile reads and parses the transcript file at path, choosing the format
// from the file extension.
func ParseFile(path string) ([]Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("transcript: open %q: %w", path, err)
	}
	defer f.Close()
	return Parse(f, DetectFormat(path))
}

// Parse reads a raw transcript from r and returns the canonical ordered
// message sequence. An empty or all-blank transcript yields zero messages,
// not an error. Malformed content (currently only possible for JSON input)
// returns a *ParseError.
func Parse(r io.Reader, format Format) ([]Message, error) {
	switch format {
	case FormatVTT:
		return parseVTT(r)
	case FormatJSON:
		return parseJSON(r)
	default:
		return parseText(r)
	}
}

// Line patterns for plain text transcripts.
var (
	// "Speaker Name: message"
	colonLine = regexp.MustCompile(`^([^:]+):\s*(.+)$`)

	// "[Speaker Name] message"
	bracketLine = regexp.MustCompile(`^\[([^\]]+)\]\s*(.+)$`)
)

// parseText parses a plain text transcript line by line. A line matching one
// of the speaker patterns starts a new message; any other non-empty line is
// space-joined onto the previous message, or starts an "Unknown" message when
// there is no previous one. Blank lines are skipped.
func parseText(r io.Reader) ([]Message, error) {
	var messages []Message

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if m := colonLine.FindStringSubmatch(line); m != nil {
			messages = append(messages, Message{
				Speaker: strings.TrimSpace(m[1]),
				Text:    strings.TrimSpace(m[2]),
			})
			continue
		}
		if m := bracketLine.FindStringSubmatch(line); m != nil {
			messages = append(messages, Message{
				Speaker: strings.TrimSpace(m[1]),
				Text:    strings.TrimSpace(m[2]),
			})
			continue
		}

		// Continuation of the previous utterance, or orphan text.
		if len(messages) > 0 {
			messages[len(messages)-1].Text += " " + line
		} else {
			messages = append(messages, Message{Speaker: UnknownSpeaker, Text: line})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{Format: FormatText, Err: err}
	}

	return messages, nil
}

// voiceLine matches a WebVTT voice span of form "<v Speaker>text</v>".
var voiceLine = regexp.MustCompile(`<v\s+([^>]+)>(.+)</v>`)

// parseVTT parses a WebVTT transcript. Each timing cue ("start --> end")
// opens a new cue and flushes the previous cue's accumulated text as one
// message; a "<v Speaker>text</v>" line sets the cue speaker and appends the
// span text; any other non-empty, non-header line is appended as text.
// WEBVTT/NOTE header lines and blank lines are ignored. Text that appears
// before the first timing cue has no cue to belong to and is dropped.
func parseVTT(r io.Reader) ([]Message, error) {
	var (
		messages  []Message
		inCue     bool
		speaker   string
		timestamp string
		text      []string
	)

	flush := func() {
		if inCue && len(text) > 0 {
			sp := speaker
			if sp == "" {
				sp = UnknownSpeaker
			}
			messages = append(messages, Message{
				Speaker:   sp,
				Text:      strings.Join(text, " "),
				Timestamp: timestamp,
			})
		}
		speaker = ""
		text = nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "WEBVTT") || strings.HasPrefix(line, "NOTE") {
			continue
		}

		if strings.Contains(line, "-->") {
			flush()
			inCue = true
			timestamp = line
			continue
		}

		if m := voiceLine.FindStringSubmatch(line); m != nil {
			if inCue {
				speaker = strings.TrimSpace(m[1])
				text = append(text, strings.TrimSpace(m[2]))
			}
			continue
		}

		if inCue {
			text = append(text, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{Format: FormatVTT, Err: err}
	}
	flush()

	return messages, nil
}

// parseJSON parses a JSON transcript export. Accepted shapes, in order:
// a top-level array of objects; an object with a "transcript" or "items"
// array; or any object, using its first array-valued field (fields scanned
// in sorted key order for determinism).
func parseJSON(r io.Reader) ([]Message, error) {
	var data any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&data); err != nil {
		if err == io.EOF {
			// Empty input yields zero messages, matching the text parsers.
			return nil, nil
		}
		return nil, &ParseError{Format: FormatJSON, Err: err}
	}

	switch v := data.(type) {
	case []any:
		return jsonItems(v), nil
	case map[string]any:
		if items, ok := v["transcript"].([]any); ok {
			return jsonItems(items), nil
		}
		if items, ok := v["items"].([]any); ok {
			return jsonItems(items), nil
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if items, ok := v[k].([]any); ok {
				return jsonItems(items), nil
			}
		}
		return nil, nil
	default:
		return nil, &ParseError{Format: FormatJSON, Err: fmt.Errorf("unsupported top-level JSON value %T", data)}
	}
}

// jsonItems converts a decoded JSON array into messages, reading each field
// from its accepted key aliases. Non-object entries are skipped.
func jsonItems(items []any) []Message {
	messages := make([]Message, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		messages = append(messages, Message{
			Speaker:   stringField(obj, UnknownSpeaker, "speaker", "name", "user"),
			Text:      stringField(obj, "", "text", "content", "message"),
			Timestamp: stringField(obj, "", "timestamp", "time", "startTime"),
		})
	}
	return messages
}

// stringField returns the first non-empty value among the given keys,
// coerced to a string. Numeric timestamps are rendered in their shortest
// decimal form. Returns fallback when no key is present.
func stringField(obj map[string]any, fallback string, keys ...string) string {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok || v == nil {
			continue
		}
		switch s := v.(type) {
		case string:
			return s
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64)
		default:
			return fmt.Sprint(s)
		}
	}
	return fallback
}
