package transcript

import (
	"strings"
	"testing"
)

// TestParseText_SpeakerColonLines verifies that well-formed "Speaker: text"
// transcripts yield one message per line, in file order, with trimmed fields.
func TestParseText_SpeakerColonLines(t *testing.T) {
	input := "Alice: We need login.\nBob: Agreed, and it must be fast.\n"
	msgs, err := Parse(strings.NewReader(input), FormatText)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []Message{
		{Speaker: "Alice", Text: "We need login."},
		{Speaker: "Bob", Text: "Agreed, and it must be fast."},
	}
	if len(msgs) != len(want) {
		t.Fatalf("got %d messages, want %d", len(msgs), len(want))
	}
	for i := range want {
		if msgs[i] != want[i] {
			t.Errorf("message %d: got %+v, want %+v", i, msgs[i], want[i])
		}
	}
}

// TestParseText_BracketSpeaker verifies the "[Speaker] text" line form.
func TestParseText_BracketSpeaker(t *testing.T) {
	msgs, err := Parse(strings.NewReader("[Alice] We need login.\n"), FormatText)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Speaker != "Alice" || msgs[0].Text != "We need login." {
		t.Errorf("got %+v", msgs[0])
	}
}

// TestParseText_Continuation verifies that a plain line is space-joined onto
// the previous message.
func TestParseText_Continuation(t *testing.T) {
	input := "Alice: We need login.\nAnd it should support SSO.\n"
	msgs, err := Parse(strings.NewReader(input), FormatText)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Text != "We need login. And it should support SSO." {
		t.Errorf("text: got %q", msgs[0].Text)
	}
}

// TestParseText_OrphanLine verifies that a leading plain line becomes an
// "Unknown" speaker message.
func TestParseText_OrphanLine(t *testing.T) {
	msgs, err := Parse(strings.NewReader("meeting notes follow\n"), FormatText)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Speaker != UnknownSpeaker {
		t.Fatalf("got %+v, want one Unknown message", msgs)
	}
}

// TestParseText_Empty verifies that an empty or all-blank transcript yields
// zero messages, not an error.
func TestParseText_Empty(t *testing.T) {
	for _, input := range []string{"", "\n\n\n", "   \n\t\n"} {
		msgs, err := Parse(strings.NewReader(input), FormatText)
		if err != nil {
			t.Fatalf("Parse(%q): %v", input, err)
		}
		if len(msgs) != 0 {
			t.Errorf("Parse(%q): got %d messages, want 0", input, len(msgs))
		}
	}
}

// TestParseVTT_VoiceSpan verifies the basic WebVTT cue with a voice span.
func TestParseVTT_VoiceSpan(t *testing.T) {
	input := "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\n<v Alice>Hello team</v>\n"
	msgs, err := Parse(strings.NewReader(input), FormatVTT)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	want := Message{Speaker: "Alice", Text: "Hello team", Timestamp: "00:00:01.000 --> 00:00:02.000"}
	if msgs[0] != want {
		t.Errorf("got %+v, want %+v", msgs[0], want)
	}
}

// TestParseVTT_MultipleCues verifies that each timing line flushes the
// previous cue and that plain cue text defaults to the Unknown speaker.
func TestParseVTT_MultipleCues(t *testing.T) {
	input := strings.Join([]string{
		"WEBVTT",
		"",
		"00:00:01.000 --> 00:00:02.000",
		"<v Alice>First point</v>",
		"",
		"00:00:03.000 --> 00:00:04.000",
		"a cue without a voice span",
		"",
	}, "\n")
	msgs, err := Parse(strings.NewReader(input), FormatVTT)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Speaker != "Alice" || msgs[0].Text != "First point" {
		t.Errorf("first message: %+v", msgs[0])
	}
	if msgs[1].Speaker != UnknownSpeaker || msgs[1].Text != "a cue without a voice span" {
		t.Errorf("second message: %+v", msgs[1])
	}
	if msgs[1].Timestamp != "00:00:03.000 --> 00:00:04.000" {
		t.Errorf("second timestamp: %q", msgs[1].Timestamp)
	}
}

// TestParseVTT_MultiLineCue verifies that multiple text lines within one cue
// are space-joined.
func TestParseVTT_MultiLineCue(t *testing.T) {
	input := strings.Join([]string{
		"WEBVTT",
		"",
		"00:00:01.000 --> 00:00:05.000",
		"<v Bob>We should ship</v>",
		"by the end of the quarter",
		"",
	}, "\n")
	msgs, err := Parse(strings.NewReader(input), FormatVTT)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Text != "We should ship by the end of the quarter" {
		t.Errorf("text: %q", msgs[0].Text)
	}
	if msgs[0].Speaker != "Bob" {
		t.Errorf("speaker: %q", msgs[0].Speaker)
	}
}

// TestParseVTT_HeaderAndNotesIgnored verifies that WEBVTT and NOTE lines never
// produce messages.
func TestParseVTT_HeaderAndNotesIgnored(t *testing.T) {
	input := "WEBVTT\nNOTE this is a comment\n\n"
	msgs, err := Parse(strings.NewReader(input), FormatVTT)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("got %d messages, want 0", len(msgs))
	}
}

// TestParseJSON_TopLevelArray verifies the top-level array shape with the
// primary key names.
func TestParseJSON_TopLevelArray(t *testing.T) {
	input := `[{"speaker": "Alice", "text": "We need login.", "timestamp": "00:01"},
	           {"speaker": "Bob", "text": "Agreed."}]`
	msgs, err := Parse(strings.NewReader(input), FormatJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Timestamp != "00:01" {
		t.Errorf("timestamp: %q", msgs[0].Timestamp)
	}
	if msgs[1].Speaker != "Bob" || msgs[1].Text != "Agreed." {
		t.Errorf("second message: %+v", msgs[1])
	}
}

// TestParseJSON_KeyAliases verifies the accepted key aliases and defaults.
func TestParseJSON_KeyAliases(t *testing.T) {
	input := `[{"name": "Alice", "content": "Point one", "time": "00:01"},
	           {"user": "Bob", "message": "Point two", "startTime": "00:02"},
	           {"text": "anonymous remark"}]`
	msgs, err := Parse(strings.NewReader(input), FormatJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if msgs[0].Speaker != "Alice" || msgs[0].Text != "Point one" || msgs[0].Timestamp != "00:01" {
		t.Errorf("first message: %+v", msgs[0])
	}
	if msgs[1].Speaker != "Bob" || msgs[1].Text != "Point two" || msgs[1].Timestamp != "00:02" {
		t.Errorf("second message: %+v", msgs[1])
	}
	if msgs[2].Speaker != UnknownSpeaker || msgs[2].Text != "anonymous remark" {
		t.Errorf("third message: %+v", msgs[2])
	}
}

// TestParseJSON_WrappedTranscript verifies the object shapes: a "transcript"
// array, an "items" array, and the sorted-first-array fallback.
func TestParseJSON_WrappedTranscript(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"transcript key", `{"transcript": [{"speaker": "Alice", "text": "hi"}]}`},
		{"items key", `{"items": [{"speaker": "Alice", "text": "hi"}]}`},
		{"fallback array", `{"zz": 1, "entries": [{"speaker": "Alice", "text": "hi"}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msgs, err := Parse(strings.NewReader(tc.input), FormatJSON)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(msgs) != 1 || msgs[0].Speaker != "Alice" || msgs[0].Text != "hi" {
				t.Errorf("got %+v", msgs)
			}
		})
	}
}

// TestParseJSON_NumericTimestamp verifies that numeric timestamps are
// rendered as decimal strings.
func TestParseJSON_NumericTimestamp(t *testing.T) {
	input := `[{"speaker": "Alice", "text": "hi", "time": 42.5}]`
	msgs, err := Parse(strings.NewReader(input), FormatJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if msgs[0].Timestamp != "42.5" {
		t.Errorf("timestamp: got %q, want %q", msgs[0].Timestamp, "42.5")
	}
}

// TestParseJSON_Malformed verifies that invalid JSON surfaces as a ParseError.
func TestParseJSON_Malformed(t *testing.T) {
	_, err := Parse(strings.NewReader(`{"transcript": [`), FormatJSON)
	if err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
	var pe *ParseError
	if !asParseError(err, &pe) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if pe.Format != FormatJSON {
		t.Errorf("Format: got %q, want %q", pe.Format, FormatJSON)
	}
}

// TestDetectFormat verifies extension-based format detection, including the
// plain-text fallback for unknown extensions.
func TestDetectFormat(t *testing.T) {
	cases := map[string]Format{
		"meeting.txt":  FormatText,
		"meeting.VTT":  FormatVTT,
		"meeting.json": FormatJSON,
		"meeting.log":  FormatText,
		"meeting":      FormatText,
	}
	for path, want := range cases {
		if got := DetectFormat(path); got != want {
			t.Errorf("DetectFormat(%q): got %q, want %q", path, got, want)
		}
	}
}

// asParseError is a tiny local wrapper around errors.As to keep test bodies
// terse.
func asParseError(err error, target **ParseError) bool {
	for err != nil {
		if pe, ok := err.(*ParseError); ok {
			*target = pe
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
