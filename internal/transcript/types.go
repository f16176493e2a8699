// Package transcript converts raw meeting transcripts into a canonical
// ordered sequence of speaker/text/timestamp messages.
//
// Three input formats are supported: plain text ("Speaker: text" or
// "[Speaker] text" lines), WebVTT (Teams export), and JSON (top-level array
// or an object wrapping one). Anything else is treated as plain text.
// Ordering is significant — the message sequence preserves conversation
// order end to end.
package transcript

// UnknownSpeaker is the speaker assigned to text whose author cannot be
// determined from the transcript.
const UnknownSpeaker = "Unknown"

// Message is one speaker utterance, the canonical parsed transcript unit.
// Messages are immutable once parsed.
type Message struct {
	// Speaker is the display name of whoever said the text.
	Speaker string `json:"speaker"`

	// Text is the utterance content. Continuation lines are space-joined.
	Text string `json:"text"`

	// Timestamp is the raw timing string from the source format (e.g., a
	// WebVTT cue range). Empty when the source carries no timing data.
	Timestamp string `json:"timestamp,omitempty"`
}

// ParseError reports malformed transcript content. It wraps the underlying
// cause so callers can inspect it while presenting a single descriptive
// failure to the user.
type ParseError struct {
	// Format is the transcript format that failed to parse.
	Format Format

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return "transcript: parse " + string(e.Format) + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}
