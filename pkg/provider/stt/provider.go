// Package stt defines the Provider interface for batch speech-to-text
// backends.
//
// A provider takes a complete audio recording and returns one Transcript:
// the full recognized text plus, when the backend exposes them, timed
// segments. This is an offline, whole-file operation — a meeting recording
// goes in, a transcript comes out — so the interface is a single blocking
// call rather than a streaming session.
package stt

import (
	"context"
	"io"
	"time"
)

// Segment is one timed portion of the recognized audio.
type Segment struct {
	// Text is the recognized text of the segment, trimmed.
	Text string

	// Start and End bound the segment within the recording.
	Start time.Duration
	End   time.Duration
}

// Transcript is the complete recognition result for one recording.
type Transcript struct {
	// Text is the full recognized text. Always set.
	Text string

	// Segments holds timed portions when the backend provides them.
	// May be empty; Text is authoritative either way.
	Segments []Segment

	// Language is the recognized or configured language code, when known.
	Language string
}

// Provider is the abstraction over any batch speech-to-text backend.
//
// Transcribe consumes the audio reader entirely and blocks until
// recognition completes or ctx is cancelled. Implementations must be safe
// for concurrent use; each call is independent.
type Provider interface {
	Transcribe(ctx context.Context, audio io.Reader) (*Transcript, error)
}
