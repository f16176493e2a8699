package resilience

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/MrWong99/reqsift/pkg/provider/stt"
)

// TranscriberFallback implements [stt.Provider] with automatic failover across
// multiple transcription backends. Each backend has its own circuit breaker.
//
// The audio stream is buffered in memory once so that every backend receives
// the full input from the start, regardless of how much a failed attempt
// consumed.
type TranscriberFallback struct {
	group *FallbackGroup[stt.Provider]
}

// Compile-time interface assertion.
var _ stt.Provider = (*TranscriberFallback)(nil)

// NewTranscriberFallback creates a [TranscriberFallback] with primary as the
// preferred backend.
func NewTranscriberFallback(primary stt.Provider, primaryName string, cfg FallbackConfig) *TranscriberFallback {
	return &TranscriberFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional transcription provider as a fallback.
func (f *TranscriberFallback) AddFallback(name string, provider stt.Provider) {
	f.group.AddFallback(name, provider)
}

// Transcribe runs the audio through the first healthy provider. If the
// primary fails, subsequent fallbacks receive the same buffered audio.
func (f *TranscriberFallback) Transcribe(ctx context.Context, audio io.Reader) (*stt.Transcript, error) {
	data, err := io.ReadAll(audio)
	if err != nil {
		return nil, fmt.Errorf("resilience: buffer audio: %w", err)
	}
	return ExecuteWithResult(f.group, func(p stt.Provider) (*stt.Transcript, error) {
		return p.Transcribe(ctx, bytes.NewReader(data))
	})
}
