// Package mock provides a test double for the stt.Provider interface.
package mock

import (
	"context"
	"io"
	"sync"

	"github.com/MrWong99/reqsift/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Transcribe.
type TranscribeCall struct {
	// Ctx is the context passed to Transcribe.
	Ctx context.Context
	// Audio is the full content read from the audio reader.
	Audio []byte
}

// Compile-time interface check.
var _ stt.Provider = (*Provider)(nil)

// Provider is a mock implementation of stt.Provider. Zero values cause
// Transcribe to return an empty Transcript and nil error. Set Err to inject
// a failure.
type Provider struct {
	mu sync.Mutex

	// Transcript is returned by Transcribe. When nil, an empty Transcript
	// is returned.
	Transcript *stt.Transcript

	// Err, if non-nil, is returned as the error from Transcribe. The audio
	// reader is still consumed and recorded.
	Err error

	// Calls records every invocation of Transcribe in order.
	Calls []TranscribeCall
}

// Transcribe implements stt.Provider.
func (p *Provider) Transcribe(ctx context.Context, audio io.Reader) (*stt.Transcript, error) {
	data, err := io.ReadAll(audio)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.Calls = append(p.Calls, TranscribeCall{Ctx: ctx, Audio: data})
	p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	if p.Transcript != nil {
		return p.Transcript, nil
	}
	return &stt.Transcript{}, nil
}

// CallCount returns the number of Transcribe invocations so far.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}
