// Package whisper provides a local speech-to-text provider backed by the
// whisper.cpp CGO bindings. The whisper.cpp static library (libwhisper.a)
// and headers (whisper.h) must be available at link time via LIBRARY_PATH
// and C_INCLUDE_PATH environment variables.
//
// Input audio must be a 16-bit PCM WAV file; whisper.cpp expects 16 kHz
// samples, so recordings should be resampled before transcription.
package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/MrWong99/reqsift/pkg/provider/stt"
)

const defaultLanguage = "en"

// Compile-time assertion that Provider satisfies stt.Provider.
var _ stt.Provider = (*Provider)(nil)

// Provider implements stt.Provider using whisper.cpp Go bindings (CGO).
// The model is loaded once at construction and shared across all
// Transcribe calls; each call runs inference in its own whisper context,
// so concurrent transcriptions do not interfere.
type Provider struct {
	model    whisperlib.Model
	language string
}

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithLanguage sets the BCP-47 language code for transcription
// (e.g., "en", "de", "fr"). Defaults to "en".
func WithLanguage(lang string) Option {
	return func(p *Provider) { p.language = lang }
}

// New creates a Provider that loads the whisper.cpp model from the given
// file path. The caller must call Close when the provider is no longer
// needed.
func New(modelPath string, opts ...Option) (*Provider, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}

	p := &Provider{
		model:    model,
		language: defaultLanguage,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Close releases the whisper model. Must be called when the provider is no
// longer needed.
func (p *Provider) Close() error {
	if p.model != nil {
		return p.model.Close()
	}
	return nil
}

// Transcribe implements stt.Provider. audio must be a complete 16-bit PCM
// WAV stream; it is read fully before inference starts.
func (p *Provider) Transcribe(ctx context.Context, audio io.Reader) (*stt.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("whisper: context already cancelled: %w", err)
	}

	wav, err := decodeWAV(audio)
	if err != nil {
		return nil, fmt.Errorf("whisper: decode audio: %w", err)
	}
	if len(wav.samples) == 0 {
		return &stt.Transcript{Language: p.language}, nil
	}
	if wav.sampleRate != whisperlib.SampleRate {
		slog.Warn("whisper: unexpected sample rate, recognition quality may suffer",
			"got", wav.sampleRate, "want", whisperlib.SampleRate)
	}

	// Each inference gets a fresh context. Contexts are not thread-safe,
	// but the model can be shared across goroutines.
	wctx, err := p.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("whisper: create context: %w", err)
	}
	if err := wctx.SetLanguage(p.language); err != nil {
		slog.Warn("whisper: failed to set language, using default", "language", p.language, "error", err)
	}

	if err := wctx.Process(wav.samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("whisper: process audio: %w", err)
	}

	var (
		segments []stt.Segment
		parts    []string
	)
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("whisper: read segment: %w", err)
		}
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
		segments = append(segments, stt.Segment{
			Text:  text,
			Start: segment.Start,
			End:   segment.End,
		})
	}

	return &stt.Transcript{
		Text:     strings.Join(parts, " "),
		Segments: segments,
		Language: p.language,
	}, nil
}
