// Package extract turns transcript chunks into requirements documents by
// prompting an LLM backend and decoding its JSON response.
//
// Extraction is sequential by default, one chunk at a time; opt-in bounded
// concurrency is available and preserves chunk order in the results, so the
// downstream merge produces identical documents either way. The extractor
// never retries — a failed chunk fails the whole operation.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/reqsift/internal/chunk"
	"github.com/MrWong99/reqsift/internal/requirements"
	"github.com/MrWong99/reqsift/internal/transcript"
	"github.com/MrWong99/reqsift/internal/transcript/normalize"
	"github.com/MrWong99/reqsift/pkg/provider/llm"
)

// DefaultTemperature is the sampling temperature for extraction calls. Kept
// low so repeated runs over the same transcript stay close to deterministic.
const DefaultTemperature = 0.3

// Progress is invoked as chunks complete, with fraction in [0, 1] and a
// short human-readable stage description. Calls are serialized even when
// extraction runs concurrently.
type Progress func(fraction float64, stage string)

// Extractor drives requirement extraction against one LLM provider.
type Extractor struct {
	provider    llm.Provider
	normalizer  *normalize.Normalizer
	temperature float64
	maxTokens   int
	concurrency int
	progress    Progress
	logger      *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithNormalizer replaces the default normalizer.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(e *Extractor) { e.normalizer = n }
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(e *Extractor) { e.temperature = t }
}

// WithMaxTokens caps the completion length. Zero means the provider default.
func WithMaxTokens(n int) Option {
	return func(e *Extractor) { e.maxTokens = n }
}

// WithConcurrency allows up to n chunks to be extracted in parallel.
// Values below 2 keep the default sequential behaviour.
func WithConcurrency(n int) Option {
	return func(e *Extractor) { e.concurrency = n }
}

// WithProgress registers a progress callback.
func WithProgress(fn Progress) Option {
	return func(e *Extractor) { e.progress = fn }
}

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// New creates an Extractor for the given provider.
func New(provider llm.Provider, opts ...Option) (*Extractor, error) {
	if provider == nil {
		return nil, fmt.Errorf("extract: provider must not be nil")
	}
	e := &Extractor{
		provider:    provider,
		normalizer:  normalize.Default(),
		temperature: DefaultTemperature,
		concurrency: 1,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.concurrency < 1 {
		e.concurrency = 1
	}
	return e, nil
}

// Extract runs one extraction call over msgs. feedback, when non-blank, is
// folded into the prompt verbatim. Backend failures are classified onto the
// error taxonomy; a non-JSON response returns a *ResponseParseError.
func (e *Extractor) Extract(ctx context.Context, msgs []transcript.Message, feedback string) (requirements.Document, error) {
	conversation := FormatConversation(msgs, e.normalizer)
	prompt := BuildPrompt(conversation, feedback)

	resp, err := e.provider.Generate(ctx, llm.Request{
		SystemPrompt: SystemPrompt,
		Prompt:       prompt,
		Temperature:  e.temperature,
		MaxTokens:    e.maxTokens,
		JSONOnly:     true,
	})
	if err != nil {
		return requirements.Document{}, Classify(fmt.Errorf("extract: generate: %w", err))
	}

	e.logger.Debug("extraction call complete",
		"model", e.provider.ModelID(),
		"messages", len(msgs),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	doc, err := DecodeDocument(resp.Text)
	if err != nil {
		return requirements.Document{}, err
	}
	return doc, nil
}

// ExtractChunks extracts every chunk and returns the per-chunk documents in
// chunk order, ready for requirements.Merge. The first chunk failure aborts
// the whole operation. With concurrency enabled, in-flight chunks may still
// finish after a failure but their results are discarded.
func (e *Extractor) ExtractChunks(ctx context.Context, chunks []chunk.Chunk, feedback string) ([]requirements.Document, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	docs := make([]requirements.Document, len(chunks))
	total := len(chunks)

	if e.concurrency <= 1 || total == 1 {
		for i, c := range chunks {
			e.report(float64(i)/float64(total), fmt.Sprintf("extracting chunk %d/%d", i+1, total))
			doc, err := e.Extract(ctx, c.Messages, feedback)
			if err != nil {
				return nil, fmt.Errorf("extract: chunk %d/%d: %w", i+1, total, err)
			}
			docs[i] = doc
		}
		e.report(1, "extraction complete")
		return docs, nil
	}

	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for _, c := range chunks {
		g.Go(func() error {
			doc, err := e.Extract(gctx, c.Messages, feedback)
			if err != nil {
				return fmt.Errorf("extract: chunk %d/%d: %w", c.Index+1, total, err)
			}
			docs[c.Index] = doc

			mu.Lock()
			done++
			fraction := float64(done) / float64(total)
			stage := fmt.Sprintf("extracted chunk %d/%d", done, total)
			e.report(fraction, stage)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (e *Extractor) report(fraction float64, stage string) {
	if e.progress != nil {
		e.progress(fraction, stage)
	}
}
