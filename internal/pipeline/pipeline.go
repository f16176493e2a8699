// Package pipeline wires the extraction stages together: chunk planning,
// per-chunk LLM extraction, cross-chunk merging, and sequential renumbering.
// It is the single entry point used by both the CLI and the MCP server.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrWong99/reqsift/internal/chunk"
	"github.com/MrWong99/reqsift/internal/extract"
	"github.com/MrWong99/reqsift/internal/observe"
	"github.com/MrWong99/reqsift/internal/requirements"
	"github.com/MrWong99/reqsift/internal/transcript"
	"github.com/MrWong99/reqsift/internal/transcript/normalize"
	"github.com/MrWong99/reqsift/pkg/provider/llm"
)

// Config holds the tunable knobs for a pipeline run. Zero values fall back to
// the defaults of the underlying stages.
type Config struct {
	// ChunkSize is the maximum number of messages per extraction chunk.
	// Default: [chunk.DefaultSize].
	ChunkSize int

	// Concurrency is the number of chunks extracted in parallel. Values <= 1
	// extract sequentially.
	Concurrency int

	// Temperature overrides the extraction sampling temperature when > 0.
	Temperature float64

	// MaxTokens caps completion tokens per chunk when > 0.
	MaxTokens int
}

// Option configures a [Pipeline].
type Option func(*Pipeline)

// WithNormalizer replaces the default transcription-error normalizer.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(p *Pipeline) { p.norm = n }
}

// WithMetrics sets the metrics instance used to record run telemetry.
// Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithProgress registers a progress callback forwarded to the extractor.
func WithProgress(fn extract.Progress) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// WithLogger sets the logger. Default: [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// Pipeline runs the full transcript-to-document extraction flow.
type Pipeline struct {
	provider llm.Provider
	cfg      Config
	norm     *normalize.Normalizer
	metrics  *observe.Metrics
	progress extract.Progress
	logger   *slog.Logger
}

// New creates a [Pipeline] backed by the given LLM provider.
func New(provider llm.Provider, cfg Config, opts ...Option) (*Pipeline, error) {
	if provider == nil {
		return nil, fmt.Errorf("pipeline: provider must not be nil")
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = chunk.DefaultSize
	}
	p := &Pipeline{
		provider: provider,
		cfg:      cfg,
		norm:     normalize.Default(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = observe.DefaultMetrics()
	}
	return p, nil
}

// Run extracts a requirements document from the given messages. feedback is
// an optional block of user corrections included in every chunk prompt; pass
// the empty string on a first run.
//
// The returned document is merged across chunks, deduplicated, and
// renumbered sequentially per category.
func (p *Pipeline) Run(ctx context.Context, msgs []transcript.Message, feedback string) (requirements.Document, error) {
	start := time.Now()
	ctx, span := observe.StartSpan(ctx, "pipeline.Run")
	defer span.End()

	p.metrics.ActiveExtractions.Add(ctx, 1)
	defer p.metrics.ActiveExtractions.Add(ctx, -1)

	chunks, err := chunk.Plan(msgs, p.cfg.ChunkSize)
	if err != nil {
		return requirements.Document{}, fmt.Errorf("pipeline: plan chunks: %w", err)
	}
	if len(chunks) == 0 {
		return requirements.Document{}, nil
	}

	opts := []extract.Option{
		extract.WithNormalizer(p.norm),
		extract.WithConcurrency(p.cfg.Concurrency),
		extract.WithLogger(p.logger),
	}
	if p.cfg.Temperature > 0 {
		opts = append(opts, extract.WithTemperature(p.cfg.Temperature))
	}
	if p.cfg.MaxTokens > 0 {
		opts = append(opts, extract.WithMaxTokens(p.cfg.MaxTokens))
	}
	if p.progress != nil {
		opts = append(opts, extract.WithProgress(p.progress))
	}

	ex, err := extract.New(p.provider, opts...)
	if err != nil {
		return requirements.Document{}, err
	}

	docs, err := ex.ExtractChunks(ctx, chunks, feedback)
	if err != nil {
		p.metrics.RecordChunk(ctx, "error")
		return requirements.Document{}, err
	}
	for range docs {
		p.metrics.RecordChunk(ctx, "ok")
	}

	doc := requirements.Renumber(requirements.Merge(docs))

	for category, count := range doc.Counts() {
		p.metrics.RecordItems(ctx, category, count)
	}
	elapsed := time.Since(start)
	p.metrics.ExtractionDuration.Record(ctx, elapsed.Seconds())
	p.logger.Info("extraction complete",
		"messages", len(msgs),
		"chunks", len(chunks),
		"model", p.provider.ModelID(),
		"duration", elapsed)

	return doc, nil
}
