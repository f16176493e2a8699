// Command reqsift extracts structured requirements documents from meeting
// transcripts using an LLM backend. It reads a transcript (plain text, WebVTT,
// or JSON export) or a WAV recording, runs chunked extraction, and renders the
// merged document as Markdown or JSON. It can also serve the pipeline over the
// Model Context Protocol.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrWong99/reqsift/internal/config"
	"github.com/MrWong99/reqsift/internal/feedback"
	"github.com/MrWong99/reqsift/internal/health"
	"github.com/MrWong99/reqsift/internal/mcpserver"
	"github.com/MrWong99/reqsift/internal/observe"
	"github.com/MrWong99/reqsift/internal/pipeline"
	"github.com/MrWong99/reqsift/internal/requirements"
	"github.com/MrWong99/reqsift/internal/resilience"
	"github.com/MrWong99/reqsift/internal/transcript"
	"github.com/MrWong99/reqsift/internal/transcript/normalize"
	"github.com/MrWong99/reqsift/pkg/provider/llm"
	"github.com/MrWong99/reqsift/pkg/provider/llm/anyllm"
	ollamallm "github.com/MrWong99/reqsift/pkg/provider/llm/ollama"
	oaillm "github.com/MrWong99/reqsift/pkg/provider/llm/openai"
	"github.com/MrWong99/reqsift/pkg/provider/stt"
	oaistt "github.com/MrWong99/reqsift/pkg/provider/stt/openai"
	"github.com/MrWong99/reqsift/pkg/provider/stt/whisper"
)

func main() {
	os.Exit(run())
}

// logLevel is mutable at runtime so the config watcher can hot-reload it.
var logLevel = new(slog.LevelVar)

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	inputPath := flag.String("input", "", "transcript file (.txt/.vtt/.json) or WAV recording to process")
	format := flag.String("format", "auto", "input format: auto, text, vtt, or json")
	outputPath := flag.String("output", "", "write the document to this file instead of stdout")
	asJSON := flag.Bool("json", false, "emit the document as JSON instead of Markdown")
	feedbackText := flag.String("feedback", "", "corrections from a previous run, applied to every chunk")
	interactive := flag.Bool("interactive", false, "review the document and provide feedback in a loop")
	feedbackStore := flag.String("feedback-store", "", "JSONL file persisting feedback between runs")
	serve := flag.Bool("serve", false, "run as an HTTP server (MCP, health, metrics)")
	mcpStdio := flag.Bool("mcp", false, "serve MCP over stdio")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reqsift: %v\n", err)
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logLevel.Set(slogLevel(cfg.Server.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	provider, err := buildLLM(cfg, reg)
	if err != nil {
		slog.Error("failed to build LLM provider", "err", err)
		return 1
	}

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipeCfg := pipeline.Config{
		ChunkSize:   cfg.Pipeline.ChunkSize,
		Concurrency: cfg.Pipeline.Concurrency,
		Temperature: cfg.Pipeline.Temperature,
		MaxTokens:   cfg.Pipeline.MaxTokens,
	}

	switch {
	case *serve:
		return runServe(ctx, cfg, *configPath, provider, pipeCfg)
	case *mcpStdio:
		return runMCPStdio(ctx, provider, pipeCfg)
	default:
		if *inputPath == "" {
			fmt.Fprintln(os.Stderr, "reqsift: -input is required (or use -serve / -mcp)")
			flag.Usage()
			return 2
		}
		opts := cliOptions{
			input:         *inputPath,
			format:        *format,
			output:        *outputPath,
			asJSON:        *asJSON,
			feedback:      *feedbackText,
			interactive:   *interactive,
			feedbackStore: *feedbackStore,
		}
		return runExtract(ctx, cfg, reg, provider, pipeCfg, opts)
	}
}

// loadConfig loads the config file. A missing file at the default path is
// treated as an all-defaults config; an explicitly broken file is an error.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return &config.Config{}, nil
	}
	return nil, err
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in provider factories into reg.
// Each factory receives a config.ProviderEntry and constructs the appropriate
// provider from the real implementation packages.
func registerBuiltinProviders(reg *config.Registry) {
	// ── LLM ───────────────────────────────────────────────────────────────────

	// openai uses the official SDK for native JSON response mode support.
	reg.RegisterLLM("openai", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []oaillm.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaillm.WithBaseURL(entry.BaseURL))
		}
		return oaillm.New(entry.APIKey, entry.Model, opts...)
	})

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterLLM("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		return ollamallm.New(entry.BaseURL, entry.Model)
	})

	// The remaining backends all share the any-llm pattern:
	// optional APIKey + optional BaseURL.
	for _, providerName := range []string{
		"anthropic", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile",
	} {
		reg.RegisterLLM(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ── Transcribers ──────────────────────────────────────────────────────────

	reg.RegisterTranscriber("whisper", func(entry config.ProviderEntry) (stt.Provider, error) {
		modelPath := entry.Model
		if modelPath == "" {
			modelPath = optString(entry.Options, "model_path")
		}
		var opts []whisper.Option
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		return whisper.New(modelPath, opts...)
	})

	reg.RegisterTranscriber("openai", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []oaistt.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaistt.WithBaseURL(entry.BaseURL))
		}
		if entry.Model != "" {
			opts = append(opts, oaistt.WithModel(entry.Model))
		}
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, oaistt.WithLanguage(lang))
		}
		return oaistt.New(entry.APIKey, opts...)
	})
}

// buildLLM creates the configured LLM provider, wrapping it in a failover
// group when a fallback backend is configured.
func buildLLM(cfg *config.Config, reg *config.Registry) (llm.Provider, error) {
	if cfg.Providers.LLM.Name == "" {
		return nil, errors.New("no LLM provider configured (providers.llm.name)")
	}
	primary, err := reg.CreateLLM(cfg.Providers.LLM)
	if err != nil {
		return nil, fmt.Errorf("create llm provider %q: %w", cfg.Providers.LLM.Name, err)
	}
	slog.Info("provider created", "kind", "llm", "name", cfg.Providers.LLM.Name, "model", primary.ModelID())

	if cfg.Providers.FallbackLLM.Name == "" {
		return primary, nil
	}

	secondary, err := reg.CreateLLM(cfg.Providers.FallbackLLM)
	if err != nil {
		return nil, fmt.Errorf("create fallback llm provider %q: %w", cfg.Providers.FallbackLLM.Name, err)
	}
	fb := resilience.NewLLMFallback(primary, cfg.Providers.LLM.Name, resilience.FallbackConfig{})
	fb.AddFallback(cfg.Providers.FallbackLLM.Name, secondary)
	slog.Info("provider created", "kind", "llm", "name", cfg.Providers.FallbackLLM.Name, "role", "fallback")
	return fb, nil
}

// buildTranscriber creates the configured speech-to-text provider, wrapping
// it in a failover group when a fallback backend is configured.
func buildTranscriber(cfg *config.Config, reg *config.Registry) (stt.Provider, error) {
	if cfg.Providers.Transcriber.Name == "" {
		return nil, errors.New("audio input requires a transcriber (providers.transcriber.name)")
	}
	primary, err := reg.CreateTranscriber(cfg.Providers.Transcriber)
	if err != nil {
		return nil, fmt.Errorf("create transcriber %q: %w", cfg.Providers.Transcriber.Name, err)
	}
	slog.Info("provider created", "kind", "transcriber", "name", cfg.Providers.Transcriber.Name)

	if cfg.Providers.FallbackTranscriber.Name == "" {
		return primary, nil
	}

	secondary, err := reg.CreateTranscriber(cfg.Providers.FallbackTranscriber)
	if err != nil {
		return nil, fmt.Errorf("create fallback transcriber %q: %w", cfg.Providers.FallbackTranscriber.Name, err)
	}
	fb := resilience.NewTranscriberFallback(primary, cfg.Providers.Transcriber.Name, resilience.FallbackConfig{})
	fb.AddFallback(cfg.Providers.FallbackTranscriber.Name, secondary)
	slog.Info("provider created", "kind", "transcriber", "name", cfg.Providers.FallbackTranscriber.Name, "role", "fallback")
	return fb, nil
}

// ── Extraction mode ───────────────────────────────────────────────────────────

type cliOptions struct {
	input         string
	format        string
	output        string
	asJSON        bool
	feedback      string
	interactive   bool
	feedbackStore string
}

func runExtract(ctx context.Context, cfg *config.Config, reg *config.Registry, provider llm.Provider, pipeCfg pipeline.Config, opts cliOptions) int {
	msgs, err := loadMessages(ctx, cfg, reg, opts.input, opts.format)
	if err != nil {
		slog.Error("failed to load input", "path", opts.input, "err", err)
		return 1
	}
	if len(msgs) == 0 {
		slog.Warn("transcript contains no messages", "path", opts.input)
	}

	norm, err := buildNormalizer(cfg)
	if err != nil {
		slog.Error("failed to load normalizer rules", "err", err)
		return 1
	}

	progress := func(fraction float64, stage string) {
		fmt.Fprintf(os.Stderr, "\r%3.0f%% %-40s", fraction*100, stage)
		if fraction >= 1 {
			fmt.Fprintln(os.Stderr)
		}
	}

	p, err := pipeline.New(provider, pipeCfg,
		pipeline.WithNormalizer(norm),
		pipeline.WithProgress(progress),
	)
	if err != nil {
		slog.Error("failed to build pipeline", "err", err)
		return 1
	}

	var store *feedback.FileStore
	if opts.feedbackStore != "" {
		store = feedback.NewFileStore(opts.feedbackStore)
	}

	fb, err := collectFeedback(store, opts.input, opts.feedback)
	if err != nil {
		slog.Error("failed to read feedback history", "err", err)
		return 1
	}

	doc, err := p.Run(ctx, msgs, fb)
	if err != nil {
		slog.Error("extraction failed", "err", err)
		return 1
	}

	if opts.interactive {
		doc, err = refineLoop(ctx, p, store, opts.input, msgs, fb, doc)
		if err != nil {
			slog.Error("extraction failed", "err", err)
			return 1
		}
	}

	reportSimilar(doc)

	rendered, err := render(doc, opts.asJSON)
	if err != nil {
		slog.Error("failed to render document", "err", err)
		return 1
	}
	if err := writeOutput(opts.output, rendered); err != nil {
		slog.Error("failed to write output", "err", err)
		return 1
	}
	return 0
}

// loadMessages reads the input file and converts it into the canonical
// message sequence, transcribing first when the input is a WAV recording.
func loadMessages(ctx context.Context, cfg *config.Config, reg *config.Registry, path, format string) ([]transcript.Message, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		transcriber, err := buildTranscriber(cfg, reg)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		start := time.Now()
		tr, err := transcriber.Transcribe(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("transcribe: %w", err)
		}
		observe.DefaultMetrics().TranscribeDuration.Record(ctx, time.Since(start).Seconds())
		return transcript.FromTranscription(tr), nil
	}

	if format == "" || format == "auto" {
		return transcript.ParseFile(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return transcript.Parse(f, transcript.Format(strings.ToLower(format)))
}

// buildNormalizer returns the default corrections, extended with the rules
// file from the config when one is set.
func buildNormalizer(cfg *config.Config) (*normalize.Normalizer, error) {
	if cfg.Normalizer.RulesFile == "" {
		return normalize.Default(), nil
	}
	return normalize.LoadRuleFile(cfg.Normalizer.RulesFile)
}

// collectFeedback merges persisted feedback history with feedback given on
// the command line, and records the new feedback in the store.
func collectFeedback(store *feedback.FileStore, input, current string) (string, error) {
	if store == nil {
		return current, nil
	}
	if err := store.Append(input, current); err != nil {
		return "", err
	}
	return store.Combined(input)
}

// refineLoop shows the document and asks for corrections until the user
// accepts the result with an empty line.
func refineLoop(ctx context.Context, p *pipeline.Pipeline, store *feedback.FileStore, input string, msgs []transcript.Message, fb string, doc requirements.Document) (requirements.Document, error) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Println(requirements.FormatMarkdown(doc, time.Now()))
		fmt.Print("Feedback (empty line to accept): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			// EOF on stdin ends the loop with the current document.
			return doc, nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return doc, nil
		}

		if store != nil {
			if err := store.Append(input, line); err != nil {
				slog.Warn("failed to persist feedback", "err", err)
			}
		}
		if fb == "" {
			fb = line
		} else {
			fb = fb + "\n" + line
		}

		doc, err = p.Run(ctx, msgs, fb)
		if err != nil {
			return requirements.Document{}, err
		}
	}
}

// reportSimilar logs near-duplicate requirement pairs that survived exact
// deduplication, so the user can review them.
func reportSimilar(doc requirements.Document) {
	for _, pair := range requirements.SimilarityReport(doc, requirements.DefaultSimilarityThreshold) {
		slog.Warn("similar entries detected",
			"category", pair.Category,
			"first", pair.FirstID,
			"second", pair.SecondID,
			"score", fmt.Sprintf("%.2f", pair.Score),
		)
	}
}

func render(doc requirements.Document, asJSON bool) (string, error) {
	if asJSON {
		return requirements.FormatJSON(doc)
	}
	return requirements.FormatMarkdown(doc, time.Now()), nil
}

func writeOutput(path, content string) error {
	if path == "" {
		fmt.Println(content)
		return nil
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// ── Server modes ──────────────────────────────────────────────────────────────

func runMCPStdio(ctx context.Context, provider llm.Provider, pipeCfg pipeline.Config) int {
	srv, err := mcpserver.NewServer(provider, pipeCfg)
	if err != nil {
		slog.Error("failed to create MCP server", "err", err)
		return 1
	}
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("mcp server error", "err", err)
		return 1
	}
	return 0
}

func runServe(ctx context.Context, cfg *config.Config, configPath string, provider llm.Provider, pipeCfg pipeline.Config) int {
	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "reqsift",
		ServiceVersion: mcpserver.Version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		sdCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdown(sdCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	srv, err := mcpserver.NewServer(provider, pipeCfg)
	if err != nil {
		slog.Error("failed to create MCP server", "err", err)
		return 1
	}

	mux := http.NewServeMux()
	healthHandler := health.New(llmChecker(cfg, provider)...)
	healthHandler.Register(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/mcp", srv.Handler())

	// Hot-reload the log level and warn about changes needing a restart.
	watcher, err := config.NewWatcher(configPath, func(old, new *config.Config) {
		d := config.Diff(old, new)
		if d.LogLevelChanged {
			logLevel.Set(slogLevel(d.NewLogLevel))
			slog.Info("log level updated", "level", d.NewLogLevel)
		}
		if d.ProvidersChanged {
			slog.Warn("provider configuration changed; restart required to apply")
		}
	})
	if err != nil {
		slog.Debug("config watcher not started", "err", err)
	} else {
		defer watcher.Stop()
	}

	addr := cfg.Server.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           observe.Middleware(metrics)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		sdCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(sdCtx); err != nil {
			slog.Warn("http shutdown error", "err", err)
		}
	}()

	slog.Info("server ready", "addr", addr)
	if cfg.Server.TLS != nil {
		err = httpServer.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile)
	} else {
		err = httpServer.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// llmChecker builds the readiness checkers for the configured LLM backend.
func llmChecker(cfg *config.Config, provider llm.Provider) []health.Checker {
	var checkers []health.Checker

	// Ollama exposes a model check against its local API.
	if p, ok := provider.(*ollamallm.Provider); ok {
		checkers = append(checkers, health.Checker{
			Name:  "llm",
			Check: p.CheckModel,
		})
		return checkers
	}

	if url := cfg.Providers.LLM.BaseURL; url != "" {
		checkers = append(checkers, health.PingURL("llm", url))
	}
	return checkers
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// optString extracts a string value from a provider Options map[string]any.
// Returns "" if the map is nil, the key is absent, or the value is not a string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	v, ok := opts[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
