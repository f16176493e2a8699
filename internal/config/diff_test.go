package config_test

import (
	"testing"

	"github.com/MrWong99/reqsift/internal/config"
)

func TestDiff_NoChanges(t *testing.T) {
	a := &config.Config{}
	a.Server.LogLevel = config.LogInfo
	a.Pipeline.ChunkSize = 50
	b := &config.Config{}
	b.Server.LogLevel = config.LogInfo
	b.Pipeline.ChunkSize = 50

	d := config.Diff(a, b)
	if d.Any() {
		t.Errorf("expected no changes, got %+v", d)
	}
}

func TestDiff_LogLevel(t *testing.T) {
	a := &config.Config{}
	a.Server.LogLevel = config.LogInfo
	b := &config.Config{}
	b.Server.LogLevel = config.LogDebug

	d := config.Diff(a, b)
	if !d.LogLevelChanged || d.NewLogLevel != config.LogDebug {
		t.Errorf("log level change not detected: %+v", d)
	}
}

func TestDiff_Pipeline(t *testing.T) {
	a := &config.Config{}
	a.Pipeline.ChunkSize = 50
	b := &config.Config{}
	b.Pipeline.ChunkSize = 25
	b.Pipeline.Concurrency = 4

	d := config.Diff(a, b)
	if !d.PipelineChanged {
		t.Fatal("pipeline change not detected")
	}
	if d.NewPipeline.ChunkSize != 25 || d.NewPipeline.Concurrency != 4 {
		t.Errorf("NewPipeline: %+v", d.NewPipeline)
	}
}

func TestDiff_Providers(t *testing.T) {
	a := &config.Config{}
	a.Providers.LLM = config.ProviderEntry{Name: "ollama", Model: "llama3.2"}
	b := &config.Config{}
	b.Providers.LLM = config.ProviderEntry{Name: "ollama", Model: "mistral"}

	d := config.Diff(a, b)
	if !d.ProvidersChanged {
		t.Error("provider change not detected")
	}
}

func TestDiff_FallbackProviders(t *testing.T) {
	a := &config.Config{}
	b := &config.Config{}
	b.Providers.FallbackTranscriber = config.ProviderEntry{Name: "openai", APIKey: "sk-test"}

	if d := config.Diff(a, b); !d.ProvidersChanged {
		t.Error("fallback transcriber change not detected")
	}

	b.Providers.FallbackTranscriber = config.ProviderEntry{}
	b.Providers.FallbackLLM = config.ProviderEntry{Name: "openai", Model: "gpt-4o-mini"}
	if d := config.Diff(a, b); !d.ProvidersChanged {
		t.Error("fallback llm change not detected")
	}
}

func TestDiff_ProviderOptions(t *testing.T) {
	a := &config.Config{}
	a.Providers.Transcriber = config.ProviderEntry{
		Name:    "whisper",
		Options: map[string]any{"model_path": "/models/base.bin"},
	}
	b := &config.Config{}
	b.Providers.Transcriber = config.ProviderEntry{
		Name:    "whisper",
		Options: map[string]any{"model_path": "/models/large.bin"},
	}

	if d := config.Diff(a, b); !d.ProvidersChanged {
		t.Error("options change not detected")
	}

	b.Providers.Transcriber.Options["model_path"] = "/models/base.bin"
	if d := config.Diff(a, b); d.ProvidersChanged {
		t.Error("identical options reported as changed")
	}
}

func TestDiff_Normalizer(t *testing.T) {
	a := &config.Config{}
	b := &config.Config{}
	b.Normalizer.RulesFile = "rules.yaml"

	if d := config.Diff(a, b); !d.NormalizerChanged {
		t.Error("normalizer change not detected")
	}
}
