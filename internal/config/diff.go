package config

import "reflect"

// ConfigDiff describes what changed between two configs. Pipeline and
// normalizer settings can be hot-reloaded; provider changes need a restart,
// so they are only flagged.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// PipelineChanged is true when any chunking or extraction tuning value
	// changed. The new values apply to the next extraction run.
	PipelineChanged bool
	NewPipeline     PipelineConfig

	// NormalizerChanged is true when the rules file path changed.
	NormalizerChanged bool

	// ProvidersChanged is true when an LLM or transcriber entry changed.
	// Running providers are not swapped; a restart is required.
	ProvidersChanged bool
}

// Any reports whether the diff contains any change at all.
func (d ConfigDiff) Any() bool {
	return d.LogLevelChanged || d.PipelineChanged || d.NormalizerChanged || d.ProvidersChanged
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Pipeline != new.Pipeline {
		d.PipelineChanged = true
		d.NewPipeline = new.Pipeline
	}

	if old.Normalizer != new.Normalizer {
		d.NormalizerChanged = true
	}

	if !equalProviderEntry(old.Providers.LLM, new.Providers.LLM) ||
		!equalProviderEntry(old.Providers.FallbackLLM, new.Providers.FallbackLLM) ||
		!equalProviderEntry(old.Providers.Transcriber, new.Providers.Transcriber) ||
		!equalProviderEntry(old.Providers.FallbackTranscriber, new.Providers.FallbackTranscriber) {
		d.ProvidersChanged = true
	}

	return d
}

// equalProviderEntry compares two provider entries including their free-form
// options maps.
func equalProviderEntry(a, b ProviderEntry) bool {
	if a.Name != b.Name || a.APIKey != b.APIKey || a.BaseURL != b.BaseURL || a.Model != b.Model {
		return false
	}
	// Options may nest maps and slices, so a deep comparison is needed.
	return reflect.DeepEqual(a.Options, b.Options)
}
