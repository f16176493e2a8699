// Package config provides the configuration schema, loader, and provider
// registry for the reqsift extraction pipeline.
package config

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for reqsift.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Providers  ProvidersConfig  `yaml:"providers"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Normalizer NormalizerConfig `yaml:"normalizer"`
}

// ServerConfig holds network and logging settings for serve mode.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// TLS configures TLS for the server. When nil, the server runs plain HTTP.
	TLS *TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate paths for enabling HTTPS.
type TLSConfig struct {
	// CertFile is the path to the PEM-encoded TLS certificate.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded TLS private key.
	KeyFile string `yaml:"key_file"`
}

// ProvidersConfig declares which provider implementation to use for each
// backend. Each field selects a named provider registered in the [Registry].
type ProvidersConfig struct {
	// LLM is the language model backend performing the extraction.
	LLM ProviderEntry `yaml:"llm"`

	// FallbackLLM is an optional secondary LLM backend tried when the primary
	// fails or its circuit breaker is open.
	FallbackLLM ProviderEntry `yaml:"fallback_llm"`

	// Transcriber is the optional speech-to-text backend for audio input.
	Transcriber ProviderEntry `yaml:"transcriber"`

	// FallbackTranscriber is an optional secondary speech-to-text backend
	// tried when the primary fails or its circuit breaker is open.
	FallbackTranscriber ProviderEntry `yaml:"fallback_transcriber"`
}

// ProviderEntry is the common configuration block shared by all provider
// types. The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "openai", "ollama").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "gpt-4o-mini", "llama3.2").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by the
	// standard fields above. Values may be strings, numbers, booleans, or nested maps.
	Options map[string]any `yaml:"options"`
}

// PipelineConfig tunes the extraction pipeline.
type PipelineConfig struct {
	// ChunkSize is the maximum number of transcript messages per extraction
	// call. Zero means the default of 50.
	ChunkSize int `yaml:"chunk_size"`

	// Concurrency bounds how many chunks may be extracted in parallel.
	// Zero or one keeps extraction sequential.
	Concurrency int `yaml:"concurrency"`

	// Temperature overrides the sampling temperature for extraction calls.
	// Zero means the default of 0.3.
	Temperature float64 `yaml:"temperature"`

	// MaxTokens caps the completion length per call. Zero means the
	// provider default.
	MaxTokens int `yaml:"max_tokens"`
}

// NormalizerConfig configures the transcription-error corrections applied
// before prompting.
type NormalizerConfig struct {
	// RulesFile is the path to a YAML file with additional correction rules,
	// applied after the built-in defaults. Empty means defaults only.
	RulesFile string `yaml:"rules_file"`
}
