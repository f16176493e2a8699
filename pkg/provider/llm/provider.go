// Package llm defines the Provider interface for Large Language Model backends.
//
// An LLM provider wraps a remote API (e.g., OpenAI) or a local inference
// server (e.g., Ollama) and exposes a uniform single-shot generation
// interface. The requirements extractor depends only on this interface, never
// on a specific SDK, so cloud and local backends are interchangeable at
// configuration time.
//
// Implementations must be safe for concurrent use.
package llm

import "context"

// Usage holds token accounting information returned by the LLM backend.
// All counts are in the model's native token unit and may differ between
// providers for the same textual content. Providers that do not report usage
// leave the struct zeroed.
type Usage struct {
	// PromptTokens is the number of tokens consumed by the system prompt and
	// user prompt combined.
	PromptTokens int

	// CompletionTokens is the number of tokens generated in the response.
	CompletionTokens int

	// TotalTokens is PromptTokens + CompletionTokens. Some providers return it
	// directly rather than computing it from the parts.
	TotalTokens int
}

// Request carries everything the LLM needs to produce a response.
// Callers should treat a zero-value request as invalid; at minimum Prompt
// must be non-empty.
type Request struct {
	// SystemPrompt is a high-priority instruction injected before the user
	// prompt. Providers without a dedicated system channel must fold it into
	// the user prompt (system text first, blank line, then Prompt).
	SystemPrompt string

	// Prompt is the user-facing request text.
	Prompt string

	// Temperature controls output randomness in the range [0.0, 2.0]. Lower
	// values produce more deterministic outputs. A value of 0 means use the
	// provider default.
	Temperature float64

	// MaxTokens caps the number of completion tokens the model may generate.
	// Zero means use the provider default.
	MaxTokens int

	// JSONOnly asks the backend to constrain output to a single JSON object.
	// Providers with native JSON response modes (OpenAI response_format) must
	// enable them; providers without enforcement must append an instruction to
	// the prompt and leave any cleanup to the caller.
	JSONOnly bool
}

// Response is the full, non-streaming result of a generation call.
type Response struct {
	// Text is the complete text of the model's reply.
	Text string

	// Usage contains token accounting for this request/response pair.
	Usage Usage
}

// Provider is the abstraction over any LLM backend.
//
// Implementations must be safe for concurrent use from multiple goroutines
// and must propagate context cancellation promptly.
type Provider interface {
	// Generate sends req to the model and waits for the full response.
	// Returns an error if the request fails or ctx is cancelled before the
	// completion arrives. Errors should wrap the underlying SDK or transport
	// error so callers can classify the failure.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider sends requests to
	// (e.g., "gpt-4o-mini", "llama3.2"). Used for logging and metrics.
	ModelID() string
}
