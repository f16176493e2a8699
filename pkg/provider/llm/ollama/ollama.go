// Package ollama provides an LLM provider backed by a local Ollama server.
//
// Ollama (https://ollama.com) hosts local large language models. This package
// uses Ollama's native /api/generate endpoint with stream:false, so each
// Generate call performs exactly one blocking inference round trip.
//
// Ollama does not enforce structured output: when a request asks for JSON the
// provider appends a JSON-only instruction to the prompt, but the response
// may still interleave extraneous text. Callers are expected to run a
// best-effort JSON decode over the returned text.
//
// Only standard library packages are used — no additional dependencies are
// required beyond Go's net/http and encoding/json.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrWong99/reqsift/pkg/provider/llm"
)

// DefaultBaseURL is the default base URL for a locally running Ollama instance.
const DefaultBaseURL = "http://localhost:11434"

// jsonOnlyInstruction is appended to the prompt when the request asks for
// JSON output, since Ollama has no enforced response format.
const jsonOnlyInstruction = "IMPORTANT: Return ONLY valid JSON, no other text."

// Ensure Provider implements the llm.Provider interface at compile time.
var _ llm.Provider = (*Provider)(nil)

// Provider implements llm.Provider using a local Ollama server.
// Provider is safe for concurrent use.
type Provider struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// config holds optional configuration collected from functional options.
type config struct {
	timeout time.Duration
}

// Option is a functional option for Provider.
type Option func(*config)

// WithTimeout sets a per-request HTTP timeout on the underlying HTTP client.
// A zero or negative value means no timeout (the default). Local inference on
// large transcripts can take minutes, so prefer generous values.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New constructs a new Ollama Provider.
//
// baseURL is the base URL of the Ollama server (e.g., "http://localhost:11434").
// If empty, DefaultBaseURL is used. A trailing slash is stripped automatically.
//
// model is the Ollama model name to use for generation (e.g., "llama3.2").
// It must not be empty.
func New(baseURL string, model string, opts ...Option) (*Provider, error) {
	if model == "" {
		return nil, fmt.Errorf("ollama: model must not be empty")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	httpClient := &http.Client{}
	if cfg.timeout > 0 {
		httpClient.Timeout = cfg.timeout
	}

	return &Provider{
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
	}, nil
}

// generateRequest is the JSON request body sent to Ollama's /api/generate endpoint.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

// generateOptions holds the model runtime options for a generate request.
type generateOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// generateResponse is the JSON response body returned by /api/generate when
// stream is false.
type generateResponse struct {
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// Generate implements llm.Provider.
//
// Ollama's generate endpoint takes a single prompt string, so the system
// prompt (when present) is folded in front of the user prompt.
func (p *Provider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	prompt := req.Prompt
	if req.SystemPrompt != "" {
		prompt = req.SystemPrompt + "\n\n" + prompt
	}
	if req.JSONOnly {
		prompt += "\n\n" + jsonOnlyInstruction
	}

	body, err := json.Marshal(generateRequest{
		Model:  p.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ollama: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ollama: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama: http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Ollama reports problems like a missing model in the error body
		// (e.g. 404 with {"error":"model 'x' not found..."}), so keep it.
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ollama: unexpected status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(errBody)))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ollama: decode response: %w", err)
	}

	return &llm.Response{
		Text: result.Response,
		Usage: llm.Usage{
			PromptTokens:     result.PromptEvalCount,
			CompletionTokens: result.EvalCount,
			TotalTokens:      result.PromptEvalCount + result.EvalCount,
		},
	}, nil
}

// ModelID implements llm.Provider.
func (p *Provider) ModelID() string {
	return p.model
}

// tagsResponse is the JSON response body returned by Ollama's /api/tags endpoint.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// CheckModel probes the Ollama server and verifies that the configured model
// is present.
//
// Returns nil when the server is reachable and the model (matched on the name
// before any ":tag" suffix) is in the local model list. A reachable server
// without the model produces an error naming the available models, so the
// caller can suggest the right "ollama pull" command.
func (p *Provider) CheckModel(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("ollama: build tags request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: server unreachable at %s: %w", p.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: server unreachable at %s: status %d", p.baseURL, resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("ollama: decode tags response: %w", err)
	}

	want := baseModelName(p.model)
	available := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		name := baseModelName(m.Name)
		if name == want {
			return nil
		}
		available = append(available, name)
	}

	if len(available) == 0 {
		return fmt.Errorf("ollama: model %q not found and no models are pulled; run: ollama pull %s", p.model, p.model)
	}
	return fmt.Errorf("ollama: model %q not found; available models: %s; run: ollama pull %s",
		p.model, strings.Join(available, ", "), p.model)
}

// baseModelName strips the ":tag" suffix from an Ollama model name
// (e.g., "llama3.2:latest" → "llama3.2").
func baseModelName(name string) string {
	base, _, _ := strings.Cut(name, ":")
	return base
}
