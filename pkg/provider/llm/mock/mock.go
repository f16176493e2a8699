// Package mock provides a test double for the llm.Provider interface.
//
// Use Provider in unit tests to verify that the extractor sends correct
// Requests and to feed controlled responses without a live LLM backend.
// All fields are safe to set before calling any method; mutating them during
// a concurrent call is the caller's responsibility.
//
// Example:
//
//	p := &mock.Provider{
//	    Response: &llm.Response{Text: `{"functional_requirements": []}`},
//	}
//	resp, err := p.Generate(ctx, req)
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/reqsift/pkg/provider/llm"
)

// GenerateCall records a single invocation of Generate.
type GenerateCall struct {
	// Ctx is the context passed to Generate.
	Ctx context.Context
	// Req is the Request passed to Generate.
	Req llm.Request
}

// Compile-time interface check.
var _ llm.Provider = (*Provider)(nil)

// Provider is a mock implementation of llm.Provider.
// Zero values for response fields cause Generate to return a zero Response
// and nil error. Set Err to inject a failure.
type Provider struct {
	mu sync.Mutex

	// --- Configurable responses ---

	// Response is returned by Generate. When nil, an empty Response is returned.
	Response *llm.Response

	// Responses, when non-empty, is consumed one entry per Generate call
	// (in order). It takes precedence over Response and allows per-chunk
	// scripting in multi-chunk tests. After the slice is exhausted the last
	// entry is repeated.
	Responses []*llm.Response

	// Err, if non-nil, is returned as the error from Generate.
	Err error

	// GenerateFn, if non-nil, replaces the canned-response behaviour
	// entirely. The call is still recorded in Calls.
	GenerateFn func(ctx context.Context, req llm.Request) (*llm.Response, error)

	// Model is returned by ModelID. Defaults to "mock" when empty.
	Model string

	// --- Call records (read after test) ---

	// Calls records every invocation of Generate in order.
	Calls []GenerateCall
}

// Generate implements llm.Provider.
func (p *Provider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, GenerateCall{Ctx: ctx, Req: req})
	n := len(p.Calls)
	p.mu.Unlock()

	if p.GenerateFn != nil {
		return p.GenerateFn(ctx, req)
	}
	if p.Err != nil {
		return nil, p.Err
	}
	if len(p.Responses) > 0 {
		idx := n - 1
		if idx >= len(p.Responses) {
			idx = len(p.Responses) - 1
		}
		return p.Responses[idx], nil
	}
	if p.Response != nil {
		return p.Response, nil
	}
	return &llm.Response{}, nil
}

// ModelID implements llm.Provider.
func (p *Provider) ModelID() string {
	if p.Model == "" {
		return "mock"
	}
	return p.Model
}

// CallCount returns the number of Generate invocations so far.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}
