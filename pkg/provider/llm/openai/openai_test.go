package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrWong99/reqsift/pkg/provider/llm"
	"github.com/MrWong99/reqsift/pkg/provider/llm/openai"
)

// mockCompletionsServer starts a test HTTP server that handles
// /chat/completions requests and returns the canned response text. The last
// received request body is stored in got for post-call inspection.
func mockCompletionsServer(t *testing.T, responseText string, got *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: got %q, want /chat/completions", r.URL.Path)
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		body := map[string]any{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if got != nil {
			*got = body
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"model":   body["model"],
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": responseText,
					},
				},
			},
			"usage": map[string]any{
				"prompt_tokens":     12,
				"completion_tokens": 34,
				"total_tokens":      46,
			},
		}); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
}

// TestNew_MissingArguments verifies that an empty API key or model name is
// rejected at construction time.
func TestNew_MissingArguments(t *testing.T) {
	if _, err := openai.New("", "gpt-4o-mini"); err == nil {
		t.Error("expected error for empty apiKey, got nil")
	}
	if _, err := openai.New("sk-test", ""); err == nil {
		t.Error("expected error for empty model, got nil")
	}
}

// TestGenerate_RequestShape verifies the request body: model name, the system
// and user messages in order, temperature, and the token cap.
func TestGenerate_RequestShape(t *testing.T) {
	var got map[string]any
	srv := mockCompletionsServer(t, "ok", &got)
	defer srv.Close()

	p, err := openai.New("sk-test", "gpt-4o-mini", openai.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.ModelID() != "gpt-4o-mini" {
		t.Errorf("ModelID(): got %q, want %q", p.ModelID(), "gpt-4o-mini")
	}

	resp, err := p.Generate(context.Background(), llm.Request{
		SystemPrompt: "You are an analyst.",
		Prompt:       "Extract requirements.",
		Temperature:  0.3,
		MaxTokens:    512,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Text != "ok" {
		t.Errorf("Text: got %q, want %q", resp.Text, "ok")
	}

	if got["model"] != "gpt-4o-mini" {
		t.Errorf("model: got %v, want gpt-4o-mini", got["model"])
	}
	if got["temperature"] != 0.3 {
		t.Errorf("temperature: got %v, want 0.3", got["temperature"])
	}
	if got["max_completion_tokens"] != float64(512) {
		t.Errorf("max_completion_tokens: got %v, want 512", got["max_completion_tokens"])
	}

	msgs, ok := got["messages"].([]any)
	if !ok || len(msgs) != 2 {
		t.Fatalf("messages: got %v, want 2 entries", got["messages"])
	}
	first, _ := msgs[0].(map[string]any)
	if first["role"] != "system" || first["content"] != "You are an analyst." {
		t.Errorf("first message: got %v, want system prompt", first)
	}
	second, _ := msgs[1].(map[string]any)
	if second["role"] != "user" || second["content"] != "Extract requirements." {
		t.Errorf("second message: got %v, want user prompt", second)
	}
}

// TestGenerate_JSONOnlySetsResponseFormat verifies that JSON-only requests
// carry the json_object response format, which the API enforces server-side.
func TestGenerate_JSONOnlySetsResponseFormat(t *testing.T) {
	var got map[string]any
	srv := mockCompletionsServer(t, "{}", &got)
	defer srv.Close()

	p, err := openai.New("sk-test", "gpt-4o-mini", openai.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := p.Generate(context.Background(), llm.Request{Prompt: "hi", JSONOnly: true}); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	rf, ok := got["response_format"].(map[string]any)
	if !ok {
		t.Fatalf("response_format missing or wrong type: %v", got["response_format"])
	}
	if rf["type"] != "json_object" {
		t.Errorf("response_format.type: got %v, want json_object", rf["type"])
	}
}

// TestGenerate_Usage verifies token accounting is mapped from the usage block.
func TestGenerate_Usage(t *testing.T) {
	srv := mockCompletionsServer(t, "ok", nil)
	defer srv.Close()

	p, err := openai.New("sk-test", "gpt-4o-mini", openai.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := p.Generate(context.Background(), llm.Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Usage.PromptTokens != 12 || resp.Usage.CompletionTokens != 34 || resp.Usage.TotalTokens != 46 {
		t.Errorf("Usage: got %+v, want {12 34 46}", resp.Usage)
	}
}

// TestGenerate_EmptyChoices verifies that a response with no choices surfaces
// as an error instead of an empty text.
func TestGenerate_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"choices": []any{},
		})
	}))
	defer srv.Close()

	p, err := openai.New("sk-test", "gpt-4o-mini", openai.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Generate(context.Background(), llm.Request{Prompt: "hi"}); err == nil {
		t.Fatal("expected error for empty choices, got nil")
	}
}
