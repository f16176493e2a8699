package extract

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Sentinel errors for the extraction failure taxonomy. Backend errors are
// classified heuristically from the provider's error text, since cloud SDKs
// and local servers report failures as opaque strings.
var (
	// ErrBackendUnavailable means the local LLM server is unreachable or
	// does not have the configured model.
	ErrBackendUnavailable = errors.New("extract: backend unavailable")

	// ErrAuthentication means the cloud backend rejected the API key.
	ErrAuthentication = errors.New("extract: authentication failed")

	// ErrQuotaExceeded means the cloud backend reported a quota, billing or
	// rate limit problem.
	ErrQuotaExceeded = errors.New("extract: quota exceeded")

	// ErrNetwork means the request never completed due to a connectivity
	// failure.
	ErrNetwork = errors.New("extract: network error")
)

// ResponseParseError means the backend answered but its response was not the
// expected JSON document. Raw carries the response text for diagnostics.
type ResponseParseError struct {
	Raw string
	Err error
}

// Error implements the error interface. The raw text is truncated on a rune
// boundary so a log line stays readable and stays valid UTF-8.
func (e *ResponseParseError) Error() string {
	raw := e.Raw
	if len(raw) > 500 {
		cut := 500
		for cut > 0 && !utf8.RuneStart(raw[cut]) {
			cut--
		}
		raw = raw[:cut]
	}
	return fmt.Sprintf("extract: parse response: %v\n\nresponse was: %s", e.Err, raw)
}

// Unwrap returns the underlying cause.
func (e *ResponseParseError) Unwrap() error {
	return e.Err
}

// Classify maps a provider error onto the failure taxonomy by inspecting its
// text for known substrings. Errors that already carry a taxonomy sentinel
// pass through unchanged; unrecognized errors are returned as-is.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{ErrBackendUnavailable, ErrAuthentication, ErrQuotaExceeded, ErrNetwork} {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	msg := strings.ToLower(err.Error())
	contains := func(subs ...string) bool {
		for _, s := range subs {
			if strings.Contains(msg, s) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("invalid api key", "incorrect api key", "invalid_api_key", "authentication", "401"):
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	case contains("insufficient_quota", "quota", "billing", "rate_limit", "rate limit", "429"):
		return fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
	case contains("ollama") && contains("connection refused", "no such host", "timeout", "unreachable", "not found"):
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	case contains("connection", "network", "timeout", "no such host"):
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	default:
		return err
	}
}
