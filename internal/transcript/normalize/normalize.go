// Package normalize fixes recurring transcription errors in transcript text
// before it reaches the extraction prompt.
//
// A Normalizer applies an ordered list of regex rules to each message's text.
// Rules are applied in declaration order so that more specific corrections
// (e.g. "Pyo number" -> "PO number") run before broader ones (e.g. bare
// "P.O." -> "PO"). Only the text changes; speakers and timestamps pass
// through untouched.
package normalize

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/MrWong99/reqsift/internal/transcript"
)

// Rule is one compiled correction: every match of Pattern is replaced with
// Replacement. Replacement may reference capture groups ($1, $2, ...).
type Rule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// Normalizer applies an ordered rule list to transcript text.
type Normalizer struct {
	rules []Rule
}

// New builds a Normalizer from the given rules, applied in order.
func New(rules []Rule) *Normalizer {
	return &Normalizer{rules: rules}
}

// Default returns a Normalizer with the built-in business-terminology rules.
// The corrections target errors speech-to-text engines make on domain jargon:
// purchase-order references, supplier names, and spelled-out abbreviations.
func Default() *Normalizer {
	return New(defaultRules())
}

// defaultRules compiles the built-in correction list. Order matters: the
// "Pyo number" forms must be fixed before the bare "P.O." abbreviation rule,
// or the abbreviation rule would leave "PO Pyo" style artifacts behind.
func defaultRules() []Rule {
	mk := func(pattern, replacement string) Rule {
		return Rule{Pattern: regexp.MustCompile(pattern), Replacement: replacement}
	}
	return []Rule{
		// Purchase-order references. The replacement preserves the original
		// casing of "number" via the capture group.
		mk(`(?i)\b(?:pyo|p\.o\.)\s+(number)\b`, "PO $1"),
		// "Pyo" directly followed by a number word was handled above; a
		// remaining standalone "Pyo" in a PO context is still the same word.
		mk(`(?i)\bpyo\b`, "PO"),

		// Supplier mis-transcriptions, singular and plural, case-preserved
		// for the common capitalizations.
		mk(`\bsublatures\b`, "suppliers"),
		mk(`\bsublature\b`, "supplier"),
		mk(`\bSublatures\b`, "Suppliers"),
		mk(`\bSublature\b`, "Supplier"),
		mk(`(?i)\bsubletters\b`, "suppliers"),
		mk(`(?i)\bsubletter\b`, "supplier"),

		// Spelled-out abbreviations.
		mk(`(?i)\bS\.O\.W\.`, "SOW"),
		mk(`(?i)\bR\.F\.P\.`, "RFP"),
		mk(`(?i)\bP\.O\.`, "PO"),

		// Plain misspellings.
		mk(`(?i)\bforcasting\b`, "forecasting"),
		mk(`(?i)\bforcast\b`, "forecast"),
	}
}

// Clean applies all rules to text, in order, and returns the result.
func (n *Normalizer) Clean(text string) string {
	for _, r := range n.rules {
		text = r.Pattern.ReplaceAllString(text, r.Replacement)
	}
	return text
}

// Messages returns a copy of msgs with every message's text cleaned.
// The input slice is not modified.
func (n *Normalizer) Messages(msgs []transcript.Message) []transcript.Message {
	if len(msgs) == 0 {
		return msgs
	}
	out := make([]transcript.Message, len(msgs))
	copy(out, msgs)
	for i := range out {
		out[i].Text = n.Clean(out[i].Text)
	}
	return out
}

// RuleFile is the top-level structure of a normalizer rule YAML file.
//
// Example:
//
//	rules:
//	  - pattern: '(?i)\bteh\b'
//	    replacement: "the"
//	  - pattern: '\bACME Corp\b'
//	    replacement: "Acme Corporation"
type RuleFile struct {
	Rules []RuleDefinition `yaml:"rules"`
}

// RuleDefinition is one uncompiled rule as written in a YAML rule file.
type RuleDefinition struct {
	// Pattern is a Go regular expression. Add "(?i)" for case-insensitive
	// matching; it is not implied.
	Pattern string `yaml:"pattern"`

	// Replacement is the substitution text, with $1-style group references.
	Replacement string `yaml:"replacement"`
}

// LoadRuleFile reads and compiles a rule YAML file from disk. The file's
// rules are appended after the built-in defaults, so custom corrections see
// text the defaults have already cleaned.
func LoadRuleFile(path string) (*Normalizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("normalize: open rule file %q: %w", path, err)
	}
	defer f.Close()

	n, err := LoadRulesFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("normalize: parse rule file %q: %w", path, err)
	}
	return n, nil
}

// LoadRulesFromReader parses and compiles rule YAML from an [io.Reader].
// The reader is consumed entirely; the caller is responsible for closing it.
func LoadRulesFromReader(r io.Reader) (*Normalizer, error) {
	var rf RuleFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true) // reject unknown keys to catch typos
	if err := dec.Decode(&rf); err != nil {
		return nil, fmt.Errorf("normalize: decode rule yaml: %w", err)
	}

	rules := defaultRules()
	for i, def := range rf.Rules {
		re, err := regexp.Compile(def.Pattern)
		if err != nil {
			return nil, fmt.Errorf("normalize: rule %d: compile pattern %q: %w", i, def.Pattern, err)
		}
		rules = append(rules, Rule{Pattern: re, Replacement: def.Replacement})
	}
	return New(rules), nil
}
