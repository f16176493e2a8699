package requirements

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// DefaultSimilarityThreshold is the Jaro-Winkler score above which two
// descriptions are flagged as near-duplicates.
const DefaultSimilarityThreshold = 0.92

// SimilarPair is one advisory near-duplicate finding: two entries whose
// descriptions differ but score above the similarity threshold.
type SimilarPair struct {
	Category string  `json:"category"`
	FirstID  string  `json:"first_id"`
	SecondID string  `json:"second_id"`
	First    string  `json:"first"`
	Second   string  `json:"second"`
	Score    float64 `json:"score"`
}

// SimilarityReport lists near-duplicate descriptions that survived the merge
// because dedup is exact-match only. The report is advisory: nothing is
// removed, the user decides. Comparison is case-insensitive Jaro-Winkler;
// threshold 0 means DefaultSimilarityThreshold.
func SimilarityReport(doc Document, threshold float64) []SimilarPair {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	type entry struct {
		id, text string
	}
	collect := func(category string, entries []entry) []SimilarPair {
		var pairs []SimilarPair
		for i := 0; i < len(entries); i++ {
			for j := i + 1; j < len(entries); j++ {
				a, b := entries[i], entries[j]
				if a.text == "" || b.text == "" || a.text == b.text {
					continue
				}
				score := matchr.JaroWinkler(strings.ToLower(a.text), strings.ToLower(b.text), false)
				if score >= threshold {
					pairs = append(pairs, SimilarPair{
						Category: category,
						FirstID:  a.id,
						SecondID: b.id,
						First:    a.text,
						Second:   b.text,
						Score:    score,
					})
				}
			}
		}
		return pairs
	}

	var report []SimilarPair

	frs := make([]entry, len(doc.FunctionalRequirements))
	for i, r := range doc.FunctionalRequirements {
		frs[i] = entry{r.ID, r.Description}
	}
	report = append(report, collect("functional_requirements", frs)...)

	nfrs := make([]entry, len(doc.NonFunctionalRequirements))
	for i, r := range doc.NonFunctionalRequirements {
		nfrs[i] = entry{r.ID, r.Description}
	}
	report = append(report, collect("non_functional_requirements", nfrs)...)

	rules := make([]entry, len(doc.BusinessRules))
	for i, r := range doc.BusinessRules {
		rules[i] = entry{r.ID, r.Text()}
	}
	report = append(report, collect("business_rules", rules)...)

	return report
}
