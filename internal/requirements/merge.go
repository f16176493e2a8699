package requirements

// Merge combines per-chunk documents into one, in chunk order.
//
// The three description-keyed categories (functional requirements,
// non-functional requirements, business rules) are concatenated and then
// deduplicated by exact description text: only the first occurrence of each
// distinct description survives, and the "seen" set is shared across all
// three categories, so a business rule restating an earlier functional
// requirement verbatim is dropped too. Entries with an empty description are
// always kept.
//
// Action items and decisions are concatenated without deduplication.
//
// Stakeholders merge by exact name: the first chunk to mention a name creates
// the entry; later mentions only fill in a role or interests the entry does
// not have yet. Existing values are never overwritten.
//
// Dedup is exact string match only — rephrased duplicates pass through.
// Merging a single document still deduplicates it.
func Merge(docs []Document) Document {
	var merged Document
	for _, d := range docs {
		merged.FunctionalRequirements = append(merged.FunctionalRequirements, d.FunctionalRequirements...)
		merged.NonFunctionalRequirements = append(merged.NonFunctionalRequirements, d.NonFunctionalRequirements...)
		merged.BusinessRules = append(merged.BusinessRules, d.BusinessRules...)
		merged.ActionItems = append(merged.ActionItems, d.ActionItems...)
		merged.Decisions = append(merged.Decisions, d.Decisions...)
		merged.Stakeholders = append(merged.Stakeholders, d.Stakeholders...)
	}

	seen := make(map[string]bool)
	keep := func(desc string) bool {
		if desc == "" {
			return true
		}
		if seen[desc] {
			return false
		}
		seen[desc] = true
		return true
	}

	merged.FunctionalRequirements = dedupRequirements(merged.FunctionalRequirements, keep)
	merged.NonFunctionalRequirements = dedupRequirements(merged.NonFunctionalRequirements, keep)
	merged.BusinessRules = dedupRules(merged.BusinessRules, keep)
	merged.Stakeholders = mergeStakeholders(merged.Stakeholders)

	return merged
}

func dedupRequirements(reqs []Requirement, keep func(string) bool) []Requirement {
	if len(reqs) == 0 {
		return reqs
	}
	out := reqs[:0]
	for _, r := range reqs {
		if keep(r.Description) {
			out = append(out, r)
		}
	}
	return out
}

func dedupRules(rules []BusinessRule, keep func(string) bool) []BusinessRule {
	if len(rules) == 0 {
		return rules
	}
	out := rules[:0]
	for _, r := range rules {
		if keep(r.Text()) {
			out = append(out, r)
		}
	}
	return out
}

// mergeStakeholders collapses duplicate names, preserving first-mention order
// and filling empty fields from later mentions.
func mergeStakeholders(in []Stakeholder) []Stakeholder {
	if len(in) == 0 {
		return in
	}
	index := make(map[string]int, len(in))
	out := make([]Stakeholder, 0, len(in))
	for _, s := range in {
		i, ok := index[s.Name]
		if !ok {
			index[s.Name] = len(out)
			out = append(out, s)
			continue
		}
		if out[i].Role == "" && s.Role != "" {
			out[i].Role = s.Role
		}
		if out[i].Interests == "" && s.Interests != "" {
			out[i].Interests = s.Interests
		}
	}
	return out
}
