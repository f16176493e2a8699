package requirements

import "fmt"

// Renumber returns a copy of doc with category IDs reassigned sequentially
// in document order: FR-001.., NFR-001.., BR-001.., AI-001.., D-001...
// Chunk-level extractions each number from 001, so a merged document can
// carry duplicate IDs across entries; renumbering restores uniqueness
// without changing entry order or content.
//
// The copy always carries non-nil category slices, so empty categories
// marshal as [] rather than null.
func Renumber(doc Document) Document {
	out := doc

	out.FunctionalRequirements = make([]Requirement, len(doc.FunctionalRequirements))
	copy(out.FunctionalRequirements, doc.FunctionalRequirements)
	for i := range out.FunctionalRequirements {
		out.FunctionalRequirements[i].ID = fmt.Sprintf("FR-%03d", i+1)
	}

	out.NonFunctionalRequirements = make([]Requirement, len(doc.NonFunctionalRequirements))
	copy(out.NonFunctionalRequirements, doc.NonFunctionalRequirements)
	for i := range out.NonFunctionalRequirements {
		out.NonFunctionalRequirements[i].ID = fmt.Sprintf("NFR-%03d", i+1)
	}

	out.BusinessRules = make([]BusinessRule, len(doc.BusinessRules))
	copy(out.BusinessRules, doc.BusinessRules)
	for i := range out.BusinessRules {
		out.BusinessRules[i].ID = fmt.Sprintf("BR-%03d", i+1)
	}

	out.ActionItems = make([]ActionItem, len(doc.ActionItems))
	copy(out.ActionItems, doc.ActionItems)
	for i := range out.ActionItems {
		out.ActionItems[i].ID = fmt.Sprintf("AI-%03d", i+1)
	}

	out.Decisions = make([]Decision, len(doc.Decisions))
	copy(out.Decisions, doc.Decisions)
	for i := range out.Decisions {
		out.Decisions[i].ID = fmt.Sprintf("D-%03d", i+1)
	}

	// Stakeholders carry no numeric ID but are copied the same way so the
	// whole document is safe to mutate and JSON-stable.
	out.Stakeholders = make([]Stakeholder, len(doc.Stakeholders))
	copy(out.Stakeholders, doc.Stakeholders)

	return out
}
