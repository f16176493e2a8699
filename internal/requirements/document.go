// Package requirements defines the structured requirements document the
// extraction pipeline produces, plus the merge, renumbering and formatting
// operations applied to it.
package requirements

// Requirement is one functional or non-functional requirement.
type Requirement struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Priority    string `json:"priority,omitempty"`
	Speaker     string `json:"speaker,omitempty"`
	Context     string `json:"context,omitempty"`
}

// BusinessRule is one business rule or constraint. Some models emit the rule
// text under "description", some under "rule"; both are accepted and Text
// resolves between them.
type BusinessRule struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Rule        string `json:"rule,omitempty"`
	Speaker     string `json:"speaker,omitempty"`
}

// Text returns the rule's text, preferring Description over Rule.
func (r BusinessRule) Text() string {
	if r.Description != "" {
		return r.Description
	}
	return r.Rule
}

// ActionItem is one assigned task.
type ActionItem struct {
	ID       string `json:"id"`
	Task     string `json:"task"`
	Owner    string `json:"owner,omitempty"`
	Deadline string `json:"deadline,omitempty"`
	Status   string `json:"status,omitempty"`
}

// Decision is one decision recorded during the meeting.
type Decision struct {
	ID            string `json:"id"`
	Decision      string `json:"decision"`
	Rationale     string `json:"rationale,omitempty"`
	DecisionMaker string `json:"decision_maker,omitempty"`
}

// Stakeholder is one person or party with an interest in the outcome.
// Stakeholders carry no numeric ID; they are keyed by name.
type Stakeholder struct {
	Name      string `json:"name"`
	Role      string `json:"role,omitempty"`
	Interests string `json:"interests,omitempty"`
}

// Document is a complete requirements document: the six category lists
// extracted from one transcript (or merged from several chunks of one).
// A Document is a value; operations on it return new values rather than
// mutating in place.
type Document struct {
	FunctionalRequirements    []Requirement  `json:"functional_requirements"`
	NonFunctionalRequirements []Requirement  `json:"non_functional_requirements"`
	BusinessRules             []BusinessRule `json:"business_rules"`
	ActionItems               []ActionItem   `json:"action_items"`
	Decisions                 []Decision     `json:"decisions"`
	Stakeholders              []Stakeholder  `json:"stakeholders"`
}

// Empty reports whether the document has no entries in any category.
func (d Document) Empty() bool {
	return len(d.FunctionalRequirements) == 0 &&
		len(d.NonFunctionalRequirements) == 0 &&
		len(d.BusinessRules) == 0 &&
		len(d.ActionItems) == 0 &&
		len(d.Decisions) == 0 &&
		len(d.Stakeholders) == 0
}

// Counts returns the number of entries per category, for logging and
// progress reporting.
func (d Document) Counts() map[string]int {
	return map[string]int{
		"functional_requirements":     len(d.FunctionalRequirements),
		"non_functional_requirements": len(d.NonFunctionalRequirements),
		"business_rules":              len(d.BusinessRules),
		"action_items":                len(d.ActionItems),
		"decisions":                   len(d.Decisions),
		"stakeholders":                len(d.Stakeholders),
	}
}
