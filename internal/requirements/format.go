package requirements

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FormatJSON renders the document as indented JSON.
func FormatJSON(doc Document) (string, error) {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("requirements: marshal document: %w", err)
	}
	return string(b), nil
}

// FormatMarkdown renders the document as a Markdown report. Empty categories
// are omitted. now supplies the generation timestamp so output stays
// reproducible under test.
func FormatMarkdown(doc Document, now time.Time) string {
	var b strings.Builder

	b.WriteString("# Requirements Extracted from Meeting\n\n")
	fmt.Fprintf(&b, "*Generated on: %s*\n\n", now.Format("2006-01-02 15:04:05"))
	b.WriteString("---\n\n")

	writeRequirements(&b, "Functional Requirements", doc.FunctionalRequirements)
	writeRequirements(&b, "Non-Functional Requirements", doc.NonFunctionalRequirements)

	if len(doc.BusinessRules) > 0 {
		b.WriteString("## Business Rules\n\n")
		for _, r := range doc.BusinessRules {
			fmt.Fprintf(&b, "### %s\n\n", orDefault(r.ID, "N/A"))
			fmt.Fprintf(&b, "**Rule:** %s\n\n", orDefault(r.Text(), "N/A"))
			fmt.Fprintf(&b, "**Source:** %s\n\n", orDefault(r.Speaker, "Unknown"))
		}
	}

	if len(doc.ActionItems) > 0 {
		b.WriteString("## Action Items\n\n")
		b.WriteString("| ID | Task | Owner | Deadline | Status |\n")
		b.WriteString("|----|------|-------|----------|--------|\n")
		for _, item := range doc.ActionItems {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				orDefault(item.ID, "N/A"),
				orDefault(item.Task, "N/A"),
				orDefault(item.Owner, "TBD"),
				orDefault(item.Deadline, "TBD"),
				orDefault(item.Status, "Open"))
		}
		b.WriteString("\n")
	}

	if len(doc.Decisions) > 0 {
		b.WriteString("## Decisions\n\n")
		for _, d := range doc.Decisions {
			fmt.Fprintf(&b, "### %s\n\n", orDefault(d.ID, "N/A"))
			fmt.Fprintf(&b, "**Decision:** %s\n\n", orDefault(d.Decision, "N/A"))
			fmt.Fprintf(&b, "**Rationale:** %s\n\n", orDefault(d.Rationale, "N/A"))
			fmt.Fprintf(&b, "**Decision Maker:** %s\n\n", orDefault(d.DecisionMaker, "Unknown"))
		}
	}

	if len(doc.Stakeholders) > 0 {
		b.WriteString("## Stakeholders\n\n")
		for _, s := range doc.Stakeholders {
			fmt.Fprintf(&b, "### %s\n\n", orDefault(s.Name, "Unknown"))
			fmt.Fprintf(&b, "**Role:** %s\n\n", orDefault(s.Role, "N/A"))
			fmt.Fprintf(&b, "**Interests:** %s\n\n", orDefault(s.Interests, "N/A"))
		}
	}

	return b.String()
}

func writeRequirements(b *strings.Builder, heading string, reqs []Requirement) {
	if len(reqs) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", heading)
	for _, r := range reqs {
		fmt.Fprintf(b, "### %s\n\n", orDefault(r.ID, "N/A"))
		fmt.Fprintf(b, "**Description:** %s\n\n", orDefault(r.Description, "N/A"))
		fmt.Fprintf(b, "**Priority:** %s\n\n", orDefault(r.Priority, "Not specified"))
		fmt.Fprintf(b, "**Source:** %s\n\n", orDefault(r.Speaker, "Unknown"))
		if r.Context != "" {
			fmt.Fprintf(b, "**Context:** %s\n\n", r.Context)
		}
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
