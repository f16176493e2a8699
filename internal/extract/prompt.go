package extract

import (
	"fmt"
	"strings"

	"github.com/MrWong99/reqsift/internal/transcript"
	"github.com/MrWong99/reqsift/internal/transcript/normalize"
)

// SystemPrompt frames the model as a business analyst and restates the
// terminology corrections the normalizer applies, so the model fixes
// transcription artifacts the regex rules missed.
const SystemPrompt = `You are an expert business analyst who extracts requirements from meeting discussions.
Extract functional requirements, non-functional requirements, business rules, action items, decisions and stakeholders. Return structured JSON.

IMPORTANT: Correct common transcription errors:
- "Pyo number" or "P.O. number" should be "PO number" (Purchase Order number)
- "sublatures" or "subletters" should be "suppliers"
- Always use standard business terminology in extracted requirements.`

const promptHeader = `Analyze the following meeting transcript and extract all requirements, decisions, and action items.`

const terminologyContext = `**IMPORTANT: Business Terminology Context**
- "PO number" or "P.O. number" refers to Purchase Order number
- "supplier" or "vendor" refers to external suppliers/vendors (NOT "sublatures", "subletters", or similar)
- Correct any speech-to-text transcription errors in business terms
- Recognize common business abbreviations: PO (Purchase Order), SOW (Statement of Work), RFP (Request for Proposal), etc.`

const extractionInstructions = `Please extract and structure the following information in JSON format:
1. **Functional Requirements**: Features, functionalities, and capabilities discussed
2. **Non-Functional Requirements**: Performance, security, usability, scalability requirements
3. **Business Rules**: Rules, constraints, and business logic mentioned (including PO numbers, supplier requirements, etc.)
4. **Action Items**: Tasks assigned with owners and deadlines if mentioned
5. **Decisions**: Key decisions made during the meeting
6. **Stakeholders**: People mentioned and their roles/interests (including suppliers, vendors, partners)

**Terminology Guidelines:**
- Always use "PO number" or "Purchase Order number" (never "Pyo number", "P.O.", etc.)
- Always use "supplier" or "vendor" (never "sublatures", "subletters", etc.)
- Correct common speech-to-text errors in business terminology
- Preserve exact numbers, codes, and identifiers mentioned

For each requirement, include:
- ID (auto-generated)
- Description (with corrected business terminology)
- Priority (if mentioned: High/Medium/Low)
- Source speaker
- Related discussion context

Return the result as a JSON object with the following structure:
{
  "functional_requirements": [
    {
      "id": "FR-001",
      "description": "...",
      "priority": "High/Medium/Low",
      "speaker": "...",
      "context": "..."
    }
  ],
  "non_functional_requirements": [...],
  "business_rules": [
    {
      "id": "BR-001",
      "description": "...",
      "speaker": "..."
    }
  ],
  "action_items": [
    {
      "id": "AI-001",
      "task": "...",
      "owner": "...",
      "deadline": "...",
      "status": "Open"
    }
  ],
  "decisions": [
    {
      "id": "D-001",
      "decision": "...",
      "rationale": "...",
      "decision_maker": "..."
    }
  ],
  "stakeholders": [
    {
      "name": "...",
      "role": "...",
      "interests": "..."
    }
  ]
}`

// BuildPrompt assembles the full extraction prompt for one conversation.
// The feedback block, when non-blank, is inserted verbatim with an
// instruction to apply it.
func BuildPrompt(conversation, feedback string) string {
	var b strings.Builder
	b.WriteString(promptHeader)

	if strings.TrimSpace(feedback) != "" {
		b.WriteString("\n\n**USER FEEDBACK AND CORRECTIONS:**\n")
		b.WriteString(feedback)
		b.WriteString("\n\nPlease incorporate this feedback into your extraction:\n")
		b.WriteString("- Apply any corrections mentioned in the feedback\n")
		b.WriteString("- Focus on areas highlighted in the feedback\n")
		b.WriteString("- Adjust extraction based on user guidance")
	}

	b.WriteString("\n\n")
	b.WriteString(terminologyContext)
	b.WriteString("\n\nMeeting Transcript:\n")
	b.WriteString(conversation)
	b.WriteString("\n\n")
	b.WriteString(extractionInstructions)
	return b.String()
}

// FormatConversation renders messages as one conversation string, one line
// per message, with each text value cleaned by the normalizer. Timestamps
// are prefixed in brackets when present.
func FormatConversation(msgs []transcript.Message, n *normalize.Normalizer) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		speaker := m.Speaker
		if speaker == "" {
			speaker = transcript.UnknownSpeaker
		}
		text := n.Clean(m.Text)
		if m.Timestamp != "" {
			lines = append(lines, fmt.Sprintf("[%s] %s: %s", m.Timestamp, speaker, text))
		} else {
			lines = append(lines, fmt.Sprintf("%s: %s", speaker, text))
		}
	}
	return strings.Join(lines, "\n")
}
