package mcpserver

import (
	"context"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MrWong99/reqsift/internal/pipeline"
	"github.com/MrWong99/reqsift/internal/requirements"
	"github.com/MrWong99/reqsift/internal/transcript"
)

// ParseInput is the input schema for the parse_transcript tool.
type ParseInput struct {
	Content string `json:"content" jsonschema:"the raw transcript content to parse"`
	Format  string `json:"format,omitempty" jsonschema:"transcript format: text, vtt, or json (default text)"`
}

// ParsedMessage is one transcript message in the parse_transcript output.
type ParsedMessage struct {
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ParseOutput is the output schema for the parse_transcript tool.
type ParseOutput struct {
	Messages []ParsedMessage `json:"messages"`
	Count    int             `json:"count"`
}

// ExtractInput is the input schema for the extract_requirements tool.
type ExtractInput struct {
	Content   string `json:"content" jsonschema:"the raw transcript content to extract requirements from"`
	Format    string `json:"format,omitempty" jsonschema:"transcript format: text, vtt, or json (default text)"`
	Feedback  string `json:"feedback,omitempty" jsonschema:"corrections from a previous extraction round, applied to every chunk"`
	ChunkSize int    `json:"chunk_size,omitempty" jsonschema:"maximum messages per LLM call (default 50)"`
}

// ExtractOutput is the output schema for the extract_requirements tool.
type ExtractOutput struct {
	Document requirements.Document `json:"document"`
	Markdown string                `json:"markdown"`
	Counts   map[string]int        `json:"counts"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "parse_transcript",
		Description: "Parse a meeting transcript (plain text, WebVTT, or JSON) into an ordered list of speaker messages",
	}, s.handleParse)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_requirements",
		Description: "Extract a structured requirements document (requirements, business rules, action items, decisions, stakeholders) from a meeting transcript",
	}, s.handleExtract)
}

// parseFormat maps the wire format string onto a transcript.Format, falling
// back to plain text for unknown values.
func parseFormat(format string) transcript.Format {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "vtt":
		return transcript.FormatVTT
	case "json":
		return transcript.FormatJSON
	default:
		return transcript.FormatText
	}
}

// handleParse handles the parse_transcript tool invocation.
func (s *Server) handleParse(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ParseInput,
) (*mcp.CallToolResult, ParseOutput, error) {
	msgs, err := transcript.Parse(strings.NewReader(input.Content), parseFormat(input.Format))
	if err != nil {
		return nil, ParseOutput{}, err
	}

	output := ParseOutput{
		Messages: make([]ParsedMessage, len(msgs)),
		Count:    len(msgs),
	}
	for i, m := range msgs {
		output.Messages[i] = ParsedMessage{
			Speaker:   m.Speaker,
			Text:      m.Text,
			Timestamp: m.Timestamp,
		}
	}

	return nil, output, nil
}

// handleExtract handles the extract_requirements tool invocation.
func (s *Server) handleExtract(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractInput,
) (*mcp.CallToolResult, ExtractOutput, error) {
	msgs, err := transcript.Parse(strings.NewReader(input.Content), parseFormat(input.Format))
	if err != nil {
		return nil, ExtractOutput{}, err
	}

	cfg := s.cfg
	if input.ChunkSize > 0 {
		cfg.ChunkSize = input.ChunkSize
	}

	p, err := pipeline.New(s.provider, cfg)
	if err != nil {
		return nil, ExtractOutput{}, err
	}

	doc, err := p.Run(ctx, msgs, input.Feedback)
	if err != nil {
		return nil, ExtractOutput{}, err
	}

	return nil, ExtractOutput{
		Document: doc,
		Markdown: requirements.FormatMarkdown(doc, time.Now()),
		Counts:   doc.Counts(),
	}, nil
}
