package memory

import (
	"context"
	"fmt"
	"strings"

	"mcp-recall/internal/identity"
)

const (
	// DefaultPromptMaxLength bounds the context prompt when the caller
	// gives no limit.
	DefaultPromptMaxLength = 2000

	promptResultLimit = 3
	promptHeader      = "Relevant conversation history:\n\n"
)

// BuildContextPrompt assembles a prompt fragment from the top search
// results for message. Results are appended in rank order until the next
// block would exceed maxLength; the remainder is discarded. The returned
// string is never longer than maxLength, and any internal failure yields
// an empty string rather than an error.
func (s *Service) BuildContextPrompt(ctx context.Context, id identity.Identity, message, sessionID string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultPromptMaxLength
	}

	results := s.Search(ctx, id, message, sessionID, promptResultLimit)
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(promptHeader)
	wrote := false
	for _, result := range results {
		block := formatPromptBlock(&result)
		if b.Len()+len(block) > maxLength {
			break
		}
		b.WriteString(block)
		wrote = true
	}
	if !wrote {
		return ""
	}
	return b.String()
}

func formatPromptBlock(result *SearchResult) string {
	rec := &result.Record
	var b strings.Builder
	fmt.Fprintf(&b, "[session %s]\n", rec.SessionID)
	if rec.UserMessage != "" || rec.AssistantResponse != "" {
		fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", rec.UserMessage, rec.AssistantResponse)
	} else {
		// Vector hits rebuilt from metadata carry the raw document only.
		fmt.Fprintf(&b, "%s\n", result.Content)
	}
	if len(rec.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(rec.Tags, ", "))
	}
	b.WriteString("\n")
	return b.String()
}
