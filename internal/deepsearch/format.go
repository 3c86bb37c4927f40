package deepsearch

import (
	"fmt"
	"strings"
)

// NoResultsMessage is returned by FormatResultsForPrompt for an empty result
// list. Downstream agent prompts depend on this exact sentinel.
const NoResultsMessage = "No relevant knowledge base results found."

// FormatResultsForPrompt renders ranked results into the plain-text block
// handed to the model. The shape is a wire contract: one numbered entry per
// result showing source, jurisdiction and relevance percentage, followed by
// the content and a separator line.
func FormatResultsForPrompt(results []Result) string {
	if len(results) == 0 {
		return NoResultsMessage
	}

	var b strings.Builder
	b.WriteString("## Knowledge Base Results\n\n")
	for i, r := range results {
		source := r.Metadata.Source
		if source == "" {
			source = "Unknown"
		}
		jurisdiction := r.Metadata.Jurisdiction
		if jurisdiction == "" {
			jurisdiction = "N/A"
		}
		fmt.Fprintf(&b, "[%d] %s (%s) - Relevance: %.1f%%\n", i+1, source, jurisdiction, r.Metadata.Similarity*100)
		b.WriteString(r.Content)
		b.WriteString("\n---\n")
	}
	return b.String()
}
