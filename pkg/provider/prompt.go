package provider

import (
	"fmt"
	"strings"

	"github.com/zen-systems/serpcoach/pkg/serp"
)

// SystemPrompt instructs a model to answer with the critique JSON shape.
const SystemPrompt = `You are an SEO copy reviewer. Critique the user's text as both a page title and a meta description, comparing it against the competitor results provided.

Return ONLY a JSON object, no markdown or explanation. Format:
{
  "title": {"suggestions": ["..."], "competitorInsight": "..."},
  "metaDescription": {"suggestions": ["..."], "competitorInsight": "..."}
}`

// BuildPrompt renders the user text and competitor sample into a single prompt.
func BuildPrompt(input string, competitors []serp.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Text to review: %s\n", strings.TrimSpace(input))
	if len(competitors) > 0 {
		b.WriteString("\nTop competitor results:\n")
		for _, c := range competitors {
			fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n", c.Rank, c.Title, c.MetaDescription, c.SourceURL)
		}
	}
	return b.String()
}

// singlePrompt merges the system instruction into the prompt for single-prompt backends.
func singlePrompt(input string, competitors []serp.Entry) string {
	return SystemPrompt + "\n\n" + BuildPrompt(input, competitors)
}
