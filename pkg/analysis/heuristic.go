package analysis

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zen-systems/serpcoach/pkg/serp"
)

// Length windows in characters. Short titles are pointed at
// TitleTargetLength..TitleMaxLength.
const (
	TitleMinLength    = 30
	TitleMaxLength    = 60
	TitleTargetLength = 50
	MetaMinLength     = 70
	MetaMaxLength     = 160
)

var (
	actionWords = []string{"learn", "discover", "find", "get", "try", "shop", "see", "start", "compare", "explore"}
	powerWords  = []string{"best", "top", "guide", "ultimate", "how to", "tips", "easy", "proven"}
	separators  = []string{" | ", " - ", ": ", " – "}
)

// Heuristic critiques text with fixed rules. It is pure: identical inputs always
// yield identical output, and it never fails.
type Heuristic struct{}

// NewHeuristic creates a Heuristic engine.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Analyze implements Engine.
func (h *Heuristic) Analyze(_ context.Context, input string, competitors []serp.Entry) (Analysis, error) {
	return Analyze(input, competitors), nil
}

// Analyze is the rule set behind Heuristic.
func Analyze(input string, competitors []serp.Entry) Analysis {
	text := strings.TrimSpace(input)
	return Analysis{
		FieldTitle: {
			Suggestions:       titleSuggestions(text, competitors),
			CompetitorInsight: titleInsight(text, competitors),
		},
		FieldMetaDescription: {
			Suggestions:       metaSuggestions(text, competitors),
			CompetitorInsight: metaInsight(competitors),
		},
	}
}

func titleSuggestions(text string, competitors []serp.Entry) []string {
	var out []string
	lower := strings.ToLower(text)
	n := utf8.RuneCountInString(text)

	switch {
	case n < TitleMinLength:
		out = append(out, fmt.Sprintf("Your title is short (%d characters). Aim for %d-%d characters to use the full width of a search result.", n, TitleTargetLength, TitleMaxLength))
	case n > TitleMaxLength:
		out = append(out, fmt.Sprintf("Your title runs %d characters; search engines usually truncate after about %d. Move the key phrase to the front or trim it.", n, TitleMaxLength))
	}

	if !hasDigit(text) && countTitles(competitors, hasDigit) > 0 {
		out = append(out, "Competitors use numbers in their titles. Consider a list count or a year to stand out.")
	}
	if !containsAny(lower, powerWords) {
		out = append(out, "Add a descriptive modifier such as \"guide\", \"tips\" or \"best\" that matches search intent.")
	}
	if !containsAny(text, separators) {
		out = append(out, "Consider appending your brand after a separator, for example \"... | Brand\".")
	}
	if first, _ := utf8.DecodeRuneInString(text); first != utf8.RuneError && unicode.IsLower(first) {
		out = append(out, "Capitalize the first word so the title reads cleanly in results.")
	}

	if len(out) == 0 {
		out = append(out, "The title length and structure look solid. Test a variant that leads with your primary keyword.")
	}
	return out
}

func metaSuggestions(text string, competitors []serp.Entry) []string {
	var out []string
	lower := strings.ToLower(text)
	n := utf8.RuneCountInString(text)

	switch {
	case n < MetaMinLength:
		out = append(out, fmt.Sprintf("As a meta description this is short (%d characters). Expand it toward 120-%d characters with a concrete benefit.", n, MetaMaxLength))
	case n > MetaMaxLength:
		out = append(out, fmt.Sprintf("At %d characters the description will be cut off after about %d. Put the key benefit first.", n, MetaMaxLength))
	}

	if !containsAnyWord(lower, actionWords) {
		out = append(out, "Add a call to action such as \"Learn how\" or \"Discover\" to invite the click.")
	}
	if !strings.ContainsAny(text, ".!?") {
		out = append(out, "Write it as a complete sentence; descriptions that end cleanly look more trustworthy.")
	}
	if len(competitors) > 0 && !strings.Contains(text, "?") && countTitles(competitors, isQuestion) > 0 {
		out = append(out, "Answer the question searchers are asking; at least one top result is framed as a question.")
	}

	if len(out) == 0 {
		out = append(out, "The description is well sized. Make sure it matches the page content so search engines keep it.")
	}
	return out
}

func titleInsight(text string, competitors []serp.Entry) string {
	if len(competitors) == 0 {
		return "No competitor data was available for comparison."
	}

	total := len(competitors)
	var notes []string
	if n := countTitles(competitors, hasDigit); n > 0 {
		notes = append(notes, fmt.Sprintf("%d of %d top results use numbers in the title", n, total))
	}
	if n := countTitles(competitors, isQuestion); n > 0 {
		notes = append(notes, fmt.Sprintf("%d of %d phrase the title as a question", n, total))
	}
	if topic, err := serp.Topic(text); err == nil {
		needle := strings.ToLower(topic)
		n := countTitles(competitors, func(s string) bool { return strings.Contains(strings.ToLower(s), needle) })
		if n > 0 {
			notes = append(notes, fmt.Sprintf("%d of %d include %q", n, total, topic))
		}
	}

	if len(notes) == 0 {
		return "Top results keep titles plain and descriptive, without numbers or questions."
	}
	return capitalize(strings.Join(notes, "; ")) + "."
}

func metaInsight(competitors []serp.Entry) string {
	if len(competitors) == 0 {
		return "No competitor data was available for comparison."
	}

	var total, withAction int
	for _, c := range competitors {
		total += utf8.RuneCountInString(c.MetaDescription)
		if startsWithAny(strings.ToLower(c.MetaDescription), actionWords) {
			withAction++
		}
	}
	avg := total / len(competitors)
	insight := fmt.Sprintf("Top results average %d characters in their meta descriptions", avg)
	if withAction > 0 {
		insight += fmt.Sprintf("; %d of %d open with an action verb", withAction, len(competitors))
	}
	return insight + "."
}

func countTitles(competitors []serp.Entry, match func(string) bool) int {
	n := 0
	for _, c := range competitors {
		if match(c.Title) {
			n++
		}
	}
	return n
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func isQuestion(s string) bool {
	if strings.Contains(s, "?") {
		return true
	}
	return startsWithAny(strings.ToLower(s), []string{"what ", "how ", "why ", "when ", "which ", "who "})
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func containsAnyWord(s string, words []string) bool {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, f := range fields {
		for _, w := range words {
			if f == w {
				return true
			}
		}
	}
	return false
}

func startsWithAny(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
