// Package analysis turns user text and a competitor sample into a per-field SEO critique.
package analysis

import (
	"context"
	"fmt"

	"github.com/zen-systems/serpcoach/pkg/serp"
)

// Field names a critiqued content field.
type Field string

const (
	FieldTitle           Field = "title"
	FieldMetaDescription Field = "metaDescription"
)

// Fields lists the recognized fields in display order.
var Fields = []Field{FieldTitle, FieldMetaDescription}

// FieldCritique holds the advice for one field.
type FieldCritique struct {
	Suggestions       []string `json:"suggestions"`
	CompetitorInsight string   `json:"competitorInsight"`
}

// Analysis maps each recognized field to its critique.
type Analysis map[Field]FieldCritique

// Engine produces an Analysis.
type Engine interface {
	Analyze(ctx context.Context, input string, competitors []serp.Entry) (Analysis, error)
}

// Validate checks that both recognized fields carry at least one suggestion.
func (a Analysis) Validate() error {
	for _, f := range Fields {
		c, ok := a[f]
		if !ok {
			return fmt.Errorf("analysis: missing %s critique", f)
		}
		if len(c.Suggestions) == 0 {
			return fmt.Errorf("analysis: %s critique has no suggestions", f)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (a Analysis) Clone() Analysis {
	if a == nil {
		return nil
	}
	out := make(Analysis, len(a))
	for f, c := range a {
		out[f] = FieldCritique{
			Suggestions:       append([]string(nil), c.Suggestions...),
			CompetitorInsight: c.CompetitorInsight,
		}
	}
	return out
}
