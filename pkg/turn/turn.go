// Package turn packages conversation messages as plain, render-free values.
package turn

import (
	"time"

	"github.com/google/uuid"
	"github.com/zen-systems/serpcoach/pkg/analysis"
	"github.com/zen-systems/serpcoach/pkg/serp"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Bundle is the assistant payload: a critique plus the sample it was based on.
type Bundle struct {
	Analysis    analysis.Analysis `json:"analysis"`
	Competitors []serp.Entry      `json:"competitors"`
}

// Turn is one immutable message in the conversation log. User turns carry Text,
// assistant turns carry Bundle.
type Turn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text,omitempty"`
	Bundle    *Bundle   `json:"bundle,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// WrapUserInput creates a user turn holding text as typed.
func WrapUserInput(text string) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

// Assemble creates an assistant turn. The inputs are copied, never retained.
func Assemble(a analysis.Analysis, competitors []serp.Entry) Turn {
	return Turn{
		ID:   uuid.NewString(),
		Role: RoleAssistant,
		Bundle: &Bundle{
			Analysis:    a.Clone(),
			Competitors: serp.Clone(competitors),
		},
		CreatedAt: time.Now().UTC(),
	}
}

// WithProvider returns a copy of t attributed to the given provider id.
func (t Turn) WithProvider(id string) Turn {
	out := t.Clone()
	out.Provider = id
	return out
}

// Clone returns a deep copy of t.
func (t Turn) Clone() Turn {
	out := t
	if t.Bundle != nil {
		out.Bundle = &Bundle{
			Analysis:    t.Bundle.Analysis.Clone(),
			Competitors: serp.Clone(t.Bundle.Competitors),
		}
	}
	return out
}

// CloneAll deep-copies a turn log.
func CloneAll(turns []Turn) []Turn {
	out := make([]Turn, len(turns))
	for i, t := range turns {
		out[i] = t.Clone()
	}
	return out
}
