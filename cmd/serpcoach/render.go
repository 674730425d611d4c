package main

import (
	"fmt"
	"io"

	"github.com/zen-systems/serpcoach/pkg/analysis"
	"github.com/zen-systems/serpcoach/pkg/turn"
)

var fieldLabels = map[analysis.Field]string{
	analysis.FieldTitle:           "Title",
	analysis.FieldMetaDescription: "Meta description",
}

func renderLog(w io.Writer, turns []turn.Turn) {
	for _, t := range turns {
		renderTurn(w, t)
	}
}

func renderTurn(w io.Writer, t turn.Turn) {
	switch t.Role {
	case turn.RoleUser:
		fmt.Fprintf(w, "you: %s\n\n", t.Text)
	case turn.RoleAssistant:
		if t.Bundle == nil {
			return
		}
		for _, f := range analysis.Fields {
			c, ok := t.Bundle.Analysis[f]
			if !ok {
				continue
			}
			fmt.Fprintf(w, "%s\n", fieldLabels[f])
			for _, s := range c.Suggestions {
				fmt.Fprintf(w, "  - %s\n", s)
			}
			if c.CompetitorInsight != "" {
				fmt.Fprintf(w, "  Competitors: %s\n", c.CompetitorInsight)
			}
			fmt.Fprintln(w)
		}
		if len(t.Bundle.Competitors) > 0 {
			fmt.Fprintln(w, "Top results")
			for _, e := range t.Bundle.Competitors {
				fmt.Fprintf(w, "  %d. %s\n     %s\n     %s\n", e.Rank, e.Title, e.SourceURL, e.MetaDescription)
			}
			fmt.Fprintln(w)
		}
	}
}
