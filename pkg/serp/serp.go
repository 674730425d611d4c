// Package serp produces competitor samples used as comparison data for a critique.
package serp

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrEmptyTopic is returned when no usable topic token can be derived.
var ErrEmptyTopic = errors.New("serp: empty topic")

// Entry is one ranked competitor result.
type Entry struct {
	Title           string `json:"title"`
	MetaDescription string `json:"meta_description"`
	SourceURL       string `json:"source_url"`
	Rank            int    `json:"rank"`
}

// Sampler returns an ordered competitor sample for a topic.
type Sampler interface {
	Sample(topic string) ([]Entry, error)
}

// Topic derives the sampling topic from raw input: the first whitespace-delimited
// token with surrounding punctuation removed.
func Topic(input string) (string, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return "", ErrEmptyTopic
	}
	topic := strings.TrimFunc(fields[0], func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if topic == "" {
		return "", ErrEmptyTopic
	}
	return topic, nil
}

// ValidateSample checks that ranks run 1..k in sequence order with k >= 1.
func ValidateSample(entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("serp: sample is empty")
	}
	for i, e := range entries {
		if e.Rank != i+1 {
			return fmt.Errorf("serp: entry %d has rank %d, want %d", i, e.Rank, i+1)
		}
	}
	return nil
}

// Clone returns a copy of the sample.
func Clone(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
