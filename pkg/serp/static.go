package serp

import (
	"fmt"
	"net/url"
	"strings"
)

// SampleSize is the number of entries a StaticSampler returns.
const SampleSize = 3

const defaultBaseURL = "https://example.com"

type template struct {
	title string
	meta  string
	path  string
}

// Rank order follows slice order.
var templates = []template{
	{
		title: "Top 10 %s Tips for Beginners",
		meta:  "Discover the top 10 %s tips experts use every day. Practical advice, real examples and quick wins you can apply today.",
		path:  "/blog/%s-tips",
	},
	{
		title: "The Ultimate Guide to %s",
		meta:  "Everything you need to know about %s in one place: definitions, comparisons and step-by-step instructions.",
		path:  "/guides/%s",
	},
	{
		title: "What Is %s? Everything You Need to Know",
		meta:  "Wondering what %s really means? We answer the most common questions and explain how to get started.",
		path:  "/learn/what-is-%s",
	},
}

// StaticSampler synthesizes a deterministic competitor sample for a topic.
// It stands in for a live SERP lookup.
type StaticSampler struct {
	baseURL string
}

// StaticOption configures a StaticSampler.
type StaticOption func(*StaticSampler)

// WithBaseURL sets the host used for synthesized source URLs.
func WithBaseURL(base string) StaticOption {
	return func(s *StaticSampler) {
		s.baseURL = strings.TrimRight(base, "/")
	}
}

// NewStaticSampler creates a StaticSampler.
func NewStaticSampler(opts ...StaticOption) *StaticSampler {
	s := &StaticSampler{baseURL: defaultBaseURL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample returns SampleSize entries ranked 1..SampleSize. Titles contain the topic verbatim.
func (s *StaticSampler) Sample(topic string) ([]Entry, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}

	slug := url.PathEscape(strings.ToLower(topic))
	entries := make([]Entry, 0, SampleSize)
	for i, tpl := range templates[:SampleSize] {
		entries = append(entries, Entry{
			Title:           fmt.Sprintf(tpl.title, topic),
			MetaDescription: fmt.Sprintf(tpl.meta, topic),
			SourceURL:       s.baseURL + fmt.Sprintf(tpl.path, slug),
			Rank:            i + 1,
		})
	}
	return entries, nil
}
