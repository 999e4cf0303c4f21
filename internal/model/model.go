// Package model holds the data types that flow through the answer pipeline.
package model

import "time"

// SearchResult is a single ranked stub returned by the search gateway.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// ScrapedPage is the cleaned plain text of a fetched page.
type ScrapedPage struct {
	SourceURL string    `json:"source_url"`
	Text      string    `json:"text"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Empty reports whether the page carries no usable text.
func (p ScrapedPage) Empty() bool {
	return len(p.Text) == 0
}

// ScoredSection is a heading-delimited slice of a page with its relevance score.
type ScoredSection struct {
	Headings []string `json:"headings"`
	Text     string   `json:"text"`
	Score    float64  `json:"score"`
}

// ContextDocument is one source's contribution to the assembled context.
type ContextDocument struct {
	Source  string `json:"source"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
}

// SourceRef is the caller-facing reference to a cited page.
type SourceRef struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// ChatAnswer is the final composed answer.
type ChatAnswer struct {
	Text      string      `json:"text"`
	Sources   []SourceRef `json:"sources"`
	Confident bool        `json:"confident"`
}
