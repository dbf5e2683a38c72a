// Package summarize converts a URL into a structured article record with a
// ratio-bounded extractive summary and a fixed-size keyword set. Each call
// returns a fresh Result; no state is shared between calls.
package summarize

import (
	"context"
	"math"
	"strings"

	"newsdesk/pkg/extract"
	"newsdesk/pkg/httpclient"
	"newsdesk/pkg/textutil"
)

// Report describes one summarization outcome.
type Report struct {
	Summary        string  `json:"summary"`
	OriginalLength int     `json:"original_length"`
	SummaryLength  int     `json:"summary_length"`
	Shrinkage      float64 `json:"shrinkage"`
}

// Result is the full per-URL record handed to callers and to the
// ingestion pipeline.
type Result struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Text         string   `json:"text"`
	Language     string   `json:"language"`
	Domain       string   `json:"domain"`
	Type         string   `json:"type"`
	Authors      []string `json:"authors"`
	CanonicalURL string   `json:"canonical_url"`
	Summary      Report   `json:"summarization"`
	Keywords     []string `json:"keywords"`
}

// Summarizer fetches pages and derives summaries. Safe for concurrent use.
type Summarizer struct {
	client *httpclient.Client
}

// New builds a Summarizer around the given HTTP client.
func New(client *httpclient.Client) *Summarizer {
	return &Summarizer{client: client}
}

// Fetch retrieves url, extracts its fields, and computes the summary and
// keyword set according to cfg. Configuration errors surface as
// ErrInvalidConfig before any network activity; extraction failures
// propagate as extract.ErrFetchFailed.
func (s *Summarizer) Fetch(ctx context.Context, url string, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	page, err := extract.FromURL(ctx, s.client, url)
	if err != nil {
		return nil, err
	}

	return FromPage(page, cfg), nil
}

// FromPage derives the summary and keywords from an already-extracted
// page. cfg must be valid.
func FromPage(page *extract.Page, cfg Config) *Result {
	return &Result{
		Title:        page.Title,
		Description:  page.Description,
		Text:         page.Text,
		Language:     page.Language,
		Domain:       page.Domain,
		Type:         page.OGType,
		Authors:      page.Authors,
		CanonicalURL: page.CanonicalURL,
		Summary:      SummarizeText(joinNonEmpty(page.Description, page.Text), cfg),
		Keywords:     Keywords(joinNonEmpty(page.Title, page.Description, page.Text), cfg.NumKeywords),
	}
}

// SummarizeText applies the length-targeting policy: the ratio target is
// used directly when it falls inside [min, max] words, otherwise the
// summary is bounded to the nearer limit. An empty extraction result is
// retried once at exactly the minimum word count, then falls back to the
// source text verbatim.
func SummarizeText(text string, cfg Config) Report {
	original := textutil.WordCount(text)
	ranked := rankSentences(splitSentences(text))

	target := int(float64(original) * cfg.ResultRatio)
	budget := target
	switch {
	case target < cfg.MinWordCount:
		budget = cfg.MinWordCount
	case target > cfg.MaxWordCount:
		budget = cfg.MaxWordCount
	}

	summary := selectByBudget(ranked, budget)
	if summary == "" {
		summary = selectByBudget(ranked, cfg.MinWordCount)
	}
	if summary == "" {
		summary = text
	}

	summaryLen := textutil.WordCount(summary)
	var shrinkage float64
	if original > 0 {
		shrinkage = math.Round(float64(original-summaryLen)/float64(original)*100) / 100
	}

	return Report{
		Summary:        summary,
		OriginalLength: original,
		SummaryLength:  summaryLen,
		Shrinkage:      shrinkage,
	}
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	return strings.Join(kept, ". ")
}
