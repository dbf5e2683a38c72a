package domain

import "time"

// Article is the persisted unit of ingested news content.
type Article struct {
	Identifier  int64     `json:"identifier"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Authors     string    `json:"authors"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	Text        string    `json:"text,omitempty"`
	PublishTime time.Time `json:"publish_time"`
	SiteName    string    `json:"site_name"`
	Domain      string    `json:"domain"`
	Images      string    `json:"images"`
	Summary     string    `json:"summary,omitempty"`
	Keywords    []string  `json:"keywords,omitempty"`
	Views       int       `json:"views"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// Headline is a candidate article returned by an upstream headline source
// before enrichment.
type Headline struct {
	URL         string
	Title       string
	Description string
	Author      string
	ImageURL    string
	SourceName  string
	PublishedAt string
}
