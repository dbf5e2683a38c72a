package summarize

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig marks caller-supplied configuration outside the legal
// range. It is returned synchronously and never silently clamped.
var ErrInvalidConfig = errors.New("invalid summarizer config")

// Config carries the per-request summarization knobs. The zero value is
// not usable; start from DefaultConfig.
type Config struct {
	// NumKeywords is how many ranked keywords to return.
	NumKeywords int
	// ResultRatio is the target summary length as a fraction of the
	// source length. Must lie strictly between 0 and 1.
	ResultRatio float64
	// MinWordCount and MaxWordCount bound the summary length when the
	// ratio target falls outside them.
	MinWordCount int
	MaxWordCount int
}

// DefaultConfig returns the documented defaults: 5 keywords, 0.2 ratio,
// 50..150 word summary bounds.
func DefaultConfig() Config {
	return Config{
		NumKeywords:  5,
		ResultRatio:  0.2,
		MinWordCount: 50,
		MaxWordCount: 150,
	}
}

// Validate checks the config once at the boundary.
func (c Config) Validate() error {
	if c.ResultRatio <= 0 || c.ResultRatio >= 1 {
		return fmt.Errorf("%w: result ratio %g must be strictly between 0 and 1", ErrInvalidConfig, c.ResultRatio)
	}
	if c.MinWordCount > c.MaxWordCount {
		return fmt.Errorf("%w: minimum word count %d exceeds maximum %d", ErrInvalidConfig, c.MinWordCount, c.MaxWordCount)
	}
	return nil
}
