package summarize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"newsdesk/pkg/extract"
	"newsdesk/pkg/httpclient"
	"newsdesk/pkg/textutil"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "ratio just inside", mutate: func(c *Config) { c.ResultRatio = 0.01 }},
		{name: "ratio zero", mutate: func(c *Config) { c.ResultRatio = 0 }, wantErr: true},
		{name: "ratio one", mutate: func(c *Config) { c.ResultRatio = 1 }, wantErr: true},
		{name: "ratio negative", mutate: func(c *Config) { c.ResultRatio = -0.5 }, wantErr: true},
		{name: "ratio above one", mutate: func(c *Config) { c.ResultRatio = 1.5 }, wantErr: true},
		{name: "min equals max", mutate: func(c *Config) { c.MinWordCount = 100; c.MaxWordCount = 100 }},
		{name: "min above max", mutate: func(c *Config) { c.MinWordCount = 151 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

// longText builds a multi-sentence article body with a known word count.
func longText(sentences int) string {
	var b strings.Builder
	for i := 0; i < sentences; i++ {
		fmt.Fprintf(&b, "Sentence number %d talks about economic policy and market conditions in detail. ", i)
	}
	return strings.TrimSpace(b.String())
}

func TestSummarizeTextBounds(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("ratio target above max is capped", func(t *testing.T) {
		text := longText(100) // ~1200 words, 20% target ~240 > max 150
		report := SummarizeText(text, cfg)
		if report.SummaryLength > cfg.MaxWordCount {
			t.Errorf("summary length %d exceeds max %d", report.SummaryLength, cfg.MaxWordCount)
		}
		if report.SummaryLength == 0 {
			t.Error("summary unexpectedly empty")
		}
	})

	t.Run("ratio target below min uses min budget", func(t *testing.T) {
		text := longText(12) // ~144 words, 20% target ~28 < min 50
		report := SummarizeText(text, cfg)
		if report.SummaryLength > cfg.MinWordCount {
			t.Errorf("summary length %d exceeds min budget %d", report.SummaryLength, cfg.MinWordCount)
		}
	})

	t.Run("ratio target in range", func(t *testing.T) {
		text := longText(40) // ~480 words, 20% target ~96 in [50,150]
		report := SummarizeText(text, cfg)
		if report.SummaryLength > cfg.MaxWordCount {
			t.Errorf("summary length %d exceeds max %d", report.SummaryLength, cfg.MaxWordCount)
		}
	})
}

func TestSummarizeTextShrinkage(t *testing.T) {
	text := longText(50)
	report := SummarizeText(text, DefaultConfig())

	original := textutil.WordCount(text)
	if report.OriginalLength != original {
		t.Errorf("original length = %d, want %d", report.OriginalLength, original)
	}
	want := float64(original-report.SummaryLength) / float64(original)
	if diff := report.Shrinkage - want; diff > 0.005 || diff < -0.005 {
		t.Errorf("shrinkage = %v, want about %v", report.Shrinkage, want)
	}
}

func TestSummarizeTextEmptyInput(t *testing.T) {
	report := SummarizeText("", DefaultConfig())
	if report.OriginalLength != 0 || report.SummaryLength != 0 {
		t.Errorf("empty input produced lengths %d/%d", report.OriginalLength, report.SummaryLength)
	}
	if report.Shrinkage != 0 {
		t.Errorf("shrinkage on empty input = %v, want 0", report.Shrinkage)
	}
}

func TestSummarizeTextShortFallsBackVerbatim(t *testing.T) {
	text := "Only one short sentence here."
	report := SummarizeText(text, DefaultConfig())
	if report.Summary != text {
		t.Errorf("short text should fall back verbatim, got %q", report.Summary)
	}
}

func TestKeywords(t *testing.T) {
	text := strings.Repeat("inflation report shows inflation rising while markets digest the inflation data. ", 5) +
		strings.Repeat("central banks weigh rates against growth. ", 3)

	got := Keywords(text, 3)
	if len(got) == 0 {
		t.Fatal("expected keywords, got none")
	}
	if len(got) > 3 {
		t.Fatalf("expected at most 3 keywords, got %d", len(got))
	}
	if got[0] != "inflation" {
		t.Errorf("top keyword = %q, want inflation", got[0])
	}
}

func TestKeywordsLemmatizes(t *testing.T) {
	got := Keywords("market markets marketing rate rates rated", 10)
	for i, kw := range got {
		for j := i + 1; j < len(got); j++ {
			if lemma(kw) == lemma(got[j]) {
				t.Errorf("keywords %q and %q share a lemma", kw, got[j])
			}
		}
	}
}

func TestKeywordsEmpty(t *testing.T) {
	if got := Keywords("", 5); got != nil {
		t.Errorf("Keywords on empty text = %v, want nil", got)
	}
	if got := Keywords("of the and", 5); got != nil {
		t.Errorf("Keywords on stopwords only = %v, want nil", got)
	}
}

func TestFetchInvalidConfig(t *testing.T) {
	s := New(httpclient.New(httpclient.BrowserProfile, time.Second))
	cfg := DefaultConfig()
	cfg.ResultRatio = 2

	_, err := s.Fetch(context.Background(), "https://example.com", cfg)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Fetch with bad ratio = %v, want ErrInvalidConfig", err)
	}
}

func TestFetch(t *testing.T) {
	body := longText(60)
	page := fmt.Sprintf(`<html lang="en"><head>
		<title>Policy Outlook</title>
		<meta name="description" content="A look at policy and markets.">
		<meta property="og:url" content="https://news.example.com/policy-outlook">
		</head><body><article><h1>Policy Outlook</h1><p>%s</p></article></body></html>`, body)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	s := New(httpclient.New(httpclient.BrowserProfile, 5*time.Second))
	result, err := s.Fetch(context.Background(), server.URL, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Title != "Policy Outlook" {
		t.Errorf("title = %q", result.Title)
	}
	if result.CanonicalURL != "https://news.example.com/policy-outlook" {
		t.Errorf("canonical URL = %q", result.CanonicalURL)
	}
	if result.Summary.SummaryLength == 0 {
		t.Error("expected a non-empty summary")
	}
	if result.Summary.SummaryLength > DefaultConfig().MaxWordCount {
		t.Errorf("summary length %d exceeds max", result.Summary.SummaryLength)
	}
	if len(result.Keywords) == 0 || len(result.Keywords) > DefaultConfig().NumKeywords {
		t.Errorf("keywords = %v", result.Keywords)
	}
}

func TestFetchFailedPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	s := New(httpclient.New(httpclient.BrowserProfile, time.Second))
	_, err := s.Fetch(context.Background(), server.URL, DefaultConfig())
	if !errors.Is(err, extract.ErrFetchFailed) {
		t.Errorf("err = %v, want extract.ErrFetchFailed", err)
	}
}
