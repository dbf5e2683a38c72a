// Package ingest orchestrates the article pipeline: load the source list,
// pull top headlines in chunks, enrich each candidate with extraction and
// summarization, and persist new records. One bad article never aborts a
// batch; a timed-out chunk is skipped, not retried.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"newsdesk/pkg/domain"
	"newsdesk/pkg/extract"
	"newsdesk/pkg/ident"
	"newsdesk/pkg/store"
	"newsdesk/pkg/summarize"
	"newsdesk/pkg/textutil"
)

// ErrRejected marks a candidate the pipeline refuses to process, e.g. a
// missing URL or a denylisted domain.
var ErrRejected = errors.New("candidate rejected")

const (
	defaultChunkSize    = 10
	defaultPageSize     = 50
	defaultWorkers      = 4
	defaultChunkTimeout = 30 * time.Second
)

// ArticleStore is the persistence surface the pipeline needs.
type ArticleStore interface {
	ArticleURLExists(ctx context.Context, url string) (bool, error)
	CreateArticle(ctx context.Context, a *domain.Article) error
}

// HeadlineAPI queries the upstream news API for a batch of sources.
type HeadlineAPI interface {
	TopHeadlines(ctx context.Context, sourceIDs []string, pageSize int) ([]domain.Headline, error)
}

// HeadlineSource yields additional candidates outside the news API, e.g.
// configured RSS feeds.
type HeadlineSource interface {
	Headlines(ctx context.Context) ([]domain.Headline, error)
}

// Enricher turns a URL into extracted fields plus summary and keywords.
type Enricher interface {
	Fetch(ctx context.Context, url string, cfg summarize.Config) (*summarize.Result, error)
}

// SourceList supplies and refreshes the ingestion allow-list.
type SourceList interface {
	Load() ([]string, error)
	Refresh(ctx context.Context) ([]string, error)
}

// Report summarizes one batch run.
type Report struct {
	Ingested   int           `json:"ingested"`
	Duplicates int           `json:"duplicates"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Options tune the pipeline; zero values fall back to defaults.
type Options struct {
	ChunkSize    int
	PageSize     int
	Workers      int
	ChunkTimeout time.Duration
	// UndesirableDomains are skipped at ingest time, a second filter on
	// top of the source-list denylist.
	UndesirableDomains []string
	Summarize          summarize.Config
}

// Service is the ingestion pipeline.
type Service struct {
	store        ArticleStore
	api          HeadlineAPI
	extras       []HeadlineSource
	enricher     Enricher
	srcs         SourceList
	opts         Options
	undesirables map[string]bool
	logger       *slog.Logger
	now          func() time.Time
	newID        func() int64
}

// New wires the pipeline together.
func New(st ArticleStore, api HeadlineAPI, enricher Enricher, srcs SourceList, extras []HeadlineSource, opts Options, logger *slog.Logger) *Service {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.ChunkTimeout <= 0 {
		opts.ChunkTimeout = defaultChunkTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	undesirables := make(map[string]bool, len(opts.UndesirableDomains))
	for _, d := range opts.UndesirableDomains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			undesirables[d] = true
		}
	}

	return &Service{
		store:        st,
		api:          api,
		extras:       extras,
		enricher:     enricher,
		srcs:         srcs,
		opts:         opts,
		undesirables: undesirables,
		logger:       logger,
		now:          time.Now,
		newID:        ident.New,
	}
}

// PullArticles runs one ingestion batch. Safe to invoke repeatedly: the
// URL uniqueness constraint makes re-runs and overlapping runs converge
// on the same article set.
func (s *Service) PullArticles(ctx context.Context) (Report, error) {
	start := s.now()

	sourceIDs, err := s.srcs.Load()
	if err != nil {
		return Report{}, fmt.Errorf("load source list: %w", err)
	}

	var candidates []domain.Headline
	for i, chunk := range chunks(sourceIDs, s.opts.ChunkSize) {
		cctx, cancel := context.WithTimeout(ctx, s.opts.ChunkTimeout)
		headlines, err := s.api.TopHeadlines(cctx, chunk, s.opts.PageSize)
		cancel()
		if err != nil {
			// Per-chunk failure is non-fatal; the rest of the run
			// proceeds without this chunk's articles.
			s.logger.Warn("headline chunk skipped", "chunk", i, "sources", len(chunk), "error", err)
			continue
		}
		candidates = append(candidates, headlines...)
	}

	for _, src := range s.extras {
		headlines, err := src.Headlines(ctx)
		if err != nil {
			s.logger.Warn("extra headline source skipped", "error", err)
			continue
		}
		candidates = append(candidates, headlines...)
	}

	report := s.process(ctx, candidates)
	report.Elapsed = s.now().Sub(start)

	s.logger.Info("ingestion batch finished",
		"ingested", report.Ingested,
		"duplicates", report.Duplicates,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"elapsed", report.Elapsed.Round(time.Millisecond))
	return report, nil
}

// UpdateSources refreshes the persisted source list from the upstream
// catalog. Idempotent.
func (s *Service) UpdateSources(ctx context.Context) error {
	ids, err := s.srcs.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh sources: %w", err)
	}
	s.logger.Info("source list refreshed", "sources", len(ids))
	return nil
}

type outcome int

const (
	outIngested outcome = iota
	outDuplicate
	outSkipped
	outFailed
)

// process fans candidates out to a bounded worker pool and aggregates
// outcomes. Per-URL atomicity of check-then-insert rests on the storage
// uniqueness constraint, not on application locking.
func (s *Service) process(ctx context.Context, candidates []domain.Headline) Report {
	jobs := make(chan domain.Headline, len(candidates))
	for _, c := range candidates {
		jobs <- c
	}
	close(jobs)

	results := make(chan outcome, len(candidates))
	var wg sync.WaitGroup
	for i := 0; i < s.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for h := range jobs {
				results <- s.processOne(ctx, h)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var report Report
	for res := range results {
		switch res {
		case outIngested:
			report.Ingested++
		case outDuplicate:
			report.Duplicates++
		case outSkipped:
			report.Skipped++
		case outFailed:
			report.Failed++
		}
	}
	return report
}

func (s *Service) processOne(ctx context.Context, h domain.Headline) (result outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("article processing panicked", "url", h.URL, "title", h.Title, "panic", r)
			result = outFailed
		}
	}()

	switch err := s.IngestOne(ctx, h); {
	case err == nil:
		return outIngested
	case errors.Is(err, store.ErrDuplicate):
		s.logger.Debug("duplicate article", "url", h.URL, "title", h.Title)
		return outDuplicate
	case errors.Is(err, ErrRejected):
		s.logger.Debug("candidate rejected", "url", h.URL, "error", err)
		return outSkipped
	default:
		s.logger.Warn("article processing failed", "url", h.URL, "title", h.Title, "error", err)
		return outFailed
	}
}

// IngestOne runs a single candidate through the same normalization and
// persistence path the batch pipeline uses. Denylisted or URL-less
// candidates return ErrRejected; an already-persisted URL returns
// store.ErrDuplicate, including when the race is only detected at insert
// time.
func (s *Service) IngestOne(ctx context.Context, h domain.Headline) error {
	if strings.TrimSpace(h.URL) == "" {
		return fmt.Errorf("%w: empty url", ErrRejected)
	}

	exists, err := s.store.ArticleURLExists(ctx, h.URL)
	if err != nil {
		return fmt.Errorf("dedup check: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: url %s", store.ErrDuplicate, h.URL)
	}

	if s.undesirable(extract.Domain(h.URL)) {
		return fmt.Errorf("%w: undesirable domain %s", ErrRejected, extract.Domain(h.URL))
	}

	enriched, err := s.enricher.Fetch(ctx, h.URL, s.opts.Summarize)
	if err != nil {
		return fmt.Errorf("enrich: %w", err)
	}

	article := s.buildArticle(h, enriched)
	if err := s.store.CreateArticle(ctx, article); err != nil {
		return err
	}

	s.logger.Info("article ingested", "title", article.Title, "site", article.SiteName)
	return nil
}

// buildArticle normalizes upstream and extracted fields into the
// persisted record.
func (s *Service) buildArticle(h domain.Headline, enriched *summarize.Result) *domain.Article {
	now := s.now().UTC()

	title := strings.TrimSpace(h.Title)
	if title == "" {
		title = strings.TrimSpace(enriched.Title)
	}
	description := strings.TrimSpace(h.Description)
	if description == "" {
		description = enriched.Description
	}

	siteName := strings.TrimSpace(h.SourceName)
	if siteName == "" {
		siteName = "Unknown"
	}

	authors := strings.TrimSpace(h.Author)
	if authors == "" && len(enriched.Authors) > 0 {
		authors = strings.Join(enriched.Authors, ", ")
	}
	if authors == "" {
		authors = siteName
	} else {
		authors = textutil.CapitalizeWords(authors)
	}

	language := enriched.Language
	if language == "" {
		language = "en"
	}

	return &domain.Article{
		Identifier:  s.newID(),
		URL:         h.URL,
		Title:       title,
		Slug:        textutil.Slugify(title),
		Authors:     authors,
		Description: description,
		Language:    language,
		Text:        enriched.Text,
		PublishTime: clampPublishTime(h.PublishedAt, now),
		SiteName:    siteName,
		Domain:      enriched.Domain,
		Images:      h.ImageURL,
		Summary:     enriched.Summary.Summary,
		Keywords:    enriched.Keywords,
		IngestedAt:  now,
	}
}

func (s *Service) undesirable(domain string) bool {
	domain = strings.ToLower(domain)
	if domain == "" {
		return false
	}
	if s.undesirables[domain] {
		return true
	}
	for d := range s.undesirables {
		if strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}

// clampPublishTime parses the upstream timestamp, substituting now when
// it is missing, unparseable, or in the future.
func clampPublishTime(raw string, now time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			if t.After(now) {
				return now
			}
			return t.UTC()
		}
	}
	return now
}

func chunks(items []string, size int) [][]string {
	var out [][]string
	for len(items) > 0 {
		n := size
		if n > len(items) {
			n = len(items)
		}
		out = append(out, items[:n])
		items = items[n:]
	}
	return out
}
