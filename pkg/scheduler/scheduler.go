// Package scheduler runs the ingestion jobs on cron schedules. A run
// already in flight is never doubled up; the next tick is skipped
// instead.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"newsdesk/pkg/ingest"
)

const (
	defaultPullSpec    = "@every 2h"
	defaultSourcesSpec = "@monthly"
)

// Pipeline is the subset of the ingestion service the scheduler drives.
type Pipeline interface {
	PullArticles(ctx context.Context) (ingest.Report, error)
	UpdateSources(ctx context.Context) error
}

// Scheduler owns the cron instance and the in-flight guards.
type Scheduler struct {
	pipeline Pipeline
	cron     *cron.Cron
	logger   *slog.Logger

	pullSpec    string
	sourcesSpec string
	jobTimeout  time.Duration

	pullMu    sync.Mutex
	sourcesMu sync.Mutex
}

// Options configure the schedules; zero values use the defaults.
type Options struct {
	PullSpec    string
	SourcesSpec string
	JobTimeout  time.Duration
}

// New builds a Scheduler. Call Start to begin ticking.
func New(p Pipeline, opts Options, logger *slog.Logger) *Scheduler {
	if opts.PullSpec == "" {
		opts.PullSpec = defaultPullSpec
	}
	if opts.SourcesSpec == "" {
		opts.SourcesSpec = defaultSourcesSpec
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = 15 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		pipeline:    p,
		cron:        cron.New(),
		logger:      logger,
		pullSpec:    opts.PullSpec,
		sourcesSpec: opts.SourcesSpec,
		jobTimeout:  opts.JobTimeout,
	}
}

// Start registers the jobs and begins the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.pullSpec, func() { s.RunPull(context.Background()) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.sourcesSpec, func() { s.RunSourceUpdate(context.Background()) }); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("scheduler started", "pull", s.pullSpec, "sources", s.sourcesSpec)
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunPull executes one article pull. Returns false when a pull was
// already running and this invocation was skipped.
func (s *Scheduler) RunPull(ctx context.Context) bool {
	if !s.pullMu.TryLock() {
		s.logger.Warn("article pull already running, tick skipped")
		return false
	}
	defer s.pullMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()

	if _, err := s.pipeline.PullArticles(ctx); err != nil {
		s.logger.Error("scheduled article pull failed", "error", err)
	}
	return true
}

// RunSourceUpdate executes one source-list refresh, skipping if one is
// already in flight.
func (s *Scheduler) RunSourceUpdate(ctx context.Context) bool {
	if !s.sourcesMu.TryLock() {
		s.logger.Warn("source update already running, tick skipped")
		return false
	}
	defer s.sourcesMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()

	if err := s.pipeline.UpdateSources(ctx); err != nil {
		s.logger.Error("scheduled source update failed", "error", err)
	}
	return true
}
