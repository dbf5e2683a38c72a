package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"newsdesk/migrations"
	"newsdesk/pkg/config"
	"newsdesk/pkg/db"
	"newsdesk/pkg/feeds"
	"newsdesk/pkg/httpclient"
	"newsdesk/pkg/ingest"
	"newsdesk/pkg/logging"
	"newsdesk/pkg/newsapi"
	"newsdesk/pkg/scheduler"
	"newsdesk/pkg/server"
	"newsdesk/pkg/sources"
	"newsdesk/pkg/store"
	"newsdesk/pkg/summarize"
)

func main() {
	var (
		pullOnce    = flag.Bool("pull-once", false, "Run one ingestion batch and exit")
		sourcesOnce = flag.Bool("update-sources", false, "Refresh the source list and exit")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	var provider db.Provider
	if cfg.Database.UseSupabase() {
		client := db.NewSupabaseClient(db.SupabaseConfig{
			ConnectionString: cfg.Database.DSN,
			ProjectURL:       cfg.Database.SupabaseURL,
			APIKey:           cfg.Database.SupabaseAPIKey,
			Password:         cfg.Database.SupabasePassword,
			MaxOpenConns:     cfg.Database.MaxOpenConns,
			MaxIdleConns:     cfg.Database.MaxIdleConns,
		})
		if err := client.Connect(ctx); err != nil {
			logger.Error("supabase connection failed", "error", err)
			os.Exit(1)
		}
		if client.SDK() != nil {
			logger.Info("supabase API client ready", "project_url", cfg.Database.SupabaseURL)
		}
		provider = client
	} else {
		client := db.NewPostgresClient(db.PostgresConfig{
			DSN:          cfg.Database.DSN,
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
		})
		if err := client.Connect(ctx); err != nil {
			logger.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		provider = client
	}
	defer provider.Close()

	if err := migrations.Run(provider.DB()); err != nil {
		logger.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	st := store.New(provider.DB())

	browser := httpclient.New(httpclient.BrowserProfile, 20*time.Second)
	feedClient := httpclient.New(httpclient.FeedProfile, 20*time.Second)

	summarizer := summarize.New(browser)

	api := newsapi.New(cfg.NewsAPI.APIKey,
		cfg.NewsAPI.RequestTimeout.Std(),
		cfg.NewsAPI.RequestsPerSecond)

	sourceList := sources.New(api, cfg.Sources.Path, cfg.Sources.Language, cfg.Sources.Exclusions)

	var extras []ingest.HeadlineSource
	if len(cfg.Feeds) > 0 {
		extras = append(extras, feeds.New(feedClient, cfg.Feeds))
	}

	pipeline := ingest.New(st, api, summarizer, sourceList, extras, ingest.Options{
		ChunkSize:          cfg.Ingest.ChunkSize,
		PageSize:           cfg.NewsAPI.PageSize,
		Workers:            cfg.Ingest.Workers,
		ChunkTimeout:       cfg.Ingest.ChunkTimeout.Std(),
		UndesirableDomains: cfg.Ingest.UndesirableDomains,
		Summarize: summarize.Config{
			NumKeywords:  cfg.Summarize.NumKeywords,
			ResultRatio:  cfg.Summarize.ResultRatio,
			MinWordCount: cfg.Summarize.MinWordCount,
			MaxWordCount: cfg.Summarize.MaxWordCount,
		},
	}, logger)

	if *sourcesOnce {
		if err := pipeline.UpdateSources(ctx); err != nil {
			logger.Error("source update failed", "error", err)
			os.Exit(1)
		}
		return
	}
	if *pullOnce {
		if _, err := pipeline.PullArticles(ctx); err != nil {
			logger.Error("ingestion batch failed", "error", err)
			os.Exit(1)
		}
		return
	}

	sched := scheduler.New(pipeline, scheduler.Options{
		PullSpec:    cfg.Scheduler.PullCron,
		SourcesSpec: cfg.Scheduler.SourcesCron,
	}, logger)
	if err := sched.Start(); err != nil {
		logger.Error("scheduler start failed", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	srv := server.New(st, summarizer, pipeline, sched, cfg.Server.AdminSecret, logger)
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
}
