package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(databaseDSNEnv, "")
	t.Setenv(newsAPIKeyEnv, "")

	cfg := Load()
	if cfg.Ingest.ChunkSize != 10 {
		t.Errorf("chunk size = %d, want 10", cfg.Ingest.ChunkSize)
	}
	if cfg.Summarize.ResultRatio != 0.2 {
		t.Errorf("result ratio = %v, want 0.2", cfg.Summarize.ResultRatio)
	}
	if cfg.Scheduler.PullCron != "@every 2h" {
		t.Errorf("pull cron = %q", cfg.Scheduler.PullCron)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
}

func TestLoadYAMLFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
database:
  dsn: postgres://file:file@db:5432/newsdesk
newsApi:
  apiKey: from-file
  requestTimeout: 5s
ingest:
  chunkSize: 3
  undesirableDomains:
    - tabloid.example
sources:
  exclusions:
    - "-sport$"
feeds:
  - https://blog.example/rss
logLevel: DEBUG
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(newsAPIKeyEnv, "from-env")

	cfg := Load()
	if cfg.Database.DSN != "postgres://file:file@db:5432/newsdesk" {
		t.Errorf("dsn = %q", cfg.Database.DSN)
	}
	if cfg.NewsAPI.APIKey != "from-env" {
		t.Errorf("api key = %q, env must win over file", cfg.NewsAPI.APIKey)
	}
	if cfg.NewsAPI.RequestTimeout.Std() != 5*time.Second {
		t.Errorf("request timeout = %v, want 5s", cfg.NewsAPI.RequestTimeout.Std())
	}
	if cfg.Ingest.ChunkSize != 3 {
		t.Errorf("chunk size = %d, want 3", cfg.Ingest.ChunkSize)
	}
	if len(cfg.Ingest.UndesirableDomains) != 1 || cfg.Ingest.UndesirableDomains[0] != "tabloid.example" {
		t.Errorf("undesirable domains = %v", cfg.Ingest.UndesirableDomains)
	}
	if len(cfg.Feeds) != 1 {
		t.Errorf("feeds = %v", cfg.Feeds)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q, want lowercased debug", cfg.LogLevel)
	}
	// Untouched sections keep their defaults.
	if cfg.Ingest.Workers != 4 {
		t.Errorf("workers = %d, want default 4", cfg.Ingest.Workers)
	}
}

func TestLoadUnreadableFileFallsBack(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()
	if cfg.Ingest.ChunkSize != 10 {
		t.Errorf("chunk size = %d, want default after unreadable file", cfg.Ingest.ChunkSize)
	}
}

func TestUseSupabase(t *testing.T) {
	var d DatabaseConfig
	if d.UseSupabase() {
		t.Error("empty config should not select supabase")
	}
	d.SupabaseURL = "https://ref.supabase.co"
	if !d.UseSupabase() {
		t.Error("project url should select supabase")
	}
}
