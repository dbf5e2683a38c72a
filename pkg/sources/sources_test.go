package sources

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeCatalog struct {
	ids []string
	err error
}

func (f *fakeCatalog) Sources(_ context.Context, _ string) ([]string, error) {
	return f.ids, f.err
}

func TestRefreshFiltersDenylist(t *testing.T) {
	catalog := &fakeCatalog{ids: []string{
		"bbc-news",
		"google-news",
		"google-news-au",
		"financial-times",
		"reuters",
		"the-lad-bible",
	}}
	path := filepath.Join(t.TempDir(), "sources.txt")
	m := New(catalog, path, "en", []string{"^google-news", "financial-times", "the-lad-bible"})

	got, err := m.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"bbc-news", "reuters"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("refreshed list mismatch (-want +got):\n%s", diff)
	}

	loaded, err := m.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(want, loaded); diff != "" {
		t.Errorf("persisted list mismatch (-want +got):\n%s", diff)
	}
}

func TestRefreshIdempotent(t *testing.T) {
	catalog := &fakeCatalog{ids: []string{"abc-news", "reuters", "bbc-news"}}
	path := filepath.Join(t.TempDir(), "sources.txt")
	m := New(catalog, path, "en", nil)

	if _, err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if _, err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if diff := cmp.Diff(string(first), string(second)); diff != "" {
		t.Errorf("refresh is not byte-for-byte idempotent (-first +second):\n%s", diff)
	}
}

func TestRefreshReplacesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.txt")
	catalog := &fakeCatalog{ids: []string{"old-source", "keeper"}}
	m := New(catalog, path, "en", nil)
	if _, err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("seed refresh: %v", err)
	}

	catalog.ids = []string{"keeper"}
	got, err := m.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if diff := cmp.Diff([]string{"keeper"}, got); diff != "" {
		t.Errorf("stale sources lingered (-want +got):\n%s", diff)
	}
}

func TestRefreshCatalogError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.txt")
	m := New(&fakeCatalog{err: errors.New("upstream down")}, path, "en", nil)

	if _, err := m.Refresh(context.Background()); err == nil {
		t.Error("expected error when catalog fails")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("failed refresh must not touch the persisted list")
	}
}

func TestLoadMissingFile(t *testing.T) {
	m := New(nil, filepath.Join(t.TempDir(), "absent.txt"), "en", nil)
	got, err := m.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("missing file should load as empty, got %v", got)
	}
}
