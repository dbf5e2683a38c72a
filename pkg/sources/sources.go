// Package sources maintains the allow-list of syndication source IDs used
// for ingestion. The list is persisted as a flat newline-delimited file and
// replaced wholesale on every refresh, so removed or newly denylisted
// sources never linger.
package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Catalog lists the source identifiers offered by the upstream provider.
type Catalog interface {
	Sources(ctx context.Context, language string) ([]string, error)
}

// Manager refreshes and reads the persisted source list.
type Manager struct {
	catalog  Catalog
	path     string
	language string
	exclude  []*regexp.Regexp
	literals map[string]bool
}

// New builds a Manager. Each exclusion is tried as a regular expression;
// ones that fail to compile are treated as exact identifiers.
func New(catalog Catalog, path, language string, exclusions []string) *Manager {
	m := &Manager{
		catalog:  catalog,
		path:     path,
		language: language,
		literals: map[string]bool{},
	}
	for _, pattern := range exclusions {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if re, err := regexp.Compile(pattern); err == nil {
			m.exclude = append(m.exclude, re)
		} else {
			m.literals[pattern] = true
		}
	}
	return m
}

// Refresh queries the catalog, drops denylisted identifiers, and rewrites
// the persisted list in full. Running twice against unchanged upstream
// data produces a byte-for-byte identical file.
func (m *Manager) Refresh(ctx context.Context) ([]string, error) {
	ids, err := m.catalog.Sources(ctx, m.language)
	if err != nil {
		return nil, fmt.Errorf("fetch source catalog: %w", err)
	}

	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || m.excluded(id) {
			continue
		}
		kept = append(kept, id)
	}

	if err := m.write(kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// Load reads the persisted source list. A missing file is an empty list.
func (m *Manager) Load() ([]string, error) {
	raw, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read source list: %w", err)
	}

	var out []string
	for _, line := range strings.Split(string(raw), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}

func (m *Manager) excluded(id string) bool {
	if m.literals[id] {
		return true
	}
	for _, re := range m.exclude {
		if re.MatchString(id) {
			return true
		}
	}
	return false
}

// write replaces the list atomically: temp file in the same directory,
// then rename.
func (m *Manager) write(ids []string) error {
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create source list dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".sources-*")
	if err != nil {
		return fmt.Errorf("create temp source list: %w", err)
	}
	defer os.Remove(tmp.Name())

	var b strings.Builder
	for _, id := range ids {
		b.WriteString(id)
		b.WriteByte('\n')
	}
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("write source list: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close source list: %w", err)
	}
	if err := os.Rename(tmp.Name(), m.path); err != nil {
		return fmt.Errorf("replace source list: %w", err)
	}
	return nil
}
