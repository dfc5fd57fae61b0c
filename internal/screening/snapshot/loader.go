// Package snapshot loads per-source watchlist snapshots from the directory an
// upstream provider refreshes on its own cadence. A load failure is isolated
// to its source: the snapshot is marked unavailable (or replaced by the
// built-in fallback list when enabled) and sibling sources load normally.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"vigil/internal/screening"
)

// file is the on-disk shape of one source snapshot.
type file struct {
	GeneratedAt time.Time             `json:"generated_at"`
	Entries     []screening.ListEntry `json:"entries"`
}

// Loader builds consistent snapshot sets from per-source JSON files named
// <source>.json under dir.
type Loader struct {
	dir      string
	logger   *slog.Logger
	fallback bool
}

// Option configures the Loader.
type Option func(*Loader)

// WithBuiltinFallback substitutes the small built-in reference list for a
// source whose file is missing or corrupt. Fallback data is marked with
// builtin provenance so it is never mistaken for the authoritative list.
func WithBuiltinFallback() Option {
	return func(l *Loader) {
		l.fallback = true
	}
}

// NewLoader constructs a Loader reading from dir.
func NewLoader(dir string, logger *slog.Logger, opts ...Option) *Loader {
	l := &Loader{dir: dir, logger: logger}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every source's snapshot. It never fails as a whole: per-source
// problems are recorded on the source snapshot itself. The returned set is
// read-only and meant to be shared by every subject of one batch run.
func (l *Loader) Load(ctx context.Context) (*screening.Set, error) {
	set := &screening.Set{
		LoadedAt: time.Now().UTC(),
		Sources:  make(map[screening.Source]*screening.SourceSnapshot, len(screening.Sources())),
	}
	for _, source := range screening.Sources() {
		set.Sources[source] = l.loadSource(ctx, source)
	}
	return set, nil
}

func (l *Loader) loadSource(ctx context.Context, source screening.Source) *screening.SourceSnapshot {
	path := filepath.Join(l.dir, string(source)+".json")

	raw, err := os.ReadFile(path)
	if err != nil {
		return l.degraded(ctx, source, fmt.Errorf("read snapshot: %w", err))
	}

	var f file
	if err := json.Unmarshal(raw, &f); err != nil {
		return l.degraded(ctx, source, fmt.Errorf("decode snapshot: %w", err))
	}

	return &screening.SourceSnapshot{
		Source:     source,
		Provenance: screening.ProvenanceFile,
		Entries:    prepare(f.Entries),
	}
}

// degraded handles a failed load: built-in fallback when enabled, otherwise
// an explicit unavailable snapshot. Nothing is silently fixed.
func (l *Loader) degraded(ctx context.Context, source screening.Source, cause error) *screening.SourceSnapshot {
	if l.fallback {
		if entries, ok := builtinEntries[source]; ok {
			l.logger.WarnContext(ctx, "snapshot unavailable, using builtin fallback",
				"source", source,
				"error", cause,
			)
			return &screening.SourceSnapshot{
				Source:     source,
				Provenance: screening.ProvenanceBuiltin,
				Entries:    prepare(entries),
			}
		}
	}
	l.logger.WarnContext(ctx, "snapshot unavailable",
		"source", source,
		"error", cause,
	)
	return &screening.SourceSnapshot{
		Source:     source,
		Provenance: screening.ProvenanceNone,
		Entries:    []screening.ListEntry{},
		Err:        cause.Error(),
	}
}

// prepare precomputes normalized fields on loaded entries.
func prepare(entries []screening.ListEntry) []screening.ListEntry {
	prepared := make([]screening.ListEntry, len(entries))
	for i, entry := range entries {
		entry.NormalizedName = screening.NormalizeName(entry.Name)
		entry.LegalID = screening.NormalizeLegalID(entry.LegalID)
		prepared[i] = entry
	}
	return prepared
}
