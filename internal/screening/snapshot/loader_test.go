package snapshot

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/screening"
)

func writeSnapshot(t *testing.T, dir string, source screening.Source, body string) {
	t.Helper()
	path := filepath.Join(dir, string(source)+".json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func newTestLoader(dir string, opts ...Option) *Loader {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewLoader(dir, logger, opts...)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("loads and normalizes file snapshots", func(t *testing.T) {
		dir := t.TempDir()
		writeSnapshot(t, dir, screening.SourceSanctions, `{
			"generated_at": "2026-08-01T00:00:00Z",
			"entries": [
				{"entry_id": "san-1", "name": "Juan Pérez Gómez", "category": "SDN"},
				{"entry_id": "san-2", "name": "María López", "legal_id": " lopm800101ab1 "}
			]
		}`)

		set, err := newTestLoader(dir).Load(ctx)

		require.NoError(t, err)
		snap := set.Sources[screening.SourceSanctions]
		require.NotNil(t, snap)
		assert.Equal(t, screening.ProvenanceFile, snap.Provenance)
		require.Len(t, snap.Entries, 2)
		assert.Equal(t, "juan perez gomez", snap.Entries[0].NormalizedName)
		assert.Equal(t, "LOPM800101AB1", snap.Entries[1].LegalID)
	})

	t.Run("every source is present even when the directory is empty", func(t *testing.T) {
		set, err := newTestLoader(t.TempDir()).Load(ctx)

		require.NoError(t, err)
		for _, source := range screening.Sources() {
			snap := set.Sources[source]
			require.NotNil(t, snap, "source %s missing from set", source)
			assert.Equal(t, screening.ProvenanceNone, snap.Provenance)
			assert.True(t, snap.Unavailable())
		}
	})

	t.Run("corrupt file degrades only its source", func(t *testing.T) {
		dir := t.TempDir()
		writeSnapshot(t, dir, screening.SourceSanctions, `{not json`)
		writeSnapshot(t, dir, screening.SourcePEP, `{"entries": [{"entry_id": "pep-1", "name": "Ana Ruiz Montes"}]}`)

		set, err := newTestLoader(dir).Load(ctx)

		require.NoError(t, err)
		assert.True(t, set.Sources[screening.SourceSanctions].Unavailable())
		assert.Contains(t, set.Sources[screening.SourceSanctions].Err, "decode snapshot")
		assert.False(t, set.Sources[screening.SourcePEP].Unavailable())
		assert.Len(t, set.Sources[screening.SourcePEP].Entries, 1)
	})

	t.Run("builtin fallback replaces a missing source", func(t *testing.T) {
		set, err := newTestLoader(t.TempDir(), WithBuiltinFallback()).Load(ctx)

		require.NoError(t, err)
		snap := set.Sources[screening.SourceSanctions]
		assert.Equal(t, screening.ProvenanceBuiltin, snap.Provenance)
		assert.False(t, snap.Unavailable())
		require.NotEmpty(t, snap.Entries)
		assert.NotEmpty(t, snap.Entries[0].NormalizedName, "fallback entries must be normalized")
	})

	t.Run("fallback never shadows a healthy file", func(t *testing.T) {
		dir := t.TempDir()
		writeSnapshot(t, dir, screening.SourcePEP, `{"entries": [{"entry_id": "pep-1", "name": "Ana Ruiz Montes"}]}`)

		set, err := newTestLoader(dir, WithBuiltinFallback()).Load(ctx)

		require.NoError(t, err)
		snap := set.Sources[screening.SourcePEP]
		assert.Equal(t, screening.ProvenanceFile, snap.Provenance)
		require.Len(t, snap.Entries, 1)
		assert.Equal(t, "pep-1", snap.Entries[0].EntryID)
	})
}
