package fingerprint

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remotejobs-engine/internal/domain"
)

func TestFingerprintStability(t *testing.T) {
	a := New("Développeur web", "Création site WordPress", "Paris")
	b := New("Développeur web", "Création site WordPress", "Paris")
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, New("Développeur web!", "Création site WordPress", "Paris"))
	assert.NotEqual(t, a, New("Développeur web", "Création site WordPress!", "Paris"))
	assert.NotEqual(t, a, New("Développeur web", "Création site WordPress", "Lyon"))
}

func TestFingerprintNoBoundaryCollisions(t *testing.T) {
	// Naive concatenation would make these identical.
	assert.NotEqual(t, New("ab", "c", ""), New("a", "bc", ""))
	assert.NotEqual(t, New("", "ab", "c"), New("", "a", "bc"))
}

func TestCachePutGet(t *testing.T) {
	c := Open(filepath.Join(t.TempDir(), "cache_database.json"), 30*24*time.Hour)

	want := domain.Classification{
		IsRemote:   true,
		Confidence: 0.9,
		Reason:     "LLM: tout en télétravail",
		Stage:      domain.StageSemanticLive,
	}
	c.Put("abc", want)

	got, ok := c.Get("abc")
	require.True(t, ok)
	assert.Equal(t, want, got)

	stats := c.Stats()
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 0, stats.Misses)
	assert.Equal(t, 1.0, stats.HitRate)
}

func TestCacheExpiryEvictsOnLookup(t *testing.T) {
	c := Open(filepath.Join(t.TempDir(), "cache_database.json"), 30*24*time.Hour)

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	c.Put("old", domain.Classification{IsRemote: false, Confidence: 0.3})

	// Advance past max age; entry must read as absent and be evicted.
	clock = clock.Add(31 * 24 * time.Hour)
	_, ok := c.Get("old")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats().Entries)

	// A second lookup is still a miss, not a resurrection.
	_, ok = c.Get("old")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Stats().Misses)
}

func TestCacheExactlyMaxAgeStillValid(t *testing.T) {
	c := Open(filepath.Join(t.TempDir(), "cache_database.json"), 30*24*time.Hour)

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	c.Put("edge", domain.Classification{IsRemote: true, Confidence: 0.8})
	clock = clock.Add(30 * 24 * time.Hour)

	_, ok := c.Get("edge")
	assert.True(t, ok)
}

func TestCacheSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache_database.json")

	c := Open(path, 30*24*time.Hour)
	c.Put("persisted", domain.Classification{IsRemote: true, Confidence: 0.9, Stage: domain.StageSemanticLive})
	require.NoError(t, c.Save())

	// No stray temp file left behind.
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	reloaded := Open(path, 30*24*time.Hour)
	got, ok := reloaded.Get("persisted")
	require.True(t, ok)
	assert.True(t, got.IsRemote)
}

func TestCacheCorruptFileRebuilds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache_database.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	c := Open(path, 30*24*time.Hour)
	_, ok := c.Get("anything")
	assert.False(t, ok)

	c.Put("fresh", domain.Classification{IsRemote: false, Confidence: 0.3})
	require.NoError(t, c.Save())

	reloaded := Open(path, 30*24*time.Hour)
	_, ok = reloaded.Get("fresh")
	assert.True(t, ok)
}

func TestCacheCleanup(t *testing.T) {
	c := Open(filepath.Join(t.TempDir(), "cache_database.json"), 30*24*time.Hour)

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	c.Put("a", domain.Classification{})
	clock = clock.Add(20 * 24 * time.Hour)
	c.Put("b", domain.Classification{})
	clock = clock.Add(20 * 24 * time.Hour)

	assert.Equal(t, 1, c.Cleanup())
	assert.Equal(t, 1, c.Stats().Entries)
}
