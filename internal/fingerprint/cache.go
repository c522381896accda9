package fingerprint

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"

	"remotejobs-engine/internal/domain"
)

// Entry is one cached classification. Result is never overwritten once
// written: changed content yields a different fingerprint, hence a
// different entry.
type Entry struct {
	Result       domain.Classification `json:"result"`
	Timestamp    time.Time             `json:"timestamp"`
	LastAccessed time.Time             `json:"last_accessed"`
	AccessCount  int                   `json:"access_count"`
}

type database struct {
	Version     string            `json:"version"`
	Created     time.Time         `json:"created"`
	LastUpdated time.Time         `json:"last_updated"`
	Entries     map[string]*Entry `json:"entries"`
}

// Stats are cumulative for the lifetime of the Cache value, not the file.
type Stats struct {
	Entries int     `json:"entries"`
	Hits    int     `json:"hits"`
	Misses  int     `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Cache is the content-addressed classification store. Single-writer,
// single-process: callers serialize access (the engine holds a data-dir
// lock for the whole run).
type Cache struct {
	path   string
	maxAge time.Duration
	db     database
	hits   int
	misses int
	now    func() time.Time
}

// Open loads the cache file, treating a missing or corrupt file as an
// empty cache.
func Open(path string, maxAge time.Duration) *Cache {
	c := &Cache{path: path, maxAge: maxAge, now: time.Now}

	b, err := os.ReadFile(path)
	if err == nil {
		if jerr := json.Unmarshal(b, &c.db); jerr != nil {
			log.Printf("[cache] corrupt cache file %s, rebuilding: %v", path, jerr)
			c.db = database{}
		}
	} else if !os.IsNotExist(err) {
		log.Printf("[cache] cannot read %s, rebuilding: %v", path, err)
	}

	if c.db.Entries == nil {
		c.db = database{
			Version: "2.0",
			Created: c.now(),
			Entries: make(map[string]*Entry),
		}
	}
	return c
}

// Get returns the cached classification for a fingerprint. An entry older
// than the max age counts as absent and is evicted on the way out.
func (c *Cache) Get(fp string) (domain.Classification, bool) {
	e, ok := c.db.Entries[fp]
	if !ok {
		c.misses++
		return domain.Classification{}, false
	}
	if c.now().Sub(e.Timestamp) > c.maxAge {
		delete(c.db.Entries, fp)
		c.misses++
		return domain.Classification{}, false
	}
	e.AccessCount++
	e.LastAccessed = c.now()
	c.hits++
	return e.Result, true
}

func (c *Cache) Put(fp string, result domain.Classification) {
	c.db.Entries[fp] = &Entry{
		Result:       result,
		Timestamp:    c.now(),
		LastAccessed: c.now(),
		AccessCount:  1,
	}
}

// Cleanup drops every expired entry and reports how many went.
func (c *Cache) Cleanup() int {
	var removed int
	for fp, e := range c.db.Entries {
		if c.now().Sub(e.Timestamp) > c.maxAge {
			delete(c.db.Entries, fp)
			removed++
		}
	}
	return removed
}

// Save persists the cache with a write-to-temp-then-rename so a crash
// mid-write never corrupts the previous file.
func (c *Cache) Save() error {
	c.db.LastUpdated = c.now()

	b, err := json.MarshalIndent(c.db, "", "  ")
	if err != nil {
		return err
	}

	tmp := c.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

func (c *Cache) Stats() Stats {
	s := Stats{Entries: len(c.db.Entries), Hits: c.hits, Misses: c.misses}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}
