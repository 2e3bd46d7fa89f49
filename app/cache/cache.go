package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mmcdole/gofeed"
)

// RetentionPeriod is how long a published entry stays in the cache before
// an eviction pass removes it.
const RetentionPeriod = 30 * 24 * time.Hour

// Record is what the cache remembers about a published entry.
type Record struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Author    string `json:"author"`
	Published string `json:"published"`
	CachedAt  int64  `json:"cached_at"` // unix seconds
}

// Cache is the persistent fingerprint cache. It is the sole owner of the
// cache file: nothing else reads or writes it.
type Cache struct {
	path    string
	records map[string]Record
	now     func() time.Time
}

// Load reads the cache file at path. A missing or corrupt file is not
// fatal: the run starts with an empty cache and the condition is logged.
func Load(path string) *Cache {
	c := &Cache{
		path:    path,
		records: make(map[string]Record),
		now:     time.Now,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("Cache file not found, starting with empty cache", "path", path)
		} else {
			slog.Warn("Failed to read cache file, starting with empty cache", "path", path, "error", err)
		}
		return c
	}

	if err := json.Unmarshal(data, &c.records); err != nil {
		slog.Warn("Cache file is corrupt, starting with empty cache", "path", path, "error", err)
		c.records = make(map[string]Record)
		return c
	}

	slog.Debug("Loaded cache", "path", path, "entries", len(c.records))
	return c
}

// Contains reports whether the entry has been seen before. Never mutates
// cache state.
func (c *Cache) Contains(item *gofeed.Item) bool {
	_, ok := c.records[Fingerprint(item)]
	return ok
}

// Add records the entry as seen at the current time, overwriting any
// existing record for the same fingerprint.
func (c *Cache) Add(item *gofeed.Item) {
	c.records[Fingerprint(item)] = Record{
		Title:     item.Title,
		Link:      item.Link,
		Author:    authorOf(item),
		Published: item.Published,
		CachedAt:  c.now().Unix(),
	}
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	return len(c.records)
}

// EvictExpired removes every record older than RetentionPeriod and
// persists the cache when anything was removed.
func (c *Cache) EvictExpired() (kept, evicted int) {
	maxAge := int64(RetentionPeriod / time.Second)
	now := c.now().Unix()

	for fingerprint, record := range c.records {
		if now-record.CachedAt > maxAge {
			delete(c.records, fingerprint)
			evicted++
		}
	}

	if evicted > 0 {
		if err := c.Persist(); err != nil {
			slog.Warn("Failed to persist cache after eviction", "error", err)
		}
	}

	return len(c.records), evicted
}

// Persist writes the full cache to disk. Callers treat failures as
// non-fatal: the in-memory state stays usable for the rest of the run.
func (c *Cache) Persist() error {
	data, err := json.MarshalIndent(c.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

func authorOf(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		return item.Authors[0].Name
	}
	return ""
}
