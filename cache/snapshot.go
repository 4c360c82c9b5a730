package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// snapshot is the on-disk representation: entries in recency order, most
// recent first, plus the lifetime counters.
type snapshot struct {
	Entries []snapshotEntry `json:"entries"`
	Stats   Stats           `json:"stats"`
}

type snapshotEntry struct {
	Key       string         `json:"key"`
	Value     map[string]any `json:"value"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// persist writes the snapshot via a temp file rename so readers never see a
// partial write. Callers hold the lock. Persistence failures are logged and
// swallowed; the in-memory cache stays authoritative.
func (c *Cache) persist() {
	if c.path == "" {
		return
	}

	snap := snapshot{Stats: c.stats, Entries: make([]snapshotEntry, 0, c.ll.Len())}
	for el := c.ll.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry)
		snap.Entries = append(snap.Entries, snapshotEntry{
			Key:       e.key,
			Value:     e.value,
			ExpiresAt: e.expiresAt,
		})
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		c.logger.Warn("cache snapshot marshal failed", "error", err.Error())
		return
	}

	tmp := c.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		c.logger.Warn("cache snapshot dir failed", "path", c.path, "error", err.Error())
		return
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		c.logger.Warn("cache snapshot write failed", "path", tmp, "error", err.Error())
		return
	}
	if err := os.Rename(tmp, c.path); err != nil {
		c.logger.Warn("cache snapshot rename failed", "path", c.path, "error", err.Error())
	}
}

// load restores the previous snapshot. A missing file is a fresh start; a
// corrupt file is discarded with a warning. Entries already expired at load
// time are dropped and counted as expirations.
func (c *Cache) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("cache snapshot read failed", "path", c.path, "error", err.Error())
		}
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		c.logger.Warn("discarding corrupt cache snapshot", "path", c.path, "error", err.Error())
		return
	}

	c.stats = snap.Stats
	now := c.now()
	for _, se := range snap.Entries {
		if se.Key == "" || c.ll.Len() >= c.maxSize {
			continue
		}
		if now.After(se.ExpiresAt) {
			c.stats.Expirations++
			continue
		}
		// Entries were written most recent first; appending keeps the order.
		el := c.ll.PushBack(&entry{key: se.Key, value: se.Value, expiresAt: se.ExpiresAt})
		c.items[se.Key] = el
	}
	c.logger.Info("cache snapshot restored", "path", c.path, "entries", c.ll.Len())
}
