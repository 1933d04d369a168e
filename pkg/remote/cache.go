package remote

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL is the maximum age after which a cache entry is treated as
// expired regardless of whether the underlying remote file changed.
const DefaultTTL = 24 * time.Hour

const cacheFileSuffix = ".cache"

// Metadata records remote stat information captured alongside a fetch.
type Metadata struct {
	Size  int64  `json:"size"`
	Mtime string `json:"mtime"`
}

// CacheEntry is one cached file content. Entries are never mutated in
// place; a refetch replaces the whole entry.
type CacheEntry struct {
	Content   string   `json:"content"`
	Timestamp float64  `json:"timestamp"`
	Metadata  Metadata `json:"metadata"`
}

func (e CacheEntry) age(now time.Time) time.Duration {
	sec, frac := int64(e.Timestamp), e.Timestamp-float64(int64(e.Timestamp))
	return now.Sub(time.Unix(sec, int64(frac*float64(time.Second))))
}

// Store maps (connection, path) to cached content through two tiers: an
// in-process map and one JSON file per entry on disk. The disk tier
// survives process restarts; disk I/O failures silently degrade the store
// to memory-only behavior.
type Store struct {
	dir string
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]CacheEntry

	logger *zap.Logger
}

// NewStore creates a Store rooted at dir, which is created if missing.
// An empty dir selects a directory under the OS temp dir. A zero ttl
// selects DefaultTTL.
func NewStore(dir string, ttl time.Duration, logger *zap.Logger) (*Store, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "gpt-helper-cache")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Store{
		dir:     dir,
		ttl:     ttl,
		entries: make(map[string]CacheEntry),
		logger:  logger,
	}, nil
}

// Dir returns the disk cache directory.
func (s *Store) Dir() string { return s.dir }

// TTL returns the configured entry lifetime.
func (s *Store) TTL() time.Duration { return s.ttl }

// Key derives the cache key for a path under a connection namespace.
func Key(conn Connection, path string) string {
	sum := sha256.Sum256([]byte(conn.CacheKey() + ":" + path))
	return hex.EncodeToString(sum[:])
}

// Get returns cached content for (conn, path). The memory tier is checked
// first; on a miss a fresh disk entry is loaded into the memory tier and
// returned (write-through on read). Expired entries behave as misses even
// while the disk file still exists.
func (s *Store) Get(conn Connection, path string) (string, bool) {
	key := Key(conn, path)
	now := time.Now()

	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if ok {
		if entry.age(now) < s.ttl {
			return entry.Content, true
		}
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return "", false
	}

	entry, ok = s.loadDisk(key, now)
	if !ok {
		return "", false
	}
	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return entry.Content, true
}

// Put stores content in both tiers, overwriting any prior entry. The disk
// write is best-effort.
func (s *Store) Put(conn Connection, path, content string, meta Metadata) {
	key := Key(conn, path)
	entry := CacheEntry{
		Content:   content,
		Timestamp: float64(time.Now().UnixNano()) / float64(time.Second),
		Metadata:  meta,
	}

	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		s.logger.Debug("Failed to encode cache entry", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.diskPath(key), data, 0o644); err != nil {
		s.logger.Debug("Failed to write disk cache entry", zap.String("key", key), zap.Error(err))
	}
}

// Clear removes entries from both tiers. A zero olderThan wipes the cache
// entirely; otherwise only entries older than the threshold are removed.
func (s *Store) Clear(olderThan time.Duration) {
	now := time.Now()

	s.mu.Lock()
	if olderThan <= 0 {
		s.entries = make(map[string]CacheEntry)
	} else {
		for key, entry := range s.entries {
			if entry.age(now) > olderThan {
				delete(s.entries, key)
			}
		}
	}
	s.mu.Unlock()

	files, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Debug("Failed to list cache directory", zap.Error(err))
		return
	}
	for _, f := range files {
		if !strings.HasSuffix(f.Name(), cacheFileSuffix) {
			continue
		}
		path := filepath.Join(s.dir, f.Name())
		if olderThan > 0 {
			info, err := f.Info()
			if err != nil || now.Sub(info.ModTime()) <= olderThan {
				continue
			}
		}
		if err := os.Remove(path); err != nil {
			s.logger.Debug("Failed to remove cache file", zap.String("file", path), zap.Error(err))
		}
	}
}

// Len returns the number of entries in the memory tier.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// DiskSize returns the total size in bytes of the disk tier.
func (s *Store) DiskSize() int64 {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return 0
	}
	var total int64
	for _, f := range files {
		if !strings.HasSuffix(f.Name(), cacheFileSuffix) {
			continue
		}
		if info, err := f.Info(); err == nil {
			total += info.Size()
		}
	}
	return total
}

func (s *Store) diskPath(key string) string {
	return filepath.Join(s.dir, key+cacheFileSuffix)
}

func (s *Store) loadDisk(key string, now time.Time) (CacheEntry, bool) {
	data, err := os.ReadFile(s.diskPath(key))
	if err != nil {
		return CacheEntry{}, false
	}
	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Debug("Discarding malformed disk cache entry", zap.String("key", key), zap.Error(err))
		return CacheEntry{}, false
	}
	if entry.age(now) >= s.ttl {
		return CacheEntry{}, false
	}
	return entry, true
}
