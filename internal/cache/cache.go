// Package cache records completed upstream builds so that later runs can skip
// the clone, configure and build stages.
//
// Entries are keyed by a sha256 over the repository, ref, the exact configure
// and build arguments, and the tool versions reported by the gate. Any change
// to one of those produces a new key, so a stale build tree is never reused
// for a different configuration. The build tree itself is not copied; an
// entry is only honoured while the tree it describes still exists on disk.
//
// Metadata is stored as JSON in a BoltDB bucket.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

const (
	// DefaultCacheDir is the default cache directory name
	DefaultCacheDir = ".cppbind-cache"

	// bucketName is the BoltDB bucket name for cache entries
	bucketName = "builds"

	dbFile = "cache.db"
)

// Cache manages build metadata using BoltDB
type Cache struct {
	db   *bbolt.DB
	root string
}

// Stats summarises the cache contents
type Stats struct {
	Entries int
	Size    int64
	Latest  *Entry
}

// New creates a new cache instance
// If cacheDir is empty, uses DefaultCacheDir in current working directory
func New(cacheDir string) (*Cache, error) {
	if cacheDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}

		cacheDir = filepath.Join(cwd, DefaultCacheDir)
	}

	// Ensure cache directory exists
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bbolt.Open(filepath.Join(cacheDir, dbFile), 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}

	return &Cache{
		db:   db,
		root: cacheDir,
	}, nil
}

// Close closes the cache database
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}

	return nil
}

// Get retrieves a cache entry by hash
// Returns nil if cache miss
func (c *Cache) Get(hash string) (*Entry, error) {
	var entry Entry
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(hash))
		if data == nil {
			return nil // Cache miss
		}

		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if entry.Hash == "" {
		return nil, nil // Cache miss
	}

	return &entry, nil
}

// Store saves a cache entry, filling in the run ID and timestamp when unset
func (c *Cache) Store(entry *Entry) error {
	if entry.Hash == "" {
		return fmt.Errorf("cache entry has no hash")
	}

	if entry.RunID == "" {
		entry.RunID = uuid.NewString()
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	err = c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(entry.Hash), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	return nil
}

// Entries returns all entries, newest first
func (c *Cache) Entries() ([]Entry, error) {
	var entries []Entry

	err := c.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(_, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}

			entries = append(entries, e)

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list cache entries: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	return entries, nil
}

// Clear removes all cache entries
func (c *Cache) Clear() error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return err
		}

		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
}

// Stats returns cache statistics
func (c *Cache) Stats() (*Stats, error) {
	entries, err := c.Entries()
	if err != nil {
		return nil, err
	}

	stats := &Stats{Entries: len(entries)}
	if len(entries) > 0 {
		stats.Latest = &entries[0]
	}

	if info, err := os.Stat(filepath.Join(c.root, dbFile)); err == nil {
		stats.Size = info.Size()
	}

	return stats, nil
}

// Root returns the cache directory
func (c *Cache) Root() string {
	return c.root
}
