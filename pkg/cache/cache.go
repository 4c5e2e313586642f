// Package cache provides an LRU cache of bundling analyses with msgpack
// disk persistence, so repeat runs over unchanged files skip re-parsing.
package cache

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/qvbps/go-flow-classes/pkg/bundle"
)

// snapshotVersion guards the on-disk format. Bump it when the persisted
// shape changes; Load rejects mismatched snapshots.
const snapshotVersion = 1

// ErrSnapshotVersion is returned by Load when the snapshot was written by an
// incompatible version of the cache format.
var ErrSnapshotVersion = errors.New("unsupported cache snapshot version")

// Cache is an LRU cache of analyses. Safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	maxEntries int
	items      map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value *bundle.Analysis
	prev  *entry
	next  *entry
}

// New creates a cache holding at most maxEntries analyses. maxEntries <= 0
// means unlimited.
func New(maxEntries int) *Cache {
	return &Cache{
		maxEntries: maxEntries,
		items:      make(map[string]*entry),
	}
}

// Key builds the cache key for a function of a file. The modification time
// is part of the key, so an edited file naturally misses.
func Key(path, function string, modTime time.Time) string {
	return fmt.Sprintf("%s:%s:%d", path, function, modTime.UnixNano())
}

// Get returns the cached analysis for key, marking it most recently used.
func (c *Cache) Get(key string) (*bundle.Analysis, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

// Set stores an analysis, evicting the least recently used entry when full.
func (c *Cache) Set(key string, value *bundle.Analysis) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.items[key] = e
	c.pushFront(e)

	if c.maxEntries > 0 && len(c.items) > c.maxEntries {
		if lru := c.removeBack(); lru != nil {
			delete(c.items, lru.key)
		}
	}
}

// Delete removes a key if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return
	}
	c.unlink(e)
	delete(c.items, key)
}

// Len returns the number of cached analyses.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*entry)
	c.head = nil
	c.tail = nil
}

type persistedEntry struct {
	Key      string           `msgpack:"key"`
	Analysis *bundle.Analysis `msgpack:"analysis"`
}

type snapshot struct {
	Version int              `msgpack:"version"`
	Entries []persistedEntry `msgpack:"entries"`
}

// Save writes a msgpack snapshot of the cache, most recently used first.
func (c *Cache) Save(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := snapshot{Version: snapshotVersion}
	for e := c.head; e != nil; e = e.next {
		snap.Entries = append(snap.Entries, persistedEntry{Key: e.key, Analysis: e.value})
	}

	if err := msgpack.NewEncoder(w).Encode(&snap); err != nil {
		return fmt.Errorf("encoding cache snapshot: %w", err)
	}
	return nil
}

// Load replaces the cache contents with a previously saved snapshot.
// Recency order is restored; entries beyond the size limit are dropped from
// the least recently used end.
func (c *Cache) Load(r io.Reader) error {
	var snap snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("decoding cache snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("%w: %d", ErrSnapshotVersion, snap.Version)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry)
	c.head = nil
	c.tail = nil

	// Entries were saved most recent first; append at the back to keep the
	// same order.
	for _, pe := range snap.Entries {
		if c.maxEntries > 0 && len(c.items) >= c.maxEntries {
			break
		}
		if _, ok := c.items[pe.Key]; ok {
			continue
		}
		e := &entry{key: pe.Key, value: pe.Analysis}
		c.items[pe.Key] = e
		c.pushBack(e)
	}
	return nil
}

func (c *Cache) pushFront(e *entry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *Cache) pushBack(e *entry) {
	e.next = nil
	e.prev = c.tail
	if c.tail != nil {
		c.tail.next = e
	}
	c.tail = e
	if c.head == nil {
		c.head = e
	}
}

func (c *Cache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.pushFront(e)
}

func (c *Cache) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}

func (c *Cache) removeBack() *entry {
	e := c.tail
	if e == nil {
		return nil
	}
	c.unlink(e)
	return e
}
