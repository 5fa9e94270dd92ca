package catalog

import (
	"slices"
	"sync"

	"github.com/mmcdole/marquee/internal/domain"
)

// Snapshot is a point-in-time copy of the cache used for rollback
type Snapshot struct {
	entries []domain.Entry
}

// Len returns the number of entries in the snapshot
func (s Snapshot) Len() int {
	return len(s.entries)
}

// Cache holds the last known catalog for one view.
//
// Refreshes replace the whole set. Local mutations edit it in place until the
// next refresh supersedes them. Every confirmed mutation bumps the generation
// so a refresh that started earlier can be recognized as stale.
type Cache struct {
	mu       sync.RWMutex
	entries  []domain.Entry
	gen      uint64
	onChange func()
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{entries: []domain.Entry{}}
}

// OnChange registers a callback invoked after every change. It runs
// outside the lock.
func (c *Cache) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Cache) notify() {
	c.mu.RLock()
	fn := c.onChange
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Entries returns a copy of the current entries
func (c *Cache) Entries() []domain.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.entries)
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Get returns the entry with the given ID
func (c *Cache) Get(id string) (domain.Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.index(id); i >= 0 {
		return c.entries[i], true
	}
	return domain.Entry{}, false
}

// Generation returns the current mutation generation
func (c *Cache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// Replace swaps the full set of entries. Prior contents, including any
// local mutations, are discarded.
func (c *Cache) Replace(entries []domain.Entry) {
	c.mu.Lock()
	c.entries = cloneEntries(entries)
	c.mu.Unlock()
	c.notify()
}

// ReplaceIfCurrent replaces the entries only if no mutation was confirmed
// since gen was sampled. It reports whether the replace happened.
func (c *Cache) ReplaceIfCurrent(gen uint64, entries []domain.Entry) bool {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return false
	}
	c.entries = cloneEntries(entries)
	c.mu.Unlock()
	c.notify()
	return true
}

// OptimisticInsert prepends an entry so the newest appears first
func (c *Cache) OptimisticInsert(entry domain.Entry) {
	c.mu.Lock()
	c.entries = slices.Insert(c.entries, 0, entry)
	c.mu.Unlock()
	c.notify()
}

// OptimisticRemove removes the entry with the given ID, preserving the
// order of the others. It reports whether an entry was removed.
func (c *Cache) OptimisticRemove(id string) bool {
	c.mu.Lock()
	i := c.index(id)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	c.entries = slices.Delete(c.entries, i, i+1)
	c.mu.Unlock()
	c.notify()
	return true
}

// Upsert replaces the entry with the same ID in place, or prepends it
func (c *Cache) Upsert(entry domain.Entry) {
	c.mu.Lock()
	if i := c.index(entry.ID); i >= 0 {
		c.entries[i] = entry
	} else {
		c.entries = slices.Insert(c.entries, 0, entry)
	}
	c.mu.Unlock()
	c.notify()
}

// Swap replaces a provisional entry with its confirmed version. When the
// provisional entry is gone (a refresh replaced the set) the confirmed
// entry is prepended.
func (c *Cache) Swap(provisionalID string, entry domain.Entry) {
	c.mu.Lock()
	if i := c.index(provisionalID); i >= 0 {
		c.entries[i] = entry
	} else if c.index(entry.ID) < 0 {
		c.entries = slices.Insert(c.entries, 0, entry)
	}
	c.mu.Unlock()
	c.notify()
}

// Snapshot captures the current entries for a later Rollback
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{entries: slices.Clone(c.entries)}
}

// Rollback restores a snapshot taken before a failed mutation
func (c *Cache) Rollback(s Snapshot) {
	c.mu.Lock()
	c.entries = cloneEntries(s.entries)
	c.mu.Unlock()
	c.notify()
}

// confirm marks a mutation as acknowledged by the server
func (c *Cache) confirm() {
	c.mu.Lock()
	c.gen++
	c.mu.Unlock()
}

func (c *Cache) index(id string) int {
	return slices.IndexFunc(c.entries, func(e domain.Entry) bool {
		return e.ID == id
	})
}

func cloneEntries(entries []domain.Entry) []domain.Entry {
	if entries == nil {
		return []domain.Entry{}
	}
	return slices.Clone(entries)
}
