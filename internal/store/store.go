package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mmcdole/marquee/internal/domain"
)

// DefaultHistoryLimit caps the number of watch records kept locally
const DefaultHistoryLimit = 50

// Bucket names
var (
	bucketHistory = []byte("history")
)

const historyKey = "list"

// HistoryStore persists watch history using BoltDB.
type HistoryStore struct {
	db     *bolt.DB
	limit  int
	logger *slog.Logger

	mu      sync.RWMutex // Protects memory cache
	writeMu sync.Mutex   // Serializes read-modify-write of the history list

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewHistoryStore opens the store under baseDir, scoped to serverURL so
// different backends keep separate histories. An empty baseDir keeps
// everything in memory.
func NewHistoryStore(baseDir, serverURL string, limit int, logger *slog.Logger) (*HistoryStore, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	if baseDir == "" {
		// Memory-only mode (no persistence)
		return &HistoryStore{limit: limit, logger: logger, cache: make(map[string][]byte)}, nil
	}

	dir := baseDir
	if serverURL != "" {
		dir = filepath.Join(baseDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "marquee.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketHistory)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &HistoryStore{db: db, limit: limit, logger: logger, cache: make(map[string][]byte)}, nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *HistoryStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *HistoryStore) get(bucket []byte, key string, dest any) bool {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return s.decode(cacheKey, data, dest)
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to read from store", "key", cacheKey, "error", err)
		return false
	}

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return s.decode(cacheKey, data, dest)
}

func (s *HistoryStore) decode(cacheKey string, data []byte, dest any) bool {
	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.Warn("failed to decode stored value", "key", cacheKey, "error", err)
		return false
	}
	return true
}

func (s *HistoryStore) set(bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[string(bucket)+":"+key] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *HistoryStore) delete(bucket []byte, key string) error {
	s.mu.Lock()
	delete(s.cache, string(bucket)+":"+key)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucket); b != nil {
			return b.Delete([]byte(key))
		}
		return nil
	})
}

// === Watch history ===

// List returns the watch history, most recent first
func (s *HistoryStore) List() []domain.WatchRecord {
	var records []domain.WatchRecord
	if !s.get(bucketHistory, historyKey, &records) || records == nil {
		return []domain.WatchRecord{}
	}
	return records
}

// Record adds rec to the front of the history. An earlier record for the
// same entry is dropped and the list is trimmed to the store's limit.
func (s *HistoryStore) Record(rec domain.WatchRecord) error {
	if rec.EntryID == "" {
		return fmt.Errorf("watch record has no entry id")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	records := s.List()
	records = slices.DeleteFunc(records, func(r domain.WatchRecord) bool {
		return r.EntryID == rec.EntryID
	})
	records = slices.Insert(records, 0, rec)
	if len(records) > s.limit {
		records = records[:s.limit]
	}

	return s.set(bucketHistory, historyKey, records)
}

// Merge folds remote records into the local history. Local records win for
// entries present in both; the result is ordered by watch time.
func (s *HistoryStore) Merge(remote []domain.WatchRecord) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	local := s.List()
	seen := make(map[string]bool, len(local))
	for _, r := range local {
		seen[r.EntryID] = true
	}

	merged := local
	for _, r := range remote {
		if r.EntryID == "" || seen[r.EntryID] {
			continue
		}
		seen[r.EntryID] = true
		merged = append(merged, r)
	}

	slices.SortStableFunc(merged, func(a, b domain.WatchRecord) int {
		return b.WatchedAt.Compare(a.WatchedAt)
	})
	if len(merged) > s.limit {
		merged = merged[:s.limit]
	}

	return s.set(bucketHistory, historyKey, merged)
}

// Clear removes all watch history
func (s *HistoryStore) Clear() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.delete(bucketHistory, historyKey)
}
