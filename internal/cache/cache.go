// Package cache keeps fetched corpora on disk so repeated evaluations of the
// same idea do not hit the GitHub search API again.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/boltdb/bolt"

	"github.com/chriscorrea/ideascore/internal/analysis"
)

var corpusBucket = []byte("corpora")

// Searcher is anything that can fetch a corpus for an idea.
type Searcher interface {
	Search(ctx context.Context, idea, language string) ([]analysis.Document, error)
}

// Store is a bolt-backed corpus cache. It is safe for concurrent use.
type Store struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

type entry struct {
	FetchedAt time.Time           `json:"fetched_at"`
	Documents []analysis.Document `json:"documents"`
}

// Open opens or creates the cache database at path. Entries older than ttl
// are treated as missing; ttl <= 0 keeps entries forever.
func Open(path string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache %q: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(corpusBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache bucket: %w", err)
	}
	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

// Key builds the cache key for an idea and language filter.
func Key(idea, language string) []byte {
	idea = strings.Join(strings.Fields(strings.ToLower(idea)), " ")
	language = strings.ToLower(strings.TrimSpace(language))
	return []byte(language + "\x00" + idea)
}

// Get returns the cached corpus for idea and language, if present and fresh.
func (s *Store) Get(idea, language string) ([]analysis.Document, bool, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(corpusBucket).Get(Key(idea, language)); v != nil {
			// bolt values are only valid inside the transaction
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("read cache: %w", err)
	}
	if raw == nil {
		return nil, false, nil
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false, fmt.Errorf("decode cache entry: %w", err)
	}
	if s.ttl > 0 && s.now().Sub(e.FetchedAt) > s.ttl {
		slog.Debug("Cache entry expired", "idea", idea, "language", language, "fetchedAt", e.FetchedAt)
		return nil, false, nil
	}
	if e.Documents == nil {
		e.Documents = []analysis.Document{}
	}
	return e.Documents, true, nil
}

// Put stores docs as the corpus for idea and language.
func (s *Store) Put(idea, language string, docs []analysis.Document) error {
	raw, err := json.Marshal(entry{FetchedAt: s.now(), Documents: docs})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(corpusBucket).Put(Key(idea, language), raw)
	})
}

// Len returns the number of cached corpora, fresh or not.
func (s *Store) Len() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(corpusBucket).Stats().KeyN
		return nil
	})
	return n, err
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// CachedSearcher serves corpora from a Store and falls back to next on a miss.
type CachedSearcher struct {
	store *Store
	next  Searcher
}

// NewSearcher wraps next with store.
func NewSearcher(store *Store, next Searcher) *CachedSearcher {
	return &CachedSearcher{store: store, next: next}
}

// Search returns a cached corpus when available, otherwise fetches and
// stores it. Cache failures are logged and never fail the search; upstream
// errors are returned and not cached.
func (c *CachedSearcher) Search(ctx context.Context, idea, language string) ([]analysis.Document, error) {
	docs, ok, err := c.store.Get(idea, language)
	if err != nil {
		slog.Warn("Corpus cache read failed", "error", err)
	}
	if ok {
		slog.Debug("Corpus cache hit", "idea", idea, "language", language, "documents", len(docs))
		return docs, nil
	}

	docs, err = c.next.Search(ctx, idea, language)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(idea, language, docs); err != nil {
		slog.Warn("Corpus cache write failed", "error", err)
	}
	return docs, nil
}
