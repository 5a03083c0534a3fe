package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/chriscorrea/ideascore/internal/analysis"
)

type fakeSearcher struct {
	calls int
	docs  []analysis.Document
	err   error
}

func (f *fakeSearcher) Search(ctx context.Context, idea, language string) ([]analysis.Document, error) {
	f.calls++
	return f.docs, f.err
}

func openTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "cache.db"), ttl)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStorePutGet(t *testing.T) {
	store := openTestStore(t, time.Hour)
	docs := []analysis.Document{
		{Name: "todo-app", Description: "simple todo list", Topics: []string{"todo"}, URL: "u1", Stars: 10},
	}

	if _, ok, err := store.Get("todo list", "python"); err != nil || ok {
		t.Fatalf("Get() on empty store = ok %v, err %v", ok, err)
	}
	if err := store.Put("todo list", "python", docs); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok, err := store.Get("  Todo   LIST ", "Python")
	if err != nil || !ok {
		t.Fatalf("Get() = ok %v, err %v", ok, err)
	}
	if len(got) != 1 || got[0].Name != "todo-app" || got[0].Stars != 10 || got[0].Topics[0] != "todo" {
		t.Errorf("Get() = %+v, want %+v", got, docs)
	}

	if _, ok, _ := store.Get("todo list", "go"); ok {
		t.Error("language must be part of the key")
	}
	if n, err := store.Len(); err != nil || n != 1 {
		t.Errorf("Len() = %d, %v; want 1", n, err)
	}
}

func TestStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := Open(path, time.Hour)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := store.Put("todo list", "python", []analysis.Document{{Name: "todo-app", Stars: 3}}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	store, err = Open(path, time.Hour)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer store.Close()

	got, ok, err := store.Get("todo list", "python")
	if err != nil || !ok || len(got) != 1 || got[0].Name != "todo-app" {
		t.Errorf("Get() after reopen = %+v, ok %v, err %v", got, ok, err)
	}
	if n, err := store.Len(); err != nil || n != 1 {
		t.Errorf("Len() after reopen = %d, %v; want 1", n, err)
	}
}

func TestStoreEmptyCorpusIsCached(t *testing.T) {
	store := openTestStore(t, time.Hour)
	if err := store.Put("nothing", "", nil); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, ok, err := store.Get("nothing", "")
	if err != nil || !ok {
		t.Fatalf("Get() = ok %v, err %v", ok, err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Get() = %#v, want empty non-nil slice", got)
	}
}

func TestStoreExpiry(t *testing.T) {
	tests := []struct {
		name   string
		ttl    time.Duration
		age    time.Duration
		wantOK bool
	}{
		{name: "fresh", ttl: time.Hour, age: time.Minute, wantOK: true},
		{name: "expired", ttl: time.Hour, age: 2 * time.Hour, wantOK: false},
		{name: "no expiry", ttl: 0, age: 1000 * time.Hour, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := openTestStore(t, tt.ttl)
			start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			store.now = func() time.Time { return start }
			if err := store.Put("idea", "go", []analysis.Document{{Name: "x"}}); err != nil {
				t.Fatalf("Put() error = %v", err)
			}

			store.now = func() time.Time { return start.Add(tt.age) }
			_, ok, err := store.Get("idea", "go")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if ok != tt.wantOK {
				t.Errorf("Get() ok = %v, want %v", ok, tt.wantOK)
			}
		})
	}
}

func TestCachedSearcher(t *testing.T) {
	store := openTestStore(t, time.Hour)
	upstream := &fakeSearcher{docs: []analysis.Document{{Name: "a"}}}
	searcher := NewSearcher(store, upstream)

	for i := 0; i < 3; i++ {
		docs, err := searcher.Search(context.Background(), "todo list", "python")
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(docs) != 1 || docs[0].Name != "a" {
			t.Fatalf("Search() = %+v", docs)
		}
	}
	if upstream.calls != 1 {
		t.Errorf("upstream called %d times, want 1", upstream.calls)
	}
}

func TestCachedSearcherDoesNotCacheErrors(t *testing.T) {
	store := openTestStore(t, time.Hour)
	upstream := &fakeSearcher{err: errors.New("rate limited")}
	searcher := NewSearcher(store, upstream)

	if _, err := searcher.Search(context.Background(), "todo", "go"); err == nil {
		t.Fatal("Search() expected upstream error")
	}
	upstream.err = nil
	upstream.docs = []analysis.Document{{Name: "b"}}

	docs, err := searcher.Search(context.Background(), "todo", "go")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(docs) != 1 || upstream.calls != 2 {
		t.Errorf("expected a fresh upstream call after an error, calls = %d", upstream.calls)
	}
}
