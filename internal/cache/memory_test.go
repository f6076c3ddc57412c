package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestMemoryStore_BasicOperations(t *testing.T) {
	store := NewMemoryStore(1024)

	key := "test-key"
	value := []byte("test-value")

	if err := store.Put(key, value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	retrieved, ok := store.Get(key)
	if !ok {
		t.Fatal("Get failed: key not found")
	}
	if string(retrieved) != string(value) {
		t.Errorf("Retrieved value mismatch: got %s, want %s", retrieved, value)
	}

	if !store.Contains(key) {
		t.Error("Contains returned false for existing key")
	}

	if got := store.Stats().Size; got != int64(len(value)) {
		t.Errorf("Size mismatch: got %d, want %d", got, len(value))
	}

	store.Delete(key)
	if store.Contains(key) {
		t.Error("Key still exists after delete")
	}
	if got := store.Stats().Size; got != 0 {
		t.Errorf("Size not zero after delete: %d", got)
	}
}

func TestMemoryStore_LRUEviction(t *testing.T) {
	store := NewMemoryStore(100)

	for i := 0; i < 5; i++ {
		if err := store.Put(fmt.Sprintf("key-%d", i), make([]byte, 20)); err != nil {
			t.Fatalf("Put failed for key-%d: %v", i, err)
		}
	}

	// Touch key-0 and key-1 so key-2 and key-3 are the oldest
	store.Get("key-0")
	store.Get("key-1")

	if err := store.Put("key-new", make([]byte, 30)); err != nil {
		t.Fatalf("Put failed for new key: %v", err)
	}

	for _, key := range []string{"key-0", "key-1", "key-4", "key-new"} {
		if !store.Contains(key) {
			t.Errorf("%s should have survived eviction", key)
		}
	}
	for _, key := range []string{"key-2", "key-3"} {
		if store.Contains(key) {
			t.Errorf("%s should have been evicted", key)
		}
	}

	stats := store.Stats()
	if stats.Evictions != 2 {
		t.Errorf("Expected 2 evictions, got %d", stats.Evictions)
	}
	if stats.Size > 100 {
		t.Errorf("Size %d exceeds capacity", stats.Size)
	}
}

func TestMemoryStore_Replace(t *testing.T) {
	store := NewMemoryStore(100)

	store.Put("key", make([]byte, 40))
	store.Put("key", make([]byte, 10))

	stats := store.Stats()
	if stats.Size != 10 || stats.Items != 1 {
		t.Errorf("Expected one 10-byte item, got %d items and %d bytes", stats.Items, stats.Size)
	}
}

func TestMemoryStore_TooLarge(t *testing.T) {
	store := NewMemoryStore(10)

	if err := store.Put("big", make([]byte, 11)); err != ErrItemTooLarge {
		t.Errorf("Expected ErrItemTooLarge, got %v", err)
	}
}

func TestMemoryStore_Stats(t *testing.T) {
	store := NewMemoryStore(100)
	store.Put("a", []byte("1"))

	store.Get("a")
	store.Get("a")
	store.Get("missing")

	stats := store.Stats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("Expected 2 hits and 1 miss, got %d and %d", stats.Hits, stats.Misses)
	}
	if rate := stats.HitRate(); rate < 0.66 || rate > 0.67 {
		t.Errorf("Unexpected hit rate %f", rate)
	}
}

func TestMemoryStore_Prune(t *testing.T) {
	store := NewMemoryStore(100)
	store.Put("old", []byte("1"))
	time.Sleep(20 * time.Millisecond)
	store.Put("new", []byte("2"))

	if pruned := store.Prune(10 * time.Millisecond); pruned != 1 {
		t.Errorf("Expected 1 pruned entry, got %d", pruned)
	}
	if store.Contains("old") || !store.Contains("new") {
		t.Error("Prune removed the wrong entry")
	}
}
