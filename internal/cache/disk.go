package cache

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const indexFile = "cache.index"

// DiskStore is the L2 tier: files under a directory, optionally zstd
// compressed, with a gob-encoded index that survives restarts.
type DiskStore struct {
	dir      string
	capacity int64
	size     int64

	encoder *zstd.Encoder // Nil when compression is off
	decoder *zstd.Decoder

	index map[string]*diskEntry

	mu    sync.Mutex
	stats Stats
}

var _ Store = (*DiskStore)(nil)

// diskEntry is exported field-wise for gob.
type diskEntry struct {
	File         string // Relative to dir
	Size         int64  // Bytes on disk
	OriginalSize int64
	Compressed   bool
	Created      time.Time
	LastAccess   time.Time
}

// NewDiskStore opens or creates a disk store in dir.
func NewDiskStore(dir string, capacity int64, compressionLevel int) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	d := &DiskStore{
		dir:      dir,
		capacity: capacity,
		index:    make(map[string]*diskEntry),
	}

	if compressionLevel > 0 {
		var err error
		d.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
	}

	// Entries written compressed stay readable after compression is turned off.
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	d.decoder = decoder

	// A corrupt index only costs the cached data.
	if err := d.loadIndex(); err != nil {
		d.index = make(map[string]*diskEntry)
	}
	for _, e := range d.index {
		d.size += e.Size
	}

	return d, nil
}

// Get reads key from disk. Missing or undecodable files are dropped.
func (d *DiskStore) Get(key string) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.index[key]
	if !ok {
		d.stats.Misses++
		return nil, false
	}

	data, err := os.ReadFile(filepath.Join(d.dir, entry.File))
	if err == nil && entry.Compressed {
		data, err = d.decoder.DecodeAll(data, nil)
	}
	if err != nil {
		d.drop(key)
		d.stats.Misses++
		return nil, false
	}

	entry.LastAccess = time.Now()
	d.stats.Hits++
	return data, true
}

// Put writes value, compressing it when that saves space.
func (d *DiskStore) Put(key string, value []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	data := value
	compressed := false
	if d.encoder != nil && len(value) > 1024 {
		if packed := d.encoder.EncodeAll(value, nil); len(packed) < len(value) {
			data = packed
			compressed = true
		}
	}

	size := int64(len(data))
	if size > d.capacity {
		return ErrItemTooLarge
	}

	if _, ok := d.index[key]; ok {
		d.drop(key)
	}
	d.evictUntil(d.capacity - size)

	file := key + ".cache"
	if err := writeAtomic(filepath.Join(d.dir, file), func(f *os.File) error {
		_, err := f.Write(data)
		return err
	}); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	now := time.Now()
	d.index[key] = &diskEntry{
		File:         file,
		Size:         size,
		OriginalSize: int64(len(value)),
		Compressed:   compressed,
		Created:      now,
		LastAccess:   now,
	}
	d.size += size
	return nil
}

// Delete removes key if present.
func (d *DiskStore) Delete(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drop(key)
}

// Contains reports whether key is indexed.
func (d *DiskStore) Contains(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.index[key]
	return ok
}

// Prune removes entries created more than maxAge ago.
func (d *DiskStore) Prune(maxAge time.Duration) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	pruned := 0
	for key, e := range d.index {
		if e.Created.Before(cutoff) {
			d.drop(key)
			pruned++
		}
	}
	return pruned
}

// Stats returns cache statistics.
func (d *DiskStore) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	stats := d.stats
	stats.Capacity = d.capacity
	stats.Size = d.size
	stats.Items = len(d.index)
	return stats
}

// Close saves the index.
func (d *DiskStore) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.encoder != nil {
		_ = d.encoder.Close()
	}
	d.decoder.Close()
	return d.saveIndex()
}

// evictUntil removes least recently accessed entries until the store
// holds at most limit bytes. Must be called with the lock held.
func (d *DiskStore) evictUntil(limit int64) {
	if d.size <= limit {
		return
	}

	keys := make([]string, 0, len(d.index))
	for key := range d.index {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return d.index[keys[i]].LastAccess.Before(d.index[keys[j]].LastAccess)
	})

	for _, key := range keys {
		if d.size <= limit {
			return
		}
		d.drop(key)
		d.stats.Evictions++
	}
}

// drop removes key and its file. Must be called with the lock held.
func (d *DiskStore) drop(key string) {
	e, ok := d.index[key]
	if !ok {
		return
	}
	_ = os.Remove(filepath.Join(d.dir, e.File))
	d.size -= e.Size
	delete(d.index, key)
}

func (d *DiskStore) loadIndex() error {
	f, err := os.Open(filepath.Join(d.dir, indexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close() //nolint:errcheck

	if err := gob.NewDecoder(f).Decode(&d.index); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheCorrupted, err)
	}
	return nil
}

func (d *DiskStore) saveIndex() error {
	return writeAtomic(filepath.Join(d.dir, indexFile), func(f *os.File) error {
		return gob.NewEncoder(f).Encode(d.index)
	})
}

// writeAtomic writes through a temporary file and renames it into place.
func writeAtomic(path string, write func(*os.File) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	err = write(f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
