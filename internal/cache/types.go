package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// Common errors for cache operations
var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheCorrupted is returned when cache data is corrupted
	ErrCacheCorrupted = errors.New("cache data corrupted")
)

// Level identifies a cache tier.
type Level int

const (
	LevelMemory Level = iota // L1
	LevelDisk                // L2
)

// String returns the name of the level.
func (l Level) String() string {
	switch l {
	case LevelMemory:
		return "L1-Memory"
	case LevelDisk:
		return "L2-Disk"
	default:
		return "Unknown"
	}
}

// Stats holds cache counters.
type Stats struct {
	Capacity  int64 // Bytes
	Size      int64 // Bytes
	Items     int
	Hits      int64
	Misses    int64
	Evictions int64
}

// HitRate returns hits / (hits + misses).
func (s Stats) HitRate() float64 {
	if s.Hits+s.Misses == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Hits+s.Misses)
}

// Store is a single cache tier.
type Store interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
	Delete(key string)
	Contains(key string) bool
	Prune(maxAge time.Duration) int
	Stats() Stats
}

// Key identifies one synthesized clip. Every field that changes the
// produced audio must be part of it.
type Key struct {
	Backend string
	Voice   string
	Text    string
	Rate    float64
	Pitch   float64
}

// String hashes the key into a fixed-length cache key.
func (k Key) String() string {
	data := fmt.Sprintf("%s|%s|%.2f|%.2f|%s", k.Backend, k.Voice, k.Rate, k.Pitch, k.Text)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:16])
}

// Config holds configuration for the cache manager.
type Config struct {
	MemoryCapacity   int64  // Bytes
	DiskCapacity     int64  // Bytes, 0 disables the disk tier
	DiskPath         string // Directory for cache files
	CompressionLevel int    // zstd level, 0 disables compression

	TTL             time.Duration // Age after which entries are pruned
	CleanupInterval time.Duration // 0 disables background cleanup
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		MemoryCapacity:   32 * 1024 * 1024,
		DiskCapacity:     256 * 1024 * 1024,
		CompressionLevel: 3,
		TTL:              7 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}
