package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// Manager looks keys up in L1, then L2, promoting L2 hits into L1. Writes
// go to both tiers.
type Manager struct {
	memory *MemoryStore
	disk   *DiskStore // Nil when the disk tier is disabled

	config Config

	cleanupStop chan struct{}
	cleanupWg   sync.WaitGroup
	closeOnce   sync.Once
}

// NewManager creates a cache manager.
func NewManager(config Config) (*Manager, error) {
	m := &Manager{
		memory:      NewMemoryStore(config.MemoryCapacity),
		config:      config,
		cleanupStop: make(chan struct{}),
	}

	if config.DiskCapacity > 0 && config.DiskPath != "" {
		disk, err := NewDiskStore(config.DiskPath, config.DiskCapacity, config.CompressionLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to create disk cache: %w", err)
		}
		m.disk = disk

		stats := disk.Stats()
		log.Debug("Opened audio cache",
			"dir", config.DiskPath,
			"items", stats.Items,
			"size", humanize.Bytes(uint64(stats.Size)),
			"capacity", humanize.Bytes(uint64(stats.Capacity)))
	}

	if config.CleanupInterval > 0 && config.TTL > 0 {
		m.cleanupWg.Add(1)
		go m.cleanupLoop()
	}

	return m, nil
}

// Get returns the cached value for key.
func (m *Manager) Get(key string) ([]byte, Level, bool) {
	if data, ok := m.memory.Get(key); ok {
		return data, LevelMemory, true
	}

	if m.disk != nil {
		if data, ok := m.disk.Get(key); ok {
			// Best effort; oversized clips stay disk-only.
			_ = m.memory.Put(key, data)
			return data, LevelDisk, true
		}
	}

	return nil, LevelMemory, false
}

// Put stores value in every tier that can hold it.
func (m *Manager) Put(key string, value []byte) error {
	memErr := m.memory.Put(key, value)
	if m.disk == nil {
		return memErr
	}

	if err := m.disk.Put(key, value); err != nil {
		if memErr == nil && err == ErrItemTooLarge {
			return nil
		}
		return err
	}
	return nil
}

// Delete removes key from every tier.
func (m *Manager) Delete(key string) {
	m.memory.Delete(key)
	if m.disk != nil {
		m.disk.Delete(key)
	}
}

// Stats returns per-tier statistics.
func (m *Manager) Stats() map[Level]Stats {
	stats := map[Level]Stats{LevelMemory: m.memory.Stats()}
	if m.disk != nil {
		stats[LevelDisk] = m.disk.Stats()
	}
	return stats
}

// Cleanup prunes entries older than the configured TTL.
func (m *Manager) Cleanup() int {
	if m.config.TTL <= 0 {
		return 0
	}

	pruned := m.memory.Prune(m.config.TTL)
	if m.disk != nil {
		pruned += m.disk.Prune(m.config.TTL)
	}
	if pruned > 0 {
		log.Debug("Pruned audio cache", "entries", pruned)
	}
	return pruned
}

// Close stops background cleanup and saves the disk index.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		close(m.cleanupStop)
		m.cleanupWg.Wait()

		if m.disk != nil {
			if closeErr := m.disk.Close(); closeErr != nil {
				err = fmt.Errorf("failed to close disk cache: %w", closeErr)
			}
		}
	})
	return err
}

func (m *Manager) cleanupLoop() {
	defer m.cleanupWg.Done()

	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Cleanup()
		case <-m.cleanupStop:
			return
		}
	}
}
