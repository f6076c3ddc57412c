package audio

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MockPlayer implements Player for testing purposes.
// It simulates playback by waiting for the buffer's duration, scaled by a
// delay factor, without producing sound.
type MockPlayer struct {
	mu sync.Mutex

	played  []PCM
	volumes []float64
	closed  bool

	// Test configuration
	delayFactor float64 // 0 returns immediately, 1 is real time
	failWith    error

	// Test callbacks
	OnPlay func(pcm PCM)
}

var _ Player = (*MockPlayer)(nil)

// NewMockPlayer creates a mock player that returns immediately.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{}
}

// Play records pcm and waits out its simulated duration.
func (mp *MockPlayer) Play(ctx context.Context, pcm PCM, volume float64) error {
	mp.mu.Lock()
	if mp.closed {
		mp.mu.Unlock()
		return errors.New("player is closed")
	}
	if mp.failWith != nil {
		err := mp.failWith
		mp.mu.Unlock()
		return err
	}
	mp.played = append(mp.played, pcm)
	mp.volumes = append(mp.volumes, volume)
	delay := time.Duration(float64(pcm.Duration()) * mp.delayFactor)
	onPlay := mp.OnPlay
	mp.mu.Unlock()

	if onPlay != nil {
		onPlay(pcm)
	}

	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close marks the player closed.
func (mp *MockPlayer) Close() error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.closed = true
	return nil
}

// Test helper methods

// SetDelayFactor sets how much of each buffer's duration Play waits.
func (mp *MockPlayer) SetDelayFactor(factor float64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.delayFactor = factor
}

// SetFailure makes every Play return err. Nil clears it.
func (mp *MockPlayer) SetFailure(err error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.failWith = err
}

// Played returns the buffers passed to Play.
func (mp *MockPlayer) Played() []PCM {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	played := make([]PCM, len(mp.played))
	copy(played, mp.played)
	return played
}

// Volumes returns the volume passed with each buffer.
func (mp *MockPlayer) Volumes() []float64 {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	volumes := make([]float64, len(mp.volumes))
	copy(volumes, mp.volumes)
	return volumes
}

// IsClosed reports whether Close was called.
func (mp *MockPlayer) IsClosed() bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.closed
}
