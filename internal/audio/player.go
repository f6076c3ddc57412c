package audio

import (
	"context"
	"time"
)

// Player plays PCM buffers one at a time.
type Player interface {
	// Play blocks until pcm has played or ctx is done. Playback stops
	// immediately when ctx ends and ctx.Err() is returned.
	Play(ctx context.Context, pcm PCM, volume float64) error

	// Close releases the audio device.
	Close() error
}

// Config contains configuration for the audio player.
type Config struct {
	SampleRate int           // Device sample rate
	BufferSize time.Duration // Device buffer
}

// DefaultConfig returns the default player configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate: 22050,
		BufferSize: 50 * time.Millisecond,
	}
}

// pollInterval is how often a playing buffer is checked for completion.
const pollInterval = 10 * time.Millisecond
