//go:build !nocgo
// +build !nocgo

package audio

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process.
var (
	deviceOnce sync.Once
	device     *oto.Context
	deviceRate int
	deviceErr  error
)

// OtoPlayer plays PCM through the system audio device.
type OtoPlayer struct {
	ctx        *oto.Context
	sampleRate int

	// Serializes playback; one buffer plays at a time.
	mu     sync.Mutex
	closed bool
}

var _ Player = (*OtoPlayer)(nil)

// NewPlayer opens the audio device. The device is opened once per process;
// later calls share it and keep its original sample rate.
func NewPlayer(cfg Config) (*OtoPlayer, error) {
	deviceOnce.Do(func() {
		device, deviceErr = openDevice(cfg)
		deviceRate = cfg.SampleRate
	})
	if deviceErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrAudioUnavailable, deviceErr)
	}
	return &OtoPlayer{ctx: device, sampleRate: deviceRate}, nil
}

// openDevice creates the oto context, retrying where the platform audio
// service is known to come up slowly.
func openDevice(cfg Config) (*oto.Context, error) {
	retries := 1
	readyTimeout := 5 * time.Second
	if runtime.GOOS == "darwin" {
		// CoreAudio can race during initialization
		retries = 3
		readyTimeout = 10 * time.Second
	}

	options := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   cfg.BufferSize,
	}

	var lastErr error
	for i := 0; i < retries; i++ {
		if i > 0 {
			log.Debug("Retrying audio context initialization", "attempt", i+1, "of", retries)
			time.Sleep(200 * time.Millisecond)
		}

		ctx, ready, err := oto.NewContext(options)
		if err != nil {
			lastErr = err
			continue
		}

		select {
		case <-ready:
			log.Debug("Audio context initialized",
				"sample_rate", options.SampleRate,
				"buffer_size", options.BufferSize)
			return ctx, nil
		case <-time.After(readyTimeout):
			// oto v3 contexts cannot be closed; this one is left to the GC.
			lastErr = fmt.Errorf("audio context initialization timeout after %v", readyTimeout)
		}
	}

	return nil, lastErr
}

// SampleRate returns the device sample rate.
func (p *OtoPlayer) SampleRate() int {
	return p.sampleRate
}

// Play converts pcm to the device format and plays it to the end.
func (p *OtoPlayer) Play(ctx context.Context, pcm PCM, volume float64) error {
	if err := pcm.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrAudioUnavailable
	}

	// The reader must keep data alive until the player is closed.
	data := pcm.Mono().Resample(p.sampleRate).Data
	player := p.ctx.NewPlayer(bytes.NewReader(data))
	defer player.Close()

	player.SetVolume(volume)
	player.Play()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}

	return player.Err()
}

// Close marks the player closed. The shared device stays open.
func (p *OtoPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
