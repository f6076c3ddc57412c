//go:build nocgo
// +build nocgo

package audio

import "context"

// OtoPlayer is unavailable in builds without cgo.
type OtoPlayer struct{}

var _ Player = (*OtoPlayer)(nil)

// NewPlayer always fails with ErrAudioUnavailable.
func NewPlayer(Config) (*OtoPlayer, error) {
	return nil, ErrAudioUnavailable
}

// SampleRate returns 0.
func (p *OtoPlayer) SampleRate() int { return 0 }

// Play always fails with ErrAudioUnavailable.
func (p *OtoPlayer) Play(context.Context, PCM, float64) error {
	return ErrAudioUnavailable
}

// Close does nothing.
func (p *OtoPlayer) Close() error { return nil }
