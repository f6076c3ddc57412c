package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// Device format. Every PCM buffer is converted to this before playback.
const (
	BitDepth       = 16
	BytesPerSample = BitDepth / 8
)

// ErrAudioUnavailable is returned when no audio device can be opened.
var ErrAudioUnavailable = errors.New("audio output not available")

// PCM is signed 16-bit little-endian audio.
type PCM struct {
	Data       []byte
	SampleRate int
	Channels   int
}

// Validate checks that the buffer is aligned to whole frames.
func (p PCM) Validate() error {
	if len(p.Data) == 0 {
		return errors.New("empty PCM data")
	}
	if p.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", p.SampleRate)
	}
	if p.Channels != 1 && p.Channels != 2 {
		return fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", p.Channels)
	}
	if frame := p.Channels * BytesPerSample; len(p.Data)%frame != 0 {
		return fmt.Errorf("PCM data length %d is not aligned to %d-byte frames", len(p.Data), frame)
	}
	return nil
}

// Frames returns the number of sample frames.
func (p PCM) Frames() int {
	if p.Channels <= 0 {
		return 0
	}
	return len(p.Data) / (p.Channels * BytesPerSample)
}

// Duration returns how long the buffer plays.
func (p PCM) Duration() time.Duration {
	if p.SampleRate <= 0 {
		return 0
	}
	return time.Duration(p.Frames()) * time.Second / time.Duration(p.SampleRate)
}

// Mono downmixes stereo by averaging both channels. Mono input is returned
// unchanged.
func (p PCM) Mono() PCM {
	if p.Channels != 2 {
		return p
	}

	frames := p.Frames()
	out := make([]byte, frames*BytesPerSample)
	for i := 0; i < frames; i++ {
		l := int16(binary.LittleEndian.Uint16(p.Data[i*4:]))
		r := int16(binary.LittleEndian.Uint16(p.Data[i*4+2:]))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16((int32(l)+int32(r))/2)))
	}
	return PCM{Data: out, SampleRate: p.SampleRate, Channels: 1}
}

// Resample converts mono audio to rate with linear interpolation.
func (p PCM) Resample(rate int) PCM {
	if rate <= 0 || p.SampleRate == rate || p.Channels != 1 {
		return p
	}

	in := p.Frames()
	if in == 0 {
		return PCM{SampleRate: rate, Channels: 1}
	}

	out := int(int64(in) * int64(rate) / int64(p.SampleRate))
	data := make([]byte, out*BytesPerSample)
	step := float64(p.SampleRate) / float64(rate)

	sample := func(i int) float64 {
		if i >= in {
			i = in - 1
		}
		return float64(int16(binary.LittleEndian.Uint16(p.Data[i*2:])))
	}

	for i := 0; i < out; i++ {
		pos := float64(i) * step
		j := int(pos)
		frac := pos - float64(j)
		v := sample(j)*(1-frac) + sample(j+1)*frac
		binary.LittleEndian.PutUint16(data[i*2:], uint16(int16(v)))
	}

	return PCM{Data: data, SampleRate: rate, Channels: 1}
}

// Silence returns d of mono silence at rate.
func Silence(d time.Duration, rate int) PCM {
	frames := int(d * time.Duration(rate) / time.Second)
	return PCM{Data: make([]byte, frames*BytesPerSample), SampleRate: rate, Channels: 1}
}
