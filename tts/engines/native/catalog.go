package native

import (
	"errors"

	"github.com/dgnsrekt/speechbridge/tts"
)

// Catalog exposes a backend's voices without opening the audio device or
// the cache. It cannot speak.
type Catalog struct {
	backend Backend
}

var _ tts.Synthesizer = (*Catalog)(nil)

// NewCatalog wraps backend for voice listing.
func NewCatalog(backend Backend) *Catalog {
	return &Catalog{backend: backend}
}

// Speak fails every utterance with synthesis-unavailable.
func (c *Catalog) Speak(u *tts.Utterance) {
	go u.Fail(tts.NewSynthesisError(tts.ErrorCodeSynthesisUnavailable,
		errors.New("voice catalog has no audio output")))
}

// Cancel implements tts.Synthesizer.
func (c *Catalog) Cancel() {}

// Voices implements tts.Synthesizer.
func (c *Catalog) Voices() []tts.Voice {
	return c.backend.Voices()
}
