//go:build !(js && wasm)

package browser

import "github.com/dgnsrekt/speechbridge/tts"

// Synthesizer is unavailable outside the browser.
type Synthesizer struct{}

var _ tts.Synthesizer = (*Synthesizer)(nil)

// Detect always reports that no browser is present.
func Detect() (*Synthesizer, bool) {
	return nil, false
}

// Speak does nothing.
func (*Synthesizer) Speak(*tts.Utterance) {}

// Cancel does nothing.
func (*Synthesizer) Cancel() {}

// Voices returns nil.
func (*Synthesizer) Voices() []tts.Voice { return nil }
