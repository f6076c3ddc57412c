// Package mock provides a scriptable speech synthesizer for testing.
package mock

import (
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/speechbridge/tts"
)

// Recorded call names, in the order they hit the synthesizer.
const (
	CallSpeak  = "speak"
	CallCancel = "cancel"
)

// Synthesizer implements tts.Synthesizer without producing sound.
//
// Utterances stay pending until the test calls Finish or Fail. A canceled
// utterance is dropped silently, the way a host engine drops it.
type Synthesizer struct {
	mu sync.Mutex

	voices  []tts.Voice
	current *tts.Utterance
	spoken  []*tts.Utterance
	calls   []string

	// Auto-finish settings, for dry runs outside tests
	autoFinish     bool
	wordsPerMinute int
}

var _ tts.Synthesizer = (*Synthesizer)(nil)

// New creates a mock synthesizer offering voices.
func New(voices ...tts.Voice) *Synthesizer {
	return &Synthesizer{voices: voices}
}

// NewAutoFinish creates a mock that ends each utterance after the time it
// would take to read it at wordsPerMinute.
func NewAutoFinish(wordsPerMinute int, voices ...tts.Voice) *Synthesizer {
	s := New(voices...)
	s.autoFinish = true
	s.wordsPerMinute = wordsPerMinute
	return s
}

// DefaultVoices returns a small voice list with a repeated language.
func DefaultVoices() []tts.Voice {
	return []tts.Voice{
		{VoiceURI: "mock-voice-1", Name: "Mock Voice 1", Lang: "en-US", LocalService: true, Default: true},
		{VoiceURI: "mock-voice-2", Name: "Mock Voice 2", Lang: "en-GB", LocalService: true},
		{VoiceURI: "mock-voice-3", Name: "Mock Voice 3", Lang: "en-US", LocalService: true},
	}
}

// Speak records the utterance and makes it current.
func (s *Synthesizer) Speak(u *tts.Utterance) {
	s.mu.Lock()
	s.calls = append(s.calls, CallSpeak)
	s.spoken = append(s.spoken, u)
	s.current = u
	auto := s.autoFinish
	s.mu.Unlock()

	if auto {
		go func() {
			time.Sleep(s.estimateDuration(u))
			s.finish(u)
		}()
	}
}

// Cancel drops the current utterance without calling back.
func (s *Synthesizer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, CallCancel)
	s.current = nil
}

// Voices returns a copy of the configured voices.
func (s *Synthesizer) Voices() []tts.Voice {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.voices == nil {
		return nil
	}
	voices := make([]tts.Voice, len(s.voices))
	copy(voices, s.voices)
	return voices
}

// Test control methods

// SetVoices replaces the voice list, as a host does when voices load late.
func (s *Synthesizer) SetVoices(voices []tts.Voice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voices = voices
}

// Finish ends the current utterance naturally. It reports false when
// nothing is being spoken.
func (s *Synthesizer) Finish() bool {
	s.mu.Lock()
	u := s.current
	s.mu.Unlock()

	if u == nil {
		return false
	}
	return s.finish(u)
}

// Fail reports err for the current utterance. It reports false when
// nothing is being spoken.
func (s *Synthesizer) Fail(err error) bool {
	s.mu.Lock()
	u := s.current
	if u != nil {
		s.current = nil
	}
	s.mu.Unlock()

	if u == nil {
		return false
	}
	u.Fail(err)
	return true
}

// Current returns the utterance being spoken, or nil.
func (s *Synthesizer) Current() *tts.Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Spoken returns every utterance passed to Speak.
func (s *Synthesizer) Spoken() []*tts.Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()

	spoken := make([]*tts.Utterance, len(s.spoken))
	copy(spoken, s.spoken)
	return spoken
}

// Calls returns the recorded call names.
func (s *Synthesizer) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	calls := make([]string, len(s.calls))
	copy(calls, s.calls)
	return calls
}

// finish ends u if it is still current.
func (s *Synthesizer) finish(u *tts.Utterance) bool {
	s.mu.Lock()
	if s.current != u {
		s.mu.Unlock()
		return false
	}
	s.current = nil
	s.mu.Unlock()

	u.End()
	return true
}

// estimateDuration estimates speaking duration for an utterance.
func (s *Synthesizer) estimateDuration(u *tts.Utterance) time.Duration {
	words := len(strings.Fields(u.Text))
	if words < 1 {
		words = 1
	}
	wpm := float64(s.wordsPerMinute)
	if wpm <= 0 {
		wpm = 150
	}
	rate := u.Rate
	if rate <= 0 {
		rate = 1
	}
	seconds := float64(words) * 60.0 / (wpm * rate)
	return time.Duration(seconds * float64(time.Second))
}
