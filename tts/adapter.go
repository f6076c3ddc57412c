package tts

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

// Adapter implements TextToSpeech on top of a host Synthesizer.
//
// Whether the host can synthesize speech is decided once, at construction.
// Every engine-bound call checks that gate and fails fast with
// ErrUnsupported; the gate never changes afterwards.
type Adapter struct {
	synth Synthesizer // Nil when the host lacks speech synthesis

	// Serializes cancel-then-speak so only one utterance is ever pending.
	mu sync.Mutex
}

var _ TextToSpeech = (*Adapter)(nil)

// NewAdapter creates an adapter bound to synth. A nil synth yields an
// adapter whose engine-bound operations return ErrUnsupported.
func NewAdapter(synth Synthesizer) *Adapter {
	if synth == nil {
		log.Debug("Speech synthesis unavailable")
	}
	return &Adapter{synth: synth}
}

// Available reports whether the host speech-synthesis engine is present.
func (a *Adapter) Available() bool {
	return a.synth != nil
}

// engine is the single capability gate.
func (a *Adapter) engine() (Synthesizer, error) {
	if a.synth == nil {
		return nil, ErrUnsupported
	}
	return a.synth, nil
}

// Start cancels whatever the engine is saying, starts a new utterance and
// returns a channel that receives exactly one value: nil when the utterance
// ends naturally, or the engine error unchanged when it fails. A channel
// whose utterance is canceled by a later Start or Stop never receives.
func (a *Adapter) Start(options Options) (<-chan error, error) {
	synth, err := a.engine()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	synth.Cancel()

	u := newUtterance(options, synth.Voices())

	done := make(chan error, 1)
	var once sync.Once
	settle := func(err error) {
		once.Do(func() { done <- err })
	}
	u.OnEnd = func() { settle(nil) }
	u.OnError = settle

	log.Debug("Speaking",
		"chars", len(u.Text),
		"lang", u.Lang,
		"rate", u.Rate,
		"pitch", u.Pitch,
		"volume", u.Volume)

	synth.Speak(u)
	return done, nil
}

// Speak starts an utterance and waits for it to settle. If ctx ends first
// Speak returns ctx.Err() while the utterance keeps playing; call Stop to
// silence it.
func (a *Adapter) Speak(ctx context.Context, options Options) error {
	done, err := a.Start(options)
	if err != nil {
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop cancels the current and queued utterances. Having nothing to stop
// is not an error.
func (a *Adapter) Stop(context.Context) error {
	synth, err := a.engine()
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	synth.Cancel()
	return nil
}

// GetSupportedLanguages returns the language tags of the live voice list,
// without duplicates, in first-occurrence order.
func (a *Adapter) GetSupportedLanguages(context.Context) (Languages, error) {
	synth, err := a.engine()
	if err != nil {
		return Languages{}, err
	}
	return Languages{Languages: uniqueLanguages(synth.Voices())}, nil
}

// GetSupportedVoices returns the live voice list in host order.
func (a *Adapter) GetSupportedVoices(context.Context) (Voices, error) {
	synth, err := a.engine()
	if err != nil {
		return Voices{}, err
	}
	voices := synth.Voices()
	if voices == nil {
		voices = []Voice{}
	}
	return Voices{Voices: voices}, nil
}

// OpenInstall always returns ErrNotImplemented.
func (a *Adapter) OpenInstall(context.Context) error {
	return ErrNotImplemented
}

// SetPitchRate always returns ErrNotImplemented; pitch is set per
// utterance through Options.PitchRate.
func (a *Adapter) SetPitchRate(context.Context, PitchRateOptions) error {
	return ErrNotImplemented
}

// SetSpeechRate always returns ErrNotImplemented; rate is set per
// utterance through Options.SpeechRate.
func (a *Adapter) SetSpeechRate(context.Context, SpeechRateOptions) error {
	return ErrNotImplemented
}
