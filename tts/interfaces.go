// Package tts adapts a host speech-synthesis facility to a uniform
// text-to-speech interface.
package tts

import "context"

// TextToSpeech is the contract an application shell consumes.
type TextToSpeech interface {
	// Speak synthesizes and plays the text described by options.
	Speak(ctx context.Context, options Options) error

	// Stop cancels the current and queued utterances.
	Stop(ctx context.Context) error

	// GetSupportedLanguages returns the unique language tags of the available voices.
	GetSupportedLanguages(ctx context.Context) (Languages, error)

	// GetSupportedVoices returns the available voices in host order.
	GetSupportedVoices(ctx context.Context) (Voices, error)

	// OpenInstall opens the host voice installation UI.
	OpenInstall(ctx context.Context) error

	// SetPitchRate sets a persistent pitch.
	SetPitchRate(ctx context.Context, options PitchRateOptions) error

	// SetSpeechRate sets a persistent speech rate.
	SetSpeechRate(ctx context.Context, options SpeechRateOptions) error
}

// Synthesizer is a handle on the host speech-synthesis engine.
//
// Implementations report completion of an utterance through its OnEnd and
// OnError callbacks. Canceled utterances may never call back.
type Synthesizer interface {
	// Speak adds an utterance to the engine queue.
	Speak(u *Utterance)

	// Cancel drops the current and every queued utterance.
	Cancel()

	// Voices returns the voices the engine currently knows about.
	Voices() []Voice
}
