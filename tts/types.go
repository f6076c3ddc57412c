package tts

// Options describes one speak request.
// Unset optional fields leave the engine defaults in place.
type Options struct {
	Text       string   `json:"text"`                 // Text to speak
	Locale     string   `json:"locale,omitempty"`     // BCP 47 language tag
	SpeechRate *float64 `json:"speechRate,omitempty"` // 0.1 to 10, 1 when out of range
	PitchRate  *float64 `json:"pitchRate,omitempty"`  // 0 to 2, 2 when out of range
	Volume     *float64 `json:"volume,omitempty"`     // 0 to 1, 1 when out of range
	Voice      *int     `json:"voice,omitempty"`      // Index into GetSupportedVoices
}

// PitchRateOptions is the argument of SetPitchRate.
type PitchRateOptions struct {
	PitchRate float64 `json:"pitchRate"`
}

// SpeechRateOptions is the argument of SetSpeechRate.
type SpeechRateOptions struct {
	SpeechRate float64 `json:"speechRate"`
}

// Voice represents a voice offered by the host engine.
type Voice struct {
	VoiceURI     string `json:"voiceURI"`     // Engine-unique identifier
	Name         string `json:"name"`         // Human-readable name
	Lang         string `json:"lang"`         // Language tag (e.g., "en-US")
	LocalService bool   `json:"localService"` // Synthesized without network access
	Default      bool   `json:"default"`      // Engine default voice
}

// Languages is the result of GetSupportedLanguages.
type Languages struct {
	Languages []string `json:"languages"`
}

// Voices is the result of GetSupportedVoices.
type Voices struct {
	Voices []Voice `json:"voices"`
}

// Utterance is a synthesis job handed to a Synthesizer.
type Utterance struct {
	Text   string
	Lang   string  // Empty means engine default
	Rate   float64 // 1 is normal speed
	Pitch  float64 // 1 is normal pitch
	Volume float64 // 0 to 1
	Voice  *Voice  // Nil means engine default

	// OnEnd is called when the utterance finished playing.
	OnEnd func()
	// OnError is called when synthesis or playback failed.
	OnError func(err error)
}

// NewUtterance returns an utterance with host defaults.
func NewUtterance(text string) *Utterance {
	return &Utterance{
		Text:   text,
		Rate:   1,
		Pitch:  1,
		Volume: 1,
	}
}

// End reports natural completion, if anyone is listening.
func (u *Utterance) End() {
	if u.OnEnd != nil {
		u.OnEnd()
	}
}

// Fail reports a synthesis error, if anyone is listening.
func (u *Utterance) Fail(err error) {
	if u.OnError != nil {
		u.OnError(err)
	}
}

// Float returns a pointer to v, for optional Options fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for optional Options fields.
func Int(v int) *int { return &v }
