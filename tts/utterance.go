package tts

const (
	minSpeechRate     = 0.1
	maxSpeechRate     = 10
	defaultSpeechRate = 1

	minPitchRate     = 0
	maxPitchRate     = 2
	defaultPitchRate = 2

	minVolume     = 0
	maxVolume     = 1
	defaultVolume = 1
)

// newUtterance builds a synthesis job from options. Out-of-range numbers
// fall back to their default instead of being rejected.
func newUtterance(options Options, voices []Voice) *Utterance {
	u := NewUtterance(options.Text)

	if options.Voice != nil {
		u.Voice = voiceAt(voices, *options.Voice)
	}
	if options.Volume != nil {
		u.Volume = withinOr(*options.Volume, minVolume, maxVolume, defaultVolume)
	}
	if options.SpeechRate != nil {
		u.Rate = withinOr(*options.SpeechRate, minSpeechRate, maxSpeechRate, defaultSpeechRate)
	}
	if options.PitchRate != nil {
		u.Pitch = withinOr(*options.PitchRate, minPitchRate, maxPitchRate, defaultPitchRate)
	}
	if options.Locale != "" {
		u.Lang = options.Locale
	}

	return u
}

// withinOr returns v when lo <= v <= hi, def otherwise. NaN is out of range.
func withinOr(v, lo, hi, def float64) float64 {
	if v >= lo && v <= hi {
		return v
	}
	return def
}

// voiceAt returns a copy of voices[i], or nil when i is out of range.
func voiceAt(voices []Voice, i int) *Voice {
	if i < 0 || i >= len(voices) {
		return nil
	}
	v := voices[i]
	return &v
}

// uniqueLanguages projects voice languages, keeping first occurrences.
func uniqueLanguages(voices []Voice) []string {
	seen := make(map[string]struct{}, len(voices))
	languages := make([]string, 0, len(voices))
	for _, v := range voices {
		if _, ok := seen[v.Lang]; ok {
			continue
		}
		seen[v.Lang] = struct{}{}
		languages = append(languages, v.Lang)
	}
	return languages
}
