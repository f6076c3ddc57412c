// Package native provides a desktop speech-synthesis engine: a queue of
// utterances synthesized by a pluggable backend and played through the
// system audio device.
package native

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/text/language"

	"github.com/dgnsrekt/speechbridge/internal/audio"
	"github.com/dgnsrekt/speechbridge/tts"
)

// MaxTextLength is the longest text, in bytes of UTF-8, a single utterance
// may carry.
const MaxTextLength = 10000

// Request is one synthesis job for a backend.
type Request struct {
	Text  string
	Voice tts.Voice
	Rate  float64 // 1 is normal speed
	Pitch float64 // 1 is normal pitch
}

// Backend turns text into PCM.
type Backend interface {
	// Name identifies the backend in cache keys and logs.
	Name() string

	// Voices lists the voices the backend can synthesize.
	Voices() []tts.Voice

	// Synthesize renders req. It returns ctx.Err() when ctx ends first.
	Synthesize(ctx context.Context, req Request) (audio.PCM, error)
}

// resolveVoice picks the voice for u: the requested voice, else the best
// voice for the requested language, else the default voice, else the first.
func resolveVoice(voices []tts.Voice, u *tts.Utterance) (tts.Voice, error) {
	if len(voices) == 0 {
		return tts.Voice{}, tts.NewSynthesisError(tts.ErrorCodeSynthesisUnavailable,
			errors.New("no voices installed"))
	}

	if u.Voice != nil {
		for _, v := range voices {
			if v.VoiceURI == u.Voice.VoiceURI {
				return v, nil
			}
		}
		return tts.Voice{}, tts.NewSynthesisError(tts.ErrorCodeVoiceUnavailable,
			fmt.Errorf("voice %q", u.Voice.VoiceURI))
	}

	if u.Lang != "" {
		return matchLanguage(voices, u.Lang)
	}

	return defaultVoice(voices), nil
}

// matchLanguage returns the preferred voice for the closest language.
func matchLanguage(voices []tts.Voice, lang string) (tts.Voice, error) {
	want, err := language.Parse(lang)
	if err != nil {
		return tts.Voice{}, tts.NewSynthesisError(tts.ErrorCodeInvalidArgument,
			fmt.Errorf("locale %q: %w", lang, err))
	}

	// One tag per distinct voice language, in voice order
	var tags []language.Tag
	var langs []string
	seen := make(map[string]bool)
	for _, v := range voices {
		if seen[v.Lang] {
			continue
		}
		tag, err := language.Parse(v.Lang)
		if err != nil {
			continue
		}
		seen[v.Lang] = true
		tags = append(tags, tag)
		langs = append(langs, v.Lang)
	}
	if len(tags) == 0 {
		return tts.Voice{}, tts.NewSynthesisError(tts.ErrorCodeLanguageUnavailable,
			fmt.Errorf("locale %q", lang))
	}

	_, index, confidence := language.NewMatcher(tags).Match(want)
	if confidence == language.No {
		return tts.Voice{}, tts.NewSynthesisError(tts.ErrorCodeLanguageUnavailable,
			fmt.Errorf("locale %q", lang))
	}

	var matched []tts.Voice
	for _, v := range voices {
		if v.Lang == langs[index] {
			matched = append(matched, v)
		}
	}
	return defaultVoice(matched), nil
}

// defaultVoice returns the voice flagged default, or the first one.
func defaultVoice(voices []tts.Voice) tts.Voice {
	for _, v := range voices {
		if v.Default {
			return v
		}
	}
	return voices[0]
}
