package tts

import (
	"math"
	"reflect"
	"testing"
)

// TestNewUtteranceClamping tests that out-of-range numbers fall back to
// their defaults and in-range numbers pass through.
func TestNewUtteranceClamping(t *testing.T) {
	tests := []struct {
		name       string
		options    Options
		wantRate   float64
		wantPitch  float64
		wantVolume float64
	}{
		{"unset keeps host defaults", Options{}, 1, 1, 1},
		{"rate in range", Options{SpeechRate: Float(2.5)}, 2.5, 1, 1},
		{"rate lower bound", Options{SpeechRate: Float(0.1)}, 0.1, 1, 1},
		{"rate upper bound", Options{SpeechRate: Float(10)}, 10, 1, 1},
		{"rate zero", Options{SpeechRate: Float(0)}, 1, 1, 1},
		{"rate too high", Options{SpeechRate: Float(20)}, 1, 1, 1},
		{"pitch zero", Options{PitchRate: Float(0)}, 1, 0, 1},
		{"pitch in range", Options{PitchRate: Float(1.5)}, 1, 1.5, 1},
		{"pitch too high", Options{PitchRate: Float(5)}, 1, 2, 1},
		{"pitch negative", Options{PitchRate: Float(-1)}, 1, 2, 1},
		{"volume zero", Options{Volume: Float(0)}, 1, 1, 0},
		{"volume in range", Options{Volume: Float(0.5)}, 1, 1, 0.5},
		{"volume too high", Options{Volume: Float(2)}, 1, 1, 1},
		{"rate NaN", Options{SpeechRate: Float(math.NaN())}, 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newUtterance(tt.options, nil)
			if u.Rate != tt.wantRate {
				t.Errorf("Rate = %v, want %v", u.Rate, tt.wantRate)
			}
			if u.Pitch != tt.wantPitch {
				t.Errorf("Pitch = %v, want %v", u.Pitch, tt.wantPitch)
			}
			if u.Volume != tt.wantVolume {
				t.Errorf("Volume = %v, want %v", u.Volume, tt.wantVolume)
			}
		})
	}
}

// TestNewUtteranceVoice tests voice selection by index.
func TestNewUtteranceVoice(t *testing.T) {
	voices := []Voice{
		{VoiceURI: "a", Lang: "en-US"},
		{VoiceURI: "b", Lang: "fr-FR"},
	}

	tests := []struct {
		name  string
		index *int
		want  string
	}{
		{"unset", nil, ""},
		{"first voice", Int(0), "a"},
		{"second voice", Int(1), "b"},
		{"past the end", Int(2), ""},
		{"negative", Int(-1), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newUtterance(Options{Text: "hi", Voice: tt.index}, voices)
			got := ""
			if u.Voice != nil {
				got = u.Voice.VoiceURI
			}
			if got != tt.want {
				t.Errorf("Voice = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestNewUtteranceVoiceIsCopy tests that the utterance owns its voice.
func TestNewUtteranceVoiceIsCopy(t *testing.T) {
	voices := []Voice{{VoiceURI: "a", Name: "Alpha"}}

	u := newUtterance(Options{Voice: Int(0)}, voices)
	voices[0].Name = "changed"

	if u.Voice.Name != "Alpha" {
		t.Errorf("Utterance voice changed with the list: %q", u.Voice.Name)
	}
}

// TestNewUtteranceLocale tests locale handling.
func TestNewUtteranceLocale(t *testing.T) {
	u := newUtterance(Options{Text: "bonjour", Locale: "fr-FR"}, nil)
	if u.Lang != "fr-FR" {
		t.Errorf("Lang = %q, want fr-FR", u.Lang)
	}
	if u.Text != "bonjour" {
		t.Errorf("Text = %q, want bonjour", u.Text)
	}

	u = newUtterance(Options{Text: "hello"}, nil)
	if u.Lang != "" {
		t.Errorf("Empty locale should leave Lang unset, got %q", u.Lang)
	}
}

// TestUniqueLanguages tests language deduplication.
func TestUniqueLanguages(t *testing.T) {
	tests := []struct {
		name   string
		voices []Voice
		want   []string
	}{
		{"nil", nil, []string{}},
		{
			"duplicates",
			[]Voice{{Lang: "en-US"}, {Lang: "en-US"}, {Lang: "fr-FR"}},
			[]string{"en-US", "fr-FR"},
		},
		{
			"first occurrence order",
			[]Voice{{Lang: "de-DE"}, {Lang: "en-US"}, {Lang: "de-DE"}, {Lang: "ja-JP"}},
			[]string{"de-DE", "en-US", "ja-JP"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := uniqueLanguages(tt.voices)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("uniqueLanguages() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestUtteranceCallbacksNilSafe tests End and Fail without listeners.
func TestUtteranceCallbacksNilSafe(t *testing.T) {
	u := NewUtterance("quiet")
	u.End()
	u.Fail(ErrUnsupported)
}
