//go:build js && wasm

package browser

import (
	"sync"
	"syscall/js"

	"github.com/dgnsrekt/speechbridge/tts"
)

// Synthesizer drives window.speechSynthesis.
type Synthesizer struct {
	synth js.Value
	ctor  js.Value // SpeechSynthesisUtterance

	// Callbacks of utterances that have not settled yet
	mu      sync.Mutex
	pending map[*tts.Utterance]func()
}

var _ tts.Synthesizer = (*Synthesizer)(nil)

// Detect probes the host for speech synthesis.
func Detect() (*Synthesizer, bool) {
	window := js.Global().Get("window")
	if !truthy(window) {
		return nil, false
	}
	synth := window.Get("speechSynthesis")
	ctor := window.Get("SpeechSynthesisUtterance")
	if !truthy(synth) || !truthy(ctor) {
		return nil, false
	}
	return &Synthesizer{
		synth:   synth,
		ctor:    ctor,
		pending: make(map[*tts.Utterance]func()),
	}, true
}

func truthy(v js.Value) bool {
	return !v.IsUndefined() && !v.IsNull() && v.Truthy()
}

// Speak hands u to the host.
func (s *Synthesizer) Speak(u *tts.Utterance) {
	utterance := s.ctor.New(u.Text)
	utterance.Set("rate", u.Rate)
	utterance.Set("pitch", u.Pitch)
	utterance.Set("volume", u.Volume)
	if u.Lang != "" {
		utterance.Set("lang", u.Lang)
	}
	if u.Voice != nil {
		if voice, ok := s.lookup(u.Voice.VoiceURI); ok {
			utterance.Set("voice", voice)
		}
	}

	var onEnd, onError js.Func
	var once sync.Once
	release := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.pending, u)
			s.mu.Unlock()
			utterance.Set("onend", js.Null())
			utterance.Set("onerror", js.Null())
			onEnd.Release()
			onError.Release()
		})
	}

	onEnd = js.FuncOf(func(js.Value, []js.Value) any {
		release()
		go u.End()
		return nil
	})
	onError = js.FuncOf(func(_ js.Value, args []js.Value) any {
		release()
		var event js.Value
		if len(args) > 0 {
			event = args[0]
		}
		go u.Fail(eventError(event))
		return nil
	})

	s.mu.Lock()
	s.pending[u] = release
	s.mu.Unlock()

	utterance.Set("onend", onEnd)
	utterance.Set("onerror", onError)
	s.synth.Call("speak", utterance)
}

// Cancel clears the host queue. Canceled utterances do not report back.
func (s *Synthesizer) Cancel() {
	s.mu.Lock()
	releases := make([]func(), 0, len(s.pending))
	for _, release := range s.pending {
		releases = append(releases, release)
	}
	s.mu.Unlock()

	// Detach first so the host's "canceled" error event finds no listener.
	for _, release := range releases {
		release()
	}
	s.synth.Call("cancel")
}

// Voices reads the live host voice list.
func (s *Synthesizer) Voices() []tts.Voice {
	list := s.synth.Call("getVoices")
	voices := make([]tts.Voice, 0, list.Length())
	for i := 0; i < list.Length(); i++ {
		v := list.Index(i)
		voices = append(voices, tts.Voice{
			VoiceURI:     stringProp(v, "voiceURI"),
			Name:         stringProp(v, "name"),
			Lang:         stringProp(v, "lang"),
			LocalService: v.Get("localService").Truthy(),
			Default:      v.Get("default").Truthy(),
		})
	}
	return voices
}

// lookup finds the host voice object with voiceURI.
func (s *Synthesizer) lookup(voiceURI string) (js.Value, bool) {
	list := s.synth.Call("getVoices")
	for i := 0; i < list.Length(); i++ {
		if v := list.Index(i); stringProp(v, "voiceURI") == voiceURI {
			return v, true
		}
	}
	return js.Value{}, false
}

// stringProp reads a string property, or "" when it is missing.
func stringProp(v js.Value, name string) string {
	if p := v.Get(name); p.Type() == js.TypeString {
		return p.String()
	}
	return ""
}

// eventError converts a SpeechSynthesisErrorEvent.
func eventError(event js.Value) *tts.SynthesisError {
	err := &tts.SynthesisError{Code: tts.ErrorCodeSynthesisFailed, Payload: event}
	if event.Type() != js.TypeObject {
		return err
	}
	if code := event.Get("error"); code.Type() == js.TypeString {
		err.Code = tts.ErrorCode(code.String())
	}
	if idx := event.Get("charIndex"); idx.Type() == js.TypeNumber {
		err.CharIndex = idx.Int()
	}
	if elapsed := event.Get("elapsedTime"); elapsed.Type() == js.TypeNumber {
		err.ElapsedTime = elapsed.Float()
	}
	return err
}
