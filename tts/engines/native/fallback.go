package native

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/speechbridge/internal/audio"
	"github.com/dgnsrekt/speechbridge/tts"
)

// Fallback wraps a primary backend with a secondary one that takes over
// once the primary has failed maxFailures times in a row.
type Fallback struct {
	primary     Backend
	fallback    Backend
	maxFailures int

	mu            sync.Mutex
	failures      int
	usingFallback bool
}

var _ Backend = (*Fallback)(nil)

// NewFallback creates a backend that switches from primary to fallback
// after maxFailures consecutive synthesis failures.
func NewFallback(primary, fallback Backend, maxFailures int) *Fallback {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &Fallback{
		primary:     primary,
		fallback:    fallback,
		maxFailures: maxFailures,
	}
}

// Name identifies both backends, so cached clips never cross over.
func (f *Fallback) Name() string {
	return f.primary.Name() + "+" + f.fallback.Name()
}

// Voices lists the voices of the active backend.
func (f *Fallback) Voices() []tts.Voice {
	return f.active().Voices()
}

// UsingFallback reports whether the secondary backend took over.
func (f *Fallback) UsingFallback() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.usingFallback
}

func (f *Fallback) active() Backend {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.usingFallback {
		return f.fallback
	}
	return f.primary
}

// Synthesize renders req with the active backend.
func (f *Fallback) Synthesize(ctx context.Context, req Request) (audio.PCM, error) {
	if f.UsingFallback() {
		return f.fallback.Synthesize(ctx, f.translate(req))
	}

	pcm, err := f.primary.Synthesize(ctx, req)
	if err == nil {
		f.mu.Lock()
		if f.failures > 0 {
			log.Info("Primary speech backend recovered", "backend", f.primary.Name(), "failures", f.failures)
			f.failures = 0
		}
		f.mu.Unlock()
		return pcm, nil
	}
	if ctx.Err() != nil || !countsAsFailure(err) {
		return audio.PCM{}, err
	}

	f.mu.Lock()
	f.failures++
	failures := f.failures
	switched := failures >= f.maxFailures
	if switched {
		f.usingFallback = true
	}
	f.mu.Unlock()

	log.Warn("Primary speech backend failed",
		"backend", f.primary.Name(),
		"attempt", failures,
		"max", f.maxFailures,
		"error", err)
	if !switched {
		return audio.PCM{}, err
	}

	log.Warn("Switching speech backend", "from", f.primary.Name(), "to", f.fallback.Name())
	return f.fallback.Synthesize(ctx, f.translate(req))
}

// translate maps the voice of req onto the fallback voices, keeping the
// same voice when both backends share it, else the same language.
func (f *Fallback) translate(req Request) Request {
	voices := f.fallback.Voices()
	if len(voices) == 0 {
		return req
	}
	for _, v := range voices {
		if v.VoiceURI == req.Voice.VoiceURI {
			return req
		}
	}

	voice := defaultVoice(voices)
	if req.Voice.Lang != "" {
		if v, err := matchLanguage(voices, req.Voice.Lang); err == nil {
			voice = v
		}
	}
	req.Voice = voice
	return req
}

// countsAsFailure reports whether err says something about the backend
// rather than the request.
func countsAsFailure(err error) bool {
	var synthErr *tts.SynthesisError
	if errors.As(err, &synthErr) {
		switch synthErr.Code {
		case tts.ErrorCodeInvalidArgument, tts.ErrorCodeTextTooLong:
			return false
		}
	}
	return true
}
