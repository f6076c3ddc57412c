package native

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/dgnsrekt/speechbridge/internal/audio"
	"github.com/dgnsrekt/speechbridge/internal/cache"
	"github.com/dgnsrekt/speechbridge/tts"
)

// Engine implements tts.Synthesizer. Utterances are spoken one at a time
// in the order they were queued.
type Engine struct {
	backend Backend
	player  audio.Player
	cache   *cache.Manager // Optional

	mu      sync.Mutex
	queue   []*job
	current *job
	closed  bool
	wake    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

var _ tts.Synthesizer = (*Engine)(nil)

// job is a queued utterance.
type job struct {
	id        string
	utterance *tts.Utterance
	cancel    context.CancelFunc
	canceled  bool // Guarded by Engine.mu
}

// New starts an engine speaking through player. The cache may be nil.
func New(backend Backend, player audio.Player, c *cache.Manager) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		backend: backend,
		player:  player,
		cache:   c,
		wake:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go e.run()
	return e
}

// Speak queues u behind any utterances already waiting.
func (e *Engine) Speak(u *tts.Utterance) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	j := &job{id: uuid.NewString(), utterance: u}
	e.queue = append(e.queue, j)
	log.Debug("Queued utterance", "id", j.id, "backend", e.backend.Name(), "queued", len(e.queue))

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Cancel drops every queued utterance and stops the one being spoken.
// None of them report back.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, j := range e.queue {
		j.canceled = true
	}
	dropped := len(e.queue)
	e.queue = nil

	if e.current != nil {
		e.current.canceled = true
		e.current.cancel()
		dropped++
	}

	if dropped > 0 {
		log.Debug("Canceled utterances", "count", dropped)
	}
}

// Voices returns the backend voices.
func (e *Engine) Voices() []tts.Voice {
	return e.backend.Voices()
}

// Close cancels everything, waits for the worker and closes the player.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.Cancel()
	e.cancel()
	<-e.done

	var errs []error
	if err := e.player.Close(); err != nil {
		errs = append(errs, fmt.Errorf("player: %w", err))
	}
	if e.cache != nil {
		if err := e.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache: %w", err))
		}
	}
	return errors.Join(errs...)
}

// run is the worker loop.
func (e *Engine) run() {
	defer close(e.done)

	for {
		j, ctx := e.next()
		if j == nil {
			select {
			case <-e.wake:
				continue
			case <-e.ctx.Done():
				return
			}
		}

		err := e.speak(ctx, j)

		e.mu.Lock()
		canceled := j.canceled
		e.current = nil
		e.mu.Unlock()
		j.cancel()

		if canceled {
			log.Debug("Utterance canceled", "id", j.id)
			continue
		}
		if err != nil {
			log.Debug("Utterance failed", "id", j.id, "error", err)
			j.utterance.Fail(err)
			continue
		}
		j.utterance.End()
	}
}

// next pops the head of the queue and makes it current.
func (e *Engine) next() (*job, context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.queue) == 0 {
		return nil, nil
	}

	j := e.queue[0]
	e.queue = e.queue[1:]

	ctx, cancel := context.WithCancel(e.ctx)
	j.cancel = cancel
	e.current = j
	return j, ctx
}

// speak synthesizes and plays one utterance.
func (e *Engine) speak(ctx context.Context, j *job) error {
	u := j.utterance
	start := time.Now()

	if len(u.Text) > MaxTextLength {
		return &tts.SynthesisError{
			Code: tts.ErrorCodeTextTooLong,
			Err:  fmt.Errorf("%d bytes, limit is %d", len(u.Text), MaxTextLength),
		}
	}
	if u.Text == "" {
		return nil
	}

	voice, err := resolveVoice(e.backend.Voices(), u)
	if err != nil {
		return err
	}

	req := Request{Text: u.Text, Voice: voice, Rate: u.Rate, Pitch: u.Pitch}
	pcm, err := e.synthesize(ctx, req)
	if err != nil {
		return e.failure(ctx, err, start)
	}

	log.Debug("Playing utterance",
		"id", j.id,
		"voice", voice.Name,
		"duration", pcm.Duration(),
		"synthesis", time.Since(start))

	if err := e.player.Play(ctx, pcm, u.Volume); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &tts.SynthesisError{
			Code:        tts.ErrorCodeAudioHardware,
			ElapsedTime: time.Since(start).Seconds(),
			Err:         err,
		}
	}
	return nil
}

// synthesize consults the cache before the backend.
func (e *Engine) synthesize(ctx context.Context, req Request) (audio.PCM, error) {
	key := cache.Key{
		Backend: e.backend.Name(),
		Voice:   req.Voice.VoiceURI,
		Text:    req.Text,
		Rate:    req.Rate,
		Pitch:   req.Pitch,
	}.String()

	if e.cache != nil {
		if data, level, ok := e.cache.Get(key); ok {
			if pcm, err := decodeClip(data); err == nil {
				log.Debug("Audio cache hit", "level", level)
				return pcm, nil
			}
			e.cache.Delete(key)
		}
	}

	pcm, err := e.backend.Synthesize(ctx, req)
	if err != nil {
		return audio.PCM{}, err
	}
	if err := pcm.Validate(); err != nil {
		return audio.PCM{}, tts.NewSynthesisError(tts.ErrorCodeSynthesisFailed, err)
	}

	if e.cache != nil {
		if err := e.cache.Put(key, encodeClip(pcm)); err != nil {
			log.Debug("Audio cache write failed", "error", err)
		}
	}
	return pcm, nil
}

// failure normalizes a synthesis error into a *tts.SynthesisError.
func (e *Engine) failure(ctx context.Context, err error, start time.Time) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var synthErr *tts.SynthesisError
	if !errors.As(err, &synthErr) {
		synthErr = tts.NewSynthesisError(tts.ErrorCodeSynthesisFailed, err)
	}
	if synthErr.ElapsedTime == 0 {
		synthErr.ElapsedTime = time.Since(start).Seconds()
	}
	return synthErr
}

// Cached clips carry their format in an 8-byte header.
const clipHeader = 8

func encodeClip(pcm audio.PCM) []byte {
	buf := make([]byte, clipHeader+len(pcm.Data))
	binary.LittleEndian.PutUint32(buf[0:], uint32(pcm.SampleRate))
	binary.LittleEndian.PutUint32(buf[4:], uint32(pcm.Channels))
	copy(buf[clipHeader:], pcm.Data)
	return buf
}

func decodeClip(buf []byte) (audio.PCM, error) {
	if len(buf) < clipHeader {
		return audio.PCM{}, cache.ErrCacheCorrupted
	}
	pcm := audio.PCM{
		SampleRate: int(binary.LittleEndian.Uint32(buf[0:])),
		Channels:   int(binary.LittleEndian.Uint32(buf[4:])),
		Data:       buf[clipHeader:],
	}
	if err := pcm.Validate(); err != nil {
		return audio.PCM{}, fmt.Errorf("%w: %v", cache.ErrCacheCorrupted, err)
	}
	return pcm, nil
}
