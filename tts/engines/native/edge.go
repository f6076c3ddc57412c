package native

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/go-mp3"
	"github.com/pp-group/edge-tts-go/biz/service/tts/edge"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/speechbridge/internal/audio"
	"github.com/dgnsrekt/speechbridge/tts"
)

// Edge synthesizes with the Microsoft Edge online voices. Audio arrives as
// MP3 and is decoded to PCM. Volume is applied by the player.
type Edge struct {
	voices  []tts.Voice
	limiter *rate.Limiter
	timeout time.Duration

	stream    streamFunc
	drainIdle time.Duration
}

// streamFunc opens a synthesis stream and reports how many text segments
// it was split into. Each segment ends with an "end" or "error" message.
type streamFunc func(text string, opts ...edge.Option) (<-chan map[string]interface{}, int, error)

var _ Backend = (*Edge)(nil)

// NewEdge creates an Edge backend offering the configured voice names.
func NewEdge(config tts.EdgeConfig) *Edge {
	limit := rate.Inf
	if config.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(config.RequestsPerMinute))
	}
	e := &Edge{
		limiter:   rate.NewLimiter(limit, 1),
		timeout:   config.Timeout,
		stream:    edgeStream,
		drainIdle: 30 * time.Second,
	}
	for i, name := range config.Voices {
		v := edgeVoice(name)
		v.Default = i == 0
		e.voices = append(e.voices, v)
	}
	return e
}

func edgeStream(text string, opts ...edge.Option) (<-chan map[string]interface{}, int, error) {
	comm, err := edge.NewCommunicate(text, opts...)
	if err != nil {
		return nil, 0, tts.NewSynthesisError(tts.ErrorCodeInvalidArgument, fmt.Errorf("edge-tts: %w", err))
	}
	ch, err := comm.Stream()
	if err != nil {
		return nil, 0, tts.NewSynthesisError(tts.ErrorCodeNetwork, fmt.Errorf("edge-tts stream: %w", err))
	}
	return ch, comm.AudioDataIndex, nil
}

// edgeVoice derives voice metadata from a short name like "en-US-AriaNeural".
func edgeVoice(shortName string) tts.Voice {
	v := tts.Voice{VoiceURI: shortName, Name: shortName}

	parts := strings.Split(shortName, "-")
	if len(parts) >= 3 {
		v.Lang = strings.Join(parts[:len(parts)-1], "-")
		v.Name = strings.TrimSuffix(parts[len(parts)-1], "Neural")
	}
	return v
}

// Name implements Backend.
func (e *Edge) Name() string { return tts.EngineEdge }

// Voices implements Backend.
func (e *Edge) Voices() []tts.Voice {
	voices := make([]tts.Voice, len(e.voices))
	copy(voices, e.voices)
	return voices
}

// Synthesize implements Backend.
func (e *Edge) Synthesize(ctx context.Context, req Request) (audio.PCM, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return audio.PCM{}, ctx.Err()
		}
		return audio.PCM{}, tts.NewSynthesisError(tts.ErrorCodeNetwork, err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	mp3Data, err := e.fetch(fetchCtx, req)
	if err != nil {
		if ctx.Err() != nil {
			return audio.PCM{}, ctx.Err()
		}
		var synthErr *tts.SynthesisError
		if errors.As(err, &synthErr) {
			return audio.PCM{}, synthErr
		}
		return audio.PCM{}, tts.NewSynthesisError(tts.ErrorCodeNetwork, err)
	}

	pcm, err := decodeMP3(mp3Data)
	if err != nil {
		return audio.PCM{}, tts.NewSynthesisError(tts.ErrorCodeSynthesisFailed, err)
	}

	log.Debug("Edge synthesis complete",
		"voice", req.Voice.VoiceURI,
		"mp3_bytes", len(mp3Data),
		"sample_rate", pcm.SampleRate)

	return pcm, nil
}

// fetch collects the MP3 audio for req, in segment order. The stream is
// never closed, so fetch stops once every segment has ended.
func (e *Edge) fetch(ctx context.Context, req Request) ([]byte, error) {
	ch, segments, err := e.stream(req.Text,
		edge.WithVoice(req.Voice.VoiceURI),
		edge.WithRate(edgeRate(req.Rate)),
		edge.WithPitch(edgePitch(req.Pitch)))
	if err != nil {
		return nil, err
	}
	// Segment senders block until read
	defer func() { go drain(ch, e.drainIdle) }()

	parts := make([][]byte, segments)
	for ended := 0; ended < segments; {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case msg := <-ch:
			if failure, ok := msg["error"]; ok {
				return nil, edgeError(failure)
			}
			if _, ok := msg["end"]; ok {
				ended++
				continue
			}
			if kind, _ := msg["type"].(string); kind != "audio" {
				continue
			}
			data, ok := msg["data"].(edge.AudioData)
			if !ok || data.Index < 0 || data.Index >= segments {
				continue
			}
			parts[data.Index] = append(parts[data.Index], data.Data...)
		}
	}

	mp3Data := bytes.Join(parts, nil)
	if len(mp3Data) == 0 {
		return nil, tts.NewSynthesisError(tts.ErrorCodeSynthesisFailed, errors.New("edge-tts: no audio received"))
	}
	return mp3Data, nil
}

// drain reads ch until it stays quiet for idle.
func drain(ch <-chan map[string]interface{}, idle time.Duration) {
	timer := time.NewTimer(idle)
	defer timer.Stop()
	for {
		select {
		case <-ch:
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(idle)
		case <-timer.C:
			return
		}
	}
}

// edgeError converts an error entry of the stream.
func edgeError(failure interface{}) error {
	switch f := failure.(type) {
	case edge.WebSocketError:
		return tts.NewSynthesisError(tts.ErrorCodeNetwork, fmt.Errorf("edge-tts: %s", f.Message))
	case edge.NoAudioReceived:
		return tts.NewSynthesisError(tts.ErrorCodeSynthesisFailed, fmt.Errorf("edge-tts: %s", f.Message))
	case edge.UnknownResponse:
		return tts.NewSynthesisError(tts.ErrorCodeSynthesisFailed, fmt.Errorf("edge-tts: %s", f.Message))
	case edge.UnexpectedResponse:
		return tts.NewSynthesisError(tts.ErrorCodeSynthesisFailed, fmt.Errorf("edge-tts: %s", f.Message))
	default:
		return tts.NewSynthesisError(tts.ErrorCodeSynthesisFailed, fmt.Errorf("edge-tts: %v", f))
	}
}

// edgeRate converts a rate factor into a prosody percentage. The service
// accepts half to double speed.
func edgeRate(r float64) string {
	if r <= 0 {
		r = 1
	}
	return percent((r-1)*100, -50, 100)
}

// edgePitch converts a pitch factor (1 is normal) into a prosody
// percentage within the service's 0.5 to 1.5 range.
func edgePitch(p float64) string {
	return percent((p-1)*50, -50, 50)
}

func percent(v, lo, hi float64) string {
	v = math.Max(lo, math.Min(hi, math.Round(v)))
	return fmt.Sprintf("%+d%%", int(v))
}

// decodeMP3 decodes MP3 into mono PCM. go-mp3 always yields 16-bit stereo.
func decodeMP3(data []byte) (audio.PCM, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return audio.PCM{}, fmt.Errorf("mp3 decode: %w", err)
	}

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return audio.PCM{}, fmt.Errorf("mp3 read: %w", err)
	}

	const frame = 2 * audio.BytesPerSample
	raw = raw[:len(raw)/frame*frame]

	stereo := audio.PCM{Data: raw, SampleRate: decoder.SampleRate(), Channels: 2}
	return stereo.Mono(), nil
}
