package native

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pp-group/edge-tts-go/biz/service/tts/edge"

	"github.com/dgnsrekt/speechbridge/tts"
)

// TestEdgeVoice tests voice metadata derived from short names.
func TestEdgeVoice(t *testing.T) {
	tests := []struct {
		shortName string
		wantName  string
		wantLang  string
	}{
		{"en-US-AriaNeural", "Aria", "en-US"},
		{"zh-CN-XiaoxiaoNeural", "Xiaoxiao", "zh-CN"},
		{"zh-CN-liaoning-XiaobeiNeural", "Xiaobei", "zh-CN-liaoning"},
		{"custom", "custom", ""},
	}

	for _, tt := range tests {
		t.Run(tt.shortName, func(t *testing.T) {
			v := edgeVoice(tt.shortName)
			if v.Name != tt.wantName || v.Lang != tt.wantLang {
				t.Errorf("edgeVoice(%q) = %+v", tt.shortName, v)
			}
			if v.VoiceURI != tt.shortName {
				t.Errorf("VoiceURI should be the short name, got %q", v.VoiceURI)
			}
			if v.LocalService {
				t.Error("Edge voices are not local")
			}
		})
	}
}

// TestNewEdge tests voice listing and defaults.
func TestNewEdge(t *testing.T) {
	e := NewEdge(tts.EdgeConfig{
		Voices:            []string{"en-US-AriaNeural", "fr-FR-DeniseNeural"},
		RequestsPerMinute: 60,
		Timeout:           time.Second,
	})

	if e.Name() != tts.EngineEdge {
		t.Errorf("Unexpected name %q", e.Name())
	}

	voices := e.Voices()
	if len(voices) != 2 {
		t.Fatalf("Expected 2 voices, got %d", len(voices))
	}
	if !voices[0].Default || voices[1].Default {
		t.Error("Only the first configured voice should be default")
	}
}

// fakeStream replays msgs on an unbuffered channel that is never closed,
// the way the edge-tts client does, and records the options it was given.
type fakeStream struct {
	segments int
	msgs     []map[string]interface{}
	err      error

	params []string
	sent   chan struct{}
}

func (f *fakeStream) open(text string, opts ...edge.Option) (<-chan map[string]interface{}, int, error) {
	for _, opt := range opts {
		f.params = append(f.params, opt.Param)
	}
	if f.err != nil {
		return nil, 0, f.err
	}
	ch := make(chan map[string]interface{})
	f.sent = make(chan struct{})
	go func() {
		defer close(f.sent)
		for _, msg := range f.msgs {
			ch <- msg
		}
	}()
	return ch, f.segments, nil
}

func audioMsg(index int, data string) map[string]interface{} {
	return map[string]interface{}{
		"type": "audio",
		"data": edge.AudioData{Data: []byte(data), Index: index},
	}
}

func endMsg() map[string]interface{} {
	return map[string]interface{}{"end": ""}
}

func newStreamEdge(f *fakeStream) *Edge {
	e := NewEdge(tts.EdgeConfig{Voices: []string{"en-US-AriaNeural"}, Timeout: time.Second})
	e.stream = f.open
	e.drainIdle = 50 * time.Millisecond
	return e
}

func edgeRequest() Request {
	return Request{
		Text:  "Hello",
		Voice: edgeVoice("en-US-AriaNeural"),
		Rate:  1,
		Pitch: 1,
	}
}

// TestEdgeFetch tests collecting audio frames until every segment ends.
func TestEdgeFetch(t *testing.T) {
	tests := []struct {
		name     string
		segments int
		msgs     []map[string]interface{}
		want     string
	}{
		{
			name:     "single segment",
			segments: 1,
			msgs:     []map[string]interface{}{audioMsg(0, "ab"), audioMsg(0, "cd"), endMsg()},
			want:     "abcd",
		},
		{
			name:     "segments in index order",
			segments: 2,
			msgs:     []map[string]interface{}{audioMsg(1, "world"), audioMsg(0, "hello "), endMsg(), endMsg()},
			want:     "hello world",
		},
		{
			name:     "metadata ignored",
			segments: 1,
			msgs: []map[string]interface{}{
				{"type": "WordBoundary", "offset": 100, "text": "Hello"},
				audioMsg(0, "x"),
				endMsg(),
			},
			want: "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeStream{segments: tt.segments, msgs: tt.msgs}
			e := newStreamEdge(f)

			got, err := e.fetch(context.Background(), edgeRequest())
			if err != nil {
				t.Fatalf("fetch failed: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("fetch = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestEdgeFetchErrors tests the mapping of stream error messages.
func TestEdgeFetchErrors(t *testing.T) {
	tests := []struct {
		name     string
		segments int
		msgs     []map[string]interface{}
		wantCode tts.ErrorCode
	}{
		{
			name:     "websocket",
			segments: 1,
			msgs:     []map[string]interface{}{{"error": edge.WebSocketError{Message: "connection reset"}}},
			wantCode: tts.ErrorCodeNetwork,
		},
		{
			name:     "unknown response",
			segments: 1,
			msgs:     []map[string]interface{}{{"error": edge.UnknownResponse{Message: "bad header"}}},
			wantCode: tts.ErrorCodeSynthesisFailed,
		},
		{
			name:     "no audio received",
			segments: 1,
			msgs:     []map[string]interface{}{{"error": edge.NoAudioReceived{Message: "nothing"}}},
			wantCode: tts.ErrorCodeSynthesisFailed,
		},
		{
			name:     "ended without audio",
			segments: 1,
			msgs:     []map[string]interface{}{endMsg()},
			wantCode: tts.ErrorCodeSynthesisFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newStreamEdge(&fakeStream{segments: tt.segments, msgs: tt.msgs})

			_, err := e.Synthesize(context.Background(), edgeRequest())
			var synthErr *tts.SynthesisError
			if !errors.As(err, &synthErr) {
				t.Fatalf("Expected SynthesisError, got %v", err)
			}
			if synthErr.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", synthErr.Code, tt.wantCode)
			}
		})
	}
}

// TestEdgeFetchStreamOpenError tests that errors opening the stream keep
// their code.
func TestEdgeFetchStreamOpenError(t *testing.T) {
	openErr := tts.NewSynthesisError(tts.ErrorCodeInvalidArgument, errors.New("invalid voice"))
	e := newStreamEdge(&fakeStream{err: openErr})

	_, err := e.Synthesize(context.Background(), edgeRequest())
	var synthErr *tts.SynthesisError
	if !errors.As(err, &synthErr) || synthErr.Code != tts.ErrorCodeInvalidArgument {
		t.Errorf("Expected invalid-argument error, got %v", err)
	}
}

// TestEdgeFetchCanceledDrains tests that senders blocked on the stream are
// released after cancellation.
func TestEdgeFetchCanceledDrains(t *testing.T) {
	f := &fakeStream{
		segments: 2,
		msgs:     []map[string]interface{}{audioMsg(0, "a"), endMsg(), audioMsg(1, "b"), audioMsg(1, "c")},
	}
	e := newStreamEdge(f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.fetch(ctx, edgeRequest()); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}

	select {
	case <-f.sent:
	case <-time.After(time.Second):
		t.Fatal("Stream sender still blocked after cancellation")
	}
}

// TestEdgeFetchTimeout tests that a silent stream times out as a network
// error.
func TestEdgeFetchTimeout(t *testing.T) {
	e := newStreamEdge(&fakeStream{segments: 1})
	e.timeout = 20 * time.Millisecond

	_, err := e.Synthesize(context.Background(), edgeRequest())
	var synthErr *tts.SynthesisError
	if !errors.As(err, &synthErr) || synthErr.Code != tts.ErrorCodeNetwork {
		t.Errorf("Expected network error, got %v", err)
	}
}

// TestEdgeFetchOptions tests that voice, rate and pitch reach the stream.
func TestEdgeFetchOptions(t *testing.T) {
	f := &fakeStream{segments: 1, msgs: []map[string]interface{}{audioMsg(0, "x"), endMsg()}}
	e := newStreamEdge(f)

	req := edgeRequest()
	req.Rate = 1.5
	req.Pitch = 0.5
	if _, err := e.fetch(context.Background(), req); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	want := []string{"en-US-AriaNeural", "+50%", "-25%"}
	if len(f.params) != len(want) {
		t.Fatalf("params = %v, want %v", f.params, want)
	}
	for i := range want {
		if f.params[i] != want[i] {
			t.Errorf("param %d = %q, want %q", i, f.params[i], want[i])
		}
	}
}

// TestEdgeProsody tests rate and pitch conversion to prosody percentages.
func TestEdgeProsody(t *testing.T) {
	tests := []struct {
		value     float64
		wantRate  string
		wantPitch string
	}{
		{0, "+0%", "-50%"},
		{0.5, "-50%", "-25%"},
		{1, "+0%", "+0%"},
		{1.25, "+25%", "+13%"},
		{2, "+100%", "+50%"},
		{10, "+100%", "+50%"},
	}

	for _, tt := range tests {
		if got := edgeRate(tt.value); got != tt.wantRate {
			t.Errorf("edgeRate(%v) = %q, want %q", tt.value, got, tt.wantRate)
		}
		if got := edgePitch(tt.value); got != tt.wantPitch {
			t.Errorf("edgePitch(%v) = %q, want %q", tt.value, got, tt.wantPitch)
		}
	}
}
