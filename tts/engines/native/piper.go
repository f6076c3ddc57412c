package native

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/speechbridge/internal/audio"
	"github.com/dgnsrekt/speechbridge/tts"
)

// Piper runs a fresh piper process per utterance and reads raw 16-bit
// mono PCM from its stdout.
type Piper struct {
	config tts.PiperConfig
	voices []tts.Voice
	models map[string]string // VoiceURI to model path
}

var _ Backend = (*Piper)(nil)

// NewPiper checks that the piper binary can be found.
func NewPiper(config tts.PiperConfig) (*Piper, error) {
	binary, err := exec.LookPath(config.Binary)
	if err != nil {
		return nil, fmt.Errorf("piper binary not found: %w", err)
	}
	config.Binary = binary

	p := &Piper{
		config: config,
		models: make(map[string]string, len(config.Voices)),
	}
	for _, v := range config.Voices {
		uri := "piper:" + strings.TrimSuffix(filepath.Base(v.Model), filepath.Ext(v.Model))
		p.voices = append(p.voices, tts.Voice{
			VoiceURI:     uri,
			Name:         v.Name,
			Lang:         v.Lang,
			LocalService: true,
			Default:      v.Default,
		})
		p.models[uri] = v.Model
	}
	return p, nil
}

// Name implements Backend.
func (p *Piper) Name() string { return tts.EnginePiper }

// Voices implements Backend.
func (p *Piper) Voices() []tts.Voice {
	voices := make([]tts.Voice, len(p.voices))
	copy(voices, p.voices)
	return voices
}

// Synthesize implements Backend.
func (p *Piper) Synthesize(ctx context.Context, req Request) (audio.PCM, error) {
	model, ok := p.models[req.Voice.VoiceURI]
	if !ok {
		return audio.PCM{}, tts.NewSynthesisError(tts.ErrorCodeVoiceUnavailable,
			fmt.Errorf("voice %q", req.Voice.VoiceURI))
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	args := []string{
		"--model", model,
		"--output-raw",
		"--length_scale", lengthScale(req.Rate),
	}
	if p.config.SpeakerID > 0 {
		args = append(args, "--speaker", strconv.Itoa(p.config.SpeakerID))
	}

	log.Debug("Running piper", "binary", p.config.Binary, "args", args)
	cmd := exec.CommandContext(ctx, p.config.Binary, args...)
	cmd.Stdin = strings.NewReader(req.Text + "\n")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return audio.PCM{}, tts.NewSynthesisError(tts.ErrorCodeSynthesisFailed,
				fmt.Errorf("piper timed out after %v", p.config.Timeout))
		}
		if ctx.Err() != nil {
			return audio.PCM{}, ctx.Err()
		}
		return audio.PCM{}, tts.NewSynthesisError(tts.ErrorCodeSynthesisFailed,
			fmt.Errorf("piper failed: %w: %s", err, strings.TrimSpace(stderr.String())))
	}

	if len(output) == 0 {
		return audio.PCM{}, tts.NewSynthesisError(tts.ErrorCodeSynthesisFailed,
			errors.New("no audio generated"))
	}
	// Drop a trailing half sample
	output = output[:len(output)/audio.BytesPerSample*audio.BytesPerSample]

	return audio.PCM{Data: output, SampleRate: p.config.SampleRate, Channels: 1}, nil
}

// lengthScale converts a speech rate into piper's phoneme length scale,
// where smaller is faster.
func lengthScale(rate float64) string {
	if rate <= 0 {
		rate = 1
	}
	return strconv.FormatFloat(1/rate, 'f', 3, 64)
}
