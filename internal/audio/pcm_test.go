package audio

import (
	"encoding/binary"
	"testing"
	"time"
)

// samples builds mono PCM from int16 values.
func samples(rate int, values ...int16) PCM {
	data := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(v))
	}
	return PCM{Data: data, SampleRate: rate, Channels: 1}
}

// values decodes mono PCM into int16 values.
func values(p PCM) []int16 {
	out := make([]int16, len(p.Data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(p.Data[i*2:]))
	}
	return out
}

// TestPCMValidate tests buffer validation.
func TestPCMValidate(t *testing.T) {
	tests := []struct {
		name    string
		pcm     PCM
		wantErr bool
	}{
		{"valid mono", PCM{Data: make([]byte, 4), SampleRate: 22050, Channels: 1}, false},
		{"valid stereo", PCM{Data: make([]byte, 8), SampleRate: 24000, Channels: 2}, false},
		{"empty", PCM{SampleRate: 22050, Channels: 1}, true},
		{"no sample rate", PCM{Data: make([]byte, 4), Channels: 1}, true},
		{"three channels", PCM{Data: make([]byte, 6), SampleRate: 22050, Channels: 3}, true},
		{"misaligned stereo", PCM{Data: make([]byte, 6), SampleRate: 22050, Channels: 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pcm.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestPCMDuration tests duration calculation.
func TestPCMDuration(t *testing.T) {
	mono := PCM{Data: make([]byte, 44100), SampleRate: 22050, Channels: 1}
	if got := mono.Duration(); got != time.Second {
		t.Errorf("Expected 1s, got %v", got)
	}

	stereo := PCM{Data: make([]byte, 96000), SampleRate: 24000, Channels: 2}
	if got := stereo.Duration(); got != time.Second {
		t.Errorf("Expected 1s, got %v", got)
	}

	if got := (PCM{}).Duration(); got != 0 {
		t.Errorf("Expected 0 for empty PCM, got %v", got)
	}
}

// TestPCMMono tests stereo downmixing.
func TestPCMMono(t *testing.T) {
	stereo := PCM{SampleRate: 24000, Channels: 2}
	stereo.Data = samples(24000, 100, 300, -200, -400).Data

	mono := stereo.Mono()
	if mono.Channels != 1 || mono.SampleRate != 24000 {
		t.Fatalf("Unexpected format: %d channels at %d Hz", mono.Channels, mono.SampleRate)
	}

	got := values(mono)
	want := []int16{200, -300}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Mono() = %v, want %v", got, want)
	}

	already := samples(22050, 1, 2, 3)
	if m := already.Mono(); len(m.Data) != len(already.Data) {
		t.Error("Mono input should be returned unchanged")
	}
}

// TestPCMResample tests linear resampling.
func TestPCMResample(t *testing.T) {
	in := samples(8000, 0, 100, 200, 300)

	up := in.Resample(16000)
	if up.SampleRate != 16000 {
		t.Fatalf("Expected 16000 Hz, got %d", up.SampleRate)
	}
	got := values(up)
	want := []int16{0, 50, 100, 150, 200, 250, 300, 300}
	if len(got) != len(want) {
		t.Fatalf("Expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sample %d: expected %d, got %d", i, want[i], got[i])
		}
	}

	down := in.Resample(4000)
	if got := values(down); len(got) != 2 || got[0] != 0 || got[1] != 200 {
		t.Errorf("Downsampled = %v, want [0 200]", got)
	}

	if same := in.Resample(8000); len(same.Data) != len(in.Data) {
		t.Error("Resampling to the same rate should be a no-op")
	}
}

// TestSilence tests silence generation.
func TestSilence(t *testing.T) {
	s := Silence(500*time.Millisecond, 22050)
	if s.Frames() != 11025 {
		t.Errorf("Expected 11025 frames, got %d", s.Frames())
	}
	for _, b := range s.Data {
		if b != 0 {
			t.Fatal("Silence should be all zeros")
		}
	}
}
