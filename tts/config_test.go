package tts

import (
	"strings"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// TestDefaultConfig tests that default configuration is valid.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}

	if cfg.Engine != EnginePiper {
		t.Errorf("Default engine should be piper, got %s", cfg.Engine)
	}

	if !cfg.Cache.Enabled {
		t.Error("Cache should be enabled by default")
	}
}

// TestConfigValidation tests configuration validation.
func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "invalid engine",
			modify: func(c *Config) {
				c.Engine = "invalid"
			},
			wantErr: true,
			errMsg:  "invalid TTS engine",
		},
		{
			name: "engine is case insensitive",
			modify: func(c *Config) {
				c.Engine = "EDGE"
			},
			wantErr: false,
		},
		{
			name: "invalid sample rate",
			modify: func(c *Config) {
				c.SampleRate = 12345
			},
			wantErr: true,
			errMsg:  "invalid sample rate",
		},
		{
			name: "buffer size zero",
			modify: func(c *Config) {
				c.BufferSize = 0
			},
			wantErr: true,
			errMsg:  "buffer_size must be between",
		},
		{
			name: "cache memory too large",
			modify: func(c *Config) {
				c.Cache.MemorySize = 4096
			},
			wantErr: true,
			errMsg:  "memory_size must be between",
		},
		{
			name: "disabled cache skips validation",
			modify: func(c *Config) {
				c.Cache.Enabled = false
				c.Cache.MemorySize = 0
			},
			wantErr: false,
		},
		{
			name: "piper without voices",
			modify: func(c *Config) {
				c.Piper.Voices = nil
			},
			wantErr: true,
			errMsg:  "at least one piper voice",
		},
		{
			name: "piper voice without model",
			modify: func(c *Config) {
				c.Piper.Voices = []PiperVoice{{Name: "broken", Lang: "en-US"}}
			},
			wantErr: true,
			errMsg:  "model cannot be empty",
		},
		{
			name: "piper timeout too short",
			modify: func(c *Config) {
				c.Piper.Timeout = 100 * time.Millisecond
			},
			wantErr: true,
			errMsg:  "timeout must be at least 1 second",
		},
		{
			name: "edge without voices",
			modify: func(c *Config) {
				c.Engine = EngineEdge
				c.Edge.Voices = nil
			},
			wantErr: true,
			errMsg:  "at least one edge voice",
		},
		{
			name: "edge rate limit out of range",
			modify: func(c *Config) {
				c.Engine = EngineEdge
				c.Edge.RequestsPerMinute = 0
			},
			wantErr: true,
			errMsg:  "requests_per_minute must be between",
		},
		{
			name: "edge config ignored for piper",
			modify: func(c *Config) {
				c.Edge.Voices = nil
			},
			wantErr: false,
		},
		{
			name: "edge fallback for piper",
			modify: func(c *Config) {
				c.Fallback = "Edge"
			},
			wantErr: false,
		},
		{
			name: "fallback to itself",
			modify: func(c *Config) {
				c.Fallback = EnginePiper
			},
			wantErr: true,
			errMsg:  "cannot back up",
		},
		{
			name: "unknown fallback",
			modify: func(c *Config) {
				c.Fallback = EngineMock
			},
			wantErr: true,
			errMsg:  "invalid fallback engine",
		},
		{
			name: "fallback threshold out of range",
			modify: func(c *Config) {
				c.Fallback = EngineEdge
				c.FallbackAfter = 0
			},
			wantErr: true,
			errMsg:  "fallback_after must be between",
		},
		{
			name: "fallback config is validated",
			modify: func(c *Config) {
				c.Fallback = EngineEdge
				c.Edge.Voices = nil
			},
			wantErr: true,
			errMsg:  "at least one edge voice",
		},
		{
			name: "mock words per minute too low",
			modify: func(c *Config) {
				c.Engine = EngineMock
				c.Mock.WordsPerMinute = 10
			},
			wantErr: true,
			errMsg:  "words_per_minute must be between",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Expected error containing %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

// TestValidateNormalizesEngine tests that engine names are lowercased.
func TestValidateNormalizesEngine(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine = "Mock"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.Engine != EngineMock {
		t.Errorf("Expected engine %q, got %q", EngineMock, cfg.Engine)
	}
}

// TestExpandPaths tests home directory expansion.
func TestExpandPaths(t *testing.T) {
	homedir.DisableCache = true
	defer func() { homedir.DisableCache = false }()
	t.Setenv("HOME", "/home/tester")

	cfg := DefaultConfig()
	cfg.Cache.Dir = "~/cache"
	cfg.Piper.Voices = []PiperVoice{{Name: "a", Lang: "en-US", Model: "~/models/a.onnx"}}

	if err := cfg.ExpandPaths(); err != nil {
		t.Fatalf("ExpandPaths failed: %v", err)
	}

	if cfg.Cache.Dir != "/home/tester/cache" {
		t.Errorf("Unexpected cache dir: %s", cfg.Cache.Dir)
	}
	if cfg.Piper.Voices[0].Model != "/home/tester/models/a.onnx" {
		t.Errorf("Unexpected model path: %s", cfg.Piper.Voices[0].Model)
	}
}

// TestLoadConfigFromViper tests loading configuration from Viper.
func TestLoadConfigFromViper(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("tts.engine", "edge")
	viper.Set("tts.sample_rate", 24000)
	viper.Set("tts.cache.enabled", false)
	viper.Set("tts.edge.voices", []string{"en-US-AriaNeural", "fr-FR-DeniseNeural"})
	viper.Set("tts.edge.timeout", "5s")
	viper.Set("tts.piper.voices", []map[string]interface{}{
		{"name": "Amy", "lang": "en-US", "model": "/models/amy.onnx", "default": true},
		{"name": "Thorsten", "lang": "de-DE", "model": "/models/thorsten.onnx"},
	})

	cfg, err := LoadConfigFromViper()
	if err != nil {
		t.Fatalf("LoadConfigFromViper failed: %v", err)
	}

	if cfg.Engine != EngineEdge {
		t.Errorf("Expected engine edge, got %s", cfg.Engine)
	}
	if cfg.SampleRate != 24000 {
		t.Errorf("Expected sample rate 24000, got %d", cfg.SampleRate)
	}
	if cfg.Cache.Enabled {
		t.Error("Expected cache to be disabled")
	}
	if len(cfg.Edge.Voices) != 2 || cfg.Edge.Voices[1] != "fr-FR-DeniseNeural" {
		t.Errorf("Unexpected edge voices: %v", cfg.Edge.Voices)
	}
	if cfg.Edge.Timeout != 5*time.Second {
		t.Errorf("Expected edge timeout 5s, got %v", cfg.Edge.Timeout)
	}
	if len(cfg.Piper.Voices) != 2 {
		t.Fatalf("Expected 2 piper voices, got %d", len(cfg.Piper.Voices))
	}
	if cfg.Piper.Voices[1].Name != "Thorsten" || cfg.Piper.Voices[1].Lang != "de-DE" {
		t.Errorf("Unexpected piper voice: %+v", cfg.Piper.Voices[1])
	}
}

// TestLoadConfigFromEnv tests environment overrides.
func TestLoadConfigFromEnv(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("tts.engine", "piper")
	t.Setenv("SPEECHBRIDGE_TTS_ENGINE", "mock")
	t.Setenv("SPEECHBRIDGE_TTS_MOCK_WORDS_PER_MINUTE", "200")

	cfg, err := LoadConfigFromViper()
	if err != nil {
		t.Fatalf("LoadConfigFromViper failed: %v", err)
	}

	if cfg.Engine != EngineMock {
		t.Errorf("Expected environment to select mock, got %s", cfg.Engine)
	}
	if cfg.Mock.WordsPerMinute != 200 {
		t.Errorf("Expected 200 words per minute, got %d", cfg.Mock.WordsPerMinute)
	}
	if len(cfg.Piper.Voices) == 0 {
		t.Error("Piper voices should survive environment parsing")
	}
}

// TestLoadConfigInvalid tests that invalid configuration is rejected.
func TestLoadConfigInvalid(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("tts.engine", "festival")

	if _, err := LoadConfigFromViper(); err == nil {
		t.Error("Expected error for unknown engine")
	}
}

// TestSetDefaults tests that Viper defaults mirror DefaultConfig.
func TestSetDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	SetDefaults()

	defaults := DefaultConfig()
	if got := viper.GetString("tts.engine"); got != defaults.Engine {
		t.Errorf("Expected default engine %s, got %s", defaults.Engine, got)
	}
	if got := viper.GetInt("tts.edge.requests_per_minute"); got != defaults.Edge.RequestsPerMinute {
		t.Errorf("Expected %d requests per minute, got %d", defaults.Edge.RequestsPerMinute, got)
	}
	if got := viper.GetString("tts.piper.timeout"); got != defaults.Piper.Timeout.String() {
		t.Errorf("Expected piper timeout %s, got %s", defaults.Piper.Timeout, got)
	}
}
