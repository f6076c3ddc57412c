package tts

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
)

// Engine names accepted by Config.Engine.
const (
	EnginePiper = "piper"
	EngineEdge  = "edge"
	EngineMock  = "mock"
)

// Config contains all TTS configuration options.
type Config struct {
	// Engine selects the host synthesizer: piper, edge or mock.
	Engine string `yaml:"engine" env:"SPEECHBRIDGE_TTS_ENGINE"`

	// Fallback names a second backend (piper or edge) that takes over after
	// FallbackAfter consecutive failures. Empty disables it.
	Fallback      string `yaml:"fallback" env:"SPEECHBRIDGE_TTS_FALLBACK"`
	FallbackAfter int    `yaml:"fallback_after" env:"SPEECHBRIDGE_TTS_FALLBACK_AFTER"`

	// Audio output settings
	SampleRate int           `yaml:"sample_rate" env:"SPEECHBRIDGE_TTS_SAMPLE_RATE"`
	BufferSize time.Duration `yaml:"buffer_size" env:"SPEECHBRIDGE_TTS_BUFFER_SIZE"`

	// Synthesized audio cache
	Cache CacheConfig `yaml:"cache"`

	// Engine-specific configurations
	Piper PiperConfig `yaml:"piper"`
	Edge  EdgeConfig  `yaml:"edge"`
	Mock  MockConfig  `yaml:"mock"`
}

// CacheConfig controls the synthesized audio cache.
type CacheConfig struct {
	Enabled          bool   `yaml:"enabled" env:"SPEECHBRIDGE_TTS_CACHE_ENABLED"`
	Dir              string `yaml:"dir" env:"SPEECHBRIDGE_TTS_CACHE_DIR"`
	MemorySize       int    `yaml:"memory_size" env:"SPEECHBRIDGE_TTS_CACHE_MEMORY_SIZE"` // MB
	DiskSize         int    `yaml:"disk_size" env:"SPEECHBRIDGE_TTS_CACHE_DISK_SIZE"`     // MB
	CompressionLevel int    `yaml:"compression_level" env:"SPEECHBRIDGE_TTS_CACHE_COMPRESSION_LEVEL"`
}

// PiperConfig contains Piper TTS engine specific settings.
type PiperConfig struct {
	Binary     string        `yaml:"binary" env:"SPEECHBRIDGE_TTS_PIPER_BINARY"`
	SampleRate int           `yaml:"sample_rate" env:"SPEECHBRIDGE_TTS_PIPER_SAMPLE_RATE"`
	SpeakerID  int           `yaml:"speaker_id" env:"SPEECHBRIDGE_TTS_PIPER_SPEAKER_ID"`
	Timeout    time.Duration `yaml:"timeout" env:"SPEECHBRIDGE_TTS_PIPER_TIMEOUT"`
	Voices     []PiperVoice  `yaml:"voices"`
}

// PiperVoice maps a voice entry to a Piper model file.
type PiperVoice struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Lang    string `yaml:"lang" mapstructure:"lang"`
	Model   string `yaml:"model" mapstructure:"model"`
	Default bool   `yaml:"default" mapstructure:"default"`
}

// EdgeConfig contains Microsoft Edge TTS engine specific settings.
type EdgeConfig struct {
	Voices            []string      `yaml:"voices" env:"SPEECHBRIDGE_TTS_EDGE_VOICES"`
	RequestsPerMinute int           `yaml:"requests_per_minute" env:"SPEECHBRIDGE_TTS_EDGE_REQUESTS_PER_MINUTE"`
	Timeout           time.Duration `yaml:"timeout" env:"SPEECHBRIDGE_TTS_EDGE_TIMEOUT"`
}

// MockConfig contains Mock TTS engine specific settings.
type MockConfig struct {
	WordsPerMinute int  `yaml:"words_per_minute" env:"SPEECHBRIDGE_TTS_MOCK_WORDS_PER_MINUTE"`
	AutoFinish     bool `yaml:"auto_finish" env:"SPEECHBRIDGE_TTS_MOCK_AUTO_FINISH"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Engine:        EnginePiper,
		FallbackAfter: 3,
		SampleRate:    22050,
		BufferSize:    50 * time.Millisecond,

		Cache: DefaultCacheConfig(),
		Piper: DefaultPiperConfig(),
		Edge:  DefaultEdgeConfig(),
		Mock:  DefaultMockConfig(),
	}
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:          true,
		MemorySize:       32,
		DiskSize:         256,
		CompressionLevel: 3,
	}
}

// DefaultPiperConfig returns default Piper configuration.
func DefaultPiperConfig() PiperConfig {
	dataDir := "~/.local/share/piper"
	if runtime.GOOS == "darwin" {
		dataDir = filepath.Join("/usr", "local", "share", "piper")
	}

	return PiperConfig{
		Binary:     "piper",
		SampleRate: 22050,
		Timeout:    30 * time.Second,
		Voices: []PiperVoice{
			{
				Name:    "Lessac",
				Lang:    "en-US",
				Model:   filepath.Join(dataDir, "en_US-lessac-medium.onnx"),
				Default: true,
			},
		},
	}
}

// DefaultEdgeConfig returns default Edge TTS configuration.
func DefaultEdgeConfig() EdgeConfig {
	return EdgeConfig{
		Voices: []string{
			"en-US-AriaNeural",
			"en-US-GuyNeural",
			"en-GB-SoniaNeural",
			"de-DE-KatjaNeural",
			"fr-FR-DeniseNeural",
			"es-ES-ElviraNeural",
		},
		RequestsPerMinute: 50,
		Timeout:           30 * time.Second,
	}
}

// DefaultMockConfig returns default Mock configuration.
func DefaultMockConfig() MockConfig {
	return MockConfig{
		WordsPerMinute: 150,
		AutoFinish:     true,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	validEngines := []string{EnginePiper, EngineEdge, EngineMock}
	engineValid := false
	for _, e := range validEngines {
		if strings.EqualFold(c.Engine, e) {
			engineValid = true
			c.Engine = e
			break
		}
	}
	if !engineValid {
		return fmt.Errorf("invalid TTS engine '%s': must be one of %v", c.Engine, validEngines)
	}

	validSampleRates := []int{8000, 16000, 22050, 24000, 44100, 48000}
	sampleRateValid := false
	for _, sr := range validSampleRates {
		if c.SampleRate == sr {
			sampleRateValid = true
			break
		}
	}
	if !sampleRateValid {
		return fmt.Errorf("invalid sample rate %d: must be one of %v", c.SampleRate, validSampleRates)
	}

	if c.BufferSize <= 0 || c.BufferSize > time.Second {
		return fmt.Errorf("buffer_size must be between 1ms and 1s, got %v", c.BufferSize)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if err := c.validateEngine(c.Engine); err != nil {
		return err
	}

	if c.Fallback != "" {
		c.Fallback = strings.ToLower(c.Fallback)
		if c.Fallback != EnginePiper && c.Fallback != EngineEdge {
			return fmt.Errorf("invalid fallback engine '%s': must be %s or %s", c.Fallback, EnginePiper, EngineEdge)
		}
		if c.Fallback == c.Engine || c.Engine == EngineMock {
			return fmt.Errorf("fallback engine '%s' cannot back up '%s'", c.Fallback, c.Engine)
		}
		if c.FallbackAfter < 1 || c.FallbackAfter > 100 {
			return fmt.Errorf("fallback_after must be between 1 and 100, got %d", c.FallbackAfter)
		}
		if err := c.validateEngine(c.Fallback); err != nil {
			return err
		}
	}

	return nil
}

// validateEngine checks the settings of the named engine.
func (c *Config) validateEngine(name string) error {
	switch name {
	case EnginePiper:
		if err := c.Piper.Validate(); err != nil {
			return fmt.Errorf("piper config: %w", err)
		}
	case EngineEdge:
		if err := c.Edge.Validate(); err != nil {
			return fmt.Errorf("edge config: %w", err)
		}
	case EngineMock:
		if err := c.Mock.Validate(); err != nil {
			return fmt.Errorf("mock config: %w", err)
		}
	}
	return nil
}

// Validate checks if the cache configuration is valid.
func (c *CacheConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.MemorySize < 1 || c.MemorySize > 1024 {
		return fmt.Errorf("memory_size must be between 1 and 1024 MB, got %d", c.MemorySize)
	}
	if c.DiskSize < 0 || c.DiskSize > 10000 {
		return fmt.Errorf("disk_size must be between 0 and 10000 MB, got %d", c.DiskSize)
	}
	if c.CompressionLevel < 0 || c.CompressionLevel > 22 {
		return fmt.Errorf("compression_level must be between 0 and 22, got %d", c.CompressionLevel)
	}
	return nil
}

// Validate checks if the Piper configuration is valid.
func (c *PiperConfig) Validate() error {
	if c.Binary == "" {
		return fmt.Errorf("piper binary path cannot be empty")
	}

	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}

	if c.Timeout < time.Second {
		return fmt.Errorf("timeout must be at least 1 second, got %v", c.Timeout)
	}

	if len(c.Voices) == 0 {
		return fmt.Errorf("at least one piper voice is required")
	}
	for i, v := range c.Voices {
		if v.Model == "" {
			return fmt.Errorf("voice %d (%s): model cannot be empty", i, v.Name)
		}
	}

	return nil
}

// Validate checks if the Edge configuration is valid.
func (c *EdgeConfig) Validate() error {
	if len(c.Voices) == 0 {
		return fmt.Errorf("at least one edge voice is required")
	}

	if c.RequestsPerMinute < 1 || c.RequestsPerMinute > 600 {
		return fmt.Errorf("requests_per_minute must be between 1 and 600, got %d", c.RequestsPerMinute)
	}

	if c.Timeout < time.Second {
		return fmt.Errorf("timeout must be at least 1 second, got %v", c.Timeout)
	}

	return nil
}

// Validate checks if the Mock configuration is valid.
func (c *MockConfig) Validate() error {
	if c.WordsPerMinute < 50 || c.WordsPerMinute > 500 {
		return fmt.Errorf("words_per_minute must be between 50 and 500, got %d", c.WordsPerMinute)
	}
	return nil
}

// ExpandPaths resolves "~" in every configured path.
func (c *Config) ExpandPaths() error {
	var err error
	if c.Cache.Dir, err = homedir.Expand(c.Cache.Dir); err != nil {
		return fmt.Errorf("cache dir: %w", err)
	}
	if c.Piper.Binary, err = homedir.Expand(c.Piper.Binary); err != nil {
		return fmt.Errorf("piper binary: %w", err)
	}
	for i := range c.Piper.Voices {
		if c.Piper.Voices[i].Model, err = homedir.Expand(c.Piper.Voices[i].Model); err != nil {
			return fmt.Errorf("piper voice %s: %w", c.Piper.Voices[i].Name, err)
		}
	}
	return nil
}
