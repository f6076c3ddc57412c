package tts

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// LoadConfigFromViper loads TTS configuration from Viper, applies
// SPEECHBRIDGE_TTS_* environment overrides and validates the result.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	if viper.IsSet("tts.engine") {
		cfg.Engine = viper.GetString("tts.engine")
	}
	if viper.IsSet("tts.fallback") {
		cfg.Fallback = viper.GetString("tts.fallback")
	}
	if viper.IsSet("tts.fallback_after") {
		cfg.FallbackAfter = viper.GetInt("tts.fallback_after")
	}
	if viper.IsSet("tts.sample_rate") {
		cfg.SampleRate = viper.GetInt("tts.sample_rate")
	}
	if viper.IsSet("tts.buffer_size") {
		if d, err := time.ParseDuration(viper.GetString("tts.buffer_size")); err == nil {
			cfg.BufferSize = d
		}
	}

	cfg.Cache = loadCacheConfig()
	cfg.Piper = loadPiperConfig()
	cfg.Edge = loadEdgeConfig()
	cfg.Mock = loadMockConfig()

	// Piper voices are only configurable from the file.
	piperVoices := cfg.Piper.Voices
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("invalid TTS environment: %w", err)
	}
	cfg.Piper.Voices = piperVoices

	if err := cfg.ExpandPaths(); err != nil {
		return cfg, fmt.Errorf("invalid TTS configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid TTS configuration: %w", err)
	}

	return cfg, nil
}

// loadCacheConfig loads cache configuration from Viper.
func loadCacheConfig() CacheConfig {
	cfg := DefaultCacheConfig()

	if viper.IsSet("tts.cache.enabled") {
		cfg.Enabled = viper.GetBool("tts.cache.enabled")
	}
	if viper.IsSet("tts.cache.dir") {
		cfg.Dir = viper.GetString("tts.cache.dir")
	}
	if viper.IsSet("tts.cache.memory_size") {
		cfg.MemorySize = viper.GetInt("tts.cache.memory_size")
	}
	if viper.IsSet("tts.cache.disk_size") {
		cfg.DiskSize = viper.GetInt("tts.cache.disk_size")
	}
	if viper.IsSet("tts.cache.compression_level") {
		cfg.CompressionLevel = viper.GetInt("tts.cache.compression_level")
	}

	return cfg
}

// loadPiperConfig loads Piper-specific configuration from Viper.
func loadPiperConfig() PiperConfig {
	cfg := DefaultPiperConfig()

	if viper.IsSet("tts.piper.binary") {
		cfg.Binary = viper.GetString("tts.piper.binary")
	}
	if viper.IsSet("tts.piper.sample_rate") {
		cfg.SampleRate = viper.GetInt("tts.piper.sample_rate")
	}
	if viper.IsSet("tts.piper.speaker_id") {
		cfg.SpeakerID = viper.GetInt("tts.piper.speaker_id")
	}
	if viper.IsSet("tts.piper.timeout") {
		if d, err := time.ParseDuration(viper.GetString("tts.piper.timeout")); err == nil {
			cfg.Timeout = d
		}
	}
	if viper.IsSet("tts.piper.voices") {
		var voices []PiperVoice
		if err := viper.UnmarshalKey("tts.piper.voices", &voices); err == nil {
			cfg.Voices = voices
		}
	}

	return cfg
}

// loadEdgeConfig loads Edge TTS-specific configuration from Viper.
func loadEdgeConfig() EdgeConfig {
	cfg := DefaultEdgeConfig()

	if viper.IsSet("tts.edge.voices") {
		cfg.Voices = viper.GetStringSlice("tts.edge.voices")
	}
	if viper.IsSet("tts.edge.requests_per_minute") {
		cfg.RequestsPerMinute = viper.GetInt("tts.edge.requests_per_minute")
	}
	if viper.IsSet("tts.edge.timeout") {
		if d, err := time.ParseDuration(viper.GetString("tts.edge.timeout")); err == nil {
			cfg.Timeout = d
		}
	}

	return cfg
}

// loadMockConfig loads Mock TTS-specific configuration from Viper.
func loadMockConfig() MockConfig {
	cfg := DefaultMockConfig()

	if viper.IsSet("tts.mock.words_per_minute") {
		cfg.WordsPerMinute = viper.GetInt("tts.mock.words_per_minute")
	}
	if viper.IsSet("tts.mock.auto_finish") {
		cfg.AutoFinish = viper.GetBool("tts.mock.auto_finish")
	}

	return cfg
}

// SetDefaults sets default values in Viper for TTS configuration.
func SetDefaults() {
	defaults := DefaultConfig()

	viper.SetDefault("tts.engine", defaults.Engine)
	viper.SetDefault("tts.fallback_after", defaults.FallbackAfter)
	viper.SetDefault("tts.sample_rate", defaults.SampleRate)
	viper.SetDefault("tts.buffer_size", defaults.BufferSize.String())

	// Cache defaults
	viper.SetDefault("tts.cache.enabled", defaults.Cache.Enabled)
	viper.SetDefault("tts.cache.memory_size", defaults.Cache.MemorySize)
	viper.SetDefault("tts.cache.disk_size", defaults.Cache.DiskSize)
	viper.SetDefault("tts.cache.compression_level", defaults.Cache.CompressionLevel)

	// Piper defaults
	viper.SetDefault("tts.piper.binary", defaults.Piper.Binary)
	viper.SetDefault("tts.piper.sample_rate", defaults.Piper.SampleRate)
	viper.SetDefault("tts.piper.speaker_id", defaults.Piper.SpeakerID)
	viper.SetDefault("tts.piper.timeout", defaults.Piper.Timeout.String())

	// Edge defaults
	viper.SetDefault("tts.edge.voices", defaults.Edge.Voices)
	viper.SetDefault("tts.edge.requests_per_minute", defaults.Edge.RequestsPerMinute)
	viper.SetDefault("tts.edge.timeout", defaults.Edge.Timeout.String())

	// Mock defaults
	viper.SetDefault("tts.mock.words_per_minute", defaults.Mock.WordsPerMinute)
	viper.SetDefault("tts.mock.auto_finish", defaults.Mock.AutoFinish)
}
