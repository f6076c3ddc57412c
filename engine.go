package main

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"

	"github.com/dgnsrekt/speechbridge/internal/audio"
	"github.com/dgnsrekt/speechbridge/internal/cache"
	"github.com/dgnsrekt/speechbridge/tts"
	"github.com/dgnsrekt/speechbridge/tts/engines/mock"
	"github.com/dgnsrekt/speechbridge/tts/engines/native"
)

// newAdapter builds the adapter for the configured engine. When the host
// cannot synthesize speech the adapter is returned without an engine and
// every call reports tts.ErrUnsupported.
func newAdapter(cfg tts.Config) (*tts.Adapter, func() error) {
	synth, closer, err := newSynthesizer(cfg)
	if err != nil {
		log.Warn("Speech synthesis unavailable", "engine", cfg.Engine, "error", err)
		return tts.NewAdapter(nil), func() error { return nil }
	}
	log.Debug("Speech synthesis ready", "engine", cfg.Engine)
	return tts.NewAdapter(synth), closer
}

func newSynthesizer(cfg tts.Config) (tts.Synthesizer, func() error, error) {
	nop := func() error { return nil }

	if cfg.Engine == tts.EngineMock {
		if cfg.Mock.AutoFinish {
			return mock.NewAutoFinish(cfg.Mock.WordsPerMinute, mock.DefaultVoices()...), nop, nil
		}
		return mock.New(mock.DefaultVoices()...), nop, nil
	}

	backend, err := newBackendChain(cfg)
	if err != nil {
		return nil, nil, err
	}

	player, err := audio.NewPlayer(audio.Config{
		SampleRate: cfg.SampleRate,
		BufferSize: cfg.BufferSize,
	})
	if err != nil {
		return nil, nil, err
	}

	var manager *cache.Manager
	if cfg.Cache.Enabled {
		manager, err = cache.NewManager(cacheConfig(cfg.Cache))
		if err != nil {
			// Speaking still works without a cache
			log.Warn("Audio cache disabled", "error", err)
			manager = nil
		}
	}

	engine := native.New(backend, player, manager)
	return engine, engine.Close, nil
}

// newCatalogAdapter builds an adapter that lists the configured engine's
// voices without opening the audio device or the cache.
func newCatalogAdapter(cfg tts.Config) *tts.Adapter {
	if cfg.Engine == tts.EngineMock {
		return tts.NewAdapter(mock.New(mock.DefaultVoices()...))
	}
	backend, err := newBackendChain(cfg)
	if err != nil {
		log.Warn("Speech synthesis unavailable", "engine", cfg.Engine, "error", err)
		return tts.NewAdapter(nil)
	}
	return tts.NewAdapter(native.NewCatalog(backend))
}

// newBackendChain builds the configured backend, switching to or wrapping
// the fallback backend when one is set.
func newBackendChain(cfg tts.Config) (native.Backend, error) {
	backend, err := newBackend(cfg, cfg.Engine)
	if err != nil {
		if cfg.Fallback == "" {
			return nil, err
		}
		log.Warn("Speech backend unavailable, using fallback", "engine", cfg.Engine, "fallback", cfg.Fallback, "error", err)
		return newBackend(cfg, cfg.Fallback)
	}
	if cfg.Fallback != "" {
		secondary, err := newBackend(cfg, cfg.Fallback)
		if err != nil {
			log.Warn("Fallback speech backend unavailable", "fallback", cfg.Fallback, "error", err)
			return backend, nil
		}
		backend = native.NewFallback(backend, secondary, cfg.FallbackAfter)
	}
	return backend, nil
}

func newBackend(cfg tts.Config, name string) (native.Backend, error) {
	switch name {
	case tts.EnginePiper:
		return native.NewPiper(cfg.Piper)
	case tts.EngineEdge:
		return native.NewEdge(cfg.Edge), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", name)
	}
}

func cacheConfig(c tts.CacheConfig) cache.Config {
	cfg := cache.DefaultConfig()
	cfg.MemoryCapacity = int64(c.MemorySize) * 1024 * 1024
	cfg.DiskCapacity = int64(c.DiskSize) * 1024 * 1024
	cfg.CompressionLevel = c.CompressionLevel
	cfg.DiskPath = c.Dir

	if cfg.DiskPath == "" {
		dir, err := gap.NewScope(gap.User, appName).CacheDir()
		if err != nil {
			log.Debug("No user cache directory, keeping audio in memory", "error", err)
			cfg.DiskCapacity = 0
			return cfg
		}
		cfg.DiskPath = filepath.Join(dir, "audio")
	}
	return cfg
}
