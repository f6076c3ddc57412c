package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# Speech synthesis configuration
tts:
  # Engine: piper, edge or mock
  engine: "piper"
  # Backend taking over after repeated failures: piper, edge or empty
  fallback: ""
  fallback_after: 3
  # Audio device sample rate
  sample_rate: 22050
  # Audio device buffer
  buffer_size: "50ms"

  # Synthesized audio cache
  cache:
    enabled: true
    # dir: "~/.cache/speechbridge/audio"
    # Sizes in MB
    memory_size: 32
    disk_size: 256
    # zstd level, 0 disables compression
    compression_level: 3

  # Piper runs locally from ONNX voice models
  piper:
    binary: "piper"
    sample_rate: 22050
    speaker_id: 0
    timeout: "30s"
    voices:
      - name: "Lessac"
        lang: "en-US"
        model: "~/.local/share/piper/en_US-lessac-medium.onnx"
        default: true

  # Edge uses the Microsoft online voices, the first one is the default
  edge:
    voices:
      - "en-US-AriaNeural"
      - "en-US-GuyNeural"
      - "en-GB-SoniaNeural"
    requests_per_minute: 50
    timeout: "30s"

  # Mock speaks nothing (for testing)
  mock:
    words_per_minute: 150
    auto_finish: true
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the speechbridge config file",
	Long:    paragraph(fmt.Sprintf("\n%s the speechbridge config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("speechbridge config\nspeechbridge config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Speechbridge", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
	}
	if configFile == "" {
		return errors.New("no configuration file location")
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}
		if err := os.WriteFile(configFile, []byte(defaultConfig), 0o600); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
