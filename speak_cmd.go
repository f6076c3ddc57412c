package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dgnsrekt/speechbridge/internal/speakable"
	"github.com/dgnsrekt/speechbridge/tts"
	"github.com/dgnsrekt/speechbridge/tts/engines/native"
)

var (
	speakLocale string
	speakRate   float64
	speakPitch  float64
	speakVolume float64
	speakVoice  int
	speakFile   string
	speakMD     bool

	speakCmd = &cobra.Command{
		Use:   "speak [TEXT]",
		Args:  cobra.ArbitraryArgs,
		Short: "Speak text aloud",
		Long: paragraph(fmt.Sprintf("\n%s the given text, or standard input when it is piped. "+
			"Long text is spoken in sentence-sized pieces. Interrupting the command stops the utterance.", keyword("Speak"))),
		Example: paragraph("speechbridge speak \"Hello there\"\n" +
			"echo bonjour | speechbridge speak --locale fr-FR --rate 1.2\n" +
			"speechbridge speak --markdown --file README.md"),
		RunE: runSpeak,
	}
)

func init() {
	addSpeakFlags(speakCmd)
}

func addSpeakFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&speakLocale, "locale", "l", "", "language of the text (BCP 47 tag, e.g. en-US)")
	cmd.Flags().Float64VarP(&speakRate, "rate", "r", 1, "speech rate, 0.1 to 10")
	cmd.Flags().Float64VarP(&speakPitch, "pitch", "p", 1, "pitch, 0 to 2")
	cmd.Flags().Float64Var(&speakVolume, "volume", 1, "volume, 0 to 1")
	cmd.Flags().IntVar(&speakVoice, "voice", 0, "voice index from the voices command")
	cmd.Flags().StringVarP(&speakFile, "file", "f", "", "read the text from a file")
	cmd.Flags().BoolVarP(&speakMD, "markdown", "m", false, "read the text as markdown, skipping code")
}

func stdinIsPipe() bool {
	return !term.IsTerminal(int(os.Stdin.Fd())) //nolint:gosec
}

// readText joins the arguments, or reads r when there are none.
func readText(args []string, r io.Reader, piped bool) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if !piped {
		return "", errors.New("nothing to speak: pass text as an argument or pipe it in")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("unable to read stdin: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// speakOptions builds the request, leaving flags the user did not set to
// the engine defaults.
func speakOptions(cmd *cobra.Command, text string) tts.Options {
	options := tts.Options{Text: text, Locale: speakLocale}

	flags := cmd.Flags()
	if flags.Changed("rate") {
		options.SpeechRate = tts.Float(speakRate)
	}
	if flags.Changed("pitch") {
		options.PitchRate = tts.Float(speakPitch)
	}
	if flags.Changed("volume") {
		options.Volume = tts.Float(speakVolume)
	}
	if flags.Changed("voice") {
		options.Voice = tts.Int(speakVoice)
	}
	return options
}

// loadText reads the text to speak from a file, the arguments or stdin.
func loadText(args []string) (string, error) {
	var text string
	if speakFile != "" {
		b, err := os.ReadFile(speakFile)
		if err != nil {
			return "", fmt.Errorf("unable to read %s: %w", speakFile, err)
		}
		text = string(b)
	} else {
		var err error
		if text, err = readText(args, os.Stdin, stdinIsPipe()); err != nil {
			return "", err
		}
	}

	if speakMD || strings.EqualFold(filepath.Ext(speakFile), ".md") {
		return speakable.FromMarkdown([]byte(text))
	}
	return text, nil
}

func runSpeak(cmd *cobra.Command, args []string) error {
	text, err := loadText(args)
	if err != nil {
		return err
	}
	chunks := speakable.Chunks(text, native.MaxTextLength)
	if len(chunks) == 0 {
		return errors.New("nothing to speak")
	}

	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return err
	}
	adapter, closer := newAdapter(cfg)
	defer func() { _ = closer() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for i, chunk := range chunks {
		options := speakOptions(cmd, chunk)
		log.Debug("Speaking", "part", i+1, "of", len(chunks), "chars", len(chunk), "locale", options.Locale)

		err := adapter.Speak(ctx, options)
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			log.Debug("Interrupted, stopping speech")
			return adapter.Stop(context.Background())
		}
		if err != nil {
			return err
		}
	}
	return nil
}
