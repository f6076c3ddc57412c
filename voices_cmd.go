package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dgnsrekt/speechbridge/tts"
)

var (
	outputJSON bool

	voicesCmd = &cobra.Command{
		Use:     "voices",
		Short:   "List the voices of the configured engine",
		Long:    paragraph(fmt.Sprintf("\nList the %s of the configured engine. The index column is the value for speak --voice.", keyword("voices"))),
		Example: paragraph("speechbridge voices\nspeechbridge voices --engine edge --json"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			adapter, err := loadCatalog()
			if err != nil {
				return err
			}

			voices, err := adapter.GetSupportedVoices(cmd.Context())
			if err != nil {
				return err
			}
			return printVoices(cmd.OutOrStdout(), voices, outputJSON || !isTerminal(cmd.OutOrStdout()))
		},
	}

	languagesCmd = &cobra.Command{
		Use:     "languages",
		Short:   "List the languages of the configured engine",
		Example: paragraph("speechbridge languages"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			adapter, err := loadCatalog()
			if err != nil {
				return err
			}

			languages, err := adapter.GetSupportedLanguages(cmd.Context())
			if err != nil {
				return err
			}
			return printLanguages(cmd.OutOrStdout(), languages, outputJSON)
		},
	}

	installCmd = &cobra.Command{
		Use:    "install",
		Short:  "Open the voice data installer",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			adapter, err := loadCatalog()
			if err != nil {
				return err
			}

			return adapter.OpenInstall(context.Background())
		},
	}
)

func init() {
	voicesCmd.Flags().BoolVar(&outputJSON, "json", false, "print JSON")
	languagesCmd.Flags().BoolVar(&outputJSON, "json", false, "print JSON")
}

// loadCatalog builds a listing-only adapter from the loaded configuration.
func loadCatalog() (*tts.Adapter, error) {
	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return nil, err
	}
	return newCatalogAdapter(cfg), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec
}

func printVoices(w io.Writer, voices tts.Voices, asJSON bool) error {
	if asJSON {
		return writeJSON(w, voices)
	}

	rows := make([][]string, 0, len(voices.Voices))
	for i, v := range voices.Voices {
		rows = append(rows, []string{
			strconv.Itoa(i),
			v.Name,
			v.Lang,
			v.VoiceURI,
			mark(v.LocalService),
			mark(v.Default),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("#", "NAME", "LANG", "URI", "LOCAL", "DEFAULT").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func printLanguages(w io.Writer, languages tts.Languages, asJSON bool) error {
	if asJSON {
		return writeJSON(w, languages)
	}
	for _, lang := range languages.Languages {
		if _, err := fmt.Fprintln(w, lang); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func mark(b bool) string {
	if b {
		return "✓"
	}
	return ""
}
