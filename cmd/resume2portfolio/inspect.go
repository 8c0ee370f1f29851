package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume2portfolio/internal/config"
	"github.com/jonathan/resume2portfolio/internal/observability"
	"github.com/jonathan/resume2portfolio/internal/portfolio"
	"github.com/jonathan/resume2portfolio/internal/profile"
	"github.com/jonathan/resume2portfolio/internal/schemas"
	"github.com/jonathan/resume2portfolio/internal/transfer"
)

var (
	inspectHTMLOut    string
	inspectBackendURL string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <response.json>",
	Short: "Summarize a saved backend upload response",
	Long: `Normalize a saved upload response the same way the web app does and print
what the portfolio would show. With --html the rendered page is written to a file.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectHTMLOut, "html", "", "Write the rendered portfolio page to this path")
	inspectCmd.Flags().StringVar(&inspectBackendURL, "backend", config.DefaultBackendURL, "Backend base URL used for export links")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read response file: %w", err)
	}

	out := cmd.OutOrStdout()

	if err := schemas.ValidateRawSubmission(raw); err != nil {
		fmt.Fprintf(out, "Warning: %v\n", err) //nolint:errcheck
	}

	prof, err := profile.Normalize(raw)
	if err != nil {
		return err
	}

	urls, err := transfer.New(inspectBackendURL, nil)
	if err != nil {
		return err
	}
	view, err := portfolio.New(urls, nil)
	if err != nil {
		return err
	}
	data, err := view.BuildTemplateData(prof)
	if err != nil {
		return err
	}

	titles := make([]string, 0, len(data.Sections))
	for _, section := range data.Sections {
		titles = append(titles, section.Title)
	}

	printer := observability.NewPrinter(out)
	printer.PrintProfile(prof)
	printer.PrintSections(titles)

	if inspectHTMLOut == "" {
		return nil
	}

	var buf bytes.Buffer
	if err := view.Render(&buf, prof); err != nil {
		return err
	}
	if err := os.WriteFile(inspectHTMLOut, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", inspectHTMLOut, err)
	}
	fmt.Fprintf(out, "Wrote %s\n", inspectHTMLOut) //nolint:errcheck
	return nil
}
