package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"clipgenius/internal"
)

// analyzeCmd runs the full pipeline once and prints the highlights.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [YouTube URL]",
	Short: "Analyze a YouTube video and print its highlights",
	Example: `  # Analyze a video
  clipgenius analyze "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

  # Print raw JSON instead of rendered markdown
  clipgenius analyze "https://youtu.be/dQw4w9WgXcQ" --json

  # Copy the highlights to the clipboard
  clipgenius analyze "https://youtu.be/dQw4w9WgXcQ" --copy`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd, args[0])
	},
}

// runAnalyze is shared by the root command and the analyze subcommand.
func runAnalyze(cmd *cobra.Command, youtubeURL string) error {
	quiet, _ := cmd.Flags().GetBool("quiet")
	app := internal.NewApp(config, logger)
	ui := internal.NewUIManager(quiet)

	spinner := ui.NewSpinner("Fetching transcript and analyzing...")
	result, err := app.Analyze(cmd.Context(), youtubeURL)
	spinner.Finish()
	if err != nil {
		if classified, ok := internal.AsPipelineError(err); ok {
			return fmt.Errorf("%s", classified.Message)
		}
		return err
	}

	output, err := formatResult(cmd, result)
	if err != nil {
		return err
	}

	if copyFlag, _ := cmd.Flags().GetBool("copy"); copyFlag {
		if err := clipboard.WriteAll(output); err != nil {
			return fmt.Errorf("copying highlights to clipboard: %w", err)
		}
		ui.Printf("Highlights copied to clipboard\n")
		return nil
	}

	fmt.Println(output)
	return nil
}

// formatResult renders a result as markdown for terminals, JSON otherwise.
func formatResult(cmd *cobra.Command, result *internal.AnalyzeResult) (string, error) {
	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON || !isatty.IsTerminal(os.Stdout.Fd()) {
		data, err := json.MarshalIndent(internal.RecordToResponse(result.Record, result.Cached), "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding result: %w", err)
		}
		return string(data), nil
	}

	return internal.RenderMarkdown(internal.HighlightsMarkdown(result.Record, result.Cached))
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, analyzeCmd} {
		c.Flags().Bool("json", false, "Print raw JSON output")
		c.Flags().Bool("copy", false, "Copy the highlights to the clipboard")
	}
	rootCmd.AddCommand(analyzeCmd)
}
