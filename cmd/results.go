package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"clipgenius/internal"
)

var resultsCmd = &cobra.Command{
	Use:   "results [video ID]",
	Short: "Show cached highlights for an already analyzed video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoID := args[0]
		if !internal.IsValidVideoID(videoID) {
			return fmt.Errorf("invalid video ID: %q", videoID)
		}

		app := internal.NewApp(config, logger)
		record, err := app.Results(cmd.Context(), videoID)
		if err != nil {
			if classified, ok := internal.AsPipelineError(err); ok {
				return fmt.Errorf("%s", classified.Message)
			}
			return err
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON || !isatty.IsTerminal(os.Stdout.Fd()) {
			data, err := json.MarshalIndent(internal.RecordToResponse(record, true), "", "  ")
			if err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		rendered, err := internal.RenderMarkdown(internal.HighlightsMarkdown(record, true))
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	},
}

func init() {
	resultsCmd.Flags().Bool("json", false, "Print raw JSON output")
	rootCmd.AddCommand(resultsCmd)
}
