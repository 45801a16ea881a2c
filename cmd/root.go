package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"clipgenius/internal"
)

var (
	config *internal.Config
	logger *internal.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clipgenius [YouTube URL]",
	Short: "Find the most interesting moments in YouTube videos",
	Long: `ClipGenius analyzes YouTube video transcripts with an LLM and returns
timestamped highlights: the 5-8 most notable moments with a short reason
for each. Results are cached per video so repeat requests are free.

Run with a URL for a one-shot analysis, or start the HTTP API with
'clipgenius serve'.`,
	Example: `  # Analyze a video once and print the highlights
  clipgenius "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

  # Start the HTTP API
  clipgenius serve

  # Look up cached results by video ID
  clipgenius results dQw4w9WgXcQ`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd, args[0])
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config = internal.InitConfig()
	logger = internal.NewLogger(config.LogLevel)

	if err := internal.EnsureDirs(config.ConfigDir, config.DataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating XDG directories: %v\n", err)
		os.Exit(1)
	}

	if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
	}

	if err := internal.EnsureDefaultPrompt(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default prompt: %v\n", err)
	}

	// Cancel the root context on interrupt so in-flight pipeline calls
	// stop; serve installs its own graceful shutdown on top of this.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	rootCmd.SetContext(ctx)

	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress status output")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}
