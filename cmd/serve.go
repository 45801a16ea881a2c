package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"clipgenius/internal"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ClipGenius HTTP API server",
	Long: `Run the ClipGenius HTTP API server.

Exposes POST /api/analyze and GET /api/results/{video_id} so that
frontends can request video highlights over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = config.Port
		}

		app := internal.NewApp(config, logger)
		server := internal.NewServer(app, port, logger)

		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
				return
			}
			errCh <- nil
		}()

		select {
		case err := <-errCh:
			return err
		case <-cmd.Context().Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("graceful shutdown failed")
			return err
		}
		return <-errCh
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}
