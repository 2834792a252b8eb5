package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/painelbot/atendente"
	httpAdapter "github.com/painelbot/atendente/internal/adapters/http"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the flow graph and step editor over HTTP",
	Long: `Starts a JSON API over the dashboard: the materialized flow graph, its Mermaid
rendering and step editing. Backend errors of 401/403 are answered with a redirect to the login.`,
	PreRunE: requireSession,
	RunE: func(cmd *cobra.Command, args []string) error {
		port := app.Config.Server.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetString("port")
		}
		ctx := cmd.Context()

		dash := app.Dashboard()
		if _, err := dash.Refresh(ctx); err != nil {
			app.Logger.Warn("Initial flow load failed; it will be retried on /graph?refresh=true", "error", err)
		}

		handler := httpAdapter.NewHandler(dash,
			httpAdapter.WithMetrics(app.Metrics),
			httpAdapter.WithLogger(app.Logger),
			httpAdapter.WithVersion(atendente.Version),
		)

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			app.Logger.Info("Starting atendente server", "addr", srv.Addr, "backend", app.Client.BaseURL())
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			app.Logger.Info("Start shutdown...")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				app.Logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			app.Logger.Info("atendente server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on (overrides server.port)")
}
