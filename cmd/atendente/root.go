package main

import (
	"context"
	"fmt"
	"os"

	"github.com/painelbot/atendente/internal/cli"
	"github.com/painelbot/atendente/internal/config"
	"github.com/spf13/cobra"
)

// skipApp marks commands that run without loading the configuration.
const skipApp = "skip-app"

var app *cli.App

var rootCmd = &cobra.Command{
	Use:   "atendente",
	Short: "Manage the WhatsApp virtual attendant",
	Long: `atendente manages the menus, messages, destinations, actions and WhatsApp
instances of the virtual attendant through its REST backend, and renders the
menu flow as a graph.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := cmd.Annotations[skipApp]; ok {
			return nil
		}
		return setupApp(cmd)
	},
}

func setupApp(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	apiURL, _ := cmd.Flags().GetString("api-url")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}

	logger, err := cli.NewLogger(cfg.LogLevel, cfg.LogFormat, debug)
	if err != nil {
		return err
	}
	app, err = cli.NewApp(cfg, logger)
	return err
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx := cli.NewSignalContext(context.Background())
	defer ctx.Cancel()

	err := rootCmd.ExecuteContext(ctx)
	if app != nil {
		if cerr := app.Close(); cerr != nil {
			app.Logger.Warn("Failed to close session backend", "error", cerr)
		}
	}
	if err == nil {
		return
	}
	if cli.IsInterrupted(err) || ctx.Signal() != nil {
		fmt.Fprintln(os.Stderr, "Interrupted.")
		os.Exit(130)
	}
	fmt.Fprintln(os.Stderr, "Error:", cli.Describe(err))
	os.Exit(1)
}

// requireSession is the PreRunE of every command that talks to authenticated endpoints.
func requireSession(cmd *cobra.Command, args []string) error {
	return app.RequireSession(cmd.Context())
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", config.DefaultFileName, "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("api-url", "", "Backend base URL (overrides api_url)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
