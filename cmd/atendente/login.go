package main

import (
	"fmt"
	"time"

	"github.com/painelbot/atendente/internal/cli"
	"github.com/painelbot/atendente/internal/presentation/tui"
	"github.com/painelbot/atendente/pkg/session"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the backend and store the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, prompt := cmd.InOrStdin(), cmd.ErrOrStderr()
		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			tui.PrintBanner(prompt)
		}

		username, _ := cmd.Flags().GetString("username")
		if username == "" {
			var err error
			if username, err = cli.ReadLine(in, prompt, "Username: "); err != nil {
				return err
			}
		}
		password, err := cli.ReadSecret(in, prompt, "Password: ")
		if err != nil {
			return err
		}

		if err := app.Session.Login(cmd.Context(), app.Client, username, password); err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Logged in as %s.", username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Session.Clear(cmd.Context()); err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Session cleared.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session and check the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, out := cmd.Context(), cmd.OutOrStdout()
		if err := app.RequireSession(ctx); err != nil {
			return err
		}
		username, err := app.Session.Username(ctx)
		if err != nil {
			return err
		}
		token, err := app.Session.Token(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "User:    %s\n", username)
		if exp, err := session.Expiry(token); err == nil {
			fmt.Fprintf(out, "Expires: %s (in %s)\n", exp.Format(time.RFC3339), time.Until(exp).Round(time.Minute))
		}
		fmt.Fprintf(out, "Backend: %s\n", app.Client.BaseURL())
		if err := app.Client.Ping(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "Status:  reachable")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, statusCmd)

	loginCmd.Flags().StringP("username", "u", "", "Username (prompted when empty)")
	loginCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
