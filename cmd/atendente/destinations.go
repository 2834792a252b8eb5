package main

import (
	"fmt"

	"github.com/painelbot/atendente/internal/cli"
	"github.com/painelbot/atendente/pkg/domain"
	"github.com/spf13/cobra"
)

var destinationsCmd = &cobra.Command{
	Use:               "destinations",
	Aliases:           []string{"dest"},
	Short:             "Inspect and edit the human transfer destinations",
	PersistentPreRunE: chainPreRun(requireSession),
}

var destinationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every destination",
	RunE: func(cmd *cobra.Command, args []string) error {
		dests, err := app.Client.Destinations(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(dests))
		for _, d := range dests {
			rows = append(rows, []string{d.ID, d.Title, domain.FormatPhone(d.Number)})
		}
		return cli.PrintTable(cmd.OutOrStdout(), []string{"ID", "TITLE", "NUMBER"}, rows)
	},
}

var destinationsShowCmd = &cobra.Command{
	Use:   "show <destination-id>",
	Short: "Show one destination",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := app.Client.Destination(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s)\n", d.Title, d.ID)
		fmt.Fprintf(out, "Number: %s\n", domain.FormatPhone(d.Number))
		if d.Description != "" {
			fmt.Fprintf(out, "%s\n", d.Description)
		}
		return nil
	},
}

var destinationsSetCmd = &cobra.Command{
	Use:   "set <destination-id> <number>",
	Short: "Change the number of a destination",
	Long:  `Changes the number of a destination. The number needs 13 digits: country code, area code and number.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Client.UpdateDestination(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Destination '%s' now points to %s.", args[0], domain.FormatPhone(args[1]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(destinationsCmd)
	destinationsCmd.AddCommand(destinationsListCmd, destinationsShowCmd, destinationsSetCmd)
}
