package main

import (
	"fmt"
	"strconv"

	"github.com/painelbot/atendente/internal/cli"
	"github.com/painelbot/atendente/internal/presentation/tui"
	"github.com/painelbot/atendente/pkg/domain"
	"github.com/painelbot/atendente/pkg/poller"
	"github.com/spf13/cobra"
)

var instancesCmd = &cobra.Command{
	Use:               "instances",
	Aliases:           []string{"instance"},
	Short:             "Manage the WhatsApp instances",
	PersistentPreRunE: chainPreRun(requireSession),
}

var instancesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List instances",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		status, _ := cmd.Flags().GetString("status")

		all, err := app.Client.Instances(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		rows := [][]string{}
		for _, in := range (domain.InstanceFilter{Query: query, Status: status}).Apply(all) {
			rows = append(rows, []string{
				in.Name,
				tui.StatusLabel(out, in.ConnectionStatus),
				domain.FormatPhone(in.Number),
				in.ProfileName,
				strconv.Itoa(in.Count.Chat),
				strconv.Itoa(in.Count.Message),
			})
		}
		return cli.PrintTable(out, []string{"NAME", "STATUS", "NUMBER", "PROFILE", "CHATS", "MESSAGES"}, rows)
	},
}

var instancesCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, _ := cmd.Flags().GetString("number")
		if err := app.Client.CreateInstance(cmd.Context(), domain.NewInstance{Name: args[0], Number: number}); err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Instance '%s' created. Run `atendente instances connect %s` to pair it.", args[0], args[0])
		return nil
	},
}

var instancesConnectCmd = &cobra.Command{
	Use:   "connect <name>",
	Short: "Pair an instance, printing QR or pairing codes until it connects",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		qrOut, _ := cmd.Flags().GetString("qr-out")
		interval, _ := cmd.Flags().GetDuration("interval")
		ctx, out := cmd.Context(), cmd.OutOrStdout()

		state, err := app.Client.Connect(ctx, args[0])
		if err != nil {
			return err
		}
		if state.Terminal() {
			cli.PrintSystemMessage(out, "Instance '%s' is already connected.", args[0])
			return nil
		}
		return cli.WatchConnection(ctx, app.Client, args[0], out, cli.ConnectOptions{Interval: interval, QRPath: qrOut})
	},
}

var instancesLogoutCmd = &cobra.Command{
	Use:   "logout <instance-id>",
	Short: "Disconnect an instance from WhatsApp",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Client.Logout(cmd.Context(), args[0]); err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Instance '%s' disconnected.", args[0])
		return nil
	},
}

var instancesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			answer, err := cli.ReadLine(cmd.InOrStdin(), cmd.ErrOrStderr(), fmt.Sprintf("Delete instance '%s'? [y/N] ", args[0]))
			if err != nil {
				return err
			}
			if answer != "y" && answer != "Y" {
				return nil
			}
		}
		if err := app.Client.DeleteInstance(cmd.Context(), args[0]); err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Instance '%s' deleted.", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(instancesCmd)
	instancesCmd.AddCommand(instancesListCmd, instancesCreateCmd, instancesConnectCmd, instancesLogoutCmd, instancesDeleteCmd)

	instancesListCmd.Flags().StringP("query", "q", "", "Filter by name")
	instancesListCmd.Flags().String("status", "all", "Filter by status: all, connected or disconnected")
	instancesCreateCmd.Flags().String("number", "", "Phone number to pair with a code instead of a QR")
	instancesConnectCmd.Flags().String("qr-out", "", "Write the QR code PNG to this file")
	instancesConnectCmd.Flags().Duration("interval", poller.DefaultInterval, "Status polling interval")
	instancesDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
