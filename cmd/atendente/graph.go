package main

import (
	"github.com/painelbot/atendente/internal/cli"
	"github.com/painelbot/atendente/pkg/domain"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:     "graph",
	Short:   "Export the menu flow graph",
	Long:    `Loads the menus and the flow document and prints the materialized flow as Mermaid (graph TD), JSON or an indented tree.`,
	PreRunE: requireSession,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		selected, _ := cmd.Flags().GetString("selected")

		dash := app.Dashboard()
		if cmd.Flags().Changed("expand-all") {
			expand, _ := cmd.Flags().GetBool("expand-all")
			if _, err := dash.SetExpandAll(expand); err != nil {
				return err
			}
		}
		g, err := dash.Refresh(cmd.Context())
		if err != nil {
			return err
		}
		return cli.WriteGraph(cmd.OutOrStdout(), g, format, domain.StepID(selected))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringP("format", "f", cli.FormatMermaid, "Output format: mermaid, json or tree")
	graphCmd.Flags().Bool("expand-all", false, "Expand every branch instead of the two top levels")
	graphCmd.Flags().String("selected", "", "Step to highlight in the Mermaid output")
}
