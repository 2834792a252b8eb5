package main

import (
	"fmt"
	"strings"

	"github.com/painelbot/atendente"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version number of atendente",
	Annotations: map[string]string{skipApp: ""},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "atendente version %s\n", strings.TrimSpace(atendente.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
