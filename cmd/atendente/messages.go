package main

import (
	"io"
	"os"
	"strings"

	"github.com/painelbot/atendente/internal/cli"
	"github.com/spf13/cobra"
)

var messagesCmd = &cobra.Command{
	Use:               "messages",
	Short:             "Inspect and edit the bot's fixed messages",
	PersistentPreRunE: chainPreRun(requireSession),
}

var messagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every message",
	RunE: func(cmd *cobra.Command, args []string) error {
		msgs, err := app.Client.Messages(cmd.Context())
		if err != nil {
			return err
		}
		full, _ := cmd.Flags().GetBool("full")
		rows := make([][]string, 0, len(msgs))
		for _, m := range msgs {
			content := m.Content
			if !full {
				content = preview(content, 60)
			}
			rows = append(rows, []string{m.ID, m.Title, content})
		}
		return cli.PrintTable(cmd.OutOrStdout(), []string{"ID", "TITLE", "CONTENT"}, rows)
	},
}

var messagesSetCmd = &cobra.Command{
	Use:   "set <message-id> [content]",
	Short: "Replace the content of a message",
	Long:  `Replaces the content of a message. Use --file to read it from a file ("-" reads stdin).`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		content, err := contentArg(cmd, args[1:], path)
		if err != nil {
			return err
		}
		if err := app.Client.UpdateMessage(cmd.Context(), args[0], content); err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Message '%s' updated.", args[0])
		return nil
	},
}

// contentArg returns the positional content, or the content of path ("-" for stdin).
func contentArg(cmd *cobra.Command, args []string, path string) (string, error) {
	switch {
	case path == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		return strings.TrimRight(string(data), "\n"), err
	case path != "":
		data, err := os.ReadFile(path)
		return strings.TrimRight(string(data), "\n"), err
	case len(args) > 0:
		return args[0], nil
	default:
		return "", errMissingContent
	}
}

// preview flattens s to one line of at most n runes.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	rootCmd.AddCommand(messagesCmd)
	messagesCmd.AddCommand(messagesListCmd, messagesSetCmd)

	messagesListCmd.Flags().Bool("full", false, "Do not truncate the content")
	messagesSetCmd.Flags().StringP("file", "f", "", "Read the content from a file (\"-\" for stdin)")
}
