package main

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/painelbot/atendente/internal/cli"
	"github.com/painelbot/atendente/pkg/domain"
	"github.com/spf13/cobra"
)

var actionsCmd = &cobra.Command{
	Use:               "actions",
	Short:             "Manage the automated actions bound to menu options",
	PersistentPreRunE: chainPreRun(requireSession),
}

var actionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List actions, optionally for one step",
	RunE: func(cmd *cobra.Command, args []string) error {
		step, _ := cmd.Flags().GetString("step")
		actions, err := app.Client.Actions(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(actions))
		for _, a := range actions {
			if step != "" && string(a.Step) != step {
				continue
			}
			detail := preview(a.Content, 40)
			if a.Type == domain.ActionTypeFile {
				detail = fmt.Sprintf("%d file(s)", len(a.Files))
			}
			rows = append(rows, []string{a.ID, string(a.Step), a.Option, a.Type, detail})
		}
		return cli.PrintTable(cmd.OutOrStdout(), []string{"ID", "STEP", "OPTION", "TYPE", "CONTENT"}, rows)
	},
}

var actionsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an action for a step option",
	Long: `Creates a message or file action for (--step, --option) and adds the step the option
leads to in the "anything else?" list of the flow document.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, files, err := actionFromFlags(cmd, domain.Action{})
		if err != nil {
			return err
		}
		created, err := app.Client.CreateAction(cmd.Context(), a, files)
		if err != nil {
			if created.ID != "" {
				cli.PrintSystemMessage(cmd.ErrOrStderr(), "Action '%s' was created.", created.ID)
			}
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Action '%s' created.", created.ID)
		return nil
	},
}

var actionsUpdateCmd = &cobra.Command{
	Use:   "update <action-id>",
	Short: "Update an action; --file replaces its attachments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := findAction(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		a, files, err := actionFromFlags(cmd, current)
		if err != nil {
			return err
		}
		if _, err := app.Client.UpdateAction(cmd.Context(), a, files); err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Action '%s' updated.", a.ID)
		return nil
	},
}

var actionsDeleteCmd = &cobra.Command{
	Use:   "delete <action-id>",
	Short: "Delete an action",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := findAction(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := app.Client.DeleteAction(cmd.Context(), a); err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Action '%s' deleted.", a.ID)
		return nil
	},
}

func findAction(ctx context.Context, id string) (domain.Action, error) {
	actions, err := app.Client.Actions(ctx)
	if err != nil {
		return domain.Action{}, err
	}
	for _, a := range actions {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Action{}, fmt.Errorf("%w: %s", errActionNotFound, id)
}

// actionFromFlags overlays the changed flags on base and reads the --file attachments.
func actionFromFlags(cmd *cobra.Command, base domain.Action) (domain.Action, []domain.Upload, error) {
	flags := cmd.Flags()
	if flags.Changed("step") {
		step, _ := flags.GetString("step")
		base.Step = domain.StepID(step)
	}
	if flags.Changed("option") {
		base.Option, _ = flags.GetString("option")
	}
	if flags.Changed("type") || base.Type == "" {
		base.Type, _ = flags.GetString("type")
	}
	if flags.Changed("content") {
		base.Content, _ = flags.GetString("content")
	}
	if flags.Changed("await-reply") {
		base.AwaitsReply, _ = flags.GetBool("await-reply")
	}

	paths, _ := flags.GetStringArray("file")
	files, err := readUploads(paths)
	if err != nil {
		return domain.Action{}, nil, err
	}
	if len(files) > 0 && !flags.Changed("type") {
		base.Type = domain.ActionTypeFile
	}
	return base, files, nil
}

// readUploads loads each path, typing it by extension and falling back to content sniffing.
func readUploads(paths []string) ([]domain.Upload, error) {
	out := make([]domain.Upload, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read attachment: %w", err)
		}
		ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(p)))
		if ct == "" {
			ct = http.DetectContentType(data)
		}
		if i := strings.Index(ct, ";"); i >= 0 {
			ct = ct[:i]
		}
		out = append(out, domain.Upload{Name: filepath.Base(p), ContentType: ct, Data: data})
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(actionsCmd)
	actionsCmd.AddCommand(actionsListCmd, actionsCreateCmd, actionsUpdateCmd, actionsDeleteCmd)

	actionsListCmd.Flags().String("step", "", "Only list the actions of this step")
	for _, c := range []*cobra.Command{actionsCreateCmd, actionsUpdateCmd} {
		c.Flags().String("step", "", "Step id")
		c.Flags().String("option", "", "Option id")
		c.Flags().String("type", domain.ActionTypeMessage, "Action type: mensagem or arquivo")
		c.Flags().String("content", "", "Message text (or caption for files)")
		c.Flags().Bool("await-reply", false, "Wait for the contact's reply after the action")
		c.Flags().StringArray("file", nil, "Attachment to upload (repeatable)")
	}
	_ = actionsCreateCmd.MarkFlagRequired("step")
	_ = actionsCreateCmd.MarkFlagRequired("option")
}
