package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/painelbot/atendente/internal/cli"
	"github.com/painelbot/atendente/internal/presentation/tui"
	"github.com/painelbot/atendente/pkg/adapters/api"
	"github.com/painelbot/atendente/pkg/domain"
	"github.com/painelbot/atendente/pkg/editor"
	"github.com/spf13/cobra"
)

var menusCmd = &cobra.Command{
	Use:               "menus",
	Aliases:           []string{"menu", "steps"},
	Short:             "Inspect and edit the attendant menus",
	PersistentPreRunE: chainPreRun(requireSession),
}

var menusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every menu step",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, err := app.Client.Menus(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(steps))
		for _, id := range steps.IDs() {
			s := steps[id]
			active := "yes"
			if s.Active != nil && !*s.Active {
				active = "no"
			}
			rows = append(rows, []string{string(id), s.Title, strconv.Itoa(len(s.Options)), active})
		}
		return cli.PrintTable(cmd.OutOrStdout(), []string{"ID", "TITLE", "OPTIONS", "ACTIVE"}, rows)
	},
}

var menusShowCmd = &cobra.Command{
	Use:   "show <step-id>",
	Short: "Render one step with its options",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dash := app.Dashboard()
		if _, err := dash.Refresh(cmd.Context()); err != nil {
			return err
		}
		step, err := dash.Step(domain.StepID(args[0]))
		if err != nil {
			return err
		}
		out, err := tui.NewRenderer()(tui.StepMarkdown(step, dash.Steps()))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var menusCreateCmd = &cobra.Command{
	Use:   "create <step-id>",
	Short: "Create a step with an empty option and the return option",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")

		step := api.NewMenuTemplate(domain.StepID(strings.TrimSpace(args[0])))
		if title != "" {
			step.Title = title
		}
		if description != "" {
			step.Description = description
		}
		if err := app.Client.CreateMenu(cmd.Context(), step); err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Step '%s' created.", step.ID)
		return nil
	},
}

var menusAddOptionCmd = &cobra.Command{
	Use:   "add-option <step-id> <title>",
	Short: "Append an option to a step",
	Long:  `Appends an option to the step. Without --id the next free numeric id is used; the return option "0" stays last.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		return editStep(cmd, args[0], func(ed *editor.Editor) error {
			if id != "" {
				return ed.AddOptionWithID(id, args[1])
			}
			_, err := ed.AddOption(args[1])
			return err
		})
	},
}

var menusRemoveOptionCmd = &cobra.Command{
	Use:   "remove-option <step-id> <option-id>",
	Short: "Remove an option from a step",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editStep(cmd, args[0], func(ed *editor.Editor) error {
			return ed.RemoveOption(args[1])
		})
	},
}

var menusSetOptionCmd = &cobra.Command{
	Use:   "set-option <step-id> <option-id> <title>",
	Short: "Rename an option",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editStep(cmd, args[0], func(ed *editor.Editor) error {
			return ed.SetOption(args[1], args[2])
		})
	},
}

var menusSetTitleCmd = &cobra.Command{
	Use:   "set-title <step-id> <title>",
	Short: "Change the title (and optionally the description) of a step",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		setDescription := cmd.Flags().Changed("description")
		return editStep(cmd, args[0], func(ed *editor.Editor) error {
			if err := ed.SetTitle(args[1]); err != nil {
				return err
			}
			if setDescription {
				return ed.SetDescription(description)
			}
			return nil
		})
	},
}

// editStep loads the flow, applies change to step id in an editor and saves it.
func editStep(cmd *cobra.Command, id string, change func(*editor.Editor) error) error {
	ctx := cmd.Context()
	dash := app.Dashboard()
	if _, err := dash.Refresh(ctx); err != nil {
		return err
	}
	ed, err := dash.Edit(domain.StepID(id))
	if err != nil {
		return err
	}
	defer ed.Cancel()

	if err := change(ed); err != nil {
		return err
	}
	if !ed.Dirty() {
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Nothing to save.")
		return nil
	}
	if _, err := dash.Save(ctx, ed); err != nil {
		return err
	}
	step := ed.Step()
	cli.PrintSystemMessage(cmd.OutOrStdout(), "Step '%s' saved (%d options).", step.ID, len(step.Options))
	return nil
}

// chainPreRun runs the root's persistent pre-run before fn, since cobra only runs the nearest one.
func chainPreRun(fn func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return fn(cmd, args)
	}
}

func init() {
	rootCmd.AddCommand(menusCmd)
	menusCmd.AddCommand(menusListCmd, menusShowCmd, menusCreateCmd,
		menusAddOptionCmd, menusRemoveOptionCmd, menusSetOptionCmd, menusSetTitleCmd)

	menusCreateCmd.Flags().String("title", "", "Step title")
	menusCreateCmd.Flags().String("description", "", "Step description")
	menusAddOptionCmd.Flags().String("id", "", "Option id (next free number when empty)")
	menusSetTitleCmd.Flags().String("description", "", "New description")
}
