package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/painelbot/atendente/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		// Plain markdown is still readable.
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// StepMarkdown previews a step the way the attendee sees it on WhatsApp, with the option targets.
// Targets of unrouted options are flagged when known is non-nil and lacks them.
func StepMarkdown(step domain.Step, known domain.StepMap) string {
	var sb strings.Builder
	title := step.Title
	if title == "" {
		title = domain.HumanizeID(step.ID)
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "`%s`", step.ID)
	if step.Active != nil && !*step.Active {
		sb.WriteString(" _(inativo)_")
	}
	sb.WriteString("\n\n")

	if step.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", step.Description)
	}

	if len(step.Options) == 0 {
		sb.WriteString("_Sem opções._\n")
		return sb.String()
	}

	sb.WriteString("| Opção | Título | Destino |\n|---|---|---|\n")
	for _, o := range step.Options {
		target := "-"
		if o.Target != "" {
			target = "`" + string(o.Target) + "`"
			if known != nil {
				if _, ok := known[o.Target]; !ok && !domain.DefaultTerminals().Has(o.Target) {
					target += " ⚠"
				}
			}
		}
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", o.ID, escapeCell(o.Title), target)
	}
	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
