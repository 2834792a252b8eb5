package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/painelbot/atendente/internal/presentation/graph"
	"github.com/painelbot/atendente/pkg/domain"
	"github.com/painelbot/atendente/pkg/flowgraph"
)

// Graph output formats.
const (
	FormatMermaid = "mermaid"
	FormatJSON    = "json"
	FormatTree    = "tree"
)

// WriteGraph renders g in format. selected is highlighted in the Mermaid output.
func WriteGraph(w io.Writer, g *flowgraph.Graph, format string, selected domain.StepID) error {
	switch format {
	case FormatMermaid, "":
		overlay := &graph.GraphOverlay{Selected: selected, Dangling: graph.DanglingSteps(g)}
		_, err := io.WriteString(w, graph.GenerateMermaid(g, overlay))
		return err
	case FormatJSON:
		return PrintJSON(w, g)
	case FormatTree:
		return writeTree(w, g)
	default:
		return fmt.Errorf("unknown format %q (want mermaid, json or tree)", format)
	}
}

// writeTree prints the materialized edges as an indented outline starting at the root.
// Steps already printed are marked instead of expanded again.
func writeTree(w io.Writer, g *flowgraph.Graph) error {
	labels := make(map[domain.StepID]string, len(g.Nodes))
	for _, n := range g.Nodes {
		labels[n.ID] = n.Label
	}

	printed := make(map[domain.StepID]bool)
	var walk func(id domain.StepID, edgeLabel string, depth int)
	walk = func(id domain.StepID, edgeLabel string, depth int) {
		indent := strings.Repeat("  ", depth)
		prefix := ""
		if edgeLabel != "" {
			prefix = "[" + edgeLabel + "] "
		}
		if printed[id] {
			fmt.Fprintf(w, "%s%s%s ↺\n", indent, prefix, labels[id])
			return
		}
		printed[id] = true
		fmt.Fprintf(w, "%s%s%s (%s)\n", indent, prefix, labels[id], id)
		for _, e := range g.EdgesFrom(id) {
			walk(e.Target, e.Label, depth+1)
		}
	}
	walk(g.Root, "", 0)

	for _, d := range g.Dangling {
		fmt.Fprintf(w, "! %s\n", d)
	}
	return nil
}
