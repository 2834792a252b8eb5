package graph

import (
	"fmt"
	"strings"

	"github.com/painelbot/atendente/pkg/domain"
	"github.com/painelbot/atendente/pkg/flowgraph"
)

// GraphOverlay highlights steps on top of the rendered flow.
type GraphOverlay struct {
	// Selected is the step currently open in the editor.
	Selected domain.StepID
	// Dangling marks the steps that hold options pointing nowhere.
	Dangling []domain.StepID
}

// GenerateMermaid produces a Mermaid flowchart from a built flow graph.
// It applies semantic styling:
// - Root: ((Circle))
// - Terminal: ([Stadium])
// - Default: [Rectangle]
// Back-references to a shallower level are drawn dotted.
func GenerateMermaid(g *flowgraph.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if g == nil {
		return sb.String()
	}

	ids := newMermaidIDs(g.Nodes)
	levels := make(map[domain.StepID]int, len(g.Nodes))
	for _, node := range g.Nodes {
		levels[node.ID] = node.Level
		safeID := ids.of(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.ID == g.Root:
			opener, closer = "((", "))"
		case node.Terminal:
			opener, closer = "([", "])"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(node.Label), closer))
	}

	for _, e := range g.Edges {
		arrow := fmt.Sprintf("-- \"%s\" -->", escapeLabel(e.Label))
		if levels[e.Target] <= levels[e.Source] && e.Target != e.Source {
			arrow = fmt.Sprintf("-. \"%s\" .->", escapeLabel(e.Label))
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", ids.of(e.Source), arrow, ids.of(e.Target)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString("    classDef dangling fill:#ffcdd2,stroke:#c62828,stroke-width:2px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Dangling {
			safeID := ids.of(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s dangling;\n", safeID))
			}
		}
		if overlay.Selected != "" {
			sb.WriteString(fmt.Sprintf("    class %s selected;\n", ids.of(overlay.Selected)))
		}
	}

	return sb.String()
}

// DanglingSteps lists the distinct steps holding a dangling option, for use in an overlay.
func DanglingSteps(g *flowgraph.Graph) []domain.StepID {
	var out []domain.StepID
	seen := make(map[domain.StepID]bool)
	for _, d := range g.Dangling {
		if !seen[d.Step] {
			seen[d.Step] = true
			out = append(out, d.Step)
		}
	}
	return out
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

// mermaidIDs assigns each step a distinct Mermaid node id. Ids made only of
// letters, digits and underscores are kept; others are sanitized and, on
// collision, suffixed with a counter.
type mermaidIDs struct {
	byStep map[domain.StepID]string
	used   map[string]bool
}

func newMermaidIDs(nodes []flowgraph.Node) *mermaidIDs {
	m := &mermaidIDs{
		byStep: make(map[domain.StepID]string, len(nodes)),
		used:   make(map[string]bool, len(nodes)),
	}
	// Plain ids are reserved first so they render unchanged.
	for _, n := range nodes {
		if id := string(n.ID); id != "" && sanitizeMermaidID(id) == id {
			m.byStep[n.ID] = id
			m.used[id] = true
		}
	}
	for _, n := range nodes {
		m.of(n.ID)
	}
	return m
}

func (m *mermaidIDs) of(step domain.StepID) string {
	if id, ok := m.byStep[step]; ok {
		return id
	}
	base := sanitizeMermaidID(string(step))
	if base == "" {
		base = "step"
	}
	id := base
	for n := 2; m.used[id]; n++ {
		id = fmt.Sprintf("%s_%d", base, n)
	}
	m.byStep[step] = id
	m.used[id] = true
	return id
}

func sanitizeMermaidID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, id)
}
