package graph_test

import (
	"strings"
	"testing"

	"github.com/painelbot/atendente/internal/presentation/graph"
	"github.com/painelbot/atendente/pkg/domain"
	"github.com/painelbot/atendente/pkg/flowgraph"
)

func TestGenerateMermaid(t *testing.T) {
	g := &flowgraph.Graph{
		Root: domain.RootStepID,
		Nodes: []flowgraph.Node{
			{ID: domain.RootStepID, Label: "Menu Principal", Level: 0},
			{ID: "financeiro-menu", Label: `Financeiro "2024"`, Level: 1},
			{ID: domain.EndStepID, Label: "Encerrar Atendimento", Level: 1, Terminal: true},
		},
		Edges: []flowgraph.Edge{
			{Source: domain.RootStepID, Target: "financeiro-menu", Label: "1: Financeiro"},
			{Source: "financeiro-menu", Target: domain.RootStepID, Label: "0"},
			{Source: domain.RootStepID, Target: domain.EndStepID, Label: "0"},
		},
	}

	tests := []struct {
		name     string
		overlay  *graph.GraphOverlay
		contains []string
	}{
		{
			name: "Node Shapes",
			contains: []string{
				`menu_principal(("Menu Principal"))`,
				`encerrar_atendimento(["Encerrar Atendimento"])`,
			},
		},
		{
			name: "ID Sanitization And Label Escaping",
			contains: []string{
				`financeiro_menu["Financeiro '2024'"]`,
			},
		},
		{
			name: "Edges",
			contains: []string{
				`menu_principal -- "1: Financeiro" --> financeiro_menu`,
				`financeiro_menu -. "0" .-> menu_principal`,
				`menu_principal -- "0" --> encerrar_atendimento`,
			},
		},
		{
			name:    "Overlay",
			overlay: &graph.GraphOverlay{Selected: "financeiro-menu", Dangling: []domain.StepID{domain.RootStepID, domain.RootStepID}},
			contains: []string{
				"class financeiro_menu selected;",
				"class menu_principal dangling;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(g, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			if tt.overlay != nil && strings.Count(got, "dangling;") != 1 {
				t.Errorf("expected dangling class applied once, got:\n%v", got)
			}
		})
	}
}

func TestGenerateMermaid_Nil(t *testing.T) {
	if got := graph.GenerateMermaid(nil, nil); got != "graph TD\n" {
		t.Errorf("unexpected output for nil graph: %q", got)
	}
}

func TestDanglingSteps(t *testing.T) {
	g := &flowgraph.Graph{Dangling: []domain.DanglingRef{
		{Step: "a", Option: "1"}, {Step: "a", Option: "2"}, {Step: "b", Option: "1"},
	}}
	got := graph.DanglingSteps(g)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("DanglingSteps() = %v", got)
	}
}

func TestGenerateMermaid_DistinctIDs(t *testing.T) {
	g := &flowgraph.Graph{
		Root: domain.RootStepID,
		Nodes: []flowgraph.Node{
			{ID: domain.RootStepID, Label: "Menu", Level: 0},
			{ID: "a-b", Label: "hifen", Level: 1},
			{ID: "a b", Label: "espaco", Level: 1},
			{ID: "a_b", Label: "sublinhado", Level: 1},
		},
		Edges: []flowgraph.Edge{
			{Source: domain.RootStepID, Target: "a-b", Label: "1"},
			{Source: domain.RootStepID, Target: "a b", Label: "2"},
			{Source: domain.RootStepID, Target: "a_b", Label: "3"},
		},
	}

	got := graph.GenerateMermaid(g, &graph.GraphOverlay{Selected: "a b"})
	for _, want := range []string{
		`a_b["sublinhado"]`,
		`a_b_2["hifen"]`,
		`a_b_3["espaco"]`,
		`menu_principal -- "1" --> a_b_2`,
		`menu_principal -- "2" --> a_b_3`,
		`menu_principal -- "3" --> a_b`,
		"class a_b_3 selected;",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
		}
	}
}
