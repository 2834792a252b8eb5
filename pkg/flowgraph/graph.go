package flowgraph

import (
	"strings"

	"github.com/painelbot/atendente/pkg/domain"
)

// Node is a step positioned for rendering.
type Node struct {
	ID          domain.StepID `json:"id"`
	Label       string        `json:"label"`
	Terminal    bool          `json:"terminal"`
	Level       int           `json:"level"`
	Column      int           `json:"column"`
	X           int           `json:"x"`
	Y           int           `json:"y"`
	Description string        `json:"description,omitempty"`
}

// Edge is a transition actually traversed while materializing the graph.
type Edge struct {
	ID      string        `json:"id"`
	Source  domain.StepID `json:"source"`
	Target  domain.StepID `json:"target"`
	Option  string        `json:"option"`
	Label   string        `json:"label"`
	SourceX int           `json:"sourceX"`
	SourceY int           `json:"sourceY"`
	TargetX int           `json:"targetX"`
	TargetY int           `json:"targetY"`
}

var edgeIDEscaper = strings.NewReplacer("%", "%25", "-", "%2D")

// EdgeID is the composite identifier of a (source, target, option) transition.
// Parts are joined by "-"; a "-" or "%" inside a part is percent-encoded so distinct
// transitions never share an id.
func EdgeID(source, target domain.StepID, option string) string {
	return edgeIDEscaper.Replace(string(source)) + "-" +
		edgeIDEscaper.Replace(string(target)) + "-" +
		edgeIDEscaper.Replace(option)
}

// Graph is the output of Build. Nodes and Edges are in materialization order.
type Graph struct {
	Root      domain.StepID        `json:"root"`
	ExpandAll bool                 `json:"expandAll"`
	Nodes     []Node               `json:"nodes"`
	Edges     []Edge               `json:"edges"`
	Dangling  []domain.DanglingRef `json:"dangling,omitempty"`
}

// Node returns the node with the given id.
func (g *Graph) Node(id domain.StepID) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// EdgesFrom returns the edges leaving id.
func (g *Graph) EdgesFrom(id domain.StepID) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// Levels returns the number of distinct levels present in the graph.
func (g *Graph) Levels() int {
	maxLevel := -1
	for _, n := range g.Nodes {
		maxLevel = max(maxLevel, n.Level)
	}
	return maxLevel + 1
}
