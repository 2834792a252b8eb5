package flowgraph

import (
	"fmt"

	"github.com/painelbot/atendente/pkg/domain"
)

// Build computes the positioned graph of steps reachable from the root.
//
// Options are followed through Option.Target when set (see domain.Resolve),
// otherwise through the option id read as a step id. Options whose target is neither
// a step nor a terminal sentinel are skipped and reported in Graph.Dangling.
func Build(steps domain.StepMap, opts ...Option) (*Graph, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if _, ok := steps[cfg.root]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRootNotFound, cfg.root)
	}

	w := newWalker(steps, cfg)
	l := w.assignLevels()
	w.assignColumns(l)

	m := &materializer{
		walker:    w,
		layout:    l,
		processed: make(map[domain.StepID]bool),
		edges:     make(map[edgeKey]bool),
		graph:     &Graph{Root: cfg.root, ExpandAll: cfg.expandAll},
	}
	m.run()
	m.graph.Dangling = w.dangling
	return m.graph, nil
}

type frame struct {
	step  domain.StepID
	depth int
	path  *path
	kids  []domain.Option
	next  int
}

type edgeKey struct {
	source, target domain.StepID
	option         string
}

type materializer struct {
	*walker
	layout    *layout
	processed map[domain.StepID]bool
	edges     map[edgeKey]bool
	graph     *Graph
}

func (m *materializer) run() {
	root := m.visit(m.cfg.root, 0, nil, nil)
	if root == nil {
		return
	}
	stack := []*frame{root}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next >= len(top.kids) {
			// Leaving the subtree: top drops off the active path with its frame.
			stack = stack[:len(stack)-1]
			continue
		}
		opt := top.kids[top.next]
		top.next++

		if f := m.visit(opt.Target, top.depth+1, top, &opt); f != nil {
			stack = append(stack, f)
		}
	}
}

// visit handles one arrival at id. It returns a frame when id must be expanded.
func (m *materializer) visit(id domain.StepID, depth int, parent *frame, via *domain.Option) *frame {
	var parentPath *path
	if parent != nil {
		parentPath = parent.path
	}

	// Back-reference to a step on the active path: draw the edge, never recurse.
	if parentPath.contains(id) {
		m.addEdge(parent.step, id, via)
		return nil
	}
	// Already drawn in another branch: in collapsed mode only the edge is added.
	if m.processed[id] && !m.cfg.expandAll {
		m.addEdge(parent.step, id, via)
		return nil
	}

	terminal := m.isTerminal(id)
	if !m.processed[id] {
		m.addNode(id, terminal)
		m.processed[id] = true
	}
	if parent != nil {
		m.addEdge(parent.step, id, via)
	}

	if depth >= m.cfg.maxDepth || terminal {
		return nil
	}
	if !m.cfg.expandAll && depth >= m.cfg.collapsedDepth {
		return nil
	}
	return &frame{
		step:  id,
		depth: depth,
		path:  parentPath.with(id),
		kids:  m.children(id),
	}
}

func (m *materializer) addNode(id domain.StepID, terminal bool) {
	step, known := m.steps[id]
	if !known {
		step = domain.Step{ID: id}
	}
	if step.ID == "" {
		step.ID = id
	}

	description := "Etapa final"
	if !terminal {
		description = fmt.Sprintf("%d opções", len(step.Options))
	}

	x, y := m.position(m.layout, id)
	m.graph.Nodes = append(m.graph.Nodes, Node{
		ID:          id,
		Label:       m.cfg.labeler(step, known),
		Terminal:    terminal,
		Level:       m.layout.levels[id],
		Column:      m.layout.columns[id],
		X:           x,
		Y:           y,
		Description: description,
	})
}

func (m *materializer) addEdge(source, target domain.StepID, via *domain.Option) {
	if via == nil {
		return
	}
	key := edgeKey{source: source, target: target, option: via.ID}
	if m.edges[key] {
		return
	}
	m.edges[key] = true

	label := via.ID
	if via.Title != "" {
		label = via.ID + ": " + via.Title
	}
	sx, sy := m.position(m.layout, source)
	tx, ty := m.position(m.layout, target)
	m.graph.Edges = append(m.graph.Edges, Edge{
		ID:      EdgeID(source, target, via.ID),
		Source:  source,
		Target:  target,
		Option:  via.ID,
		Label:   label,
		SourceX: sx + nodeWidth,
		SourceY: sy + nodeHalfHeight,
		TargetX: tx,
		TargetY: ty + nodeHalfHeight,
	})
}
