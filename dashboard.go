package atendente

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/painelbot/atendente/internal/logging"
	"github.com/painelbot/atendente/pkg/domain"
	"github.com/painelbot/atendente/pkg/editor"
	"github.com/painelbot/atendente/pkg/flowgraph"
	"github.com/painelbot/atendente/pkg/observability"
	"github.com/painelbot/atendente/pkg/ports"
)

// Dashboard is the high-level entry point of the library.
// It holds the last loaded step map and its graph, and rebuilds the graph on refresh,
// save and expansion toggle. Safe for concurrent use.
type Dashboard struct {
	mu        sync.RWMutex
	steps     domain.StepMap
	graph     *flowgraph.Graph
	expandAll bool
	// loadedTerminals is the terminal set used by the last Refresh.
	loadedTerminals domain.TerminalSet

	menus     ports.MenuService
	flow      ports.FlowService
	terminals domain.TerminalSet
	locker    ports.Locker
	metrics   *observability.Metrics
	logger    *slog.Logger
	buildOpts []flowgraph.Option
}

// Option defines a functional option for configuring the Dashboard.
type Option func(*Dashboard)

// WithFlow resolves option targets through the flow document (map-of-options routes)
// and reads the terminal steps it declares.
func WithFlow(f ports.FlowService) Option {
	return func(d *Dashboard) {
		d.flow = f
	}
}

// WithExpandAll sets the initial expansion mode.
func WithExpandAll(expand bool) Option {
	return func(d *Dashboard) {
		d.expandAll = expand
	}
}

// WithTerminals overrides the terminal steps. Without it, the flow document's list or the
// built-in sentinels are used.
func WithTerminals(t domain.TerminalSet) Option {
	return func(d *Dashboard) {
		d.terminals = t
	}
}

// WithLocker guards saves with a lock per step.
func WithLocker(l ports.Locker) Option {
	return func(d *Dashboard) {
		d.locker = l
	}
}

// WithMetrics records graph builds and saves.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Dashboard) {
		d.metrics = m
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dashboard) {
		d.logger = logger
	}
}

// WithBuildOptions forwards extra options (band, max depth, labeler) to every graph build.
func WithBuildOptions(opts ...flowgraph.Option) Option {
	return func(d *Dashboard) {
		d.buildOpts = append(d.buildOpts, opts...)
	}
}

// New creates a Dashboard reading steps from menus. Call Refresh to load them.
func New(menus ports.MenuService, opts ...Option) *Dashboard {
	d := &Dashboard{menus: menus}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logging.NewNop()
	}
	return d
}

// Refresh reloads the steps, resolves option targets and rebuilds the graph.
// On failure the previously loaded steps and graph are kept.
func (d *Dashboard) Refresh(ctx context.Context) (*flowgraph.Graph, error) {
	steps, err := d.menus.Menus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load menus: %w", err)
	}

	var routes domain.Routes
	terminals := d.terminals
	if d.flow != nil {
		flow, err := d.flow.Flow(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load flow: %w", err)
		}
		routes = flow.Routes
		if terminals == nil {
			terminals = flow.Terminals()
		}
	}
	if terminals == nil {
		terminals = domain.DefaultTerminals()
	}

	resolved, dangling := domain.Resolve(steps, routes, terminals)
	for _, ref := range dangling {
		d.logger.Warn("Option points to an unknown step", "step", ref.Step, "option", ref.Option, "target", ref.Target)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	g, err := d.build(resolved, d.expandAll, terminals)
	if err != nil {
		return nil, err
	}
	d.steps = resolved
	d.graph = g
	d.loadedTerminals = terminals
	return g, nil
}

// build must be called with mu held.
func (d *Dashboard) build(steps domain.StepMap, expandAll bool, terminals domain.TerminalSet) (*flowgraph.Graph, error) {
	opts := append([]flowgraph.Option{
		flowgraph.WithExpandAll(expandAll),
		flowgraph.WithTerminals(terminals),
	}, d.buildOpts...)

	g, err := flowgraph.Build(steps, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build flow graph: %w", err)
	}
	d.metrics.ObserveBuild(g)
	d.logger.Debug("Flow graph built", "nodes", len(g.Nodes), "edges", len(g.Edges), "expand_all", expandAll)
	return g, nil
}

// Graph returns the last built graph, or nil before the first Refresh.
func (d *Dashboard) Graph() *flowgraph.Graph {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.graph
}

// Steps returns a copy of the loaded step map.
func (d *Dashboard) Steps() domain.StepMap {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.steps.Clone()
}

// Step returns one loaded step.
func (d *Dashboard) Step(id domain.StepID) (domain.Step, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	step, err := d.steps.Lookup(id)
	if err != nil {
		return domain.Step{}, err
	}
	return step.Clone(), nil
}

// ExpandAll reports the current expansion mode.
func (d *Dashboard) ExpandAll() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.expandAll
}

// SetExpandAll switches the expansion mode and rebuilds the graph from the loaded steps.
func (d *Dashboard) SetExpandAll(expand bool) (*flowgraph.Graph, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.steps == nil {
		d.expandAll = expand
		return nil, nil
	}
	g, err := d.build(d.steps, expand, d.terminalSet())
	if err != nil {
		return nil, err
	}
	d.expandAll = expand
	d.graph = g
	return g, nil
}

// Edit opens an editor over a loaded step.
func (d *Dashboard) Edit(id domain.StepID) (*editor.Editor, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	opts := []editor.Option{
		editor.WithTargetCheck(d.terminalSet()),
		editor.WithLogger(d.logger),
	}
	if d.locker != nil {
		opts = append(opts, editor.WithLocker(d.locker))
	}
	return editor.Open(d.steps, id, opts...)
}

// Save saves ed and, on success, patches the loaded steps and rebuilds the graph.
// On failure the loaded steps and graph are untouched and ed stays open.
func (d *Dashboard) Save(ctx context.Context, ed *editor.Editor) (*flowgraph.Graph, error) {
	patched, err := ed.Save(ctx, d.menus)
	d.metrics.ObserveSave(err)
	if err != nil {
		return nil, err
	}
	saved := patched[ed.StepID()]

	d.mu.Lock()
	defer d.mu.Unlock()
	steps := d.steps.With(saved)
	g, err := d.build(steps, d.expandAll, d.terminalSet())
	if err != nil {
		return nil, err
	}
	d.steps = steps
	d.graph = g
	return g, nil
}

func (d *Dashboard) terminalSet() domain.TerminalSet {
	switch {
	case d.terminals != nil:
		return d.terminals
	case d.loadedTerminals != nil:
		return d.loadedTerminals
	default:
		return domain.DefaultTerminals()
	}
}
