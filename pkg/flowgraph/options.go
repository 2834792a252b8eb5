package flowgraph

import "github.com/painelbot/atendente/pkg/domain"

// Layout defaults.
const (
	DefaultMaxDepth       = 10
	DefaultCollapsedDepth = 2
	DefaultBand           = 800
	DefaultLevelHeight    = 150
	DefaultTopMargin      = 100

	// Edge anchors: edges leave a node at its right-middle and enter at its left-middle.
	nodeWidth      = 100
	nodeHalfHeight = 25
)

// Labeler computes the display label of a step. known is false for terminal sentinels
// that have no entry in the step map.
type Labeler func(step domain.Step, known bool) string

// DefaultLabeler uses the authored title, falling back to the humanized id.
func DefaultLabeler(step domain.Step, known bool) string {
	if known && step.Title != "" {
		return step.Title
	}
	return domain.HumanizeID(step.ID)
}

// IDLabeler always uses the humanized id.
func IDLabeler(step domain.Step, _ bool) string {
	return domain.HumanizeID(step.ID)
}

type config struct {
	root           domain.StepID
	expandAll      bool
	terminals      domain.TerminalSet
	maxDepth       int
	collapsedDepth int
	band           int
	levelHeight    int
	topMargin      int
	labeler        Labeler
}

func defaultConfig() config {
	return config{
		root:           domain.RootStepID,
		terminals:      domain.DefaultTerminals(),
		maxDepth:       DefaultMaxDepth,
		collapsedDepth: DefaultCollapsedDepth,
		band:           DefaultBand,
		levelHeight:    DefaultLevelHeight,
		topMargin:      DefaultTopMargin,
		labeler:        DefaultLabeler,
	}
}

// Option configures Build.
type Option func(*config)

// WithRoot sets the entry step (default: menu_principal).
func WithRoot(id domain.StepID) Option {
	return func(c *config) {
		c.root = id
	}
}

// WithExpandAll expands every reachable step instead of the first levels only.
func WithExpandAll(expand bool) Option {
	return func(c *config) {
		c.expandAll = expand
	}
}

// WithTerminals sets the "end conversation" sentinels.
func WithTerminals(t domain.TerminalSet) Option {
	return func(c *config) {
		if t != nil {
			c.terminals = t
		}
	}
}

// WithMaxDepth caps the traversal depth.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		if depth > 0 {
			c.maxDepth = depth
		}
	}
}

// WithCollapsedDepth sets how deep the collapsed mode expands children.
func WithCollapsedDepth(depth int) Option {
	return func(c *config) {
		if depth > 0 {
			c.collapsedDepth = depth
		}
	}
}

// WithBand sets the horizontal band width, in pixels, shared by a level.
func WithBand(px int) Option {
	return func(c *config) {
		if px > 0 {
			c.band = px
		}
	}
}

// WithLabeler overrides how node labels are computed.
func WithLabeler(l Labeler) Option {
	return func(c *config) {
		if l != nil {
			c.labeler = l
		}
	}
}
