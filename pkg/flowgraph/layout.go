package flowgraph

import "github.com/painelbot/atendente/pkg/domain"

// walker holds the read-only inputs shared by every pass.
type walker struct {
	steps    domain.StepMap
	cfg      config
	dangling []domain.DanglingRef
	seen     map[domain.DanglingRef]bool
}

func newWalker(steps domain.StepMap, cfg config) *walker {
	return &walker{
		steps: steps,
		cfg:   cfg,
		seen:  make(map[domain.DanglingRef]bool),
	}
}

func (w *walker) isTerminal(id domain.StepID) bool {
	if w.cfg.terminals.Has(id) {
		return true
	}
	return len(w.steps[id].Options) == 0
}

// children returns the options of id whose target can be followed, with Target filled.
// Options pointing nowhere are recorded once as dangling and skipped.
func (w *walker) children(id domain.StepID) []domain.Option {
	step, ok := w.steps[id]
	if !ok || w.isTerminal(id) {
		return nil
	}
	out := make([]domain.Option, 0, len(step.Options))
	for _, o := range step.Options {
		target := o.Target
		if target == "" {
			target = domain.StepID(o.ID)
		}
		if _, known := w.steps[target]; !known && !w.cfg.terminals.Has(target) {
			ref := domain.DanglingRef{Step: id, Option: o.ID, Target: target}
			if !w.seen[ref] {
				w.seen[ref] = true
				w.dangling = append(w.dangling, ref)
			}
			continue
		}
		o.Target = target
		out = append(out, o)
	}
	return out
}

// layout is the result of the level and column passes.
type layout struct {
	levels  map[domain.StepID]int
	columns map[domain.StepID]int
	xs      map[domain.StepID]int
	order   []domain.StepID
}

type levelFrame struct {
	step  domain.StepID
	depth int
	path  *path
	kids  []domain.Option
	next  int
}

// assignLevels records, for every reachable step, the minimum depth at which it is reached.
// A step reached again at a shallower depth is re-expanded so the improvement propagates;
// a step reached at the same or a deeper depth is not.
func (w *walker) assignLevels() *layout {
	l := &layout{
		levels:  make(map[domain.StepID]int),
		columns: make(map[domain.StepID]int),
		xs:      make(map[domain.StepID]int),
	}

	root := w.cfg.root
	l.levels[root] = 0
	l.order = append(l.order, root)
	stack := []*levelFrame{{step: root, path: (*path)(nil).with(root), kids: w.children(root)}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next >= len(top.kids) {
			stack = stack[:len(stack)-1]
			continue
		}
		target := top.kids[top.next].Target
		top.next++

		if top.path.contains(target) {
			continue
		}
		depth := top.depth + 1
		current, seen := l.levels[target]
		if seen && current <= depth {
			continue
		}
		if !seen {
			l.order = append(l.order, target)
		}
		l.levels[target] = depth
		stack = append(stack, &levelFrame{
			step:  target,
			depth: depth,
			path:  top.path.with(target),
			kids:  w.children(target),
		})
	}
	return l
}

// assignColumns spreads the occupants of each level evenly across the band, in discovery order.
// A lone occupant lands in the middle of the band.
func (w *walker) assignColumns(l *layout) {
	counts := make(map[int]int)
	for _, id := range l.order {
		counts[l.levels[id]]++
	}
	slot := make(map[int]int)
	for _, id := range l.order {
		level := l.levels[id]
		i := slot[level]
		slot[level]++
		l.columns[id] = i
		l.xs[id] = (i + 1) * w.cfg.band / (counts[level] + 1)
	}
}

func (w *walker) position(l *layout, id domain.StepID) (x, y int) {
	x, ok := l.xs[id]
	if !ok {
		x = w.cfg.band / 2
	}
	return x, l.levels[id]*w.cfg.levelHeight + w.cfg.topMargin
}
