package flowgraph

import "github.com/painelbot/atendente/pkg/domain"

// path is an immutable, persistent list of the steps on the current branch.
// Extending a path never changes the receiver, so sibling frames can share a prefix.
type path struct {
	step   domain.StepID
	parent *path
}

func (p *path) with(id domain.StepID) *path {
	return &path{step: id, parent: p}
}

func (p *path) contains(id domain.StepID) bool {
	for n := p; n != nil; n = n.parent {
		if n.step == id {
			return true
		}
	}
	return false
}
