package memory

import (
	"context"
	"sync"

	"github.com/painelbot/atendente/pkg/domain"
)

// Menus implements ports.MenuService over an in-memory step map.
// It backs offline rendering (e.g. a flow exported to YAML) and tests.
type Menus struct {
	mu    sync.RWMutex
	steps domain.StepMap

	// FailUpdate, when set, is returned by UpdateMenu instead of applying the change.
	FailUpdate error
	// Updates counts successful and failed UpdateMenu calls.
	Updates int
}

// NewMenus creates a menu service holding a copy of steps.
func NewMenus(steps domain.StepMap) *Menus {
	return &Menus{steps: steps.Clone()}
}

// Menus returns a copy of the stored steps.
func (m *Menus) Menus(ctx context.Context) (domain.StepMap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.steps.Clone(), nil
}

// UpdateMenu replaces an existing step.
func (m *Menus) UpdateMenu(ctx context.Context, step domain.Step) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Updates++
	if m.FailUpdate != nil {
		return m.FailUpdate
	}
	if _, err := m.steps.Lookup(step.ID); err != nil {
		return err
	}
	m.steps[step.ID] = storedStep(step)
	return nil
}

// CreateMenu adds a step.
func (m *Menus) CreateMenu(ctx context.Context, step domain.Step) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps[step.ID] = storedStep(step)
	return nil
}

// storedStep keeps explicit targets and drops those implied by the option id,
// matching what the REST backend stores.
func storedStep(step domain.Step) domain.Step {
	c := step.Clone()
	for i, o := range c.Options {
		if o.Target == domain.StepID(o.ID) {
			c.Options[i].Target = ""
		}
	}
	return c
}
