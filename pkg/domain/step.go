package domain

import (
	"fmt"
	"slices"
	"strconv"
)

// StepID identifies a step (menu node) in the attendant flow.
type StepID string

const (
	// RootStepID is the entry step of every conversation.
	RootStepID StepID = "menu_principal"

	// EndStepID is the conventional "end conversation" sentinel.
	EndStepID StepID = "encerrar_atendimento"

	// BackOptionID is the conventional "return" option, kept as the last option of a step.
	BackOptionID = "0"
)

// Option is a labeled transition out of a step.
// Target is filled by Resolve. Adapters persist it only when it differs from ID.
type Option struct {
	ID     string `json:"id" yaml:"id" mapstructure:"id"`
	Title  string `json:"titulo" yaml:"titulo" mapstructure:"titulo"`
	Target StepID `json:"-" yaml:"target,omitempty" mapstructure:"-"`
}

// Step is a node in the conversational menu tree.
type Step struct {
	ID          StepID   `json:"id" yaml:"id" mapstructure:"-"`
	Title       string   `json:"titulo" yaml:"titulo" mapstructure:"titulo"`
	Description string   `json:"descricao" yaml:"descricao" mapstructure:"descricao"`
	Options     []Option `json:"opcoes" yaml:"opcoes" mapstructure:"opcoes"`
	Active      *bool    `json:"ativo,omitempty" yaml:"ativo,omitempty" mapstructure:"ativo"`
}

// Clone returns a deep copy of the step.
func (s Step) Clone() Step {
	c := s
	c.Options = slices.Clone(s.Options)
	if s.Active != nil {
		active := *s.Active
		c.Active = &active
	}
	return c
}

// Option returns the option with the given id.
func (s Step) Option(id string) (Option, bool) {
	for _, o := range s.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// NextOptionID returns max numeric option id + 1, or "1" when no option id is numeric.
func (s Step) NextOptionID() string {
	maxID := 0
	for _, o := range s.Options {
		if n, err := strconv.Atoi(o.ID); err == nil && n > maxID {
			maxID = n
		}
	}
	return strconv.Itoa(maxID + 1)
}

// StepMap is the full mapping of step id to step, as served by GET /api/menus.
type StepMap map[StepID]Step

// Clone returns a deep copy of the map.
func (m StepMap) Clone() StepMap {
	c := make(StepMap, len(m))
	for id, s := range m {
		c[id] = s.Clone()
	}
	return c
}

// With returns a copy of the map with step replaced (or added).
func (m StepMap) With(step Step) StepMap {
	c := m.Clone()
	c[step.ID] = step.Clone()
	return c
}

// IDs returns the step ids in lexical order.
func (m StepMap) IDs() []StepID {
	ids := make([]StepID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Lookup returns the step with the given id or ErrStepNotFound.
func (m StepMap) Lookup(id StepID) (Step, error) {
	s, ok := m[id]
	if !ok {
		return Step{}, fmt.Errorf("%w: %s", ErrStepNotFound, id)
	}
	return s, nil
}

// TerminalSet holds the "end conversation" sentinels.
type TerminalSet map[StepID]struct{}

// NewTerminalSet builds a set from the given ids.
func NewTerminalSet(ids ...StepID) TerminalSet {
	t := make(TerminalSet, len(ids))
	for _, id := range ids {
		t[id] = struct{}{}
	}
	return t
}

// Has reports whether id is a terminal sentinel.
func (t TerminalSet) Has(id StepID) bool {
	_, ok := t[id]
	return ok
}

// DefaultTerminals is used when the backend does not list terminal steps.
func DefaultTerminals() TerminalSet {
	return NewTerminalSet(EndStepID)
}
