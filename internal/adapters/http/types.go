package http

import (
	"github.com/painelbot/atendente/pkg/domain"
	"github.com/painelbot/atendente/pkg/flowgraph"
)

// OptionView is an option with its resolved target.
type OptionView struct {
	ID     string        `json:"id"`
	Title  string        `json:"titulo"`
	Target domain.StepID `json:"target,omitempty"`
}

// StepView is the JSON shape of GET and PUT /steps/{id}.
type StepView struct {
	ID          domain.StepID `json:"id,omitempty"`
	Title       string        `json:"titulo"`
	Description string        `json:"descricao"`
	Options     []OptionView  `json:"opcoes"`
}

// SaveResponse is returned by PUT /steps/{id}.
type SaveResponse struct {
	Step  StepView         `json:"step"`
	Graph *flowgraph.Graph `json:"graph"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

func toStepView(s domain.Step) StepView {
	v := StepView{ID: s.ID, Title: s.Title, Description: s.Description, Options: make([]OptionView, len(s.Options))}
	for i, o := range s.Options {
		v.Options[i] = OptionView{ID: o.ID, Title: o.Title, Target: o.Target}
	}
	return v
}

func (v StepView) domainOptions() []domain.Option {
	out := make([]domain.Option, len(v.Options))
	for i, o := range v.Options {
		out[i] = domain.Option{ID: o.ID, Title: o.Title, Target: o.Target}
	}
	return out
}
