package domain

import "slices"

// Well-known auxiliary lists served by GET /api/fluxo.
const (
	// FlowListMoreInfo lists the steps after which the bot asks "can I help with anything else?".
	FlowListMoreInfo = "etapasAjudoEmMaisInformacoes"
	// FlowListTerminals lists the "end conversation" steps.
	FlowListTerminals = "etapasTerminais"
)

// Routes maps each step's option ids to their target step (map-of-options shape).
type Routes map[StepID]map[string]StepID

// Target returns the routed target of option optionID in step id.
func (r Routes) Target(id StepID, optionID string) (StepID, bool) {
	opts, ok := r[id]
	if !ok {
		return "", false
	}
	t, ok := opts[optionID]
	return t, ok && t != ""
}

// FlowConfig is the decoded /api/fluxo document: per-step routes plus auxiliary string arrays.
type FlowConfig struct {
	Routes Routes
	Lists  map[string][]string
}

// List returns a copy of the named auxiliary list.
func (f FlowConfig) List(name string) []string {
	return slices.Clone(f.Lists[name])
}

// Terminals returns the terminal set declared by the flow, or DefaultTerminals when none is declared.
func (f FlowConfig) Terminals() TerminalSet {
	names := f.Lists[FlowListTerminals]
	if len(names) == 0 {
		return DefaultTerminals()
	}
	ids := make([]StepID, len(names))
	for i, n := range names {
		ids[i] = StepID(n)
	}
	return NewTerminalSet(ids...)
}

// AddUnique returns list with value appended unless already present.
func AddUnique(list []string, value string) []string {
	if slices.Contains(list, value) {
		return slices.Clone(list)
	}
	return append(slices.Clone(list), value)
}

// RemoveAll returns list without any occurrence of value.
func RemoveAll(list []string, value string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}
