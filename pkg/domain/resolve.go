package domain

import (
	"fmt"
	"strings"
)

// DanglingRef is an option whose target is neither a known step nor a terminal sentinel.
type DanglingRef struct {
	Step   StepID
	Option string
	Target StepID
}

func (d DanglingRef) String() string {
	return fmt.Sprintf("%s[%s] -> %s", d.Step, d.Option, d.Target)
}

// Resolve fills Option.Target on a copy of steps and reports dangling references.
//
// Target precedence: a route from the flow document, then a Target already set,
// then the option id itself interpreted as a step id.
func Resolve(steps StepMap, routes Routes, terminals TerminalSet) (StepMap, []DanglingRef) {
	out := steps.Clone()
	var dangling []DanglingRef

	for _, id := range out.IDs() {
		step := out[id]
		for i, opt := range step.Options {
			target, ok := routes.Target(id, opt.ID)
			if !ok {
				target = opt.Target
			}
			if target == "" {
				target = StepID(opt.ID)
			}
			step.Options[i].Target = target

			if _, known := out[target]; !known && !terminals.Has(target) {
				dangling = append(dangling, DanglingRef{Step: id, Option: opt.ID, Target: target})
			}
		}
		out[id] = step
	}
	return out, dangling
}

// ValidateRefs returns ErrDanglingOption listing every dangling reference, or nil.
func ValidateRefs(refs []DanglingRef) error {
	if len(refs) == 0 {
		return nil
	}
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.String()
	}
	return fmt.Errorf("%w: %s", ErrDanglingOption, strings.Join(parts, ", "))
}
