package api

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"github.com/painelbot/atendente/pkg/domain"
)

var optionsType = reflect.TypeOf([]rawOption{})

// decode converts loosely typed JSON (numbers where strings are expected, options as a map)
// into out.
func decode(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       optionsHook,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// optionsHook accepts options given as {"1": "target"} or {"1": {"titulo": ...}} besides the list form.
// Map entries are ordered numerically, with the "0" return option last.
func optionsHook(from, to reflect.Type, data any) (any, error) {
	if to != optionsType || from.Kind() != reflect.Map {
		return data, nil
	}
	m, ok := data.(map[string]any)
	if !ok {
		return data, nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareOptionIDs)

	out := make([]any, 0, len(m))
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			out = append(out, map[string]any{"id": k, "target": v})
		case map[string]any:
			entry := map[string]any{"id": k}
			for field, val := range v {
				entry[field] = val
			}
			out = append(out, entry)
		case nil:
			out = append(out, map[string]any{"id": k})
		default:
			return nil, fmt.Errorf("option %q: unexpected value %T", k, v)
		}
	}
	return out, nil
}

func compareOptionIDs(a, b string) int {
	if a == domain.BackOptionID || b == domain.BackOptionID {
		switch {
		case a == b:
			return 0
		case a == domain.BackOptionID:
			return 1
		default:
			return -1
		}
	}
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na - nb
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// rawOption mirrors domain.Option with a decodable target.
type rawOption struct {
	ID     string `mapstructure:"id"`
	Title  string `mapstructure:"titulo"`
	Target string `mapstructure:"target"`
}

// rawStep mirrors domain.Step as served by GET /api/menus.
type rawStep struct {
	Title       string      `mapstructure:"titulo"`
	Description string      `mapstructure:"descricao"`
	Options     []rawOption `mapstructure:"opcoes"`
	Active      *bool       `mapstructure:"ativo"`
}

// DecodeMenus turns the GET /api/menus document into a step map.
func DecodeMenus(raw map[string]any) (domain.StepMap, error) {
	steps := make(domain.StepMap, len(raw))
	for key, v := range raw {
		var rs rawStep
		if err := decode(v, &rs); err != nil {
			return nil, fmt.Errorf("failed to decode step %q: %w", key, err)
		}
		step := domain.Step{
			ID:          domain.StepID(key),
			Title:       rs.Title,
			Description: rs.Description,
			Active:      rs.Active,
			Options:     make([]domain.Option, len(rs.Options)),
		}
		for i, o := range rs.Options {
			step.Options[i] = domain.Option{ID: o.ID, Title: o.Title, Target: domain.StepID(o.Target)}
		}
		steps[step.ID] = step
	}
	return steps, nil
}

// DecodeFlow splits the GET /api/fluxo document into per-step routes and auxiliary lists.
func DecodeFlow(raw map[string]any) (domain.FlowConfig, error) {
	flow := domain.FlowConfig{
		Routes: make(domain.Routes),
		Lists:  make(map[string][]string),
	}
	for key, v := range raw {
		switch v.(type) {
		case []any:
			var list []string
			if err := decode(v, &list); err != nil {
				return domain.FlowConfig{}, fmt.Errorf("failed to decode flow list %q: %w", key, err)
			}
			flow.Lists[key] = list
		case map[string]any:
			var routes map[string]string
			if err := decode(v, &routes); err != nil {
				return domain.FlowConfig{}, fmt.Errorf("failed to decode flow step %q: %w", key, err)
			}
			opts := make(map[string]domain.StepID, len(routes))
			for opt, target := range routes {
				opts[opt] = domain.StepID(target)
			}
			flow.Routes[domain.StepID(key)] = opts
		}
	}
	return flow, nil
}
