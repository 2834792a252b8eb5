package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/painelbot/atendente/pkg/domain"
)

// menuPayload is the body of PUT /api/menus/{id} and POST /api/menus.
type menuPayload struct {
	ID          domain.StepID   `json:"id,omitempty"`
	Title       string          `json:"titulo"`
	Description string          `json:"descricao"`
	Options     []optionPayload `json:"opcoes"`
}

// optionPayload carries an option on the wire. Target is sent only when the
// option does not route to the step named by its own id.
type optionPayload struct {
	ID     string        `json:"id"`
	Title  string        `json:"titulo"`
	Target domain.StepID `json:"target,omitempty"`
}

func wireOptions(opts []domain.Option) []optionPayload {
	out := make([]optionPayload, len(opts))
	for i, o := range opts {
		out[i] = optionPayload{ID: o.ID, Title: o.Title}
		if o.Target != domain.StepID(o.ID) {
			out[i].Target = o.Target
		}
	}
	return out
}

// Menus fetches every step.
func (c *Client) Menus(ctx context.Context) (domain.StepMap, error) {
	var raw map[string]any
	if err := c.get(ctx, "/api/menus", "/api/menus", &raw); err != nil {
		return nil, err
	}
	return DecodeMenus(raw)
}

// UpdateMenu sends title, description and the complete option list of step in one PUT.
func (c *Client) UpdateMenu(ctx context.Context, step domain.Step) error {
	if step.ID == "" {
		return fmt.Errorf("%w: empty step id", domain.ErrStepNotFound)
	}
	payload := menuPayload{
		Title:       step.Title,
		Description: step.Description,
		Options:     wireOptions(step.Options),
	}
	path := "/api/menus/" + url.PathEscape(string(step.ID))
	return c.send(ctx, http.MethodPut, "/api/menus/{id}", path, payload, nil)
}

// CreateMenu creates step.
func (c *Client) CreateMenu(ctx context.Context, step domain.Step) error {
	if step.ID == "" {
		return fmt.Errorf("%w: empty step id", domain.ErrStepNotFound)
	}
	payload := menuPayload{
		ID:          step.ID,
		Title:       step.Title,
		Description: step.Description,
		Options:     wireOptions(step.Options),
	}
	return c.send(ctx, http.MethodPost, "/api/menus", "/api/menus", payload, nil)
}

// NewMenuTemplate is the step offered when creating a menu: one empty option and the return option.
func NewMenuTemplate(id domain.StepID) domain.Step {
	return domain.Step{
		ID: id,
		Options: []domain.Option{
			{ID: "1"},
			{ID: domain.BackOptionID, Title: "Voltar ao menu principal"},
		},
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
