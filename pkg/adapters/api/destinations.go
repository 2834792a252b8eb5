package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/painelbot/atendente/pkg/domain"
)

type rawDestination struct {
	Number      string `mapstructure:"numero"`
	Content     string `mapstructure:"conteudo"`
	Description string `mapstructure:"descricao"`
}

func decodeDestination(id string, v any) (domain.Destination, error) {
	d := domain.Destination{ID: id, Title: domain.HumanizeDestination(id)}
	if s, ok := v.(string); ok {
		d.Number = s
		return d, nil
	}
	var rd rawDestination
	if err := decode(v, &rd); err != nil {
		return domain.Destination{}, fmt.Errorf("failed to decode destination %q: %w", id, err)
	}
	d.Number = rd.Number
	if d.Number == "" {
		d.Number = rd.Content
	}
	d.Description = rd.Description
	return d, nil
}

// Destinations fetches the transfer destinations ordered by key.
// A destination is served either as a bare number or as {numero, descricao}.
func (c *Client) Destinations(ctx context.Context) ([]domain.Destination, error) {
	var raw map[string]any
	if err := c.get(ctx, "/api/destinos", "/api/destinos", &raw); err != nil {
		return nil, err
	}

	out := make([]domain.Destination, 0, len(raw))
	for id, v := range raw {
		d, err := decodeDestination(id, v)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b domain.Destination) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// Destination fetches one destination.
func (c *Client) Destination(ctx context.Context, id string) (domain.Destination, error) {
	var raw any
	path := "/api/destinos/" + url.PathEscape(id)
	if err := c.get(ctx, "/api/destinos/{id}", path, &raw); err != nil {
		return domain.Destination{}, err
	}
	return decodeDestination(id, raw)
}

// UpdateDestination validates number (13 digits once formatting is stripped) and sends the digits.
// Invalid numbers fail with domain.ErrInvalidPhone before any request.
func (c *Client) UpdateDestination(ctx context.Context, id, number string) error {
	digits, err := domain.NormalizePhone(number)
	if err != nil {
		return err
	}
	path := "/api/destinos/" + url.PathEscape(id)
	return c.send(ctx, http.MethodPut, "/api/destinos/{id}", path, contentPayload{Content: digits}, nil)
}
