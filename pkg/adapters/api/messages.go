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

type contentPayload struct {
	Content string `json:"conteudo"`
}

// Messages fetches the system messages, ordered by key, with titles derived from the camelCase keys.
func (c *Client) Messages(ctx context.Context) ([]domain.Message, error) {
	var raw map[string]any
	if err := c.get(ctx, "/api/mensagens", "/api/mensagens", &raw); err != nil {
		return nil, err
	}

	out := make([]domain.Message, 0, len(raw))
	for id, v := range raw {
		var content string
		if err := decode(v, &content); err != nil {
			return nil, fmt.Errorf("failed to decode message %q: %w", id, err)
		}
		out = append(out, domain.Message{ID: id, Title: domain.HumanizeKey(id), Content: content})
	}
	slices.SortFunc(out, func(a, b domain.Message) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// UpdateMessage replaces the content of message id.
func (c *Client) UpdateMessage(ctx context.Context, id, content string) error {
	path := "/api/mensagens/" + url.PathEscape(id)
	return c.send(ctx, http.MethodPut, "/api/mensagens/{id}", path, contentPayload{Content: content}, nil)
}
