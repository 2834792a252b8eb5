package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/painelbot/atendente/pkg/domain"
)

// Flow fetches the flow document (per-step option routes and auxiliary lists).
func (c *Client) Flow(ctx context.Context) (domain.FlowConfig, error) {
	var raw map[string]any
	if err := c.get(ctx, "/api/fluxo", "/api/fluxo", &raw); err != nil {
		return domain.FlowConfig{}, err
	}
	return DecodeFlow(raw)
}

// PatchFlowList replaces one auxiliary list of the flow document.
func (c *Client) PatchFlowList(ctx context.Context, field string, values []string) error {
	path := "/api/fluxo/" + url.PathEscape(field)
	return c.send(ctx, http.MethodPatch, "/api/fluxo/{field}", path, nonNil(values), nil)
}
