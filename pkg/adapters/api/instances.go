package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/painelbot/atendente/pkg/domain"
)

// Instances fetches the WhatsApp instances with normalized connection status.
func (c *Client) Instances(ctx context.Context) ([]domain.Instance, error) {
	var raw []any
	if err := c.get(ctx, "/api/evolution/instance/fetchInstances", "/api/evolution/instance/fetchInstances", &raw); err != nil {
		return nil, err
	}
	var out []domain.Instance
	if err := decode(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode instances: %w", err)
	}
	for i := range out {
		out[i].ConnectionStatus = domain.NormalizeStatus(out[i].ConnectionStatus)
	}
	return out, nil
}

// CreateInstance creates an instance. The name is required; the number, when given, is sent as digits.
func (c *Client) CreateInstance(ctx context.Context, in domain.NewInstance) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInstance)
	}
	in.Number = domain.DigitsOnly(in.Number)
	return c.send(ctx, http.MethodPost, "/api/evolution/instance/create", "/api/evolution/instance/create", in, nil)
}

// Connect asks the instance to (re)connect and returns the QR/pairing state.
func (c *Client) Connect(ctx context.Context, name string) (domain.ConnectState, error) {
	path := "/api/evolution/instance/connect/" + url.PathEscape(name)
	var raw map[string]any
	if err := c.do(ctx, request{method: http.MethodPost, route: "/api/evolution/instance/connect/{name}", path: path}, &raw); err != nil {
		return domain.ConnectState{}, err
	}

	var state domain.ConnectState
	if err := decode(raw, &state); err != nil {
		return domain.ConnectState{}, fmt.Errorf("failed to decode connect state: %w", err)
	}
	// Already connected instances answer {"instance": {"state": "open"}}.
	if inst, ok := raw["instance"].(map[string]any); ok && state.Status == "" {
		if s, ok := inst["state"].(string); ok {
			state.Status = s
		}
	}
	state.Status = domain.NormalizeStatus(state.Status)
	return state, nil
}

// Logout disconnects instance id from WhatsApp.
func (c *Client) Logout(ctx context.Context, id string) error {
	path := "/api/evolution/instance/logout/" + url.PathEscape(id)
	return c.do(ctx, request{method: http.MethodDelete, route: "/api/evolution/instance/logout/{id}", path: path}, nil)
}

// DeleteInstance removes the instance called name.
func (c *Client) DeleteInstance(ctx context.Context, name string) error {
	path := "/api/evolution/instance/delete/" + url.PathEscape(name)
	return c.do(ctx, request{method: http.MethodDelete, route: "/api/evolution/instance/delete/{name}", path: path}, nil)
}

// ConnectionState reports the state of instance name: connected instances need no QR,
// others are asked to connect so a fresh QR is returned.
func (c *Client) ConnectionState(ctx context.Context, name string) (domain.ConnectState, error) {
	instances, err := c.Instances(ctx)
	if err != nil {
		return domain.ConnectState{}, err
	}
	for _, in := range instances {
		if in.Name == name && in.Connected() {
			return domain.ConnectState{Status: domain.StatusConnected}, nil
		}
	}
	return c.Connect(ctx, name)
}
