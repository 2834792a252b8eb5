package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/painelbot/atendente/pkg/domain"
)

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token.
// Rejected credentials surface as domain.ErrUnauthorized; no stored session is touched.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	r, err := jsonRequest(http.MethodPost, "/api/auth/login", "/api/auth/login", creds)
	if err != nil {
		return "", err
	}
	r.anonymous = true

	var resp loginResponse
	if err := c.do(ctx, r, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errors.New("login response carries no token")
	}
	return resp.Token, nil
}

// Ping checks that the backend answers and the stored token is accepted.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.get(ctx, "/api/fluxo", "/api/fluxo", nil); err != nil {
		return fmt.Errorf("backend check failed: %w", err)
	}
	return nil
}
