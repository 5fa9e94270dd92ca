package catalogapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mmcdole/marquee/internal/domain"
)

// Login authenticates with email and password
func (c *Client) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	return c.authenticate(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register creates an account and signs it in
func (c *Client) Register(ctx context.Context, name, email, password string) (*domain.AuthResult, error) {
	return c.authenticate(ctx, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

func (c *Client) authenticate(ctx context.Context, path string, payload map[string]string) (*domain.AuthResult, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, path, "", payload)
	if err != nil {
		return nil, domain.NewRequestError(domain.ErrRequestFailed, 0, fmt.Sprintf("authentication failed: %v", err))
	}

	if !resp.ok() {
		msg := errorMessage(resp.body)
		if msg == "" {
			msg = fmt.Sprintf("authentication failed (status %d)", resp.status)
		}
		kind := domain.KindForStatus(resp.status)
		if resp.status == http.StatusBadRequest {
			kind = domain.ErrUnauthorized
		}
		return nil, domain.NewRequestError(kind, resp.status, msg)
	}

	var auth AuthResponse
	if err := json.Unmarshal(resp.body, &auth); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if auth.Token == "" {
		msg := errorMessage(resp.body)
		if msg == "" {
			msg = "authentication failed: no token returned"
		}
		return nil, domain.NewRequestError(domain.ErrUnauthorized, resp.status, msg)
	}

	user := mapUser(auth.User)
	c.logger.Info("signed in", "email", user.Email, "role", user.Role)
	return &domain.AuthResult{Token: auth.Token, User: user}, nil
}
