// ABOUTME: Authentication endpoints: sign in, sign up and the Google callback
// ABOUTME: Return the raw response body so the session layer can decode its shape

package client

import (
	"context"
	"encoding/json"
	"net/http"
)

// SignIn posts username/password credentials and returns the raw response.
// The caller decides which of the backend's response shapes it received.
func (c *Client) SignIn(ctx context.Context, username, password string) (json.RawMessage, error) {
	body := LoginRequest{Username: username, Password: password}
	if err := validateInput("sign in", body); err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/auth/signin", nil, body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// SignUp registers a new account
func (c *Client) SignUp(ctx context.Context, req RegisterRequest) (json.RawMessage, error) {
	if err := validateInput("sign up", req); err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/auth/signup", nil, req, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// GoogleCallback exchanges a Google authorization code for a session
func (c *Client) GoogleCallback(ctx context.Context, code string) (json.RawMessage, error) {
	var raw json.RawMessage
	body := map[string]string{"code": code}
	if err := c.do(ctx, http.MethodPost, "/auth/oauth2/google/callback", nil, body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
