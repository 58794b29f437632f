// ABOUTME: User endpoints: listing, lookup, profile updates and password changes
// ABOUTME: Admin-only operations are enforced by the backend

package client

import (
	"context"
	"fmt"
	"net/http"
)

// ListUsers fetches every account. Admin only on the backend.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.do(ctx, http.MethodGet, "/users", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser fetches a single account
func (c *Client) GetUser(ctx context.Context, id int64) (*User, error) {
	return doJSON[User](ctx, c, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, nil)
}

// CurrentUser fetches the account the stored token belongs to
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	return doJSON[User](ctx, c, http.MethodGet, "/users/me", nil, nil)
}

// UpdateUser changes an account
func (c *Client) UpdateUser(ctx context.Context, id int64, in UserUpdate) (*User, error) {
	if err := validateInput("update user", in); err != nil {
		return nil, err
	}
	return doJSON[User](ctx, c, http.MethodPut, fmt.Sprintf("/users/%d", id), nil, in)
}

// DeleteUser removes an account
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil, nil)
}

// ChangePassword changes a user's password
func (c *Client) ChangePassword(ctx context.Context, id int64, in PasswordChange) error {
	if err := validateInput("change password", in); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/users/%d/change-password", id), nil, in, nil)
}
