// ABOUTME: Category and tag endpoints
// ABOUTME: Both resources support listing, lookup, create, update and delete

package client

import (
	"context"
	"fmt"
	"net/http"
)

// ListCategories fetches every category
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCategory fetches a single category
func (c *Client) GetCategory(ctx context.Context, id int64) (*Category, error) {
	return doJSON[Category](ctx, c, http.MethodGet, fmt.Sprintf("/categories/%d", id), nil, nil)
}

// CreateCategory adds a category
func (c *Client) CreateCategory(ctx context.Context, in CategoryInput) (*Category, error) {
	if err := validateInput("create category", in); err != nil {
		return nil, err
	}
	return doJSON[Category](ctx, c, http.MethodPost, "/categories", nil, in)
}

// UpdateCategory renames or redescribes a category
func (c *Client) UpdateCategory(ctx context.Context, id int64, in CategoryInput) (*Category, error) {
	if err := validateInput("update category", in); err != nil {
		return nil, err
	}
	return doJSON[Category](ctx, c, http.MethodPut, fmt.Sprintf("/categories/%d", id), nil, in)
}

// DeleteCategory removes a category
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/categories/%d", id), nil, nil, nil)
}

// ListTags fetches every tag
func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	var out []Tag
	if err := c.do(ctx, http.MethodGet, "/tags", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTag fetches a single tag
func (c *Client) GetTag(ctx context.Context, id int64) (*Tag, error) {
	return doJSON[Tag](ctx, c, http.MethodGet, fmt.Sprintf("/tags/%d", id), nil, nil)
}

// CreateTag adds a tag
func (c *Client) CreateTag(ctx context.Context, in TagInput) (*Tag, error) {
	if err := validateInput("create tag", in); err != nil {
		return nil, err
	}
	return doJSON[Tag](ctx, c, http.MethodPost, "/tags", nil, in)
}

// UpdateTag renames a tag
func (c *Client) UpdateTag(ctx context.Context, id int64, in TagInput) (*Tag, error) {
	if err := validateInput("update tag", in); err != nil {
		return nil, err
	}
	return doJSON[Tag](ctx, c, http.MethodPut, fmt.Sprintf("/tags/%d", id), nil, in)
}

// DeleteTag removes a tag
func (c *Client) DeleteTag(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tags/%d", id), nil, nil, nil)
}
