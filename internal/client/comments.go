// ABOUTME: Comment endpoints: listing, per-post listing, create, update and delete
// ABOUTME: Inputs are validated before anything is sent

package client

import (
	"context"
	"fmt"
	"net/http"
)

// ListComments fetches the first page of all comments and returns its items
func (c *Client) ListComments(ctx context.Context) ([]Comment, error) {
	page, err := doJSON[Page[Comment]](ctx, c, http.MethodGet, "/comments", nil, nil)
	if err != nil {
		return nil, err
	}
	return page.Content, nil
}

// CommentsByPost fetches the comments on a post
func (c *Client) CommentsByPost(ctx context.Context, postID int64) ([]Comment, error) {
	var out []Comment
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d/comments", postID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateComment adds a comment to a post
func (c *Client) CreateComment(ctx context.Context, in CommentInput) (*Comment, error) {
	if err := validateInput("create comment", in); err != nil {
		return nil, err
	}
	return doJSON[Comment](ctx, c, http.MethodPost, "/comments", nil, in)
}

// UpdateComment replaces a comment's text
func (c *Client) UpdateComment(ctx context.Context, id int64, content string) (*Comment, error) {
	body := struct {
		Content string `json:"content" validate:"required,max=1000"`
	}{Content: content}
	if err := validateInput("update comment", body); err != nil {
		return nil, err
	}
	return doJSON[Comment](ctx, c, http.MethodPut, fmt.Sprintf("/comments/%d", id), nil, body)
}

// DeleteComment removes a comment
func (c *Client) DeleteComment(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/comments/%d", id), nil, nil, nil)
}
