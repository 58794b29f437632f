// ABOUTME: Post endpoints: paged listing, lookup, create, update and delete
// ABOUTME: Inputs are validated before anything is sent

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const defaultPageSize = 10

func pageValues(page, size int) url.Values {
	if size <= 0 {
		size = defaultPageSize
	}
	if page < 0 {
		page = 0
	}
	return url.Values{
		"page": {strconv.Itoa(page)},
		"size": {strconv.Itoa(size)},
	}
}

// ListPosts fetches a page of posts, newest first unless q says otherwise
func (c *Client) ListPosts(ctx context.Context, q PageQuery) (*Page[Post], error) {
	v := pageValues(q.Page, q.Size)
	sortBy, direction := q.SortBy, q.Direction
	if sortBy == "" {
		sortBy = "createdAt"
	}
	if direction == "" {
		direction = "desc"
	}
	v.Set("sortBy", sortBy)
	v.Set("direction", direction)
	return doJSON[Page[Post]](ctx, c, http.MethodGet, "/posts", v, nil)
}

// GetPost fetches a single post
func (c *Client) GetPost(ctx context.Context, id int64) (*Post, error) {
	return doJSON[Post](ctx, c, http.MethodGet, fmt.Sprintf("/posts/%d", id), nil, nil)
}

// CreatePost publishes or saves a new post
func (c *Client) CreatePost(ctx context.Context, in PostInput) (*Post, error) {
	if err := validateInput("create post", in); err != nil {
		return nil, err
	}
	return doJSON[Post](ctx, c, http.MethodPost, "/posts", nil, in)
}

// UpdatePost replaces an existing post
func (c *Client) UpdatePost(ctx context.Context, id int64, in PostInput) (*Post, error) {
	if err := validateInput("update post", in); err != nil {
		return nil, err
	}
	return doJSON[Post](ctx, c, http.MethodPut, fmt.Sprintf("/posts/%d", id), nil, in)
}

// DeletePost removes a post
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d", id), nil, nil, nil)
}

// PostsByCategory lists posts in a category
func (c *Client) PostsByCategory(ctx context.Context, categoryID int64, page, size int) (*Page[Post], error) {
	return doJSON[Page[Post]](ctx, c, http.MethodGet, fmt.Sprintf("/posts/category/%d", categoryID), pageValues(page, size), nil)
}

// PostsByTag lists posts carrying a tag
func (c *Client) PostsByTag(ctx context.Context, tagID int64, page, size int) (*Page[Post], error) {
	return doJSON[Page[Post]](ctx, c, http.MethodGet, fmt.Sprintf("/posts/tag/%d", tagID), pageValues(page, size), nil)
}

// SearchPosts runs a full-text search
func (c *Client) SearchPosts(ctx context.Context, query string, page, size int) (*Page[Post], error) {
	v := pageValues(page, size)
	v.Set("query", query)
	return doJSON[Page[Post]](ctx, c, http.MethodGet, "/posts/search", v, nil)
}

// PostsByUser lists posts written by a user
func (c *Client) PostsByUser(ctx context.Context, userID int64, page, size int) (*Page[Post], error) {
	return doJSON[Page[Post]](ctx, c, http.MethodGet, fmt.Sprintf("/posts/user/%d", userID), pageValues(page, size), nil)
}
