package lucia

import (
	"context"
	"net/url"
	"strconv"
)

// Paged is the backend's standard page envelope for list endpoints.
type Paged[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	TotalCount int `json:"totalCount"`
}

// pageQuery builds the standard pagination query parameters. Zero
// values are omitted so the backend applies its defaults.
func pageQuery(page, pageSize int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}
	return q
}

// getPaged fetches one page of a list endpoint. Items is never nil.
func getPaged[T any](ctx context.Context, c *Client, path string, query url.Values) (*Paged[T], error) {
	var out Paged[T]
	if err := c.get(ctx, path, query, &out); err != nil {
		return nil, err
	}
	if out.Items == nil {
		out.Items = []T{}
	}
	return &out, nil
}
