package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/revelare/revelare-web/pkg/models"
)

// SearchBooks runs a ranked search. Page values below 1 are sent as 1.
func (c *Client) SearchBooks(ctx context.Context, query string, scenario models.Scenario, page int) (*models.SearchResponse, error) {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("query", query)
	q.Set("scenario", scenario.Wire())
	q.Set("page", strconv.Itoa(page))

	var out models.SearchResponse
	err := c.do(ctx, request{
		endpoint: "books_search",
		method:   http.MethodGet,
		path:     "/api/books/search",
		query:    q,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBook fetches one book. An empty payload counts as not found.
func (c *Client) GetBook(ctx context.Context, id int) (*models.BookDetail, error) {
	var out models.BookDetailResponse
	err := c.do(ctx, request{
		endpoint: "books_detail",
		method:   http.MethodGet,
		path:     fmt.Sprintf("/api/books/%d", id),
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Data.ID == 0 && out.Data.Title == "" {
		return nil, fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	return &out.Data, nil
}
