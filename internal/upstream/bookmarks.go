package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/revelare/revelare-web/pkg/models"
)

func (c *Client) AddBookmark(ctx context.Context, token string, in models.AddBookmarkRequest) error {
	body, err := jsonBody(in)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		endpoint:    "bookmarks_add",
		method:      http.MethodPost,
		path:        "/api/bookmarks/add",
		token:       token,
		bearer:      true,
		body:        body,
		contentType: "application/json",
	}, nil)
}

func (c *Client) ListBookmarks(ctx context.Context, token, userID string) ([]models.Bookmark, error) {
	var out models.BookmarkListResponse
	err := c.do(ctx, request{
		endpoint: "bookmarks_list",
		method:   http.MethodGet,
		path:     "/api/bookmarks/" + url.PathEscape(userID),
		token:    token,
		bearer:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) DeleteBookmark(ctx context.Context, token string, id int) error {
	return c.do(ctx, request{
		endpoint: "bookmarks_delete",
		method:   http.MethodDelete,
		path:     fmt.Sprintf("/api/bookmarks/delete/%d", id),
		token:    token,
		bearer:   true,
	}, nil)
}
