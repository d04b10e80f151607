package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/revelare/revelare-web/pkg/models"
)

func (c *Client) DashboardBooks(ctx context.Context, token string, page int, search string) (*models.DashboardBooksResponse, error) {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if s := strings.TrimSpace(search); s != "" {
		q.Set("search", s)
	}

	var out models.DashboardBooksResponse
	err := c.do(ctx, request{
		endpoint: "dashboard_books",
		method:   http.MethodGet,
		path:     "/api/dashboard/books",
		query:    q,
		token:    token,
		bearer:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateBook(ctx context.Context, token string, form models.BookForm) (*models.BookDetail, error) {
	return c.submitBook(ctx, token, "dashboard_books_create", http.MethodPost, "/api/dashboard/books/create", form)
}

func (c *Client) UpdateBook(ctx context.Context, token string, id int, form models.BookForm) (*models.BookDetail, error) {
	return c.submitBook(ctx, token, "dashboard_books_edit", http.MethodPut, fmt.Sprintf("/api/dashboard/books/edit/%d", id), form)
}

func (c *Client) submitBook(ctx context.Context, token, endpoint, method, path string, form models.BookForm) (*models.BookDetail, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	body, contentType, err := encodeBookForm(form)
	if err != nil {
		return nil, err
	}
	var out models.BookDetailResponse
	err = c.do(ctx, request{
		endpoint:    endpoint,
		method:      method,
		path:        path,
		token:       token,
		bearer:      true,
		body:        body,
		contentType: contentType,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// encodeBookForm writes the text fields followed by the optional files
// under pdf_link and cover_link.
func encodeBookForm(form models.BookForm) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, kv := range form.Fields() {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("encode %s: %w", kv[0], err)
		}
	}
	files := []struct {
		field string
		file  *models.FileUpload
	}{{"pdf_link", form.PDF}, {"cover_link", form.Cover}}
	for _, f := range files {
		if f.file == nil || f.file.Content == nil {
			continue
		}
		part, err := w.CreateFormFile(f.field, f.file.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("encode %s: %w", f.field, err)
		}
		if _, err := io.Copy(part, f.file.Content); err != nil {
			return nil, "", fmt.Errorf("encode %s: %w", f.field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func (c *Client) DeleteBook(ctx context.Context, token string, id int) error {
	return c.do(ctx, request{
		endpoint: "dashboard_books_delete",
		method:   http.MethodDelete,
		path:     fmt.Sprintf("/api/dashboard/books/delete/%d", id),
		token:    token,
		bearer:   true,
	}, nil)
}

func (c *Client) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	var out models.UsersResponse
	err := c.do(ctx, request{
		endpoint: "dashboard_users",
		method:   http.MethodGet,
		path:     "/api/dashboard/users",
		token:    token,
		bearer:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) UpdateUser(ctx context.Context, token string, id int, in models.UpdateUserRequest) error {
	if err := in.Validate(); err != nil {
		return err
	}
	body, err := jsonBody(in)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		endpoint:    "dashboard_users_edit",
		method:      http.MethodPut,
		path:        fmt.Sprintf("/api/dashboard/users/edit/%d", id),
		token:       token,
		bearer:      true,
		body:        body,
		contentType: "application/json",
	}, nil)
}

func (c *Client) DeleteUser(ctx context.Context, token string, id int) error {
	return c.do(ctx, request{
		endpoint: "dashboard_users_delete",
		method:   http.MethodDelete,
		path:     fmt.Sprintf("/api/dashboard/users/delete/%d", id),
		token:    token,
		bearer:   true,
	}, nil)
}
