package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/revelare/revelare-web/internal/mutation"
	"github.com/revelare/revelare-web/internal/pagination"
	"github.com/revelare/revelare-web/internal/upstream"
	"github.com/revelare/revelare-web/internal/web/view"
	"github.com/revelare/revelare-web/pkg/models"
)

// Dashboard is the admin overview with book and user totals. Totals that
// cannot be loaded render as "-".
func (h *Handler) Dashboard(c *gin.Context) {
	u, ok := h.requireUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	data := gin.H{"Title": "Dashboard", "TotalBooks": "-", "TotalUsers": "-"}

	books, err := h.api.DashboardBooks(ctx, u.AccessToken, 1, "")
	if errors.Is(err, upstream.ErrUnauthorized) {
		h.expire(c)
		return
	}
	if err == nil {
		data["TotalBooks"] = strconv.Itoa(books.TotalBooks)
	} else {
		h.log.Warn("dashboard_books_total_failed", "error", err.Error())
	}

	users, err := h.api.ListUsers(ctx, u.AccessToken)
	if errors.Is(err, upstream.ErrUnauthorized) {
		h.expire(c)
		return
	}
	if err == nil {
		data["TotalUsers"] = strconv.Itoa(len(users))
	} else {
		h.log.Warn("dashboard_users_total_failed", "error", err.Error())
	}
	view.Render(c, http.StatusOK, "dashboard", data)
}

func bookListBase(search string) string {
	if search == "" {
		return "/dashboard/books"
	}
	return "/dashboard/books?" + url.Values{"search": {search}}.Encode()
}

// DashboardBooks lists books server-side paged. A new search term always
// starts from page 1 because the filter form does not carry the page.
func (h *Handler) DashboardBooks(c *gin.Context) {
	u, ok := h.requireUser(c)
	if !ok {
		return
	}
	term := strings.TrimSpace(c.Query("search"))
	page := queryPage(c)
	data := gin.H{"Title": "Books", "Search": term, "Books": []models.BookDetail{}, "TotalBooks": 0}

	res, err := h.api.DashboardBooks(c.Request.Context(), u.AccessToken, page, term)
	if err != nil {
		out := readOutcome(err, "Failed to fetch books")
		if out.Unauthorized() {
			h.expire(c)
			return
		}
		h.log.Warn("dashboard_books_failed", "page", page, "search", term, "error", err.Error())
		data["Flash"] = view.Now(view.FlashError, out.Toast)
		data["Pager"] = Pager{Base: bookListBase(term), Controls: pagination.New(1, 1)}
		view.Render(c, http.StatusOK, "dashboard_books", data)
		return
	}

	current := res.CurrentPage
	if current < 1 {
		current = page
	}
	data["Books"] = res.Data
	data["TotalBooks"] = res.TotalBooks
	data["Pager"] = Pager{Base: bookListBase(term), Controls: pagination.New(current, res.TotalPages)}
	view.Render(c, http.StatusOK, "dashboard_books", data)
}

func (h *Handler) NewBook(c *gin.Context) {
	view.Render(c, http.StatusOK, "book_form", gin.H{
		"Title":  "Add book",
		"Action": "/dashboard/books",
		"Form":   models.BookForm{},
	})
}

func (h *Handler) CreateBook(c *gin.Context) {
	u, ok := h.requireUser(c)
	if !ok {
		return
	}
	form, closeFiles := readBookForm(c)
	defer closeFiles()

	out := h.submit(c, "book_create", "Book added successfully", "Failed to add book", func(ctx context.Context) error {
		if err := form.Validate(); err != nil {
			return err
		}
		_, err := h.api.CreateBook(ctx, u.AccessToken, form)
		return err
	})
	h.finishBookForm(c, out, form, "Add book", "/dashboard/books")
}

func (h *Handler) EditBook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		view.Render(c, http.StatusNotFound, "notfound", gin.H{"Title": "Not found"})
		return
	}
	book, err := h.api.GetBook(c.Request.Context(), id)
	switch {
	case errors.Is(err, upstream.ErrNotFound):
		view.Render(c, http.StatusNotFound, "notfound", gin.H{"Title": "Not found"})
		return
	case err != nil:
		h.log.Warn("book_edit_load_failed", "id", id, "error", err.Error())
		view.Error(c, http.StatusBadGateway, detailFailedMessage)
		return
	}
	view.Render(c, http.StatusOK, "book_form", gin.H{
		"Title":  "Edit book",
		"Action": "/dashboard/books/" + strconv.Itoa(id),
		"Form":   models.BookFormFrom(*book),
	})
}

func (h *Handler) UpdateBook(c *gin.Context) {
	u, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/dashboard/books")
		return
	}
	form, closeFiles := readBookForm(c)
	defer closeFiles()

	out := h.submit(c, "book_update:"+strconv.Itoa(id), "Book updated successfully", "Failed to update book", func(ctx context.Context) error {
		if err := form.Validate(); err != nil {
			return err
		}
		_, err := h.api.UpdateBook(ctx, u.AccessToken, id, form)
		return err
	})
	h.finishBookForm(c, out, form, "Edit book", "/dashboard/books/"+strconv.Itoa(id))
}

// finishBookForm redirects to the list on success and re-renders the
// filled form otherwise.
func (h *Handler) finishBookForm(c *gin.Context, out mutation.Outcome, form models.BookForm, title, action string) {
	switch out.Kind {
	case mutation.KindUnauthorized:
		h.expire(c)
		return
	case mutation.KindSuccess:
		flashOutcome(c, out)
		c.Redirect(http.StatusSeeOther, "/dashboard/books")
		return
	}
	status := http.StatusBadGateway
	switch out.Kind {
	case mutation.KindValidation:
		status = http.StatusUnprocessableEntity
	case mutation.KindBusy:
		status = http.StatusConflict
	}
	form.PDF, form.Cover = nil, nil
	view.Render(c, status, "book_form", gin.H{
		"Title":  title,
		"Action": action,
		"Form":   form,
		"Flash":  view.Now(view.FlashError, out.Toast),
	})
}

func (h *Handler) ConfirmDeleteBook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/dashboard/books")
		return
	}
	view.Render(c, http.StatusOK, "confirm", gin.H{
		"Title":   "Delete book",
		"Message": "This book will be permanently deleted. Continue?",
		"Action":  "/dashboard/books/" + strconv.Itoa(id) + "/delete",
		"Cancel":  "/dashboard/books",
	})
}

func (h *Handler) DeleteBook(c *gin.Context) {
	u, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok || !confirmed(c) {
		c.Redirect(http.StatusSeeOther, "/dashboard/books")
		return
	}
	out := h.submit(c, "book_delete", "Book deleted successfully", "Failed to delete book", func(ctx context.Context) error {
		return h.api.DeleteBook(ctx, u.AccessToken, id)
	})
	if out.Unauthorized() {
		h.expire(c)
		return
	}
	flashOutcome(c, out)
	c.Redirect(http.StatusSeeOther, "/dashboard/books")
}

// readBookForm reads the text fields and the optional pdf_link and
// cover_link files. The returned func closes the opened files.
func readBookForm(c *gin.Context) (models.BookForm, func()) {
	form := models.BookForm{
		Title:           c.PostForm("title"),
		Authors:         c.PostForm("authors"),
		Editors:         c.PostForm("editors"),
		Publisher:       c.PostForm("publisher"),
		Published:       c.PostForm("published"),
		ISBN:            c.PostForm("isbn"),
		Description:     c.PostForm("description"),
		TableOfContents: c.PostForm("table_of_contents"),
	}
	var opened []io.Closer
	open := func(field string) *models.FileUpload {
		fh, err := c.FormFile(field)
		if err != nil || fh.Size == 0 {
			return nil
		}
		f, err := fh.Open()
		if err != nil {
			return nil
		}
		opened = append(opened, f)
		return &models.FileUpload{Filename: fh.Filename, Content: f}
	}
	form.PDF = open("pdf_link")
	form.Cover = open("cover_link")
	return form, func() {
		for _, f := range opened {
			f.Close()
		}
	}
}
