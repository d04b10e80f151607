package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/revelare/revelare-web/internal/guard"
	"github.com/revelare/revelare-web/internal/search"
	"github.com/revelare/revelare-web/internal/web/view"
	"github.com/revelare/revelare-web/pkg/models"
)

func (h *Handler) Bookmarks(c *gin.Context) {
	u, ok := h.requireUser(c)
	if !ok {
		return
	}
	list, err := h.api.ListBookmarks(c.Request.Context(), u.AccessToken, u.ID)
	data := gin.H{"Title": "Bookmarks", "Bookmarks": list}
	if err != nil {
		out := readOutcome(err, "Failed to load bookmarks")
		if out.Unauthorized() {
			h.expire(c)
			return
		}
		h.log.Warn("bookmarks_load_failed", "user_id", u.ID, "error", err.Error())
		data["Bookmarks"] = nil
		data["Flash"] = view.Now(view.FlashError, out.Toast)
	}
	view.Render(c, http.StatusOK, "bookmarks", data)
}

func (h *Handler) AddBookmark(c *gin.Context) {
	u, ok := h.requireUser(c)
	if !ok {
		return
	}
	back := guard.SafeCallback(c.PostForm("return"))
	bookID, err := strconv.Atoi(c.PostForm("book_id"))
	if err != nil || bookID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}
	if back == "" {
		back = search.DetailURL(bookID, "", "")
	}
	userID, err := strconv.Atoi(u.ID)
	if err != nil {
		h.expire(c)
		return
	}

	out := h.submit(c, "bookmark_add", "Book saved to bookmarks", "Failed to save bookmark", func(ctx context.Context) error {
		return h.api.AddBookmark(ctx, u.AccessToken, models.AddBookmarkRequest{UserID: userID, BookID: bookID})
	})
	if out.Unauthorized() {
		h.expire(c)
		return
	}
	flashOutcome(c, out)
	c.Redirect(http.StatusSeeOther, back)
}

func (h *Handler) ConfirmDeleteBookmark(c *gin.Context) {
	if _, ok := h.requireUser(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/bookmark")
		return
	}
	view.Render(c, http.StatusOK, "confirm", gin.H{
		"Title":   "Remove bookmark",
		"Message": "Remove this book from your bookmarks?",
		"Action":  "/bookmark/" + strconv.Itoa(id) + "/delete",
		"Cancel":  "/bookmark",
	})
}

// DeleteBookmark removes exactly one bookmark after an explicit confirmation.
func (h *Handler) DeleteBookmark(c *gin.Context) {
	u, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok || !confirmed(c) {
		c.Redirect(http.StatusSeeOther, "/bookmark")
		return
	}
	out := h.submit(c, "bookmark_delete", "Bookmark removed", "Failed to remove bookmark", func(ctx context.Context) error {
		return h.api.DeleteBookmark(ctx, u.AccessToken, id)
	})
	if out.Unauthorized() {
		h.expire(c)
		return
	}
	flashOutcome(c, out)
	c.Redirect(http.StatusSeeOther, "/bookmark")
}
