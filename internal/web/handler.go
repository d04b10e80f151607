// Package web serves the Revelare pages: search, book detail, bookmarks and
// the admin dashboard.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/revelare/revelare-web/internal/detail"
	"github.com/revelare/revelare-web/internal/guard"
	"github.com/revelare/revelare-web/internal/mutation"
	"github.com/revelare/revelare-web/internal/pagination"
	"github.com/revelare/revelare-web/internal/session"
	"github.com/revelare/revelare-web/internal/web/view"
	"github.com/revelare/revelare-web/pkg/logger"
	"github.com/revelare/revelare-web/pkg/models"
)

// API is the part of the Revelare API the pages use.
type API interface {
	detail.Source

	AddBookmark(ctx context.Context, token string, in models.AddBookmarkRequest) error
	ListBookmarks(ctx context.Context, token, userID string) ([]models.Bookmark, error)
	DeleteBookmark(ctx context.Context, token string, id int) error

	DashboardBooks(ctx context.Context, token string, page int, search string) (*models.DashboardBooksResponse, error)
	CreateBook(ctx context.Context, token string, form models.BookForm) (*models.BookDetail, error)
	UpdateBook(ctx context.Context, token string, id int, form models.BookForm) (*models.BookDetail, error)
	DeleteBook(ctx context.Context, token string, id int) error
	ListUsers(ctx context.Context, token string) ([]models.User, error)
	UpdateUser(ctx context.Context, token string, id int, in models.UpdateUserRequest) error
	DeleteUser(ctx context.Context, token string, id int) error
}

type Handler struct {
	api      API
	sessions *session.Manager
	tracker  *mutation.Tracker
	resolver *detail.Resolver
	log      *logger.Logger
}

type Options struct {
	Tracker        *mutation.Tracker
	SimilarTimeout time.Duration
	Logger         *logger.Logger
}

func NewHandler(api API, sessions *session.Manager, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = logger.GetLogger()
	}
	if opts.Tracker == nil {
		opts.Tracker = mutation.NewTracker()
	}
	log := opts.Logger.WithContext("component", "web")
	return &Handler{
		api:      api,
		sessions: sessions,
		tracker:  opts.Tracker,
		resolver: detail.NewResolver(api, opts.SimilarTimeout, opts.Logger),
		log:      log,
	}
}

// Register mounts every page route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.StaticFS("/static", view.Static())
	r.GET("/", h.Home)
	r.GET("/book", h.Results)
	r.GET("/book/:id", h.Detail)

	r.GET("/bookmark", h.Bookmarks)
	r.POST("/bookmark/add", h.AddBookmark)
	r.GET("/bookmark/:id/delete", h.ConfirmDeleteBookmark)
	r.POST("/bookmark/:id/delete", h.DeleteBookmark)

	dash := r.Group("/dashboard")
	{
		dash.GET("", h.Dashboard)

		dash.GET("/books", h.DashboardBooks)
		dash.GET("/books/new", h.NewBook)
		dash.POST("/books", h.CreateBook)
		dash.GET("/books/:id/edit", h.EditBook)
		dash.POST("/books/:id", h.UpdateBook)
		dash.GET("/books/:id/delete", h.ConfirmDeleteBook)
		dash.POST("/books/:id/delete", h.DeleteBook)

		dash.GET("/users", h.DashboardUsers)
		dash.GET("/users/:id/edit", h.EditUser)
		dash.POST("/users/:id", h.UpdateUser)
		dash.GET("/users/:id/delete", h.ConfirmDeleteUser)
		dash.POST("/users/:id/delete", h.DeleteUser)
	}
}

// Pager is what the pager partial renders.
type Pager struct {
	Base     string
	Controls pagination.Controls
}

// requireUser redirects anonymous visitors to sign in and back.
func (h *Handler) requireUser(c *gin.Context) (*models.SessionUser, bool) {
	u := guard.CurrentUser(c)
	if !u.IsAuthenticated() {
		c.Redirect(http.StatusSeeOther, guard.SignInURL(c.Request.URL.RequestURI()))
		return nil, false
	}
	return u, true
}

// expire ends a session the API no longer accepts and sends the visitor to
// sign in. No toast is shown.
func (h *Handler) expire(c *gin.Context) {
	h.sessions.Terminate(c, "unauthorized")
	c.Redirect(http.StatusSeeOther, guard.SignInPath)
}

func formKey(c *gin.Context, form string) string {
	id := ""
	if cl := session.ClaimsFrom(c); cl != nil {
		id = cl.ID
	} else if u := guard.CurrentUser(c); u != nil {
		id = u.ID
	}
	return mutation.Key(id, form)
}

// submit runs fn as the single in-flight submission of form for the
// current session and classifies the result.
func (h *Handler) submit(c *gin.Context, form, success, failure string, fn func(ctx context.Context) error) mutation.Outcome {
	err := h.tracker.Do(formKey(c, form), func() error {
		return fn(c.Request.Context())
	})
	out := mutation.Classify(err, success, failure)
	switch out.Kind {
	case mutation.KindFailure:
		h.log.Warn("mutation_failed", "form", form, "error", err.Error())
	case mutation.KindUnauthorized:
		h.log.Info("mutation_unauthorized", "form", form)
	}
	return out
}
