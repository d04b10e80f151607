package live

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/revelare/revelare-web/internal/guard"
	"github.com/revelare/revelare-web/internal/pagination"
	"github.com/revelare/revelare-web/internal/search"
	"github.com/revelare/revelare-web/internal/session"
	"github.com/revelare/revelare-web/internal/upstream"
	"github.com/revelare/revelare-web/pkg/logger"
	"github.com/revelare/revelare-web/pkg/models"
)

// BookLister is the paged dashboard book list of the Revelare API.
type BookLister interface {
	DashboardBooks(ctx context.Context, token string, page int, search string) (*models.DashboardBooksResponse, error)
}

// booksSession refreshes the dashboard book table as the admin types. A new
// filter restarts at page 1.
type booksSession struct {
	client   *Client
	api      BookLister
	user     *models.SessionUser
	claims   *session.Claims
	sessions *session.Manager
	deb      *search.Debouncer
	log      *logger.Logger
	ctx      context.Context
	cancel   context.CancelFunc

	mu       sync.Mutex
	term     string
	total    int
	seq      uint64
	inflight context.CancelFunc
}

func (s *booksSession) handle(msg ClientMessage) {
	switch msg.Type {
	case MessageTypeQuery:
		term := strings.TrimSpace(msg.Query)
		s.deb.Trigger(func() { s.load(term, 1) })
	case MessageTypePage:
		s.mu.Lock()
		term, total := s.term, s.total
		s.mu.Unlock()
		if !pagination.InRange(msg.Page, total) {
			return
		}
		go s.load(term, msg.Page)
	default:
		s.client.Enqueue(ServerMessage{Type: MessageTypeError, Error: "unknown message type"})
	}
}

func (s *booksSession) load(term string, page int) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.inflight != nil {
		s.inflight()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.inflight = cancel
	s.mu.Unlock()
	defer cancel()

	res, err := s.api.DashboardBooks(ctx, s.user.AccessToken, page, term)

	s.mu.Lock()
	if seq != s.seq || s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.inflight = nil
	if err == nil {
		s.term = term
		s.total = res.TotalPages
	}
	s.mu.Unlock()

	switch {
	case errors.Is(err, upstream.ErrUnauthorized):
		s.expire()
	case err != nil:
		s.log.Warn("live_books_failed", "page", page, "search", term, "error", err.Error())
		s.client.Enqueue(ServerMessage{Type: MessageTypeError, Seq: seq, Query: term, Error: "Failed to fetch books"})
	default:
		current := res.CurrentPage
		if current < 1 {
			current = page
		}
		rows := res.Data
		if rows == nil {
			rows = []models.BookDetail{}
		}
		s.client.Enqueue(ServerMessage{
			Type:  MessageTypeBooks,
			Seq:   seq,
			Query: term,
			Page:  pageInfo(pagination.New(current, res.TotalPages), res.TotalBooks),
			Data:  rows,
		})
	}
}

// expire revokes the session the API rejected and tells the page to go to
// sign in. The cookie itself is cleared by the next page request.
func (s *booksSession) expire() {
	if err := s.sessions.Revoke(context.Background(), s.claims, "unauthorized"); err != nil {
		s.log.Error("session_revoke_failed", "error", err.Error())
	}
	s.client.Enqueue(ServerMessage{Type: MessageTypeUnauthorized, Redirect: guard.SignInPath})
	s.client.Shutdown()
}

func (s *booksSession) close() {
	s.deb.Stop()
	s.cancel()
}
