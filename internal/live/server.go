// Package live serves the websocket channels behind search-as-you-type and
// the live dashboard book table.
package live

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/revelare/revelare-web/internal/guard"
	"github.com/revelare/revelare-web/internal/search"
	"github.com/revelare/revelare-web/internal/session"
	"github.com/revelare/revelare-web/pkg/logger"
)

type Options struct {
	Searcher       search.Searcher
	Books          BookLister
	Sessions       *session.Manager
	Debounce       time.Duration
	AllowedOrigins []string
	Logger         *logger.Logger
}

type Server struct {
	searcher search.Searcher
	books    BookLister
	sessions *session.Manager
	debounce time.Duration
	manager  *Manager
	upgrader websocket.Upgrader
	log      *logger.Logger
}

func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logger.GetLogger()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = search.DefaultDebounce
	}
	s := &Server{
		searcher: opts.Searcher,
		books:    opts.Books,
		sessions: opts.Sessions,
		debounce: opts.Debounce,
		manager:  NewManager(),
		log:      opts.Logger.WithContext("component", "live"),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(opts.AllowedOrigins),
	}
	return s
}

// originChecker accepts same-host origins plus the configured ones.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		if _, ok := set["*"]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

func (s *Server) Register(r gin.IRouter) {
	r.GET("/ws/search", s.HandleSearch)
	r.GET("/ws/dashboard/books", s.HandleDashboardBooks)
}

func (s *Server) Manager() *Manager { return s.manager }

// Close ends every live connection.
func (s *Server) Close() { s.manager.CloseAll() }

func (s *Server) upgrade(c *gin.Context, userID string) (*Client, bool) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("live_upgrade_failed", "path", c.FullPath(), "error", err.Error())
		return nil, false
	}
	client := newClient(conn, userID, s.log)
	s.manager.register(client)
	s.log.Debug("live_connected", "client_id", client.ID, "path", c.FullPath())
	return client, true
}

func (s *Server) serve(client *Client, handle func(ClientMessage), closeSession func()) {
	client.Enqueue(ServerMessage{Type: MessageTypeWelcome})
	go client.WritePump()
	go func() {
		defer func() {
			closeSession()
			s.manager.unregister(client)
			s.log.Debug("live_disconnected", "client_id", client.ID, "duration", time.Since(client.ConnectedAt).String())
		}()
		client.ReadPump(handle)
	}()
}

// HandleSearch is open to every visitor; search needs no account.
func (s *Server) HandleSearch(c *gin.Context) {
	userID := ""
	if u := guard.CurrentUser(c); u != nil {
		userID = u.ID
	}
	client, ok := s.upgrade(c, userID)
	if !ok {
		return
	}
	sess := newSearchSession(context.Background(), client, search.NewOrchestrator(s.searcher, s.log), search.NewDebouncer(s.debounce))
	s.serve(client, sess.handle, sess.close)
}

// HandleDashboardBooks requires an admin session.
func (s *Server) HandleDashboardBooks(c *gin.Context) {
	u := guard.CurrentUser(c)
	if !u.IsAdmin() || !u.IsAuthenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "admin session required"})
		return
	}
	client, ok := s.upgrade(c, u.ID)
	if !ok {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	sess := &booksSession{
		client:   client,
		api:      s.books,
		user:     u,
		claims:   session.ClaimsFrom(c),
		sessions: s.sessions,
		deb:      search.NewDebouncer(s.debounce),
		log:      s.log.WithContext("client_id", client.ID),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.serve(client, sess.handle, sess.close)
}
