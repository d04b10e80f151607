package live

import (
	"context"
	"errors"

	"github.com/revelare/revelare-web/internal/pagination"
	"github.com/revelare/revelare-web/internal/search"
	"github.com/revelare/revelare-web/pkg/models"
)

const searchFailedMessage = "Failed to load search results. Please try again."

// searchSession is the search-as-you-type view of one connection. Typed
// queries are debounced; page changes run at once. Only the newest search
// reaches the client.
type searchSession struct {
	client *Client
	orch   *search.Orchestrator
	deb    *search.Debouncer
	ctx    context.Context
	cancel context.CancelFunc
}

func newSearchSession(parent context.Context, c *Client, orch *search.Orchestrator, deb *search.Debouncer) *searchSession {
	ctx, cancel := context.WithCancel(parent)
	return &searchSession{client: c, orch: orch, deb: deb, ctx: ctx, cancel: cancel}
}

func (s *searchSession) handle(msg ClientMessage) {
	switch msg.Type {
	case MessageTypeQuery:
		query, scenario := msg.Query, models.ParseScenario(msg.Scenario)
		s.deb.Trigger(func() {
			s.run(func(ctx context.Context) (search.Snapshot, error) {
				return s.orch.Submit(ctx, query, scenario)
			})
		})
	case MessageTypePage:
		page := msg.Page
		go s.run(func(ctx context.Context) (search.Snapshot, error) {
			return s.orch.ChangePage(ctx, page)
		})
	default:
		s.client.Enqueue(ServerMessage{Type: MessageTypeError, Error: "unknown message type"})
	}
}

func (s *searchSession) run(load func(context.Context) (search.Snapshot, error)) {
	snap, err := load(s.ctx)
	switch {
	case errors.Is(err, search.ErrSuperseded),
		errors.Is(err, search.ErrPageOutOfRange),
		errors.Is(err, search.ErrNoActiveSearch),
		s.ctx.Err() != nil:
		return
	case errors.Is(err, search.ErrEmptyQuery):
		s.client.Enqueue(ServerMessage{Type: MessageTypeInvalid, Error: search.ErrEmptyQuery.Message})
	case err != nil:
		s.client.Enqueue(ServerMessage{
			Type:     MessageTypeError,
			Seq:      snap.Seq,
			Query:    snap.Query,
			Scenario: string(snap.Scenario),
			Error:    searchFailedMessage,
		})
	default:
		s.client.Enqueue(ServerMessage{
			Type:     MessageTypeResults,
			Seq:      snap.Seq,
			Query:    snap.Query,
			Scenario: string(snap.Scenario),
			Page:     pageInfo(snap.Controls, snap.TotalResults),
			Data:     snap.Results,
		})
	}
}

func (s *searchSession) close() {
	s.deb.Stop()
	s.orch.Cancel()
	s.cancel()
}

func pageInfo(c pagination.Controls, count int) *PageInfo {
	tokens := make([]string, len(c.Tokens))
	for i, t := range c.Tokens {
		tokens[i] = t.String()
	}
	return &PageInfo{Current: c.Current, Total: c.Total, Count: count, Tokens: tokens}
}
