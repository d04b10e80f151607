package search

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/revelare/revelare-web/internal/pagination"
	"github.com/revelare/revelare-web/pkg/logger"
	"github.com/revelare/revelare-web/pkg/metrics"
	"github.com/revelare/revelare-web/pkg/models"
)

var (
	ErrEmptyQuery     = &models.ValidationError{Field: "q", Message: "Please enter a search query"}
	ErrSuperseded     = errors.New("search superseded by a newer request")
	ErrPageOutOfRange = errors.New("page out of range")
	ErrNoActiveSearch = errors.New("no active search")
)

// Searcher is the ranked search capability of the Revelare API.
type Searcher interface {
	SearchBooks(ctx context.Context, query string, scenario models.Scenario, page int) (*models.SearchResponse, error)
}

// Snapshot is the rendered state of a search view. It is replaced as a
// whole, never patched.
type Snapshot struct {
	Query        string
	Scenario     models.Scenario
	Results      []models.Book
	CurrentPage  int
	TotalPages   int
	TotalResults int
	Controls     pagination.Controls
	Err          error
	Searched     bool
	Seq          uint64
}

// Orchestrator runs searches for one view. Each dispatch cancels the one
// before it and only the latest dispatch may write the snapshot.
type Orchestrator struct {
	searcher Searcher
	log      *logger.Logger

	mu     sync.Mutex
	snap   Snapshot
	seq    uint64
	cancel context.CancelFunc
}

func NewOrchestrator(s Searcher, log *logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Orchestrator{searcher: s, log: log.WithContext("component", "search")}
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.copyLocked()
}

func (o *Orchestrator) copyLocked() Snapshot {
	s := o.snap
	s.Results = slices.Clone(s.Results)
	return s
}

// Submit searches page 1 of query.
func (o *Orchestrator) Submit(ctx context.Context, query string, scenario models.Scenario) (Snapshot, error) {
	return o.Load(ctx, query, scenario, 1)
}

// ChangePage re-runs the current query and scenario on page. Pages outside
// [1, total] are ignored.
func (o *Orchestrator) ChangePage(ctx context.Context, page int) (Snapshot, error) {
	o.mu.Lock()
	snap := o.copyLocked()
	o.mu.Unlock()

	if !snap.Searched || snap.Query == "" {
		return snap, ErrNoActiveSearch
	}
	if !pagination.InRange(page, snap.Controls.Total) {
		return snap, ErrPageOutOfRange
	}
	return o.Load(ctx, snap.Query, snap.Scenario, page)
}

// Load is the mount and URL trigger. A blank query issues no call and
// leaves the snapshot untouched.
func (o *Orchestrator) Load(ctx context.Context, query string, scenario models.Scenario, page int) (Snapshot, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return o.Snapshot(), ErrEmptyQuery
	}
	if page < 1 {
		page = 1
	}

	o.mu.Lock()
	o.seq++
	seq := o.seq
	if o.cancel != nil {
		o.cancel()
	}
	callCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.mu.Unlock()
	defer cancel()

	res, err := o.searcher.SearchBooks(callCtx, q, scenario, page)

	o.mu.Lock()
	defer o.mu.Unlock()

	if seq != o.seq {
		metrics.SearchSupersededTotal.Inc()
		o.log.Debug("search_superseded", "query", q, "seq", seq, "latest", o.seq)
		return o.copyLocked(), ErrSuperseded
	}
	o.cancel = nil

	if err != nil {
		o.log.Warn("search_failed", "query", q, "scenario", scenario.Wire(), "page", page, "error", err.Error())
		o.snap = Snapshot{Query: q, Scenario: scenario, Err: err, Searched: true, Seq: seq}
		return o.copyLocked(), err
	}

	current := res.CurrentPage
	if current < 1 {
		current = page
	}
	controls := pagination.New(current, res.TotalPages)
	results := res.Data
	if results == nil {
		results = []models.Book{}
	}
	o.snap = Snapshot{
		Query:        q,
		Scenario:     scenario,
		Results:      results,
		CurrentPage:  controls.Current,
		TotalPages:   controls.Total,
		TotalResults: res.TotalResults,
		Controls:     controls,
		Searched:     true,
		Seq:          seq,
	}
	return o.copyLocked(), nil
}

// Cancel abandons any in-flight search. Its response will be discarded.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seq++
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}
