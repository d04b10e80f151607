package detail

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/revelare/revelare-web/internal/search"
	"github.com/revelare/revelare-web/internal/upstream"
	"github.com/revelare/revelare-web/pkg/logger"
	"github.com/revelare/revelare-web/pkg/models"
)

// MaxSimilar caps the similar-books carousel.
const MaxSimilar = 10

var ErrBookNotFound = errors.New("book not found")

// Source provides book details and ranked search.
type Source interface {
	search.Searcher
	GetBook(ctx context.Context, id int) (*models.BookDetail, error)
}

type Result struct {
	Book       *models.BookDetail
	Query      string
	Scenario   models.Scenario
	Similar    []models.Book
	SimilarErr error
}

type Resolver struct {
	source         Source
	similarTimeout time.Duration
	log            *logger.Logger
}

func NewResolver(src Source, similarTimeout time.Duration, log *logger.Logger) *Resolver {
	if similarTimeout <= 0 {
		similarTimeout = 5 * time.Second
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Resolver{source: src, similarTimeout: similarTimeout, log: log.WithContext("component", "detail")}
}

// Resolve loads the book rawID. When query is set the originating search is
// re-run for similar books; that lookup failing is recorded on the result
// and does not fail the detail.
func (r *Resolver) Resolve(ctx context.Context, rawID, query string, scenario models.Scenario) (*Result, error) {
	id, err := strconv.Atoi(strings.TrimSpace(rawID))
	if err != nil || id < 1 {
		return nil, fmt.Errorf("%w: invalid id %q", ErrBookNotFound, rawID)
	}

	book, err := r.source.GetBook(ctx, id)
	if err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrBookNotFound, id)
		}
		return nil, fmt.Errorf("load book %d: %w", id, err)
	}

	res := &Result{Book: book, Query: strings.TrimSpace(query), Scenario: scenario}
	if res.Query == "" {
		return res, nil
	}

	simCtx, cancel := context.WithTimeout(ctx, r.similarTimeout)
	defer cancel()

	snap, err := search.NewOrchestrator(r.source, r.log).Submit(simCtx, res.Query, scenario)
	if err != nil {
		r.log.Warn("similar_books_failed", "book_id", id, "query", res.Query, "error", err.Error())
		res.SimilarErr = err
		return res, nil
	}
	res.Similar = Similar(snap.Results, id)
	return res, nil
}

// Similar drops the current book and caps the list at MaxSimilar.
func Similar(results []models.Book, currentID int) []models.Book {
	out := make([]models.Book, 0, MaxSimilar)
	for _, b := range results {
		if b.ID == currentID {
			continue
		}
		out = append(out, b)
		if len(out) == MaxSimilar {
			break
		}
	}
	return out
}
