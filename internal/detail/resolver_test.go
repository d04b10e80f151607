package detail_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/revelare/revelare-web/internal/detail"
	"github.com/revelare/revelare-web/internal/upstream"
	"github.com/revelare/revelare-web/pkg/logger"
	"github.com/revelare/revelare-web/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	searches int32
	book     func(id int) (*models.BookDetail, error)
	search   func(ctx context.Context, q string, sc models.Scenario) (*models.SearchResponse, error)
}

func (f *fakeSource) GetBook(_ context.Context, id int) (*models.BookDetail, error) {
	return f.book(id)
}

func (f *fakeSource) SearchBooks(ctx context.Context, q string, sc models.Scenario, page int) (*models.SearchResponse, error) {
	atomic.AddInt32(&f.searches, 1)
	return f.search(ctx, q, sc)
}

func found(id int) (*models.BookDetail, error) {
	return &models.BookDetail{ID: id, Title: "Book"}, nil
}

func manyResults(_ context.Context, _ string, _ models.Scenario) (*models.SearchResponse, error) {
	var data []models.Book
	for i := 1; i <= 15; i++ {
		data = append(data, models.Book{ID: i})
	}
	return &models.SearchResponse{CurrentPage: 1, TotalPages: 2, TotalResults: 15, Data: data}, nil
}

func newResolver(src detail.Source) *detail.Resolver {
	return detail.NewResolver(src, time.Second, logger.New(logger.ERROR, false, nil))
}

func TestResolve_ExcludesSelfAndCaps(t *testing.T) {
	src := &fakeSource{book: found, search: manyResults}
	res, err := newResolver(src).Resolve(context.Background(), "3", "economics", "5")
	require.NoError(t, err)
	require.Len(t, res.Similar, detail.MaxSimilar)
	for _, b := range res.Similar {
		assert.NotEqual(t, 3, b.ID)
	}
	assert.Equal(t, 11, res.Similar[9].ID)
}

func TestResolve_NoQueryNoSimilarFetch(t *testing.T) {
	src := &fakeSource{book: found, search: manyResults}
	res, err := newResolver(src).Resolve(context.Background(), "3", "  ", "")
	require.NoError(t, err)
	assert.Empty(t, res.Similar)
	assert.Zero(t, atomic.LoadInt32(&src.searches))
}

func TestResolve_NotFound(t *testing.T) {
	src := &fakeSource{
		book:   func(id int) (*models.BookDetail, error) { return nil, &upstream.APIError{Status: 404} },
		search: manyResults,
	}
	_, err := newResolver(src).Resolve(context.Background(), "99", "economics", "")
	assert.ErrorIs(t, err, detail.ErrBookNotFound)
	assert.Zero(t, atomic.LoadInt32(&src.searches))
}

func TestResolve_InvalidID(t *testing.T) {
	src := &fakeSource{book: found, search: manyResults}
	for _, id := range []string{"abc", "0", "-4", ""} {
		_, err := newResolver(src).Resolve(context.Background(), id, "", "")
		assert.ErrorIs(t, err, detail.ErrBookNotFound, "id %q", id)
	}
}

func TestResolve_TransportErrorIsNotNotFound(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	src := &fakeSource{book: func(int) (*models.BookDetail, error) { return nil, boom }, search: manyResults}
	_, err := newResolver(src).Resolve(context.Background(), "3", "economics", "")
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, detail.ErrBookNotFound))
	assert.Zero(t, atomic.LoadInt32(&src.searches))
}

func TestResolve_SimilarFailureIsIsolated(t *testing.T) {
	src := &fakeSource{
		book: found,
		search: func(context.Context, string, models.Scenario) (*models.SearchResponse, error) {
			return nil, &upstream.APIError{Status: 503}
		},
	}
	res, err := newResolver(src).Resolve(context.Background(), "3", "economics", "")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Book.ID)
	assert.Error(t, res.SimilarErr)
	assert.Empty(t, res.Similar)
}

func TestResolve_SimilarTimeout(t *testing.T) {
	src := &fakeSource{
		book: found,
		search: func(ctx context.Context, _ string, _ models.Scenario) (*models.SearchResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	r := detail.NewResolver(src, 20*time.Millisecond, logger.New(logger.ERROR, false, nil))
	res, err := r.Resolve(context.Background(), "3", "economics", "")
	require.NoError(t, err)
	assert.ErrorIs(t, res.SimilarErr, context.DeadlineExceeded)
}

func TestSimilar_ShortList(t *testing.T) {
	out := detail.Similar([]models.Book{{ID: 1}, {ID: 2}, {ID: 3}}, 2)
	assert.Equal(t, []models.Book{{ID: 1}, {ID: 3}}, out)
}
