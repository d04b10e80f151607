package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/revelare/revelare-web/internal/upstream"
	"github.com/revelare/revelare-web/pkg/logger"
	"github.com/revelare/revelare-web/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu      sync.Mutex
	queries []string
	fail    error
}

func (f *fakeSource) SearchBooks(_ context.Context, q string, _ models.Scenario, page int) (*models.SearchResponse, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	return &models.SearchResponse{
		CurrentPage:  page,
		TotalPages:   3,
		TotalResults: 25,
		Data:         []models.Book{{ID: 1, Title: "Wealth of Nations", AverageSimilarity: 0.91}, {ID: 2, Title: "Capital"}},
	}, nil
}

func (f *fakeSource) GetBook(_ context.Context, id int) (*models.BookDetail, error) {
	if id == 404 {
		return nil, upstream.ErrNotFound
	}
	return &models.BookDetail{ID: id, Title: "Wealth of Nations"}, nil
}

type fakeBookmarks struct {
	got []models.AddBookmarkRequest
	err error
}

func (f *fakeBookmarks) AddBookmark(_ context.Context, _ string, in models.AddBookmarkRequest) error {
	f.got = append(f.got, in)
	return f.err
}

func newModel(src *fakeSource, bm *fakeBookmarks) Model {
	return New(Options{
		Source:    src,
		Bookmarks: bm,
		Session:   &models.SessionUser{ID: "7", AccessToken: "tok"},
		Logger:    logger.New(logger.ERROR, false, nil),
	})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	for _, r := range s {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestTyping_OnlyLatestKeystrokeSearches(t *testing.T) {
	src := &fakeSource{}
	m := typeText(t, newModel(src, nil), "econ")
	assert.Equal(t, 4, m.typingSeq)

	m, cmd := update(t, m, debounceMsg{seq: 2})
	assert.Nil(t, cmd)
	assert.Empty(t, src.queries)

	m, cmd = update(t, m, debounceMsg{seq: 4})
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	m, _ = update(t, m, m.runSearch("econ", 1)())
	assert.Equal(t, []string{"econ"}, src.queries)
	assert.False(t, m.loading)
	assert.Len(t, m.list.Items(), 2)
	assert.Equal(t, "25 results · page 1 of 3", m.statusMsg)
}

func TestBlankQueryDoesNotSearch(t *testing.T) {
	src := &fakeSource{}
	m := typeText(t, newModel(src, nil), " ")
	m, cmd := update(t, m, debounceMsg{seq: m.typingSeq})
	assert.Nil(t, cmd)
	assert.False(t, m.loading)
	assert.Empty(t, src.queries)
}

func TestSearchFailureShowsMessage(t *testing.T) {
	src := &fakeSource{fail: errors.New("boom")}
	m := newModel(src, nil)
	m, _ = update(t, m, m.runSearch("econ", 1)())
	require.Error(t, m.err)
	assert.Equal(t, "Failed to load search results. Please try again.", m.err.Error())
	assert.Contains(t, m.View(), "Failed to load search results")
}

func TestPagingAndDetail(t *testing.T) {
	src := &fakeSource{}
	m := newModel(src, nil)
	m, _ = update(t, m, m.runSearch("econ", 1)())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.False(t, m.input.Focused())

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	assert.Nil(t, cmd, "no previous page from page 1")

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	require.NotNil(t, cmd)

	m, _ = update(t, m, m.loadDetail(1)())
	assert.Equal(t, ViewDetail, m.view)
	require.NotNil(t, m.current)
	assert.Equal(t, "Wealth of Nations", m.current.Book.Title)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewSearch, m.view)

	m, _ = update(t, m, m.loadDetail(404)())
	assert.Equal(t, "Book not found", m.err.Error())
}

func TestBookmark(t *testing.T) {
	bm := &fakeBookmarks{}
	m := newModel(&fakeSource{}, bm)
	m, _ = update(t, m, m.addBookmark(3)())
	assert.Equal(t, []models.AddBookmarkRequest{{UserID: 7, BookID: 3}}, bm.got)
	assert.Equal(t, "Book saved to bookmarks", m.statusMsg)

	bm.err = upstream.ErrUnauthorized
	m, _ = update(t, m, m.addBookmark(3)())
	assert.True(t, m.SessionExpired())
}

func TestBookmarkRequiresSession(t *testing.T) {
	m := New(Options{Source: &fakeSource{}, Logger: logger.New(logger.ERROR, false, nil)})
	m, _ = update(t, m, m.addBookmark(3)())
	require.Error(t, m.err)
	assert.Contains(t, m.err.Error(), "Sign in")
}

func TestNextScenarioCycles(t *testing.T) {
	assert.Equal(t, models.ScenarioTFIDF5, nextScenario(models.ScenarioDefault))
	assert.Equal(t, models.ScenarioTFIDF3, nextScenario(models.ScenarioNoSemantic))
}
