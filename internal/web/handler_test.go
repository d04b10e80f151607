package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/revelare/revelare-web/internal/guard"
	"github.com/revelare/revelare-web/internal/session"
	"github.com/revelare/revelare-web/internal/upstream"
	"github.com/revelare/revelare-web/internal/web/view"
	"github.com/revelare/revelare-web/pkg/logger"
	"github.com/revelare/revelare-web/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeAPI struct {
	mu sync.Mutex

	searchCalls int
	scenarios   []models.Scenario
	search      func(query string, page int) (*models.SearchResponse, error)
	book        func(id int) (*models.BookDetail, error)

	bookmarks       []models.Bookmark
	bookmarksErr    error
	added           []models.AddBookmarkRequest
	deletedBookmark []int
	deleteErr       error

	dashBooks   *models.DashboardBooksResponse
	created     []models.BookForm
	createErr   error
	deletedBook []int

	users        []models.User
	updatedUsers map[int]models.UpdateUserRequest
	deletedUsers []int
}

func (f *fakeAPI) SearchBooks(ctx context.Context, query string, scenario models.Scenario, page int) (*models.SearchResponse, error) {
	f.mu.Lock()
	f.searchCalls++
	f.scenarios = append(f.scenarios, scenario)
	f.mu.Unlock()
	if f.search == nil {
		return &models.SearchResponse{Status: "success", CurrentPage: 1, TotalPages: 1}, nil
	}
	return f.search(query, page)
}

func (f *fakeAPI) GetBook(ctx context.Context, id int) (*models.BookDetail, error) {
	if f.book == nil {
		return nil, upstream.ErrNotFound
	}
	return f.book(id)
}

func (f *fakeAPI) AddBookmark(ctx context.Context, token string, in models.AddBookmarkRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, in)
	return nil
}

func (f *fakeAPI) ListBookmarks(ctx context.Context, token, userID string) ([]models.Bookmark, error) {
	return f.bookmarks, f.bookmarksErr
}

func (f *fakeAPI) DeleteBookmark(ctx context.Context, token string, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedBookmark = append(f.deletedBookmark, id)
	return nil
}

func (f *fakeAPI) DashboardBooks(ctx context.Context, token string, page int, search string) (*models.DashboardBooksResponse, error) {
	if f.dashBooks == nil {
		return &models.DashboardBooksResponse{Status: "success", CurrentPage: 1, TotalPages: 1}, nil
	}
	return f.dashBooks, nil
}

func (f *fakeAPI) CreateBook(ctx context.Context, token string, form models.BookForm) (*models.BookDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, form)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.BookDetail{ID: 99, Title: form.Title}, nil
}

func (f *fakeAPI) UpdateBook(ctx context.Context, token string, id int, form models.BookForm) (*models.BookDetail, error) {
	return &models.BookDetail{ID: id, Title: form.Title}, nil
}

func (f *fakeAPI) DeleteBook(ctx context.Context, token string, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedBook = append(f.deletedBook, id)
	return nil
}

func (f *fakeAPI) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	return f.users, nil
}

func (f *fakeAPI) UpdateUser(ctx context.Context, token string, id int, in models.UpdateUserRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updatedUsers == nil {
		f.updatedUsers = map[int]models.UpdateUserRequest{}
	}
	f.updatedUsers[id] = in
	return nil
}

func (f *fakeAPI) DeleteUser(ctx context.Context, token string, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedUsers = append(f.deletedUsers, id)
	return nil
}

type testApp struct {
	router   *gin.Engine
	sessions *session.Manager
	api      *fakeAPI
}

func newTestApp(t *testing.T, api *fakeAPI) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.New(logger.ERROR, false, nil)
	sessions, err := session.NewManager(session.Options{Secret: testSecret, Logger: log})
	require.NoError(t, err)

	r := gin.New()
	r.SetHTMLTemplate(view.MustTemplates())
	r.Use(sessions.Middleware(), guard.Middleware())
	NewHandler(api, sessions, Options{Logger: log}).Register(r)
	return &testApp{router: r, sessions: sessions, api: api}
}

func (a *testApp) do(t *testing.T, req *http.Request, as *models.SessionUser) *httptest.ResponseRecorder {
	t.Helper()
	if as != nil {
		token, _, err := a.sessions.Issue(*as)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: "revelare_session", Value: token})
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func get(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

var (
	reader = &models.SessionUser{ID: "7", Name: "Ann", Email: "ann@example.com", Role: models.RoleUser, AccessToken: "user-token"}
	admin  = &models.SessionUser{ID: "1", Name: "Root", Email: "root@example.com", Role: models.RoleAdmin, AccessToken: "admin-token"}
)

func economicsPage() *models.SearchResponse {
	scores := []float64{0.912, 0.874, 0.801, 0.765, 0.702, 0.655, 0.61, 0.58, 0.456, 0.401}
	books := make([]models.Book, len(scores))
	for i, s := range scores {
		books[i] = models.Book{ID: i + 1, Title: fmt.Sprintf("Economics %d", i+1), AverageSimilarity: s}
	}
	return &models.SearchResponse{Status: "success", Query: "economics", CurrentPage: 1, TotalPages: 3, TotalResults: 27, Data: books}
}

func TestResultsRendersRankedCards(t *testing.T) {
	api := &fakeAPI{search: func(q string, page int) (*models.SearchResponse, error) { return economicsPage(), nil }}
	app := newTestApp(t, api)

	w := app.do(t, get("/book?q=economics"), nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, 10, strings.Count(body, `class="card"`))
	assert.Contains(t, body, "91%")
	assert.Contains(t, body, "46%")
	assert.Contains(t, body, `/book/1?q=economics`)
	assert.Contains(t, body, `/book?q=economics&amp;page=2`)
	assert.Equal(t, []models.Scenario{models.ScenarioDefault}, api.scenarios)
}

func TestLiveInputsLoadBrowserScript(t *testing.T) {
	app := newTestApp(t, &fakeAPI{search: func(string, int) (*models.SearchResponse, error) { return economicsPage(), nil }})

	for _, tc := range []struct {
		path   string
		as     *models.SessionUser
		socket string
		target string
	}{
		{"/", nil, "/ws/search", "results"},
		{"/book?q=economics", nil, "/ws/search", "results"},
		{"/dashboard/books", admin, "/ws/dashboard/books", "book-table"},
	} {
		w := app.do(t, get(tc.path), tc.as)
		require.Equal(t, http.StatusOK, w.Code, tc.path)
		body := w.Body.String()
		assert.Contains(t, body, `<script src="/static/live.js" defer></script>`, tc.path)
		assert.Contains(t, body, `data-live="`+tc.socket+`" data-target="`+tc.target+`"`, tc.path)
	}
}

func TestBrowserScriptServed(t *testing.T) {
	app := newTestApp(t, &fakeAPI{})

	w := app.do(t, get("/static/live.js"), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "javascript")
	js := w.Body.String()
	assert.Contains(t, js, "input[data-live]")
	assert.Contains(t, js, "new WebSocket(")
	for _, kind := range []string{`type: "query"`, `type: "page"`, `case "results"`, `case "books"`, `case "unauthorized"`} {
		assert.Contains(t, js, kind)
	}
}

func TestResultsEmptyQueryIssuesNoCall(t *testing.T) {
	api := &fakeAPI{}
	app := newTestApp(t, api)

	w := app.do(t, get("/book?q=+++"), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Please enter a search query")
	assert.Zero(t, api.searchCalls)
}

func TestResultsWithoutQueryShowsForm(t *testing.T) {
	api := &fakeAPI{}
	app := newTestApp(t, api)

	w := app.do(t, get("/book"), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Please enter a search query")
	assert.Zero(t, api.searchCalls)
}

func TestResultsFailureShowsPanel(t *testing.T) {
	api := &fakeAPI{search: func(string, int) (*models.SearchResponse, error) {
		return nil, &upstream.APIError{Endpoint: "search", Status: 500, Message: "boom"}
	}}
	app := newTestApp(t, api)

	w := app.do(t, get("/book?q=economics&scenario=10"), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), searchFailedMessage)
	assert.Zero(t, strings.Count(w.Body.String(), `class="card"`))
	assert.Equal(t, []models.Scenario{models.ScenarioTFIDF10}, api.scenarios)
}

func TestDetailExcludesCurrentFromSimilar(t *testing.T) {
	api := &fakeAPI{
		book: func(id int) (*models.BookDetail, error) {
			return &models.BookDetail{ID: id, Title: "The Wealth of Nations", Editors: "E. Cannan", Language: "en"}, nil
		},
		search: func(string, int) (*models.SearchResponse, error) {
			books := make([]models.Book, 12)
			for i := range books {
				books[i] = models.Book{ID: i + 1, Title: fmt.Sprintf("B%d", i+1), AverageSimilarity: 0.5}
			}
			return &models.SearchResponse{Status: "success", CurrentPage: 1, TotalPages: 2, Data: books}, nil
		},
	}
	app := newTestApp(t, api)

	w := app.do(t, get("/book/3?q=economics&scenario=5"), nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, 10, strings.Count(body, `class="card"`))
	assert.NotContains(t, body, `/book/3?q=economics`)
	assert.Contains(t, body, "E. Cannan")
	assert.Contains(t, body, "English")
	assert.Contains(t, body, "No description available.")
	assert.Equal(t, []models.Scenario{models.ScenarioTFIDF5}, api.scenarios)
}

func TestDetailNotFound(t *testing.T) {
	app := newTestApp(t, &fakeAPI{})

	w := app.do(t, get("/book/404"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Book not found")

	w = app.do(t, get("/book/abc"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookmarkDeleteRemovesExactlyOne(t *testing.T) {
	api := &fakeAPI{}
	app := newTestApp(t, api)

	w := app.do(t, postForm("/bookmark/2/delete", url.Values{"confirm": {"yes"}}), reader)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/bookmark", w.Header().Get("Location"))
	assert.Equal(t, []int{2}, api.deletedBookmark)
	assert.Contains(t, strings.Join(w.Header().Values("Set-Cookie"), "\n"), "revelare_flash=success%7CBookmark+removed")
}

func TestBookmarkDeleteNeedsConfirmation(t *testing.T) {
	api := &fakeAPI{}
	app := newTestApp(t, api)

	w := app.do(t, get("/bookmark/2/delete"), reader)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="/bookmark/2/delete"`)

	w = app.do(t, postForm("/bookmark/2/delete", url.Values{}), reader)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Empty(t, api.deletedBookmark)
}

func TestBookmarkDeleteFailureToast(t *testing.T) {
	api := &fakeAPI{deleteErr: &upstream.APIError{Endpoint: "bookmark_delete", Status: 500}}
	app := newTestApp(t, api)

	w := app.do(t, postForm("/bookmark/2/delete", url.Values{"confirm": {"yes"}}), reader)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, strings.Join(w.Header().Values("Set-Cookie"), "\n"), "revelare_flash=error%7CFailed+to+remove+bookmark")
}

func TestUnauthorizedEndsSessionWithoutToast(t *testing.T) {
	api := &fakeAPI{bookmarksErr: upstream.ErrUnauthorized}
	app := newTestApp(t, api)

	w := app.do(t, get("/bookmark"), reader)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/signin", w.Header().Get("Location"))
	cookies := strings.Join(w.Header().Values("Set-Cookie"), "\n")
	assert.Contains(t, cookies, "revelare_session=;")
	assert.Contains(t, cookies, "Max-Age=0")
	assert.NotContains(t, cookies, "revelare_flash")
}

func TestBookmarksLoadFailureToast(t *testing.T) {
	api := &fakeAPI{bookmarksErr: &upstream.APIError{Endpoint: "bookmarks", Status: 502}}
	app := newTestApp(t, api)

	w := app.do(t, get("/bookmark"), reader)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to load bookmarks")
}

func TestBookmarksRequireSignIn(t *testing.T) {
	app := newTestApp(t, &fakeAPI{})

	w := app.do(t, get("/bookmark"), nil)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/signin?callbackUrl=%2Fbookmark", w.Header().Get("Location"))
}

func TestAddBookmarkReturnsToDetail(t *testing.T) {
	api := &fakeAPI{}
	app := newTestApp(t, api)

	w := app.do(t, postForm("/bookmark/add", url.Values{"book_id": {"12"}, "return": {"/book/12?q=economics"}}), reader)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/book/12?q=economics", w.Header().Get("Location"))
	assert.Equal(t, []models.AddBookmarkRequest{{UserID: 7, BookID: 12}}, api.added)
}

func TestGuardRedirectsByRole(t *testing.T) {
	app := newTestApp(t, &fakeAPI{})

	w := app.do(t, get("/"), admin)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	w = app.do(t, get("/dashboard/books"), reader)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = app.do(t, get("/dashboard/users"), nil)
	assert.Equal(t, "/signin?callbackUrl=%2Fdashboard%2Fusers", w.Header().Get("Location"))

	w = app.do(t, get("/"), reader)
	assert.Equal(t, http.StatusOK, w.Code)
}
