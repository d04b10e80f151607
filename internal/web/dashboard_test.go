package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/revelare/revelare-web/internal/upstream"
	"github.com/revelare/revelare-web/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBookRequiresTitle(t *testing.T) {
	api := &fakeAPI{}
	app := newTestApp(t, api)

	w := app.do(t, postForm("/dashboard/books", url.Values{"title": {"  "}, "authors": {"Adam Smith"}}), admin)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Title is required")
	assert.Contains(t, w.Body.String(), `value="Adam Smith"`)
	assert.Empty(t, api.created)
}

func TestCreateBookSuccess(t *testing.T) {
	api := &fakeAPI{}
	app := newTestApp(t, api)

	w := app.do(t, postForm("/dashboard/books", url.Values{"title": {"Capital"}, "published": {"1867"}}), admin)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard/books", w.Header().Get("Location"))
	require.Len(t, api.created, 1)
	assert.Equal(t, "1867", api.created[0].Published)
	assert.Nil(t, api.created[0].PDF)
	assert.Contains(t, strings.Join(w.Header().Values("Set-Cookie"), "\n"), "Book+added+successfully")
}

func TestCreateBookFailureKeepsForm(t *testing.T) {
	api := &fakeAPI{createErr: &upstream.APIError{Endpoint: "book_create", Status: 500}}
	app := newTestApp(t, api)

	w := app.do(t, postForm("/dashboard/books", url.Values{"title": {"Capital"}}), admin)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to add book")
	assert.Contains(t, w.Body.String(), `value="Capital"`)
}

func TestCreateBookUnauthorized(t *testing.T) {
	api := &fakeAPI{createErr: upstream.ErrUnauthorized}
	app := newTestApp(t, api)

	w := app.do(t, postForm("/dashboard/books", url.Values{"title": {"Capital"}}), admin)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/signin", w.Header().Get("Location"))
	assert.NotContains(t, strings.Join(w.Header().Values("Set-Cookie"), "\n"), "revelare_flash")
}

func TestDeleteBookConfirmed(t *testing.T) {
	api := &fakeAPI{}
	app := newTestApp(t, api)

	w := app.do(t, postForm("/dashboard/books/5/delete", url.Values{"confirm": {"no"}}), admin)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Empty(t, api.deletedBook)

	w = app.do(t, postForm("/dashboard/books/5/delete", url.Values{"confirm": {"yes"}}), admin)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []int{5}, api.deletedBook)
}

func TestDashboardBooksPaging(t *testing.T) {
	api := &fakeAPI{dashBooks: &models.DashboardBooksResponse{
		Status: "success", CurrentPage: 2, TotalPages: 9, TotalBooks: 85,
		Data: []models.BookDetail{{ID: 11, Title: "Capital", Authors: "Karl Marx"}},
	}}
	app := newTestApp(t, api)

	w := app.do(t, get("/dashboard/books?page=2&search=cap"), admin)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Karl Marx")
	assert.Contains(t, body, "<td>11</td>")
	assert.Contains(t, body, "85 books")
	assert.Contains(t, body, `/dashboard/books?search=cap&amp;page=9`)
}

func TestDashboardUsersFilterAndPage(t *testing.T) {
	users := make([]models.User, 23)
	for i := range users {
		users[i] = models.User{ID: i + 1, Name: fmt.Sprintf("Reader %02d", i+1), Email: fmt.Sprintf("r%d@example.com", i+1), Role: models.RoleUser}
	}
	users[22].Name = "Daffa"
	app := newTestApp(t, &fakeAPI{users: users})

	w := app.do(t, get("/dashboard/users?page=3"), admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Reader 21")
	assert.NotContains(t, w.Body.String(), "Reader 20")
	assert.Contains(t, w.Body.String(), "Daffa")

	w = app.do(t, get("/dashboard/users?search=DAFFA"), admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Daffa")
	assert.NotContains(t, w.Body.String(), "Reader 01")
}

func TestUpdateUserKeepsPasswordOptional(t *testing.T) {
	api := &fakeAPI{users: []models.User{{ID: 4, Name: "Budi", Email: "budi@example.com"}}}
	app := newTestApp(t, api)

	w := app.do(t, get("/dashboard/users/4/edit"), admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="budi@example.com"`)

	w = app.do(t, postForm("/dashboard/users/4", url.Values{"name": {"Budi S"}, "email": {"budi@example.com"}}), admin)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, models.UpdateUserRequest{Name: "Budi S", Email: "budi@example.com"}, api.updatedUsers[4])

	w = app.do(t, postForm("/dashboard/users/4", url.Values{"name": {""}, "email": {"budi@example.com"}}), admin)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Name is required")
}

func TestDashboardOverview(t *testing.T) {
	api := &fakeAPI{
		dashBooks: &models.DashboardBooksResponse{Status: "success", CurrentPage: 1, TotalPages: 1, TotalBooks: 42},
		users:     []models.User{{ID: 1}, {ID: 2}},
	}
	app := newTestApp(t, api)

	w := app.do(t, get("/dashboard"), admin)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<strong>42</strong>")
	assert.Contains(t, w.Body.String(), "<strong>2</strong>")
}
