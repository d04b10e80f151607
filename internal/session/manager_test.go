package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/revelare/revelare-web/internal/guard"
	"github.com/revelare/revelare-web/pkg/database"
	"github.com/revelare/revelare-web/pkg/logger"
	"github.com/revelare/revelare-web/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret!"

type memRevocations struct {
	mu  sync.Mutex
	ids map[string]string
}

func (m *memRevocations) Revoke(_ context.Context, jti, _ string, _ time.Time, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[jti] = reason
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ids[jti]
	return ok, nil
}

func newTestManager(t *testing.T) (*Manager, *memRevocations) {
	t.Helper()
	rev := &memRevocations{ids: map[string]string{}}
	m, err := NewManager(Options{
		Secret:      testSecret,
		TTL:         time.Hour,
		Revocations: rev,
		Logger:      logger.New(logger.ERROR, false, nil),
	})
	require.NoError(t, err)
	return m, rev
}

var alice = models.SessionUser{ID: "7", Name: "Alice", Email: "alice@x.io", Role: "user", AccessToken: "upstream-token"}

func TestIssueParse_RoundTrip(t *testing.T) {
	m, _ := newTestManager(t)
	token, claims, err := m.Issue(alice)
	require.NoError(t, err)
	assert.NotContains(t, token, "upstream-token")

	u, parsed, err := m.Parse(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, alice, *u)
	assert.Equal(t, claims.ID, parsed.ID)
}

func TestParse_RejectsTampering(t *testing.T) {
	m, _ := newTestManager(t)
	token, _, err := m.Issue(alice)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[1] = parts[1][:len(parts[1])-2] + "AA"
	_, _, err = m.Parse(context.Background(), strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidSession)

	other, err := NewManager(Options{Secret: strings.Repeat("z", 40), Logger: logger.New(logger.ERROR, false, nil)})
	require.NoError(t, err)
	_, _, err = other.Parse(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestParse_Expired(t *testing.T) {
	m, _ := newTestManager(t)
	start := time.Now()
	m.now = func() time.Time { return start }
	token, _, err := m.Issue(alice)
	require.NoError(t, err)

	m.now = func() time.Time { return start.Add(2 * time.Hour) }
	_, _, err = m.Parse(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestParse_Revoked(t *testing.T) {
	m, rev := newTestManager(t)
	token, claims, err := m.Issue(alice)
	require.NoError(t, err)
	require.NoError(t, m.Revoke(context.Background(), claims, "signout"))
	assert.Equal(t, "signout", rev.ids[claims.ID])

	_, _, err = m.Parse(context.Background(), token)
	assert.ErrorIs(t, err, ErrRevoked)
}

func TestNewManager_ShortSecret(t *testing.T) {
	_, err := NewManager(Options{Secret: "short"})
	assert.Error(t, err)
}

func TestIssue_RequiresToken(t *testing.T) {
	m, _ := newTestManager(t)
	_, _, err := m.Issue(models.SessionUser{ID: "1"})
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func sessionRouter(m *Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/me", func(c *gin.Context) {
		u := guard.CurrentUser(c)
		if u == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, u.Name)
	})
	r.POST("/signin", func(c *gin.Context) {
		_ = m.SignIn(c, alice)
		c.Status(http.StatusNoContent)
	})
	r.POST("/signout", func(c *gin.Context) {
		m.Terminate(c, "signout")
		c.Status(http.StatusNoContent)
	})
	return r
}

func cookieFrom(t *testing.T, resp *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, ck := range resp.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestMiddleware_SignInSignOut(t *testing.T) {
	m, rev := newTestManager(t)
	r := sessionRouter(m)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest("POST", "/signin", nil))
	ck := cookieFrom(t, resp, "revelare_session")
	require.NotNil(t, ck)
	assert.True(t, ck.HttpOnly)

	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(ck)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, "Alice", resp.Body.String())

	req = httptest.NewRequest("POST", "/signout", nil)
	req.AddCookie(ck)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	cleared := cookieFrom(t, resp, "revelare_session")
	require.NotNil(t, cleared)
	assert.True(t, cleared.MaxAge < 0)
	assert.Len(t, rev.ids, 1)

	// the old cookie is dead even if a client replays it
	req = httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(ck)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, "anonymous", resp.Body.String())
}

func TestMiddleware_SlidingRefresh(t *testing.T) {
	m, rev := newTestManager(t)
	start := time.Now()
	m.now = func() time.Time { return start }
	token, claims, err := m.Issue(alice)
	require.NoError(t, err)
	r := sessionRouter(m)

	m.now = func() time.Time { return start.Add(10 * time.Minute) }
	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(&http.Cookie{Name: "revelare_session", Value: token})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Nil(t, cookieFrom(t, resp, "revelare_session"))

	m.now = func() time.Time { return start.Add(40 * time.Minute) }
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	fresh := cookieFrom(t, resp, "revelare_session")
	require.NotNil(t, fresh)
	assert.NotEqual(t, token, fresh.Value)
	assert.Equal(t, "Alice", resp.Body.String())
	assert.Equal(t, "refresh", rev.ids[claims.ID])

	// the superseded cookie no longer authenticates
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, "anonymous", resp.Body.String())

	req = httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(fresh)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, "Alice", resp.Body.String())
}

func TestMiddleware_GarbageCookieIsCleared(t *testing.T) {
	m, _ := newTestManager(t)
	r := sessionRouter(m)
	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(&http.Cookie{Name: "revelare_session", Value: "garbage"})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, "anonymous", resp.Body.String())
	ck := cookieFrom(t, resp, "revelare_session")
	require.NotNil(t, ck)
	assert.True(t, ck.MaxAge < 0)
}

func TestSQLRevocations(t *testing.T) {
	require.NoError(t, database.InitDatabase(filepath.Join(t.TempDir(), "sessions.db")))
	defer database.Close()

	store := NewSQLRevocations(database.DB)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "abc", "7", time.Now().Add(time.Hour), "unauthorized"))
	require.NoError(t, store.Revoke(ctx, "abc", "7", time.Now().Add(time.Hour), "signout"))

	revoked, err = store.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestSealer_BindsTokenID(t *testing.T) {
	key, err := deriveKey([]byte(testSecret), "access-token")
	require.NoError(t, err)
	s, err := newSealer(key)
	require.NoError(t, err)

	sealed, err := s.seal("secret", "jti-1")
	require.NoError(t, err)
	pt, err := s.open(sealed, "jti-1")
	require.NoError(t, err)
	assert.Equal(t, "secret", pt)

	_, err = s.open(sealed, "jti-2")
	assert.Error(t, err)
}
