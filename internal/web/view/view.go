// Package view holds the page templates and the helpers handlers use to
// render them.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/revelare/revelare-web/internal/detail"
	"github.com/revelare/revelare-web/internal/guard"
	"github.com/revelare/revelare-web/internal/pagination"
	"github.com/revelare/revelare-web/internal/search"
	"github.com/revelare/revelare-web/pkg/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*.js
var staticFS embed.FS

// Static is the browser script set served under /static.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// Templates parses every page into one set.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs()).ParseFS(templateFS, "templates/*.html")
}

// MustTemplates is Templates for program start-up.
func MustTemplates() *template.Template {
	return template.Must(Templates())
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"safeHTML":      detail.SafeHTML,
		"orDash":        detail.OrDash,
		"languageName":  detail.LanguageName,
		"scenarios":     models.Scenarios,
		"searchURL":     search.SearchURL,
		"detailURL":     search.DetailURL,
		"isAdmin":       func(u *models.SessionUser) bool { return u.IsAdmin() },
		"signedIn":      func(u *models.SessionUser) bool { return u.IsAuthenticated() },
		"add":           func(a, b int) int { return a + b },
		"year":          yearString,
		"pageHref":      pageHref,
		"rowNumber":     func(page, perPage, i int) int { return (page-1)*perPage + i + 1 },
		"hasTokens":     func(c pagination.Controls) bool { return c.Total > 1 },
		"coverOr":       coverOr,
		"scenarioLabel": func(s models.Scenario) string { return s.Label() },
	}
}

func yearString(y int) string {
	if y == 0 {
		return "-"
	}
	return fmt.Sprint(y)
}

func coverOr(url string) string {
	if strings.TrimSpace(url) == "" {
		return ""
	}
	return url
}

// pageHref rewrites the page parameter of base.
func pageHref(base string, page int) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spage=%d", base, sep, page)
}

// Render executes the named page with the common layout fields set: the
// signed-in user, the pending flash message and the current path.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = guard.CurrentUser(c)
	data["Path"] = c.Request.URL.Path
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = PopFlash(c)
	}
	c.HTML(status, name, data)
}

// Error renders the generic error panel.
func Error(c *gin.Context, status int, message string) {
	Render(c, status, "error", gin.H{"Title": http.StatusText(status), "Message": message})
}
