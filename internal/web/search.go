package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/revelare/revelare-web/internal/detail"
	"github.com/revelare/revelare-web/internal/search"
	"github.com/revelare/revelare-web/internal/web/view"
	"github.com/revelare/revelare-web/pkg/models"
)

const (
	searchFailedMessage = "Failed to load search results. Please try again."
	detailFailedMessage = "Failed to load book details."
)

func (h *Handler) Home(c *gin.Context) {
	view.Render(c, http.StatusOK, "home", gin.H{
		"Scenario": models.ParseScenario(c.Query("scenario")),
	})
}

// Results renders one page of a search. Every request runs its own search;
// nothing is cached between requests.
func (h *Handler) Results(c *gin.Context) {
	p := search.ParseParams(c.Request.URL.Query())
	data := gin.H{"Title": "Search", "Query": p.Query, "Scenario": p.Scenario, "Snap": search.Snapshot{}}

	if _, asked := c.GetQuery("q"); !asked {
		view.Render(c, http.StatusOK, "results", data)
		return
	}

	snap, err := search.NewOrchestrator(h.api, h.log).Load(c.Request.Context(), p.Query, p.Scenario, p.Page)
	switch {
	case errors.Is(err, search.ErrEmptyQuery):
		data["Error"] = search.ErrEmptyQuery.Message
	case err != nil:
		data["Error"] = searchFailedMessage
	}
	data["Snap"] = snap
	data["Pager"] = Pager{Base: search.SearchURL(snap.Query, snap.Scenario, 1), Controls: snap.Controls}
	view.Render(c, http.StatusOK, "results", data)
}

func (h *Handler) Detail(c *gin.Context) {
	p := search.ParseParams(c.Request.URL.Query())
	res, err := h.resolver.Resolve(c.Request.Context(), c.Param("id"), p.Query, p.Scenario)
	if errors.Is(err, detail.ErrBookNotFound) {
		view.Render(c, http.StatusNotFound, "notfound", gin.H{"Title": "Not found"})
		return
	}
	if err != nil {
		h.log.Warn("book_detail_failed", "id", c.Param("id"), "error", err.Error())
		view.Error(c, http.StatusBadGateway, detailFailedMessage)
		return
	}
	view.Render(c, http.StatusOK, "detail", gin.H{
		"Title":  res.Book.Title,
		"Result": res,
		"Return": c.Request.URL.RequestURI(),
	})
}
