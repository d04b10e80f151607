package web

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/revelare/revelare-web/internal/mutation"
	"github.com/revelare/revelare-web/internal/web/view"
)

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func queryPage(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func confirmed(c *gin.Context) bool {
	return c.PostForm("confirm") == "yes"
}

// flashOutcome queues the toast of a finished submission for the page the
// visitor is redirected to.
func flashOutcome(c *gin.Context, out mutation.Outcome) {
	kind := view.FlashError
	if out.Kind == mutation.KindSuccess {
		kind = view.FlashSuccess
	}
	view.SetFlash(c, kind, out.Toast)
}

func readOutcome(err error, failure string) mutation.Outcome {
	return mutation.Classify(err, "", failure)
}
