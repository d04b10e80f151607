package guard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/revelare/revelare-web/pkg/models"
)

// SessionKey is the gin context key holding the *models.SessionUser.
const SessionKey = "session_user"

// CurrentUser returns the session placed in the context, or nil.
func CurrentUser(c *gin.Context) *models.SessionUser {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.SessionUser)
	return u
}

// Middleware applies Decide to every request. It runs after the session
// middleware.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		action := Decide(c.Request.URL.Path, StateOf(CurrentUser(c)))
		if !action.Allow {
			c.Redirect(http.StatusSeeOther, action.RedirectTo)
			c.Abort()
			return
		}
		c.Next()
	}
}
