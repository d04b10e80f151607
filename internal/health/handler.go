package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/revelare/revelare-web/internal/upstream"
	"github.com/revelare/revelare-web/pkg/database"
	"github.com/revelare/revelare-web/pkg/metrics"
)

// Upstream reports whether the Revelare API can currently be called.
type Upstream interface {
	Configured() bool
	BreakerState() upstream.CircuitState
}

type Handler struct {
	upstream Upstream
}

func NewHandler(up Upstream) *Handler {
	return &Handler{upstream: up}
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readyz is ready when the session store answers and the API breaker is
// not open.
func (h *Handler) Readyz(c *gin.Context) {
	if database.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": "database_not_initialized"})
		return
	}

	if err := database.DB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": "database_ping_failed"})
		return
	}

	if !h.upstream.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": "upstream_not_configured"})
		return
	}

	state := h.upstream.BreakerState()
	if state == upstream.StateOpen {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": "upstream_unavailable", "breaker": state.String()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "ready",
		"breaker":          state.String(),
		"live_connections": metrics.GetLiveConnections(),
	})
}
