package view

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const flashCookie = "revelare_flash"

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a one-shot toast shown on the next rendered page.
type Flash struct {
	Kind    FlashKind
	Message string
}

// SetFlash queues a toast for the next page, typically across a redirect.
func SetFlash(c *gin.Context, kind FlashKind, message string) {
	if message == "" {
		return
	}
	c.SetCookie(flashCookie, string(kind)+"|"+message, 60, "/", "", false, true)
}

// PopFlash returns and clears the pending toast.
func PopFlash(c *gin.Context) *Flash {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	kind, msg, ok := strings.Cut(raw, "|")
	if !ok || msg == "" {
		return nil
	}
	return &Flash{Kind: FlashKind(kind), Message: msg}
}

// Now is a toast rendered on the current response.
func Now(kind FlashKind, message string) *Flash {
	if message == "" {
		return nil
	}
	return &Flash{Kind: kind, Message: message}
}
