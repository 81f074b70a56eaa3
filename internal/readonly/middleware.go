// Package readonly blocks writes to documentation settings and media while
// changes are disabled.
package readonly

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextKeyChangesEnabled holds the toggle state for template rendering.
const ContextKeyChangesEnabled = "changes_enabled"

// BlockedMessage is returned for rejected writes.
const BlockedMessage = "Documentation changes are disabled on this site"

// Gate rejects unsafe methods whenever the toggle reports changes disabled.
// The toggle is consulted per request so runtime changes apply immediately.
type Gate struct {
	changesEnabled func() bool
}

// NewGate creates a gate driven by changesEnabled.
func NewGate(changesEnabled func() bool) *Gate {
	return &Gate{changesEnabled: changesEnabled}
}

// ChangesEnabled reports the current toggle state.
func (g *Gate) ChangesEnabled() bool {
	return g.changesEnabled()
}

// Handler returns a Gin middleware that blocks write operations.
func (g *Gate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if g.changesEnabled() {
			c.Next()
			return
		}

		respondBlocked(c)
	}
}

// InjectContext stores the toggle state in the context for templates.
func (g *Gate) InjectContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyChangesEnabled, g.changesEnabled())
		c.Next()
	}
}

// IsChangesEnabled reads the flag stored by InjectContext. Defaults to false.
func IsChangesEnabled(c *gin.Context) bool {
	return c.GetBool(ContextKeyChangesEnabled)
}

// respondBlocked sends a 403 shaped for HTMX, JSON or plain clients.
func respondBlocked(c *gin.Context) {
	if c.GetHeader("HX-Request") == "true" {
		c.Header("HX-Reswap", "none")
		c.Header("HX-Trigger", `{"showToast": {"message": "`+BlockedMessage+`", "type": "warning"}}`)
		c.String(http.StatusForbidden, BlockedMessage)
		c.Abort()
		return
	}

	if strings.HasPrefix(c.Request.URL.Path, "/api/") || strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":           BlockedMessage,
			"changes_enabled": false,
		})
		return
	}

	c.String(http.StatusForbidden, BlockedMessage)
	c.Abort()
}
