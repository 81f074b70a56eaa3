package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/sitedocs/internal/entities"
)

// Capability names a permission checked at the request boundary.
type Capability string

const (
	// CapabilityManageOptions allows changing the documentation video and managing media.
	CapabilityManageOptions Capability = "manage_options"
	// CapabilityRead allows viewing the documentation.
	CapabilityRead Capability = "read"
)

var roleCapabilities = map[entities.UserRole]map[Capability]bool{
	entities.UserRoleAdmin: {
		CapabilityManageOptions: true,
		CapabilityRead:          true,
	},
	entities.UserRoleEditor: {
		CapabilityRead: true,
	},
	entities.UserRoleViewer: {
		CapabilityRead: true,
	},
}

// RoleCan reports whether role grants capability.
func RoleCan(role entities.UserRole, capability Capability) bool {
	return roleCapabilities[role][capability]
}

// HasCapability reports whether the current request's user holds capability.
func HasCapability(c *gin.Context, capability Capability) bool {
	return RoleCan(GetUserRole(c), capability)
}

// RequireCapability returns a middleware that rejects requests lacking capability.
func (m *Middleware) RequireCapability(capability Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		if HasCapability(c, capability) {
			c.Next()
			return
		}

		if isAPIRequest(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "insufficient permissions",
			})
			return
		}
		c.AbortWithStatus(http.StatusForbidden)
	}
}
