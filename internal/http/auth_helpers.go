package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/sitedocs/internal/auth"
	"github.com/mrlokans/sitedocs/internal/config"
)

const contextKeyAuthTemplateData = "auth_template_data"

// AuthTemplateData holds authentication info for templates.
type AuthTemplateData struct {
	Enabled   bool // AuthModeLocal
	LoggedIn  bool
	Username  string
	CanManage bool // Holds manage_options
	CSRFToken string
	CSRFField string
}

// AuthContextMiddleware injects authentication data for templates; pages
// read it as .Auth.
func AuthContextMiddleware(authMode config.AuthMode) gin.HandlerFunc {
	authEnabled := authMode == config.AuthModeLocal

	return func(c *gin.Context) {
		data := AuthTemplateData{
			Enabled:   authEnabled,
			CanManage: auth.HasCapability(c, auth.CapabilityManageOptions),
			CSRFToken: auth.GetCSRFToken(c),
			CSRFField: auth.CSRFFieldName,
		}
		if authEnabled && auth.GetUserID(c) != 0 {
			data.LoggedIn = true
			data.Username = auth.GetUsername(c)
		}

		c.Set(contextKeyAuthTemplateData, data)
		c.Next()
	}
}

// GetAuthTemplateData retrieves the data stored by AuthContextMiddleware.
func GetAuthTemplateData(c *gin.Context) AuthTemplateData {
	if v, ok := c.Get(contextKeyAuthTemplateData); ok {
		if data, ok := v.(AuthTemplateData); ok {
			return data
		}
	}
	return AuthTemplateData{}
}
