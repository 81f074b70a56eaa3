package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/sitedocs/internal/entities"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

var auditEventTypes = map[string]entities.AuditEventType{
	"":         "",
	"auth":     entities.AuditEventAuth,
	"settings": entities.AuditEventSettings,
	"media":    entities.AuditEventMedia,
}

// AuditController lists recorded audit events.
type AuditController struct {
	audit AuditLogger
}

func NewAuditController(auditor AuditLogger) *AuditController {
	return &AuditController{audit: auditor}
}

// ListEvents handles GET /api/audit?type=settings&limit=50&offset=0
func (ac *AuditController) ListEvents(c *gin.Context) {
	eventType, ok := auditEventTypes[c.Query("type")]
	if !ok {
		respondBadRequest(c, "type must be one of auth, settings, media")
		return
	}

	limit := min(queryInt(c, "limit", defaultAuditLimit), maxAuditLimit)
	if limit == 0 {
		limit = defaultAuditLimit
	}
	offset := queryInt(c, "offset", 0)

	events, total, err := ac.audit.GetEvents(eventType, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    events,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(events)) < total,
	})
}
