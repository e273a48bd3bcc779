package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tracesphere/campusasset/internal/actorctx"
	auditdomain "github.com/tracesphere/campusasset/internal/audit/domain"
)

func (s *Server) audit(action, targetType, targetID string, c *gin.Context, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}

	var actorID *string
	if actor, ok := actorctx.FromContext(c.Request.Context()); ok {
		id := snowflakeString(actor.UserID)
		actorID = &id
	}

	var target *string
	if trimmed := strings.TrimSpace(targetID); trimmed != "" {
		target = &trimmed
	}

	_ = s.auditSvc.AuditLog(c.Request.Context(), string(auditdomain.ActorTypeUser), actorID, action, targetType, target, metadata)
}

func writeCSV(c *gin.Context, filename, body string) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(body))
}
