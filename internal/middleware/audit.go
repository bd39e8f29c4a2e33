package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/service"
	"github.com/noah-isme/school-portal/pkg/middleware/requestid"
)

// Audit records successful mutations of resource in the activity trail.
// The action follows the HTTP method; reads are never recorded.
func Audit(audit *service.AuditService, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		action := auditAction(c.Request.Method)
		if action == "" || c.Writer.Status() >= 400 || !audit.Enabled() {
			return
		}

		entry := models.AuditLog{
			Action:   action,
			Resource: resource,
			Status:   c.Writer.Status(),
		}
		if sess, ok := CurrentSession(c); ok && sess.User.ID != "" {
			id := sess.User.ID
			entry.UserID = &id
		}
		if id := c.Param("id"); id != "" {
			entry.ResourceID = &id
		}
		audit.Record(c.Request.Context(), entry, RequestMeta(c))
	}
}

// RequestMeta extracts the audit metadata of a request.
func RequestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{
		RequestID: requestid.Value(c),
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
}

func auditAction(method string) string {
	switch method {
	case http.MethodPost:
		return models.AuditActionCreate
	case http.MethodPut, http.MethodPatch:
		return models.AuditActionUpdate
	case http.MethodDelete:
		return models.AuditActionDelete
	}
	return ""
}
