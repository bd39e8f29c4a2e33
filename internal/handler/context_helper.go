package handler

import (
	"encoding/json"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/noah-isme/school-portal/internal/middleware"
	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/service"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
	"github.com/noah-isme/school-portal/pkg/response"
)

// workspaceFromContext returns the session workspace, answering 401 when the
// route was mounted without RequireSession.
func workspaceFromContext(c *gin.Context) (*service.Workspace, bool) {
	ws, ok := middleware.CurrentWorkspace(c)
	if !ok {
		response.Redirect(c, appErrors.Clone(appErrors.ErrUnauthorized, "please sign in"), middleware.LoginPath)
		return nil, false
	}
	return ws, true
}

func sessionFromContext(c *gin.Context) (*models.Session, *service.Workspace, bool) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		response.Redirect(c, appErrors.Clone(appErrors.ErrUnauthorized, "please sign in"), middleware.LoginPath)
		return nil, nil, false
	}
	ws, ok := workspaceFromContext(c)
	return sess, ws, ok
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), binding.MIMEMultipartPOSTForm)
}

// bindDraft decodes a form draft from JSON or multipart/form-data. For
// multipart bodies the file part named field, when present, becomes the
// attachment forwarded to the backend.
func bindDraft(c *gin.Context, dest interface{}, field string) (*models.Attachment, error) {
	if !isMultipart(c) {
		if err := c.ShouldBindJSON(dest); err != nil {
			return nil, invalidPayload(err)
		}
		return nil, nil
	}
	if err := c.ShouldBindWith(dest, binding.FormMultipart); err != nil {
		return nil, invalidPayload(err)
	}
	if field == "" {
		return nil, nil
	}
	return formAttachment(c, field)
}

func formAttachment(c *gin.Context, field string) (*models.Attachment, error) {
	header, err := c.FormFile(field)
	if err != nil {
		// an absent part is not an error
		return nil, nil
	}
	return openAttachment(field, header)
}

func openAttachment(field string, header *multipart.FileHeader) (*models.Attachment, error) {
	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable upload")
	}
	return &models.Attachment{
		Field:       field,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}, nil
}

func closeAttachment(att *models.Attachment) {
	if att == nil {
		return
	}
	if closer, ok := att.Reader.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}

// expandJSONList turns a single JSON-encoded array form value into its items.
func expandJSONList(values []string) []string {
	if len(values) != 1 || !strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		return values
	}
	var out []string
	if err := json.Unmarshal([]byte(values[0]), &out); err != nil {
		return values
	}
	return out
}

// requestRevision reads the revision the client last saw, from If-Match or
// the revision query or form field. Zero means no lost-update check.
func requestRevision(c *gin.Context) (uint64, error) {
	raw := strings.TrimSpace(c.GetHeader("If-Match"))
	raw = strings.TrimPrefix(raw, "W/")
	raw = strings.Trim(raw, `"`)
	if raw == "" || raw == "*" {
		raw = c.Query("revision")
	}
	if raw == "" && isMultipart(c) {
		raw = c.PostForm("revision")
	}
	if raw == "" {
		return 0, nil
	}
	rev, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid revision")
	}
	return rev, nil
}

func setETag(c *gin.Context, revision uint64) {
	c.Header("ETag", `"`+strconv.FormatUint(revision, 10)+`"`)
}

func intParam(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" must be a number")
	}
	return v, nil
}
