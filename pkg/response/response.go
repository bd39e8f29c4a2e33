package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal/internal/models"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

// Envelope represents the common response contract. Notices carries the
// page's pending inline notices on every response, successful or not.
type Envelope struct {
	Data    interface{}            `json:"data,omitempty"`
	Error   *appErrors.Error       `json:"error,omitempty"`
	Notices []models.Notice        `json:"notices,omitempty"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with the page notices and optional metadata.
func JSON(c *gin.Context, status int, data interface{}, notices []models.Notice, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Data: data, Notices: notices}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// OK responds with HTTP 200.
func OK(c *gin.Context, data interface{}, notices []models.Notice) {
	JSON(c, http.StatusOK, data, notices)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}, notices []models.Notice) {
	JSON(c, http.StatusCreated, data, notices)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error, notices ...models.Notice) {
	appErr := appErrors.FromError(err)
	noStore(c)
	_ = c.Error(appErr)
	c.JSON(appErr.Status, Envelope{Error: appErr, Notices: notices})
}

// Redirect answers an API caller that has to go through another page first.
func Redirect(c *gin.Context, err error, location string) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.AbortWithStatusJSON(appErr.Status, Envelope{Error: appErr, Meta: map[string]interface{}{"redirect": location}})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
