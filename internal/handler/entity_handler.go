package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal/internal/form"
	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/service"
	"github.com/noah-isme/school-portal/internal/syncer"
	"github.com/noah-isme/school-portal/pkg/response"
)

// entityService is the list contract every CRUD page shares.
type entityService[T form.Record[T]] interface {
	Rows(ctx context.Context, ws *service.Workspace, query string) []T
	Reload(ctx context.Context, ws *service.Workspace) []T
	Form(ctx context.Context, ws *service.Workspace, id string) (T, uint64, error)
	Create(ctx context.Context, ws *service.Workspace, draft T, attachment *models.Attachment) (form.Result[T], error)
	Update(ctx context.Context, ws *service.Workspace, id string, revision uint64, draft T, attachment *models.Attachment) (form.Result[T], error)
	Delete(ctx context.Context, ws *service.Workspace, id string) error
}

// FormPayload is an edit copy with the revision a later update must carry.
type FormPayload[T any] struct {
	Record   T      `json:"record"`
	Revision uint64 `json:"revision"`
}

// SavedPayload reports a successful create or update. Echoed is false when
// the backend did not return the stored record and the list was refetched.
type SavedPayload[T any] struct {
	Kind   syncer.Kind `json:"kind"`
	Record T           `json:"record"`
	Echoed bool        `json:"echoed"`
}

// EntityHandler serves list, form, create, update and delete for one page.
type EntityHandler[T form.Record[T]] struct {
	page       string
	svc        entityService[T]
	attachment string
	prepare    func(c *gin.Context, draft *T)
}

func newEntityHandler[T form.Record[T]](page string, svc entityService[T], attachment string) *EntityHandler[T] {
	return &EntityHandler[T]{page: page, svc: svc, attachment: attachment}
}

func (h *EntityHandler[T]) register(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.POST("/reload", h.Reload)
	rg.GET("/:id/form", h.Form)
	rg.POST("", append(mw, h.Create)...)
	rg.PUT("/:id", append(mw, h.Update)...)
	rg.DELETE("/:id", append(mw, h.Delete)...)
}

// List godoc
// @Summary List page records
// @Tags Records
// @Produce json
// @Param resource path string true "students, teachers, courses, exams, fees, library/books, scheduler/events or settings/users"
// @Param q query string false "Search"
// @Success 200 {object} response.Envelope
// @Router /dashboard/{resource} [get]
func (h *EntityHandler[T]) List(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	rows := h.svc.Rows(c.Request.Context(), ws, c.Query("q"))
	response.OK(c, rows, ws.Notices.List(h.page))
}

// Reload godoc
// @Summary Refetch page records from the backend
// @Tags Records
// @Produce json
// @Param resource path string true "Resource"
// @Success 200 {object} response.Envelope
// @Router /dashboard/{resource}/reload [post]
func (h *EntityHandler[T]) Reload(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	rows := h.svc.Reload(c.Request.Context(), ws)
	response.OK(c, rows, ws.Notices.List(h.page))
}

// Form godoc
// @Summary Open a record for editing
// @Description The revision is also returned as ETag; send it back as If-Match.
// @Tags Records
// @Produce json
// @Param resource path string true "Resource"
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /dashboard/{resource}/{id}/form [get]
func (h *EntityHandler[T]) Form(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	record, revision, err := h.svc.Form(c.Request.Context(), ws, c.Param("id"))
	if err != nil {
		response.Error(c, err, ws.Notices.List(h.page)...)
		return
	}
	setETag(c, revision)
	response.OK(c, FormPayload[T]{Record: record, Revision: revision}, ws.Notices.List(h.page))
}

// Create godoc
// @Summary Create a record
// @Tags Records
// @Accept json,mpfd
// @Produce json
// @Param resource path string true "Resource"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /dashboard/{resource} [post]
func (h *EntityHandler[T]) Create(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	var draft T
	att, err := bindDraft(c, &draft, h.attachment)
	if err != nil {
		response.Error(c, err, ws.Notices.List(h.page)...)
		return
	}
	defer closeAttachment(att)
	if h.prepare != nil {
		h.prepare(c, &draft)
	}
	result, err := h.svc.Create(c.Request.Context(), ws, draft, att)
	if err != nil {
		response.Error(c, err, ws.Notices.List(h.page)...)
		return
	}
	response.Created(c, saved(result), ws.Notices.List(h.page))
}

// Update godoc
// @Summary Update a record
// @Tags Records
// @Accept json,mpfd
// @Produce json
// @Param resource path string true "Resource"
// @Param id path string true "Record ID"
// @Param If-Match header string false "Revision returned by the form endpoint"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /dashboard/{resource}/{id} [put]
func (h *EntityHandler[T]) Update(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	revision, err := requestRevision(c)
	if err != nil {
		response.Error(c, err, ws.Notices.List(h.page)...)
		return
	}
	var draft T
	att, err := bindDraft(c, &draft, h.attachment)
	if err != nil {
		response.Error(c, err, ws.Notices.List(h.page)...)
		return
	}
	defer closeAttachment(att)
	if h.prepare != nil {
		h.prepare(c, &draft)
	}
	result, err := h.svc.Update(c.Request.Context(), ws, c.Param("id"), revision, draft, att)
	if err != nil {
		response.Error(c, err, ws.Notices.List(h.page)...)
		return
	}
	response.OK(c, saved(result), ws.Notices.List(h.page))
}

// Delete godoc
// @Summary Delete a record
// @Tags Records
// @Produce json
// @Param resource path string true "Resource"
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /dashboard/{resource}/{id} [delete]
func (h *EntityHandler[T]) Delete(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), ws, c.Param("id")); err != nil {
		response.Error(c, err, ws.Notices.List(h.page)...)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": c.Param("id")}, ws.Notices.List(h.page))
}

func saved[T form.Record[T]](result form.Result[T]) SavedPayload[T] {
	return SavedPayload[T]{Kind: result.Kind, Record: result.Record, Echoed: result.Echoed}
}
