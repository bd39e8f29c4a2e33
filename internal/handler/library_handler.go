package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/service"
	"github.com/noah-isme/school-portal/pkg/response"
)

// LibraryHandler exposes the library page.
type LibraryHandler struct {
	*EntityHandler[models.Book]
	library *service.LibraryService
}

// NewLibraryHandler constructs LibraryHandler.
func NewLibraryHandler(library *service.LibraryService) *LibraryHandler {
	return &LibraryHandler{
		EntityHandler: newEntityHandler[models.Book](service.PageLibrary, library, ""),
		library:       library,
	}
}

type borrowRequest struct {
	StudentID string `json:"student_id"`
}

// List godoc
// @Summary List books
// @Tags Library
// @Produce json
// @Param status query string false "All, Available or Borrowed"
// @Param q query string false "Search by title"
// @Success 200 {object} response.Envelope
// @Router /dashboard/library/books [get]
func (h *LibraryHandler) List(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	rows, err := h.library.Filter(c.Request.Context(), ws, c.Query("status"), c.Query("q"))
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageLibrary)...)
		return
	}
	response.OK(c, rows, ws.Notices.List(service.PageLibrary))
}

// Borrows godoc
// @Summary List loan records
// @Tags Library
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/library/borrows [get]
func (h *LibraryHandler) Borrows(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	response.OK(c, h.library.Borrows(c.Request.Context(), ws), ws.Notices.List(service.PageLibrary))
}

// Borrow godoc
// @Summary Lend a book to a student
// @Tags Library
// @Accept json
// @Produce json
// @Param id path string true "Book ID"
// @Param payload body borrowRequest true "Borrower"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /dashboard/library/books/{id}/borrow [post]
func (h *LibraryHandler) Borrow(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	var req borrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err), ws.Notices.List(service.PageLibrary)...)
		return
	}
	book, err := h.library.Borrow(c.Request.Context(), ws, c.Param("id"), req.StudentID)
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageLibrary)...)
		return
	}
	response.OK(c, book, ws.Notices.List(service.PageLibrary))
}

// Return godoc
// @Summary Return a borrowed book
// @Tags Library
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /dashboard/library/books/{id}/return [post]
func (h *LibraryHandler) Return(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	book, err := h.library.Return(c.Request.Context(), ws, c.Param("id"))
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageLibrary)...)
		return
	}
	response.OK(c, book, ws.Notices.List(service.PageLibrary))
}
