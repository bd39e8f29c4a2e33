package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal/internal/controller"
	"github.com/noah-isme/school-portal/internal/form"
	"github.com/noah-isme/school-portal/internal/models"
)

// EntityService exposes the list contract of one workspace controller to
// the HTTP layer: listing with search, forms, saves and deletes.
type EntityService[T form.Record[T]] struct {
	list     func(ws *Workspace) *controller.List[T]
	match    func(record T, query string) bool
	onChange func(ctx context.Context, ws *Workspace)
	// onCreate and onUpdate pin fields the user may not set through the
	// form, such as status enums owned by their own transitions.
	onCreate func(draft T) T
	onUpdate func(stored, draft T) T
	logger   *zap.Logger
}

// Rows mounts the list on first use and returns the rows matching query.
func (s *EntityService[T]) Rows(ctx context.Context, ws *Workspace, query string) []T {
	l := s.list(ws)
	l.Ensure(ctx)
	rows := l.Rows()
	query = strings.TrimSpace(query)
	if query == "" || s.match == nil {
		return rows
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if s.match(r, query) {
			out = append(out, r)
		}
	}
	return out
}

// Reload refetches the list from the backend.
func (s *EntityService[T]) Reload(ctx context.Context, ws *Workspace) []T {
	l := s.list(ws)
	_ = l.Mount(ctx)
	return l.Rows()
}

// Form returns the edit copy of a row and its revision.
func (s *EntityService[T]) Form(ctx context.Context, ws *Workspace, id string) (T, uint64, error) {
	var zero T
	l := s.list(ws)
	l.Ensure(ctx)
	f, err := l.OpenEdit(id)
	if err != nil {
		return zero, 0, err
	}
	return f.Value(), f.Revision(), nil
}

// Create submits a new draft.
func (s *EntityService[T]) Create(ctx context.Context, ws *Workspace, draft T, attachment *models.Attachment) (form.Result[T], error) {
	l := s.list(ws)
	l.Ensure(ctx)
	if s.onCreate != nil {
		draft = s.onCreate(draft)
	}
	f := l.NewForm(draft)
	f.Attach(attachment)
	result, err := l.Save(ctx, f)
	if err == nil {
		s.changed(ctx, ws)
	}
	return result, err
}

// Update submits an edit of the row id. A non-zero revision enables the
// lost-update check.
func (s *EntityService[T]) Update(ctx context.Context, ws *Workspace, id string, revision uint64, draft T, attachment *models.Attachment) (form.Result[T], error) {
	return s.update(ctx, ws, id, revision, draft, attachment, s.onUpdate)
}

// transition updates a row on behalf of a page action. Unlike Update it may
// change the fields the form cannot.
func (s *EntityService[T]) transition(ctx context.Context, ws *Workspace, id string, revision uint64, draft T) (form.Result[T], error) {
	return s.update(ctx, ws, id, revision, draft, nil, nil)
}

func (s *EntityService[T]) update(ctx context.Context, ws *Workspace, id string, revision uint64, draft T, attachment *models.Attachment, pin func(stored, draft T) T) (form.Result[T], error) {
	var zero form.Result[T]
	l := s.list(ws)
	l.Ensure(ctx)
	f, err := l.EditAt(id, revision)
	if err != nil {
		return zero, err
	}
	if pin != nil {
		draft = pin(f.Value(), draft)
	}
	f.Set(draft)
	f.Attach(attachment)
	result, err := l.Save(ctx, f)
	if err == nil {
		s.changed(ctx, ws)
	}
	return result, err
}

// Delete removes the row id.
func (s *EntityService[T]) Delete(ctx context.Context, ws *Workspace, id string) error {
	l := s.list(ws)
	l.Ensure(ctx)
	if err := l.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, ws)
	return nil
}

func (s *EntityService[T]) changed(ctx context.Context, ws *Workspace) {
	if s.onChange != nil {
		s.onChange(ctx, ws)
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
