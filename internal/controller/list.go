// Package controller holds the per-session page controllers: canonical
// entity lists kept in sync with the backend, and the scheduler view state.
package controller

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal/internal/form"
	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/syncer"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

// Source is the backend collection a list mirrors.
type Source[T any] interface {
	List(ctx context.Context) ([]T, error)
	form.Persister[T]
	Delete(ctx context.Context, id string) error
}

// DeleteGuard vets a delete before it reaches the backend. A non-nil error
// refuses the delete and its message is shown to the user.
type DeleteGuard[T any] func(ctx context.Context, record T) error

// List is the controller behind a page that shows and edits one entity kind.
type List[T form.Record[T]] struct {
	page      string
	source    Source[T]
	validator *form.Validator
	notices   *Notices
	logger    *zap.Logger
	items     *syncer.Collection[T]
	guard     DeleteGuard[T]

	mountMu sync.Mutex
	mounted bool

	// inflight counts edits per id that passed the revision check and are
	// still waiting on the backend.
	editMu   sync.Mutex
	inflight map[string]int
}

// NewList constructs a list controller for page.
func NewList[T form.Record[T]](page string, source Source[T], validator *form.Validator, notices *Notices, logger *zap.Logger) *List[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notices == nil {
		notices = NewNotices()
	}
	if validator == nil {
		validator = form.NewValidator()
	}
	return &List[T]{
		page:      page,
		source:    source,
		validator: validator,
		notices:   notices,
		logger:    logger,
		items:     syncer.NewCollection[T](),
		inflight:  make(map[string]int),
	}
}

// WithDeleteGuard installs a hook consulted before every delete.
func (l *List[T]) WithDeleteGuard(guard DeleteGuard[T]) *List[T] {
	l.guard = guard
	return l
}

// Page returns the page name the list reports notices under.
func (l *List[T]) Page() string { return l.page }

// Notices returns the board the list posts to.
func (l *List[T]) Notices() *Notices { return l.notices }

// Mount fetches the collection and installs it as the canonical list. A
// failed fetch leaves the list empty and posts a notice; it never fails the
// page itself. The returned error is informational.
func (l *List[T]) Mount(ctx context.Context) error {
	l.mountMu.Lock()
	defer l.mountMu.Unlock()
	return l.mountLocked(ctx)
}

// Ensure mounts the list once per workspace.
func (l *List[T]) Ensure(ctx context.Context) {
	l.mountMu.Lock()
	defer l.mountMu.Unlock()
	if l.mounted {
		return
	}
	_ = l.mountLocked(ctx)
}

func (l *List[T]) mountLocked(ctx context.Context) error {
	records, err := l.source.List(ctx)
	l.mounted = true
	if err != nil {
		l.items.Clear()
		l.logger.Warn("failed to load list", zap.String("page", l.page), zap.Error(err))
		l.notices.Error(l.page, err)
		return err
	}

	normalized := make([]T, 0, len(records))
	for _, r := range records {
		normalized = append(normalized, r.Normalize())
	}
	if dropped := l.items.Replace(normalized); dropped > 0 {
		l.logger.Warn("discarded records from list",
			zap.String("page", l.page),
			zap.Int("dropped", dropped),
		)
	}
	return nil
}

// Rows returns the canonical list.
func (l *List[T]) Rows() []T {
	return l.items.Items()
}

// Len returns the number of rows.
func (l *List[T]) Len() int {
	return l.items.Len()
}

// Get returns a stored row with its revision.
func (l *List[T]) Get(id string) (T, uint64, bool) {
	return l.items.Get(id)
}

// NewForm opens a create form around draft.
func (l *List[T]) NewForm(draft T) *form.Form[T] {
	return form.New(draft)
}

// OpenEdit returns the shadow copy of a stored row and its current revision.
func (l *List[T]) OpenEdit(id string) (*form.Form[T], error) {
	return l.EditAt(id, 0)
}

// EditAt opens an edit form that expects the row to still be at revision.
// A zero revision means the current one, i.e. no lost-update check.
func (l *List[T]) EditAt(id string, revision uint64) (*form.Form[T], error) {
	record, current, ok := l.items.Get(id)
	if !ok {
		if l.items.Deleted(id) {
			return nil, appErrors.Clone(appErrors.ErrDeleted, "record was deleted")
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "record not found")
	}
	if revision == 0 {
		revision = current
	}
	return form.Edit(record, revision), nil
}

// Save submits f and reconciles the canonical list with the outcome.
func (l *List[T]) Save(ctx context.Context, f *form.Form[T]) (form.Result[T], error) {
	var zero form.Result[T]
	if f.Mode() == form.ModeEdit {
		release, err := l.reserve(f.ID(), f.Revision())
		if err != nil {
			return zero, err
		}
		defer release()
	}

	result, err := f.Submit(ctx, l.validator, l.source)
	if err != nil {
		if !appErrors.HasCode(err, appErrors.ErrValidation.Code) {
			l.logger.Warn("failed to save record", zap.String("page", l.page), zap.Error(err))
			l.notices.Error(l.page, err)
		}
		return zero, err
	}

	if result.Kind == syncer.Create && !result.Echoed {
		// The backend id is unknown; only a refetch can tell it.
		_ = l.Mount(ctx)
		return result, nil
	}
	if err := l.reconcile(ctx, result); err != nil {
		return zero, err
	}
	return result, nil
}

// Apply reconciles the list with a record the backend confirmed outside of
// a form submit, such as a nested route or a status transition.
func (l *List[T]) Apply(ctx context.Context, kind syncer.Kind, record T) error {
	return l.reconcile(ctx, form.Result[T]{Kind: kind, Record: record.Normalize(), Echoed: true})
}

func (l *List[T]) reconcile(ctx context.Context, result form.Result[T]) error {
	err := l.items.Apply(syncer.Change[T]{Kind: result.Kind, ID: result.Record.EntityID(), Record: result.Record})
	switch {
	case err == nil:
		return nil
	case appErrors.HasCode(err, appErrors.ErrDeleted.Code):
		l.notices.Error(l.page, err)
		return err
	case appErrors.HasCode(err, syncer.ErrAbsent.Code), appErrors.HasCode(err, syncer.ErrDuplicate.Code):
		// The local list drifted from the backend; resynchronise.
		l.logger.Warn("list out of sync, refetching", zap.String("page", l.page), zap.Error(err))
		_ = l.Mount(ctx)
		return nil
	default:
		return err
	}
}

// reserve checks the expected revision and holds id until the save that
// claimed it has reconciled. A second edit expecting the same revision
// loses while the first one is in flight.
func (l *List[T]) reserve(id string, expected uint64) (func(), error) {
	l.editMu.Lock()
	defer l.editMu.Unlock()
	if err := l.checkRevision(id, expected); err != nil {
		return nil, err
	}
	if expected != 0 && l.inflight[id] > 0 {
		return nil, appErrors.Clone(appErrors.ErrStaleRevision, "record is being saved by another request")
	}
	l.inflight[id]++
	return func() {
		l.editMu.Lock()
		defer l.editMu.Unlock()
		if l.inflight[id]--; l.inflight[id] <= 0 {
			delete(l.inflight, id)
		}
	}, nil
}

func (l *List[T]) checkRevision(id string, expected uint64) error {
	if l.items.Deleted(id) {
		return appErrors.Clone(appErrors.ErrDeleted, "record was deleted")
	}
	if expected == 0 {
		return nil
	}
	current := l.items.Revision(id)
	if current != 0 && current != expected {
		return appErrors.Clone(appErrors.ErrStaleRevision, "record changed since the form was opened")
	}
	return nil
}

// Delete removes the row identified by id on the backend and then locally.
func (l *List[T]) Delete(ctx context.Context, id string) error {
	record, _, ok := l.items.Get(id)
	if !ok {
		if l.items.Deleted(id) {
			return appErrors.Clone(appErrors.ErrDeleted, "record was deleted")
		}
		return appErrors.Clone(appErrors.ErrNotFound, "record not found")
	}

	if l.guard != nil {
		if err := l.guard(ctx, record); err != nil {
			refusal := appErrors.FromError(err)
			if refusal.Code == appErrors.ErrInternal.Code {
				refusal = appErrors.Clone(appErrors.ErrConflict, err.Error())
			}
			l.notices.Post(l.page, models.NoticeWarning, refusal.Code, refusal.Message)
			return refusal
		}
	}

	if err := l.source.Delete(ctx, id); err != nil {
		l.logger.Warn("failed to delete record", zap.String("page", l.page), zap.String("id", id), zap.Error(err))
		l.notices.Error(l.page, err)
		return err
	}
	if err := l.items.Apply(syncer.Deleted[T](id)); err != nil && !appErrors.HasCode(err, syncer.ErrAbsent.Code) {
		return err
	}
	return nil
}
