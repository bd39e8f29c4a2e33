// Package form holds the single draft a page is editing and turns a valid
// submit into a create or update against the backend.
package form

import (
	"context"

	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/syncer"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

// Record is implemented by every entity a page edits.
type Record[T any] interface {
	syncer.Identifiable
	WithID(id string) T
	Normalize() T
	Draft() T
}

// Mode distinguishes a new draft from the shadow copy of a stored record.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Persister issues the backend call for a submit. The bool result reports
// whether the backend echoed the stored record.
type Persister[T any] interface {
	Create(ctx context.Context, draft T, attachment *models.Attachment) (T, bool, error)
	Update(ctx context.Context, id string, draft T, attachment *models.Attachment) (T, bool, error)
}

// Result is the outcome of a successful submit, ready for the syncer.
type Result[T Record[T]] struct {
	Kind   syncer.Kind
	Record T
	// Echoed is false when the backend confirmed a create without returning
	// the stored record; the caller has to refetch to learn its id.
	Echoed bool
}

// Form holds exactly one draft (create) or one shadow copy (edit).
type Form[T Record[T]] struct {
	mode       Mode
	id         string
	revision   uint64
	draft      T
	attachment *models.Attachment
}

// New opens a create form around draft. Any id on the draft is discarded.
func New[T Record[T]](draft T) *Form[T] {
	return &Form[T]{mode: ModeCreate, draft: draft.WithID("")}
}

// Edit opens an edit form on a stored record. Placeholders are stripped so
// they never travel back to the backend.
func Edit[T Record[T]](record T, revision uint64) *Form[T] {
	return &Form[T]{
		mode:     ModeEdit,
		id:       record.EntityID(),
		revision: revision,
		draft:    record.Draft(),
	}
}

func (f *Form[T]) Mode() Mode       { return f.mode }
func (f *Form[T]) ID() string       { return f.id }
func (f *Form[T]) Revision() uint64 { return f.revision }
func (f *Form[T]) Value() T         { return f.draft }

// Set replaces the draft with user input, keeping the form's identity.
func (f *Form[T]) Set(draft T) {
	f.draft = draft.WithID(f.id)
}

// Attach forwards a file with the submit, switching it to multipart.
func (f *Form[T]) Attach(a *models.Attachment) {
	f.attachment = a
}

// Validate runs the local checks. It never touches the network.
func (f *Form[T]) Validate(v *Validator) error {
	return v.Struct(f.draft)
}

// Submit validates the draft and then creates or updates it. On any error
// the form keeps the user's input untouched.
func (f *Form[T]) Submit(ctx context.Context, v *Validator, p Persister[T]) (Result[T], error) {
	var zero Result[T]
	if err := f.Validate(v); err != nil {
		return zero, err
	}

	if f.mode == ModeCreate {
		stored, echoed, err := p.Create(ctx, f.draft, f.attachment)
		if err != nil {
			return zero, err
		}
		if !echoed || stored.EntityID() == "" {
			return Result[T]{Kind: syncer.Create}, nil
		}
		return Result[T]{Kind: syncer.Create, Record: stored.Normalize(), Echoed: true}, nil
	}

	if f.id == "" {
		return zero, appErrors.Clone(syncer.ErrDraft, "cannot update a record without identifier")
	}
	stored, echoed, err := p.Update(ctx, f.id, f.draft, f.attachment)
	if err != nil {
		return zero, err
	}
	if !echoed || stored.EntityID() == "" {
		// The backend confirmed without echoing; the draft is the best copy.
		stored = f.draft
	}
	return Result[T]{Kind: syncer.Update, Record: stored.WithID(f.id).Normalize(), Echoed: echoed}, nil
}
