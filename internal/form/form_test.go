package form

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/syncer"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

type persisterMock[T any] struct {
	createCalls int
	updateCalls int
	created     T
	updated     T
	echo        bool
	err         error
	lastID      string
	lastDraft   T
}

func (m *persisterMock[T]) Create(_ context.Context, draft T, _ *models.Attachment) (T, bool, error) {
	m.createCalls++
	m.lastDraft = draft
	return m.created, m.echo, m.err
}

func (m *persisterMock[T]) Update(_ context.Context, id string, draft T, _ *models.Attachment) (T, bool, error) {
	m.updateCalls++
	m.lastID = id
	m.lastDraft = draft
	return m.updated, m.echo, m.err
}

func TestFeeWithZeroAmountIsBlockedLocally(t *testing.T) {
	v := NewValidator()
	p := &persisterMock[models.Fee]{}
	f := New(models.Fee{StudentID: "s1", Amount: 0, DueDate: "2025-06-30"})

	_, err := f.Submit(context.Background(), v, p)

	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	assert.Equal(t, "Amount must be greater than zero", appErrors.FromError(err).Message)
	assert.Equal(t, "Amount must be greater than zero", FieldMessage(err, "amount"))
	assert.Zero(t, p.createCalls)
	assert.Zero(t, p.updateCalls)
}

func TestCreateWithEchoCarriesBackendID(t *testing.T) {
	v := NewValidator()
	p := &persisterMock[models.Fee]{
		created: models.Fee{ID: "fee-1", StudentID: "s1", Amount: 20, DueDate: "2025-06-30T00:00:00.000Z", Status: models.FeeStatusPending},
		echo:    true,
	}
	f := New(models.Fee{ID: "tmp-123", StudentID: "s1", Amount: 20, DueDate: "2025-06-30"})

	res, err := f.Submit(context.Background(), v, p)

	require.NoError(t, err)
	assert.Equal(t, syncer.Create, res.Kind)
	assert.True(t, res.Echoed)
	assert.Equal(t, "fee-1", res.Record.ID)
	assert.Equal(t, "2025-06-30", res.Record.DueDate)
	assert.Empty(t, p.lastDraft.ID, "client ids never reach the backend")
}

func TestCreateWithoutEchoAsksForRefetch(t *testing.T) {
	v := NewValidator()
	p := &persisterMock[models.Book]{echo: false}
	f := New(models.Book{Title: "Dune", Author: "Herbert", ISBN: "123"})

	res, err := f.Submit(context.Background(), v, p)

	require.NoError(t, err)
	assert.False(t, res.Echoed)
	assert.Empty(t, res.Record.ID)
}

func TestUpdateWithoutEchoUsesDraft(t *testing.T) {
	v := NewValidator()
	p := &persisterMock[models.Book]{echo: false}
	f := Edit(models.Book{ID: "b1", Title: "Dune", Author: "Herbert", ISBN: "123", Status: models.BookAvailable}, 4)
	draft := f.Value()
	draft.Title = "Dune Messiah"
	f.Set(draft)

	res, err := f.Submit(context.Background(), v, p)

	require.NoError(t, err)
	assert.Equal(t, syncer.Update, res.Kind)
	assert.Equal(t, "b1", p.lastID)
	assert.Equal(t, "b1", res.Record.ID)
	assert.Equal(t, "Dune Messiah", res.Record.Title)
	assert.Equal(t, uint64(4), f.Revision())
}

func TestBackendFailureKeepsInput(t *testing.T) {
	v := NewValidator()
	p := &persisterMock[models.Book]{err: appErrors.Upstream(400, "ISBN already exists")}
	f := New(models.Book{Title: "Dune", Author: "Herbert", ISBN: "123"})

	_, err := f.Submit(context.Background(), v, p)

	require.Error(t, err)
	assert.Equal(t, "ISBN already exists", appErrors.FromError(err).Message)
	assert.Equal(t, "Dune", f.Value().Title)
	assert.Equal(t, ModeCreate, f.Mode())
}

func TestEditStripsPlaceholders(t *testing.T) {
	stored := models.Student{ID: "s1", Username: "amy", FirstName: "Amy", LastName: "Lee", Email: "a@b.co"}.Normalize()
	require.Equal(t, models.NotAvailable, stored.City)

	f := Edit(stored, 1)

	assert.Equal(t, ModeEdit, f.Mode())
	assert.Empty(t, f.Value().City)
	assert.Empty(t, f.Value().DateOfBirth)
}

func TestUserPasswordRules(t *testing.T) {
	v := NewValidator()

	err := v.Struct(models.User{Name: "Ann", Email: "ann@school.io", Role: models.RoleTeacher})
	require.Error(t, err)
	assert.Equal(t, "Password is required", FieldMessage(err, "password"))

	f := Edit(models.User{ID: "u1", Name: "Ann", Email: "ann@school.io", Role: models.RoleTeacher}, 1)
	require.NoError(t, f.Validate(v))

	payload, err := json.Marshal(f.Value())
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "password")
}

func TestValidatorMessages(t *testing.T) {
	v := NewValidator()

	err := v.Struct(models.SignupRequest{Username: "amy", Email: "amy@school.io", Phone: "1", Password: "secret1", ConfirmPassword: "secret2"})
	assert.Equal(t, "Passwords do not match", appErrors.FromError(err).Message)

	err = v.Struct(models.SchoolSettings{SchoolName: "North", SessionStart: "2025-09-01", SessionEnd: "2025-06-01"})
	assert.Equal(t, "Session start must be on or before Session end", appErrors.FromError(err).Message)

	err = v.Struct(models.SchoolSettings{SessionStart: "2025-01-01", SessionEnd: "2025-06-01"})
	assert.Equal(t, "School name is required", FieldMessage(err, "school_name"))

	err = v.Struct(models.Student{Username: "amy", FirstName: "Amy", LastName: "Lee", Email: "not-an-email"})
	assert.Contains(t, FieldMessage(err, "email"), "valid email")

	err = v.Struct(models.Message{Recipient: "t1", Content: "   "})
	assert.Equal(t, "Message cannot be blank", FieldMessage(err, "content"))

	require.NoError(t, v.Struct(models.SchoolSettings{SchoolName: "North", SessionStart: "2025-01-01", SessionEnd: "2025-01-01"}))
}

func TestUpdateRequiresIdentifier(t *testing.T) {
	v := NewValidator()
	f := &Form[models.Book]{mode: ModeEdit, draft: models.Book{Title: "x", Author: "y", ISBN: "z"}}

	_, err := f.Submit(context.Background(), v, &persisterMock[models.Book]{})
	assert.True(t, errors.Is(err, syncer.ErrDraft))
}
