package repository

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/noah-isme/school-portal/internal/apiclient"
	"github.com/noah-isme/school-portal/internal/models"
)

// ResourceSpec captures one backend collection's conventions.
type ResourceSpec struct {
	Path       string
	Noun       string
	ListKeys   []string
	CreateKeys []string
	UpdateKeys []string
}

// Backend collections and the keys their payloads use.
var (
	StudentResource = ResourceSpec{Path: "/student", Noun: "student",
		ListKeys: []string{"studentData", "students"}, CreateKeys: []string{"newStudent"}, UpdateKeys: []string{"updated_student", "updatedStudent"}}
	TeacherResource = ResourceSpec{Path: "/teacher", Noun: "teacher",
		ListKeys: []string{"teacherData", "teachers"}, CreateKeys: []string{"newTeacher"}, UpdateKeys: []string{"updated_teacher", "updatedTeacher"}}
	CourseResource = ResourceSpec{Path: "/course", Noun: "course",
		ListKeys: []string{"courses", "courseData"}, CreateKeys: []string{"newCourse"}, UpdateKeys: []string{"updatedCourse"}}
	ExamResource = ResourceSpec{Path: "/exam", Noun: "exam",
		ListKeys: []string{"examsData", "exams"}, CreateKeys: []string{"newExam"}, UpdateKeys: []string{"updatedExam"}}
	FeeResource = ResourceSpec{Path: "/fee", Noun: "fee",
		ListKeys: []string{"feesData", "fees"}, CreateKeys: []string{"newFee"}, UpdateKeys: []string{"updatedFee"}}
	BookResource = ResourceSpec{Path: "/book", Noun: "book",
		ListKeys: []string{"booksData", "books"}, CreateKeys: []string{"newBook"}, UpdateKeys: []string{"updatedBook"}}
	BorrowResource = ResourceSpec{Path: "/borrow", Noun: "borrow record",
		ListKeys: []string{"borrowsData", "borrows"}, CreateKeys: []string{"newBorrow"}, UpdateKeys: []string{"updatedBorrow"}}
	EventResource = ResourceSpec{Path: "/event", Noun: "event",
		ListKeys: []string{"events", "eventsData"}, CreateKeys: []string{"newEvent"}, UpdateKeys: []string{"updatedEvent"}}
	UserResource = ResourceSpec{Path: "/users", Noun: "user",
		ListKeys: []string{"usersData", "users"}, CreateKeys: []string{"newUser"}, UpdateKeys: []string{"updatedUser"}}
	MessageResource = ResourceSpec{Path: "/message", Noun: "message",
		ListKeys: []string{"messages", "messagesData"}, CreateKeys: []string{"newMessage"}}
	AttendanceResource = ResourceSpec{Path: "/attendance", Noun: "attendance",
		ListKeys: []string{"attendanceData", "attendance"}}
)

// Resource is the backend-backed store of one entity kind, bound to the
// credential of the session that owns it.
type Resource[T any] struct {
	client *apiclient.Client
	spec   ResourceSpec
	token  string
}

// NewResource binds spec to client using token for authentication.
func NewResource[T any](client *apiclient.Client, spec ResourceSpec, token string) *Resource[T] {
	return &Resource[T]{client: client, spec: spec, token: token}
}

// Spec returns the resource conventions.
func (r *Resource[T]) Spec() ResourceSpec { return r.spec }

// List fetches the whole collection.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	return r.ListAt(ctx, r.spec.Path, nil, r.spec.ListKeys...)
}

// ListAt fetches a collection served under a nested path.
func (r *Resource[T]) ListAt(ctx context.Context, path string, query url.Values, keys ...string) ([]T, error) {
	resp, err := r.client.Do(ctx, apiclient.Request{
		Method:   http.MethodGet,
		Route:    routeOf(path),
		Path:     path,
		Query:    query,
		Token:    r.token,
		Fallback: "Failed to load " + r.spec.Noun + " list",
	})
	if err != nil {
		return nil, err
	}
	return apiclient.DecodeList[T](resp.Body, keys...)
}

// Create posts a draft. The bool reports whether the stored record was echoed.
func (r *Resource[T]) Create(ctx context.Context, draft T, attachment *models.Attachment) (T, bool, error) {
	return r.send(ctx, http.MethodPost, r.spec.Path, r.spec.Path, draft, attachment, "Failed to create "+r.spec.Noun, r.spec.CreateKeys)
}

// Update replaces the record identified by id.
func (r *Resource[T]) Update(ctx context.Context, id string, draft T, attachment *models.Attachment) (T, bool, error) {
	return r.send(ctx, http.MethodPut, r.itemPath(id), r.spec.Path+"/:id", draft, attachment, "Failed to update "+r.spec.Noun, r.spec.UpdateKeys)
}

// Delete removes the record identified by id.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	_, err := r.client.Do(ctx, apiclient.Request{
		Method:   http.MethodDelete,
		Route:    r.spec.Path + "/:id",
		Path:     r.itemPath(id),
		Token:    r.token,
		Fallback: "Failed to delete " + r.spec.Noun,
	})
	return err
}

// Post sends body to a nested route and decodes the echoed record.
func (r *Resource[T]) Post(ctx context.Context, path string, body interface{}, keys ...string) (T, bool, error) {
	return r.send(ctx, http.MethodPost, path, routeOf(path), body, nil, "Failed to update "+r.spec.Noun, keys)
}

// Remove issues a DELETE on a nested route and decodes the echoed record.
func (r *Resource[T]) Remove(ctx context.Context, path string, keys ...string) (T, bool, error) {
	return r.send(ctx, http.MethodDelete, path, routeOf(path), nil, nil, "Failed to update "+r.spec.Noun, keys)
}

func (r *Resource[T]) send(ctx context.Context, method, path, route string, body interface{}, attachment *models.Attachment, fallback string, keys []string) (T, bool, error) {
	var zero T
	resp, err := r.client.Do(ctx, apiclient.Request{
		Method:     method,
		Route:      route,
		Path:       path,
		Token:      r.token,
		Body:       body,
		Attachment: attachment,
		Fallback:   fallback,
	})
	if err != nil {
		return zero, false, err
	}
	return apiclient.DecodeRecord[T](resp.Body, keys...)
}

func (r *Resource[T]) itemPath(id string) string {
	return r.spec.Path + "/" + url.PathEscape(id)
}

// routeOf collapses id-like path segments so metrics labels stay bounded.
func routeOf(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if i > 0 && !isStaticSegment(p) {
			parts[i] = ":id"
		}
	}
	return "/" + strings.Join(parts, "/")
}

func isStaticSegment(p string) bool {
	switch p {
	case "results", "semester", "semesters", "subject", "subjects", "return", "pay":
		return true
	}
	return false
}
