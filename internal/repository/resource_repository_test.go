package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal/internal/apiclient"
	"github.com/noah-isme/school-portal/internal/models"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return apiclient.New(apiclient.Options{BaseURL: srv.URL})
}

func TestResourceListUsesToken(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/book", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"books":[{"_id":"b1","title":"Dune","author":"Herbert","isbn":"1","status":"Available"}]}`))
	})

	books, err := NewResource[models.Book](client, BookResource, "tok").List(context.Background())

	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, models.BookAvailable, books[0].Status)
}

func TestResourceCreateDecodesEcho(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, hasID := body["_id"]
		assert.False(t, hasID)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"newExam":{"_id":"e1","exam_name":"Midterm","course_id":"c1","date":"2025-06-05","max_marks":100}}`))
	})

	exam, echoed, err := NewResource[models.Exam](client, ExamResource, "tok").Create(context.Background(), models.Exam{ExamName: "Midterm", CourseID: "c1", Date: "2025-06-05", MaxMarks: 100}, nil)

	require.NoError(t, err)
	assert.True(t, echoed)
	assert.Equal(t, "e1", exam.ID)
}

func TestResourceUpdateAcceptsEitherKey(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/student/s%201", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"updated_student":{"_id":"s 1","username":"amy"}}`))
	})

	s, echoed, err := NewResource[models.Student](client, StudentResource, "tok").Update(context.Background(), "s 1", models.Student{Username: "amy"}, nil)

	require.NoError(t, err)
	assert.True(t, echoed)
	assert.Equal(t, "amy", s.Username)
}

func TestResourceDeleteSurfacesBackendMessage(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"mes":"Fee not found"}`))
	})

	err := NewResource[models.Fee](client, FeeResource, "tok").Delete(context.Background(), "f1")

	require.Error(t, err)
	assert.Equal(t, "Fee not found", appErrors.FromError(err).Message)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestResourceListShapeError(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"teacher":"oops"}`))
	})

	_, err := NewResource[models.Teacher](client, TeacherResource, "tok").List(context.Background())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrShape.Code))
}

func TestRouteOfCollapsesIDs(t *testing.T) {
	assert.Equal(t, "/course/:id/semesters/:id/subjects", routeOf("/course/abc/semesters/2/subjects"))
	assert.Equal(t, "/exam/:id/results", routeOf("/exam/e1/results"))
	assert.Equal(t, "/student", routeOf("/student"))
}
