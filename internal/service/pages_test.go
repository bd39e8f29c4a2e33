package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal/internal/controller"
	"github.com/noah-isme/school-portal/internal/models"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

func TestAdminSummaryCounts(t *testing.T) {
	b := newFakeBackend(t)
	b.on(http.MethodGet, "/student", http.StatusOK, studentsPayload)
	b.on(http.MethodGet, "/teacher", http.StatusInternalServerError, `{"mes":"Teachers unavailable"}`)
	ws := newTestWorkspace(t, b)

	summary := NewAdminService(nil).Summary(context.Background(), ws)
	assert.Equal(t, AdminSummary{Students: 2, Teachers: 0}, summary)
	require.Len(t, ws.Notices.List(PageTeachers), 1)
}

func TestStudentSearchByUsername(t *testing.T) {
	b := newFakeBackend(t)
	b.on(http.MethodGet, "/student", http.StatusOK, studentsPayload)
	ws := newTestWorkspace(t, b)

	rows := NewStudentService(nil).Rows(context.Background(), ws, "AN")
	require.Len(t, rows, 1)
	assert.Equal(t, "s1", rows[0].ID)
}

func TestAttendanceSheetFlow(t *testing.T) {
	b := newFakeBackend(t)
	b.on(http.MethodGet, "/student", http.StatusOK, studentsPayload)
	b.on(http.MethodPost, "/attendance", http.StatusOK, `{"msg":"Attendance saved"}`)
	ws := newTestWorkspace(t, b)
	svc := NewAttendanceService(nil, nil)
	svc.now = juneClock
	ctx := context.Background()

	err := svc.SaveSheet(ctx, ws, "")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))

	sheet, err := svc.LoadSheet(ctx, ws, "Science", "2")
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, models.AttendancePresent, sheet.Rows[0].Status)

	_, err = svc.SetStatus(ws, "s1", models.AttendanceStatus("Sick"))
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	sheet, err = svc.SetStatus(ws, "s1", models.AttendanceExcused)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceExcused, sheet.Rows[0].Status)

	require.NoError(t, svc.SaveSheet(ctx, ws, ""))
	var posted models.AttendanceSubmission
	require.NoError(t, json.Unmarshal([]byte(b.body(http.MethodPost, "/attendance")), &posted))
	assert.Equal(t, "Science", posted.Department)
	assert.Equal(t, "2", posted.Semester)
	assert.Equal(t, "2025-06-12", posted.Date)
	require.Len(t, posted.Attendance, 1)
	assert.Equal(t, models.AttendanceExcused, posted.Attendance[0].Status)

	notices := ws.Notices.List(PageAttendance)
	require.Len(t, notices, 1)
	assert.Equal(t, "Attendance saved successfully!", notices[0].Message)
}

func TestCourseSemesterAppliedAsUpdate(t *testing.T) {
	b := newFakeBackend(t)
	b.on(http.MethodGet, "/course", http.StatusOK, `{"courses":[{"_id":"c1","title":"Science","semesters":[]}]}`)
	b.on(http.MethodPost, "/course/c1/semesters", http.StatusOK,
		`{"updatedCourse":{"_id":"c1","title":"Science","semesters":[{"number":1,"subjects":[]}]}}`)
	ws := newTestWorkspace(t, b)
	svc := NewCourseService(nil, nil)
	ctx := context.Background()

	course, err := svc.AddSemester(ctx, ws, "c1", 1)
	require.NoError(t, err)
	require.Len(t, course.Semesters, 1)
	assert.Equal(t, 1, ws.Courses.Len())
	assert.Equal(t, 1, b.count(http.MethodGet, "/course"))

	_, err = svc.AddSemester(ctx, ws, "c1", 1)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict.Code))

	_, err = svc.DeleteSubject(ctx, ws, "c1", 1, 0)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}

func TestExamResultsFailureYieldsEmptyList(t *testing.T) {
	b := newFakeBackend(t)
	b.on(http.MethodGet, "/exam", http.StatusOK,
		`{"examsData":[{"_id":"e1","exam_name":"Midterm","course_id":"c1","date":"2025-06-05","max_marks":100}]}`)
	b.on(http.MethodGet, "/exam/e1/results", http.StatusBadGateway, `{"msg":"Results offline"}`)
	ws := newTestWorkspace(t, b)
	svc := NewExamService(nil)

	results, err := svc.Results(context.Background(), ws, "e1")
	require.NoError(t, err)
	assert.Empty(t, results)
	require.Len(t, ws.Notices.List(PageExams), 1)
	assert.Equal(t, 100, svc.NewDraft().MaxMarks)
}

func TestParentOverviewFiltersInclusively(t *testing.T) {
	b := reportBackend(t)
	b.on(http.MethodGet, "/exam", http.StatusOK,
		`{"examsData":[{"_id":"e1","exam_name":"Midterm","course_id":"c1","date":"2025-06-10","max_marks":100}]}`)
	b.on(http.MethodGet, "/exam/e1/results", http.StatusOK,
		`{"results":[{"student_id":"s1","student_name":"Ana Lima","marks":88,"grade":"A"},{"student_id":"s2","marks":51,"grade":"C"}]}`)
	b.on(http.MethodGet, "/fee", http.StatusOK, feesPayload)
	ws := newTestWorkspace(t, b)
	svc := NewParentService(NewAttendanceService(nil, nil), nil)

	overview, err := svc.Overview(context.Background(), ws, "s1", "2025-06-01", "2025-06-10")
	require.NoError(t, err)
	assert.Equal(t, "Ana", overview.Student.FirstName)
	assert.Len(t, overview.Attendance, 2)
	require.Len(t, overview.Exams, 1)
	assert.Equal(t, "Midterm", overview.Exams[0].ExamName)
	require.Len(t, overview.Fees, 1)
	assert.Equal(t, "s1", overview.Fees[0].StudentID)

	all, err := svc.Overview(context.Background(), ws, "s1", "", "")
	require.NoError(t, err)
	assert.Len(t, all.Attendance, 4)

	_, err = svc.Overview(context.Background(), ws, "s1", "2025-06-10", "2025-06-01")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	_, err = svc.Overview(context.Background(), ws, "ghost", "", "")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}

func TestParentSendMessage(t *testing.T) {
	b := newFakeBackend(t)
	b.on(http.MethodGet, "/message", http.StatusOK, `{"messages":[]}`)
	b.on(http.MethodPost, "/message", http.StatusCreated,
		`{"newMessage":{"_id":"m1","sender":"u1","recipient":"t1","content":"Hello","timestamp":"2025-06-12T09:00:00Z"}}`)
	ws := newTestWorkspace(t, b)
	svc := NewParentService(NewAttendanceService(nil, nil), nil)
	ctx := context.Background()

	_, err := svc.Send(ctx, ws, models.Message{Content: "Hello"})
	require.Error(t, err)
	assert.Equal(t, "Teacher is required", err.Error())

	_, err = svc.Send(ctx, ws, models.Message{Recipient: "t1", Content: "   "})
	require.Error(t, err)
	assert.Zero(t, b.count(http.MethodPost, "/message"))

	msg, err := svc.Send(ctx, ws, models.Message{Recipient: "t1", Content: " Hello "})
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
	assert.Contains(t, b.body(http.MethodPost, "/message"), `"sender":"u1"`)
	assert.Len(t, svc.Messages(ctx, ws, "t1"), 1)
	assert.Empty(t, svc.Messages(ctx, ws, "t2"))

	notices := ws.Notices.List(PageParent)
	require.Len(t, notices, 1)
	assert.Equal(t, "Message sent successfully!", notices[0].Message)
}

func TestSchedulerServiceCreateUsesDefaultColours(t *testing.T) {
	b := newFakeBackend(t)
	b.on(http.MethodGet, "/event", http.StatusOK, `{"events":[]}`)
	b.on(http.MethodPost, "/event", http.StatusCreated, `{"msg":"created"}`)
	ws := newTestWorkspace(t, b)
	svc := NewSchedulerService(nil)
	start := time.Date(2025, time.June, 12, 9, 0, 0, 0, time.UTC)

	_, err := svc.Create(context.Background(), ws, models.Event{Title: "Assembly", Start: start, End: start.Add(time.Hour)}, nil)
	require.NoError(t, err)
	body := b.body(http.MethodPost, "/event")
	assert.Contains(t, body, controller.DefaultEventColor)
	assert.Contains(t, body, controller.DefaultEventTextColor)
}

func TestSchedulerServiceNavigation(t *testing.T) {
	b := newFakeBackend(t)
	b.on(http.MethodGet, "/event", http.StatusOK, `{"events":[]}`)
	ws := newTestWorkspace(t, b)
	svc := NewSchedulerService(nil)

	view, err := svc.SetView(context.Background(), ws, controller.ViewDay)
	require.NoError(t, err)
	assert.Equal(t, controller.ViewDay, view.View)
	assert.Equal(t, view.RangeStart.Add(24*time.Hour), view.RangeEnd)

	_, err = svc.Navigate(context.Background(), ws, "sideways", time.Time{})
	assert.Error(t, err)
}

func TestSettingsSaveValidatesSession(t *testing.T) {
	b := newFakeBackend(t)
	b.on(http.MethodPut, "/settings", http.StatusOK, `{"msg":"saved"}`)
	ws := newTestWorkspace(t, b)
	svc := NewSettingsService(NewAuditService(&auditStoreMock{}, nil), nil, nil)
	ctx := context.Background()

	_, err := svc.SaveSettings(ctx, ws, models.SchoolSettings{SchoolName: "Hill High", SessionStart: "2025-12-01", SessionEnd: "2025-01-01"})
	require.Error(t, err)
	assert.Zero(t, b.count(http.MethodPut, "/settings"))

	stored, err := svc.SaveSettings(ctx, ws, models.SchoolSettings{SchoolName: "Hill High", SessionStart: "2025-01-06T00:00:00Z", SessionEnd: "2025-12-12"})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06", stored.SessionStart)
}

func TestSettingsUserPasswordOnlyOnCreate(t *testing.T) {
	b := newFakeBackend(t)
	b.on(http.MethodGet, "/users", http.StatusOK, `{"usersData":[{"_id":"u7","name":"Kim","email":"kim@x.io","role":"Teacher"}]}`)
	b.on(http.MethodPut, "/users/u7", http.StatusOK, `{"msg":"ok"}`)
	ws := newTestWorkspace(t, b)
	svc := NewSettingsService(nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, ws, models.User{Name: "Lee", Email: "lee@x.io", Role: models.RoleAdmin}, nil)
	require.Error(t, err)
	assert.Equal(t, "Password is required", appErrors.FromError(err).Message)

	user, revision, err := svc.Form(ctx, ws, "u7")
	require.NoError(t, err)
	user.Email = "kim@school.io"
	_, err = svc.Update(ctx, ws, "u7", revision, user, nil)
	require.NoError(t, err)
	assert.NotContains(t, b.body(http.MethodPut, "/users/u7"), "password")
}
