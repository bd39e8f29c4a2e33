package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const studentsPayload = `{"studentData":[
	{"_id":"s1","username":"ana","firstName":"Ana","lastName":"Lima","email":"ana@x.io","department":"Science","semester":2},
	{"_id":"s2","username":"bo","firstName":"Bo","lastName":"Chen","email":"bo@x.io"}
]}`

func TestLoginRefusedLeavesNoCookie(t *testing.T) {
	p := newPortal(t)
	p.backend.on(http.MethodPost, "/user/login", http.StatusUnauthorized, `{"msg":"Invalid credentials"}`)

	w := p.do(http.MethodPost, "/auth/login", `{"username":"admin","password":"nope"}`, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Invalid credentials", env.Error.Message)
	assert.Nil(t, env.Meta)
	assert.Empty(t, w.Result().Cookies())
	assert.Zero(t, p.registry.Len())
}

func TestLoginSetsCookieAndRedirects(t *testing.T) {
	p := newPortal(t)
	p.signIn(t)
	assert.True(t, p.cookie.HttpOnly)
	assert.Zero(t, p.cookie.MaxAge)
	assert.NotContains(t, p.cookie.Value, "backend-token")

	w := p.do(http.MethodGet, "/auth/login", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, HomePath, decode(t, w).Meta["redirect"])
}

func TestDashboardRequiresSession(t *testing.T) {
	p := newPortal(t)

	w := p.do(http.MethodGet, "/dashboard/admin", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/auth/login", decode(t, w).Meta["redirect"])

	w = p.do(http.MethodGet, "/dashboard/admin", "", http.Header{"Accept": {"text/html"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login", w.Header().Get("Location"))
}

func TestLogoutEndsSession(t *testing.T) {
	p := newPortal(t)
	p.signIn(t)
	p.backend.on(http.MethodGet, "/student", http.StatusOK, studentsPayload)
	require.Equal(t, http.StatusOK, p.do(http.MethodGet, "/dashboard/students", "", nil).Code)
	require.Equal(t, 1, p.registry.Len())

	w := p.do(http.MethodPost, "/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, p.registry.Len())
	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Negative(t, cleared[0].MaxAge)

	assert.Equal(t, http.StatusUnauthorized, p.do(http.MethodGet, "/dashboard/students", "", nil).Code)
}

func TestStudentListSearchAndForm(t *testing.T) {
	p := newPortal(t)
	p.signIn(t)
	p.backend.on(http.MethodGet, "/student", http.StatusOK, studentsPayload)

	w := p.do(http.MethodGet, "/dashboard/students?q=BO", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "s2", rows[0]["_id"])
	assert.Equal(t, "N/A", rows[0]["department"])

	w = p.do(http.MethodGet, "/dashboard/students/s2/form", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("ETag"))
	var payload struct {
		Record   map[string]interface{} `json:"record"`
		Revision uint64                 `json:"revision"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &payload))
	assert.Equal(t, "", payload.Record["department"])
	assert.Equal(t, `"`+strconv.FormatUint(payload.Revision, 10)+`"`, w.Header().Get("ETag"))
}

func TestUpdateWithStaleRevisionIsRefused(t *testing.T) {
	p := newPortal(t)
	p.signIn(t)
	p.backend.on(http.MethodGet, "/student", http.StatusOK, studentsPayload)
	p.backend.on(http.MethodPut, "/student/s1", http.StatusOK, `{"msg":"ok"}`)
	body := `{"username":"ana","email":"ana@x.io","firstName":"Ana","lastName":"Lima"}`

	require.Equal(t, http.StatusOK, p.do(http.MethodGet, "/dashboard/students/s1/form", "", nil).Code)

	w := p.do(http.MethodPut, "/dashboard/students/s1", body, http.Header{"If-Match": {`"999"`}})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "STALE_REVISION", decode(t, w).Error.Code)
	assert.Zero(t, p.backend.count(http.MethodPut, "/student/s1"))

	w = p.do(http.MethodPut, "/dashboard/students/s1", body, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, p.backend.count(http.MethodPut, "/student/s1"))
}

func TestFeeWithZeroAmountNeverReachesBackend(t *testing.T) {
	p := newPortal(t)
	p.signIn(t)
	p.backend.on(http.MethodGet, "/fee", http.StatusOK, `{"feesData":[]}`)

	w := p.do(http.MethodPost, "/dashboard/fees", `{"student_id":"s1","amount":0,"due_date":"2025-06-30"}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Amount must be greater than zero", decode(t, w).Error.Message)
	assert.Zero(t, p.backend.count(http.MethodPost, "/fee"))
}

func TestFeeStatusFilterRejectsUnknownStatus(t *testing.T) {
	p := newPortal(t)
	p.signIn(t)
	p.backend.on(http.MethodGet, "/fee", http.StatusOK,
		`{"feesData":[{"_id":"f1","student_id":"s1","amount":10,"due_date":"2025-06-01","status":"Paid"}]}`)

	w := p.do(http.MethodGet, "/dashboard/fees?status=Paid", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &rows))
	assert.Len(t, rows, 1)

	assert.Equal(t, http.StatusBadRequest, p.do(http.MethodGet, "/dashboard/fees?status=Overdue", "", nil).Code)
}

func TestBorrowedBookDeleteSurfacesNotice(t *testing.T) {
	p := newPortal(t)
	p.signIn(t)
	p.backend.on(http.MethodGet, "/book", http.StatusOK,
		`{"booksData":[{"_id":"b1","title":"Dune","author":"Herbert","isbn":"1","status":"Borrowed"}]}`)
	p.backend.on(http.MethodGet, "/borrow", http.StatusOK,
		`{"borrowsData":[{"_id":"r1","book_id":"b1","student_id":"s1","borrow_date":"2025-06-01"}]}`)

	w := p.do(http.MethodDelete, "/dashboard/library/books/b1", "", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	env := decode(t, w)
	require.Len(t, env.Notices, 1)
	assert.Equal(t, "Cannot delete a borrowed book.", env.Notices[0].Message)
	assert.Zero(t, p.backend.count(http.MethodDelete, "/book/b1"))

	w = p.do(http.MethodDelete, "/dashboard/notices/library/"+env.Notices[0].ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w).Notices)
}

func TestFailedListLoadIsANoticeNotAnError(t *testing.T) {
	p := newPortal(t)
	p.signIn(t)
	p.backend.on(http.MethodGet, "/teacher", http.StatusInternalServerError, `{"mes":"Teachers unavailable"}`)

	w := p.do(http.MethodGet, "/dashboard/teachers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.JSONEq(t, `[]`, string(env.Data))
	require.Len(t, env.Notices, 1)
	assert.Equal(t, "Teachers unavailable", env.Notices[0].Message)
}

func TestAttendanceReportThroughRouter(t *testing.T) {
	p := newPortal(t)
	p.signIn(t)
	p.backend.on(http.MethodGet, "/student", http.StatusOK, studentsPayload)
	p.backend.on(http.MethodGet, "/attendance", http.StatusOK, `{"attendanceData":[
		{"_id":"a1","student_id":"s1","date":"2025-05-31","status":"Present"},
		{"_id":"a2","student_id":"s1","date":"2025-06-01","status":"Absent"},
		{"_id":"a3","student_id":"s1","date":"2025-06-10","status":"Late"},
		{"_id":"a4","student_id":"s1","date":"2025-06-11","status":"Present"}
	]}`)

	w := p.do(http.MethodPost, "/dashboard/reports",
		`{"type":"Attendance","start_date":"2025-06-01","end_date":"2025-06-10"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var report struct {
		ID   string `json:"report_id"`
		Data []struct {
			Date string `json:"date"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &report))
	require.Len(t, report.Data, 2)
	for _, row := range report.Data {
		assert.GreaterOrEqual(t, row.Date, "2025-06-01")
		assert.LessOrEqual(t, row.Date, "2025-06-10")
	}

	w = p.do(http.MethodGet, "/dashboard/reports/"+report.ID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = p.do(http.MethodGet, "/dashboard/reports/exports/download?token=forged", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestRevisionSources(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		target string
		header string
		want   uint64
		fail   bool
	}{
		{name: "none", target: "/x"},
		{name: "strong etag", target: "/x", header: `"4"`, want: 4},
		{name: "weak etag", target: "/x", header: `W/"5"`, want: 5},
		{name: "query", target: "/x?revision=6", want: 6},
		{name: "wildcard falls back to query", target: "/x?revision=7", header: "*", want: 7},
		{name: "garbage", target: "/x?revision=abc", fail: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPut, tc.target, nil)
			if tc.header != "" {
				c.Request.Header.Set("If-Match", tc.header)
			}
			got, err := requestRevision(c)
			if tc.fail {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExpandJSONList(t *testing.T) {
	assert.Equal(t, []string{"BSc", "MSc"}, expandJSONList([]string{`["BSc","MSc"]`}))
	assert.Equal(t, []string{"BSc", "MSc"}, expandJSONList([]string{"BSc", "MSc"}))
	assert.Equal(t, []string{"[broken"}, expandJSONList([]string{"[broken"}))
	assert.Nil(t, expandJSONList(nil))
}
