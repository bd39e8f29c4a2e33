package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal/internal/apiclient"
	"github.com/noah-isme/school-portal/internal/repository"
	"github.com/noah-isme/school-portal/internal/service"
	"github.com/noah-isme/school-portal/internal/session"
	"github.com/noah-isme/school-portal/pkg/storage"
)

type stubBackend struct {
	mu     sync.Mutex
	routes map[string]string
	status map[string]int
	calls  map[string]int
	bodies map[string]string
	srv    *httptest.Server
}

func newStubBackend(t *testing.T) *stubBackend {
	t.Helper()
	b := &stubBackend{
		routes: make(map[string]string),
		status: make(map[string]int),
		calls:  make(map[string]int),
		bodies: make(map[string]string),
	}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.calls[key]++
		b.bodies[key] = string(body)
		payload, ok := b.routes[key]
		status := b.status[key]
		b.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"msg":"Not found"}`))
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *stubBackend) on(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = body
	b.status[method+" "+path] = status
}

func (b *stubBackend) count(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method+" "+path]
}

func (b *stubBackend) body(method, path string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[method+" "+path]
}

type portal struct {
	backend  *stubBackend
	registry *service.WorkspaceRegistry
	router   *gin.Engine
	cookie   *http.Cookie
}

func newPortal(t *testing.T) *portal {
	t.Helper()
	gin.SetMode(gin.TestMode)
	b := newStubBackend(t)
	client := apiclient.New(apiclient.Options{BaseURL: b.srv.URL, Timeout: 5 * time.Second})

	guard := session.NewGuard(session.Config{Secret: "handler-secret", DurableTTL: time.Hour},
		session.NewMemoryStore(), session.NewMemoryStore(), nil)
	registry := service.NewWorkspaceRegistry(client, nil, nil, nil, nil)
	audit := service.NewAuditService(nil, nil)
	accounts := repository.NewAccountRepository(client)
	attendance := service.NewAttendanceService(nil, nil)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	reports := service.NewReportService(attendance, nil, store, storage.NewDownloadSigner("dl-secret", time.Hour),
		nil, nil, service.ReportConfig{Workers: 1})

	h := &Handlers{
		Auth:       NewAuthHandler(service.NewAuthService(accounts, guard, registry, audit, nil, nil), guard),
		Admin:      NewAdminHandler(service.NewAdminService(nil)),
		Notices:    NewNoticeHandler(),
		Students:   NewStudentHandler(service.NewStudentService(nil)),
		Teachers:   NewTeacherHandler(service.NewTeacherService(nil)),
		Courses:    NewCourseHandler(service.NewCourseService(nil, nil)),
		Exams:      NewExamHandler(service.NewExamService(nil)),
		Fees:       NewFeeHandler(service.NewFeeService(nil)),
		Library:    NewLibraryHandler(service.NewLibraryService(nil)),
		Attendance: NewAttendanceHandler(attendance),
		Scheduler:  NewSchedulerHandler(service.NewSchedulerService(nil)),
		Parent:     NewParentHandler(service.NewParentService(attendance, nil)),
		Reports:    NewReportHandler(reports),
		Settings:   NewSettingsHandler(service.NewSettingsService(audit, nil, nil)),
		Profile:    NewProfileHandler(service.NewProfileService(accounts, guard, nil, nil)),
	}

	r := gin.New()
	h.Register(r, guard, registry, audit)
	return &portal{backend: b, registry: registry, router: r}
}

const loginReply = `{"token":"backend-token","_id":"u1","username":"admin","userType":"admin","email":"a@x.io"}`

// signIn logs in through the router and keeps the session cookie.
func (p *portal) signIn(t *testing.T) {
	t.Helper()
	p.backend.on(http.MethodPost, "/user/login", http.StatusOK, loginReply)
	w := p.do(http.MethodPost, "/auth/login", `{"username":"admin","password":"pw"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == "portal_session" {
			p.cookie = c
		}
	}
	require.NotNil(t, p.cookie)
}

func (p *portal) do(method, path, body string, header http.Header) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if p.cookie != nil {
		req.AddCookie(p.cookie)
	}
	w := httptest.NewRecorder()
	p.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Notices []struct {
		ID      string `json:"id"`
		Level   string `json:"level"`
		Message string `json:"message"`
	} `json:"notices"`
	Meta map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}
