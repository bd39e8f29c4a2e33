package service

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal/internal/apiclient"
	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/repository"
)

// fakeBackend is a scripted backend keyed by "METHOD /path".
type fakeBackend struct {
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  map[string]int
	bodies map[string]string
	srv    *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{
		routes: make(map[string]http.HandlerFunc),
		calls:  make(map[string]int),
		bodies: make(map[string]string),
	}
	b.srv = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.calls[key]++
	b.bodies[key] = string(body)
	fn, ok := b.routes[key]
	b.mu.Unlock()
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"msg":"Not found"}`))
		return
	}
	fn(w, r)
}

func (b *fakeBackend) on(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func (b *fakeBackend) count(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method+" "+path]
}

func (b *fakeBackend) body(method, path string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[method+" "+path]
}

func (b *fakeBackend) client() *apiclient.Client {
	return apiclient.New(apiclient.Options{BaseURL: b.srv.URL, Timeout: 5 * time.Second})
}

func newTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheService(repository.NewCacheRepository(client), nil, time.Minute, nil, true), mr
}

func newTestRegistry(t *testing.T, b *fakeBackend) *WorkspaceRegistry {
	t.Helper()
	cache, _ := newTestCache(t)
	return NewWorkspaceRegistry(b.client(), cache, nil, nil, nil)
}

func testSession() *models.Session {
	return &models.Session{
		ID:    "sess-1",
		Token: "tok",
		User:  models.UserProfile{ID: "u1", Username: "admin", UserType: "admin"},
		Scope: models.ScopeSession,
	}
}

func newTestWorkspace(t *testing.T, b *fakeBackend) *Workspace {
	t.Helper()
	ws := newTestRegistry(t, b).Get(testSession())
	require.NotNil(t, ws)
	return ws
}

func juneClock() time.Time {
	return time.Date(2025, time.June, 12, 9, 0, 0, 0, time.UTC)
}
