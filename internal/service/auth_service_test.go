package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/repository"
	"github.com/noah-isme/school-portal/internal/session"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

type auditStoreMock struct {
	mu      sync.Mutex
	entries []models.AuditLog
	err     error
}

func (m *auditStoreMock) Create(_ context.Context, log *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, *log)
	return nil
}

func (m *auditStoreMock) List(_ context.Context, _ models.AuditFilter) ([]models.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.AuditLog(nil), m.entries...), m.err
}

type authFixture struct {
	backend  *fakeBackend
	memory   *session.MemoryStore
	redis    *miniredis.Miniredis
	guard    *session.Guard
	registry *WorkspaceRegistry
	audit    *auditStoreMock
	svc      *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	b := newFakeBackend(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	memory := session.NewMemoryStore()
	guard := session.NewGuard(session.Config{Secret: "test-secret", DurableTTL: time.Hour},
		memory, repository.NewSessionRepository(client, time.Hour), nil)
	registry := newTestRegistry(t, b)
	store := &auditStoreMock{}
	svc := NewAuthService(repository.NewAccountRepository(b.client()), guard, registry,
		NewAuditService(store, nil), nil, nil)
	return &authFixture{backend: b, memory: memory, redis: mr, guard: guard, registry: registry, audit: store, svc: svc}
}

const loginReply = `{"token":"backend-token","_id":"u1","username":"admin","userType":"admin","email":"a@x.io","phone":"1"}`

func TestLoginInvalidCredentialsPersistsNothing(t *testing.T) {
	f := newAuthFixture(t)
	f.backend.on(http.MethodPost, "/user/login", http.StatusUnauthorized, `{"msg":"Invalid credentials"}`)

	sess, cookie, err := f.svc.Login(context.Background(),
		models.LoginRequest{Username: "admin", Password: "nope"}, RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", appErrors.FromError(err).Message)
	assert.Nil(t, sess)
	assert.Empty(t, cookie)
	assert.Zero(t, f.memory.Len())
	assert.Empty(t, f.redis.Keys())
	assert.Empty(t, f.audit.entries)
}

func TestLoginValidatesBeforeCallingBackend(t *testing.T) {
	f := newAuthFixture(t)

	_, _, err := f.svc.Login(context.Background(), models.LoginRequest{Username: "  "}, RequestMeta{})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	assert.Zero(t, f.backend.count(http.MethodPost, "/user/login"))
}

func TestLoginOpensSessionScope(t *testing.T) {
	f := newAuthFixture(t)
	f.backend.on(http.MethodPost, "/user/login", http.StatusOK, loginReply)

	sess, cookie, err := f.svc.Login(context.Background(),
		models.LoginRequest{Username: "admin", Password: "pw"}, RequestMeta{RequestID: "req-1"})
	require.NoError(t, err)
	assert.Equal(t, models.ScopeSession, sess.Scope)
	assert.Equal(t, "backend-token", sess.Token)
	assert.NotContains(t, cookie, "backend-token")
	assert.Equal(t, 1, f.memory.Len())
	assert.Empty(t, f.redis.Keys())

	resolved, err := f.guard.Resolve(context.Background(), cookie)
	require.NoError(t, err)
	assert.Equal(t, "admin", resolved.User.Username)

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, models.AuditActionLogin, f.audit.entries[0].Action)
	assert.Equal(t, "req-1", f.audit.entries[0].RequestID)
}

func TestLoginRememberUsesDurableScope(t *testing.T) {
	f := newAuthFixture(t)
	f.backend.on(http.MethodPost, "/user/login", http.StatusOK, loginReply)

	sess, _, err := f.svc.Login(context.Background(),
		models.LoginRequest{Username: "admin", Password: "pw", Remember: true}, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.ScopeDurable, sess.Scope)
	assert.Zero(t, f.memory.Len())
	assert.True(t, f.redis.Exists("portal:session:"+sess.ID))
}

func TestLoginWithoutTokenIsShapeError(t *testing.T) {
	f := newAuthFixture(t)
	f.backend.on(http.MethodPost, "/user/login", http.StatusOK, `{"username":"admin"}`)

	_, _, err := f.svc.Login(context.Background(),
		models.LoginRequest{Username: "admin", Password: "pw"}, RequestMeta{})
	require.Error(t, err)
	assert.Zero(t, f.memory.Len())
}

func TestLogoutClearsScopesAndWorkspace(t *testing.T) {
	f := newAuthFixture(t)
	f.backend.on(http.MethodPost, "/user/login", http.StatusOK, loginReply)
	ctx := context.Background()

	sess, cookie, err := f.svc.Login(ctx, models.LoginRequest{Username: "admin", Password: "pw", Remember: true}, RequestMeta{})
	require.NoError(t, err)
	f.registry.Get(sess)
	require.Equal(t, 1, f.registry.Len())

	require.NoError(t, f.svc.Logout(ctx, cookie, RequestMeta{}))
	assert.False(t, f.redis.Exists("portal:session:"+sess.ID))
	assert.Zero(t, f.registry.Len())
	_, err = f.guard.Resolve(ctx, cookie)
	assert.Error(t, err)

	require.Len(t, f.audit.entries, 2)
	assert.Equal(t, models.AuditActionLogout, f.audit.entries[1].Action)
	require.NotNil(t, f.audit.entries[1].UserID)
	assert.Equal(t, "u1", *f.audit.entries[1].UserID)

	assert.NoError(t, f.svc.Logout(ctx, "garbage", RequestMeta{}))
}

func TestSignupDefaultsUserType(t *testing.T) {
	f := newAuthFixture(t)
	f.backend.on(http.MethodPost, "/user/signup", http.StatusCreated, `{"msg":"User created"}`)
	req := models.SignupRequest{
		Username: "neo", Email: "neo@x.io", Phone: "555",
		Password: "secret", ConfirmPassword: "secret", UserType: "admin",
	}

	require.NoError(t, f.svc.Signup(context.Background(), req))
	body := f.backend.body(http.MethodPost, "/user/signup")
	assert.Contains(t, body, `"userType":"user"`)
	assert.NotContains(t, body, "confirmPassword")

	req.ConfirmPassword = "other"
	err := f.svc.Signup(context.Background(), req)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	assert.Equal(t, 1, f.backend.count(http.MethodPost, "/user/signup"))
}

func TestAuditServiceDisabled(t *testing.T) {
	svc := NewAuditService(nil, nil)
	assert.False(t, svc.Enabled())
	svc.Record(context.Background(), models.AuditLog{Action: models.AuditActionLogin}, RequestMeta{})
	logs, err := svc.List(context.Background(), models.AuditFilter{})
	require.NoError(t, err)
	assert.Empty(t, logs)
}
