// Package session implements the portal's session guard: it persists the
// backend credential in one of two scopes and resolves signed cookies back
// to sessions.
package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal/internal/models"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

// Config controls cookie issuance.
type Config struct {
	Secret       string
	CookieName   string
	CookieSecure bool
	DurableTTL   time.Duration
}

// Guard opens, resolves and closes sessions.
type Guard struct {
	cfg     Config
	session Store
	durable Store
	logger  *zap.Logger
	now     func() time.Time
}

// NewGuard constructs a guard over the two scope stores.
func NewGuard(cfg Config, sessionStore, durableStore Store, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "portal_session"
	}
	return &Guard{cfg: cfg, session: sessionStore, durable: durableStore, logger: logger, now: time.Now}
}

// CookieName returns the name of the session cookie.
func (g *Guard) CookieName() string { return g.cfg.CookieName }

func (g *Guard) store(scope models.SessionScope) Store {
	if scope == models.ScopeDurable {
		return g.durable
	}
	return g.session
}

// Open persists a freshly authenticated session in the chosen scope and
// returns it with the signed cookie value naming it.
func (g *Guard) Open(ctx context.Context, login *models.LoginResult, remember bool) (*models.Session, string, error) {
	scope := models.ScopeSession
	if remember {
		scope = models.ScopeDurable
	}
	s := &models.Session{
		ID:        uuid.NewString(),
		Token:     login.Token,
		User:      login.UserProfile,
		Scope:     scope,
		CreatedAt: g.now().UTC(),
	}
	signed, err := g.sign(s)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign session")
	}
	if err := g.store(scope).Save(ctx, s); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}
	return s, signed, nil
}

// Resolve maps a cookie value to its session: the session scope is checked
// first, then the durable one. Anything missing or forged is UNAUTHORIZED.
func (g *Guard) Resolve(ctx context.Context, cookie string) (*models.Session, error) {
	if cookie == "" {
		return nil, appErrors.ErrUnauthorized
	}
	claims, err := g.parse(cookie)
	if err != nil {
		return nil, err
	}
	for _, store := range []Store{g.session, g.durable} {
		s, err := store.Get(ctx, claims.SessionID)
		if err != nil {
			g.logger.Warn("session lookup failed", zap.String("scope", string(claims.Scope)), zap.Error(err))
			continue
		}
		if s != nil && s.Token != "" {
			return s, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session not found")
}

// Refresh rewrites the session in the scope it already lives in, e.g. after
// a profile update changed the user snapshot.
func (g *Guard) Refresh(ctx context.Context, s *models.Session) error {
	if err := g.store(s.Scope).Save(ctx, s); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}
	return nil
}

// Close clears the session from both scopes unconditionally.
func (g *Guard) Close(ctx context.Context, id string) error {
	var firstErr error
	for _, store := range []Store{g.session, g.durable} {
		if err := store.Delete(ctx, id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return appErrors.Wrap(firstErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear session")
	}
	return nil
}

// SessionID extracts the id named by a cookie value, even when the session
// itself is already gone.
func (g *Guard) SessionID(cookie string) (string, bool) {
	claims, err := g.parse(cookie)
	if err != nil {
		return "", false
	}
	return claims.SessionID, true
}

// Cookie builds the Set-Cookie for an opened session. Session-scope cookies
// carry no Max-Age so the browser drops them when it closes.
func (g *Guard) Cookie(value string, scope models.SessionScope) *http.Cookie {
	c := &http.Cookie{
		Name:     g.cfg.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   g.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if scope == models.ScopeDurable && g.cfg.DurableTTL > 0 {
		c.MaxAge = int(g.cfg.DurableTTL.Seconds())
	}
	return c
}

// ClearCookie expires the session cookie.
func (g *Guard) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     g.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (g *Guard) sign(s *models.Session) (string, error) {
	claims := &models.SessionClaims{
		SessionID: s.ID,
		Scope:     s.Scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  s.User.ID,
			IssuedAt: jwt.NewNumericDate(s.CreatedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(g.cfg.Secret))
}

func (g *Guard) parse(value string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(value, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(g.cfg.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session cookie")
	}
	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session cookie")
	}
	return claims, nil
}
