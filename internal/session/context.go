package session

import (
	"context"

	"github.com/noah-isme/school-portal/internal/models"
)

type ctxKey struct{}

// WithSession returns a child context carrying s.
func WithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext is the single typed accessor for the current session.
func FromContext(ctx context.Context) (*models.Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*models.Session)
	return s, ok && s != nil
}
