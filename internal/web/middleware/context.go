package middleware

import (
	"context"

	"github.com/akira3175/fashionshop/internal/web/session"
)

type ctxKey string

const (
	ctxKeyIsHTMX  ctxKey = "is_htmx"
	ctxKeySession ctxKey = "session"
)

// WithHTMX records whether the request came from htmx.
func WithHTMX(ctx context.Context, is bool) context.Context {
	return context.WithValue(ctx, ctxKeyIsHTMX, is)
}

// IsHTMX reports whether the request came from htmx.
func IsHTMX(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyIsHTMX).(bool)
	return v
}

// WithSession attaches the storefront session to ctx.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, ctxKeySession, sess)
}

// SessionFromContext returns the session attached by the Session middleware.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(ctxKeySession).(*session.Session)
	return sess, ok && sess != nil
}
