package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession attaches the request's cookie session.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the cookie session, or nil outside the session
// middleware. Session accessors are nil-safe.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
