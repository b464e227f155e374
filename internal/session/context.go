package session

import "context"

type ctxKey struct{}

// WithManager кладёт Manager сессии в контекст запроса.
func WithManager(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, ctxKey{}, m)
}

// FromContext достаёт Manager сессии из контекста запроса.
func FromContext(ctx context.Context) (*Manager, bool) {
	m, ok := ctx.Value(ctxKey{}).(*Manager)
	return m, ok
}
