package engine

import (
	"context"
	"errors"
)

// ErrNoEngine is returned when no engine is bound to a context
var ErrNoEngine = errors.New("no engine in context")

type contextKey struct{}

// WithContext binds e to ctx
func WithContext(ctx context.Context, e *Engine) context.Context {
	return context.WithValue(ctx, contextKey{}, e)
}

// FromContext returns the engine bound to ctx
func FromContext(ctx context.Context) (*Engine, error) {
	e, ok := ctx.Value(contextKey{}).(*Engine)
	if !ok || e == nil {
		return nil, ErrNoEngine
	}
	return e, nil
}

// MustFromContext is like FromContext but panics when no engine is bound
func MustFromContext(ctx context.Context) *Engine {
	e, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return e
}
