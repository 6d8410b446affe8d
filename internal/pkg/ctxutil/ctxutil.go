package ctxutil

import "context"

// Default returns context.Background() when ctx is nil so call sites can
// pass request contexts through without guarding.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
