package github

import "context"

// ProgressFunc is called after every fetched search page with the page number
// and the number of repositories collected so far.
type ProgressFunc func(page, fetched int)

type progressKey struct{}

// WithProgress returns a context that makes Search report pagination to fn.
// The context passes unchanged through searchers that wrap a Client.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	if fn == nil {
		return ctx
	}
	return context.WithValue(ctx, progressKey{}, fn)
}

func progressFrom(ctx context.Context) ProgressFunc {
	if fn, ok := ctx.Value(progressKey{}).(ProgressFunc); ok {
		return fn
	}
	return func(int, int) {}
}
