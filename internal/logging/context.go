package logging

import (
	"context"
	"slices"
)

type ctxArgsKey struct{}

// ContextWith returns a copy of ctx carrying key/value pairs that every
// Logger in this package appends to records logged with that context.
func ContextWith(ctx context.Context, args ...any) context.Context {
	prev := ContextArgs(ctx)
	return context.WithValue(ctx, ctxArgsKey{}, append(slices.Clip(prev), args...))
}

// ContextArgs returns the pairs attached with ContextWith.
func ContextArgs(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	args, _ := ctx.Value(ctxArgsKey{}).([]any)
	return args
}

func withContextArgs(ctx context.Context, args []any) []any {
	extra := ContextArgs(ctx)
	if len(extra) == 0 {
		return args
	}
	return append(slices.Clip(args), extra...)
}
