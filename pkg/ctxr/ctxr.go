// SPDX-FileCopyrightText: © 2025 chostback contributors
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package ctxr provides generic functions to work with context storage.
package ctxr

import (
	"context"
)

type (
	// ContextSetter is a function that returns a new context with a given value.
	ContextSetter[T any] func(context.Context, T) context.Context
	// ContextChecker returns a value from a context, and a boolean if the value
	// was present and of the correct type.
	ContextChecker[T any] func(context.Context) (T, bool)
)

// Setter returns a [ContextSetter].
func Setter[T any](key any) ContextSetter[T] {
	return func(ctx context.Context, val T) context.Context {
		return context.WithValue(ctx, key, val)
	}
}

// Checker returns a [ContextChecker].
func Checker[T any](key any) ContextChecker[T] {
	return func(ctx context.Context) (v T, ok bool) {
		v, ok = ctx.Value(key).(T)
		return
	}
}
