package cache

import (
	"context"
	"fmt"
)

// Fetch is Get with a typed value.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.Get(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache %s holds %T, want %T", key, v, zero)
	}
	return t, nil
}

// Update is Patch with a typed updater. Values of another type are left as is.
func Update[T any](c *Cache, key Key, fn func(T) T) bool {
	return c.Patch(key, func(v any) any {
		t, ok := v.(T)
		if !ok {
			return v
		}
		return fn(t)
	})
}

// UpdateScope is PatchScope with a typed updater.
func UpdateScope[T any](c *Cache, scope Scope, fn func(Key, T) T) int {
	return c.PatchScope(scope, func(key Key, v any) any {
		t, ok := v.(T)
		if !ok {
			return v
		}
		return fn(key, t)
	})
}

// Peek is Lookup with a typed value.
func Peek[T any](c *Cache, key Key) (T, bool) {
	var zero T
	v, ok := c.Lookup(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
