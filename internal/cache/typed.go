package cache

import (
	"context"
	"fmt"
	"time"
)

// Get is the typed form of Store.Get
func Get[T any](ctx context.Context, s *Store, key Key, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	v, err := s.Get(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok && v != nil {
		var zero T
		return zero, fmt.Errorf("cache %s holds %T", key, v)
	}
	return typed, nil
}

// Peek is the typed form of Store.Peek
func Peek[T any](s *Store, key Key) (T, bool) {
	v, ok := s.Peek(key)
	typed, match := v.(T)
	return typed, ok && match
}
