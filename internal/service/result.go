package service

import (
	"context"
	"fmt"
)

// Result carries one independently fetched value or the reason it failed.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the fetch succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Capture runs fn and converts both errors and panics into a Result.
func Capture[T any](ctx context.Context, fn func(context.Context) (T, error)) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = Result[T]{Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	value, err := fn(ctx)
	return Result[T]{Value: value, Err: err}
}
