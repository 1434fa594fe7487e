package aspect

import (
	"context"

	"github.com/pkg/errors"
)

// adapt turns a plain handler into advice honouring the marker's ordering:
// Before runs ahead of the body, the others after it, gated by outcome.
// A handler error always wins over the body's outcome.
func adapt(marker Marker, handler Handler) advice {
	switch marker {
	case Before:
		return func(ctx context.Context, jp JoinPoint, proceed Proceed) (any, error) {
			if err := handler(ctx, jp); err != nil {
				return nil, err
			}
			return proceed(ctx)
		}
	case After:
		return func(ctx context.Context, jp JoinPoint, proceed Proceed) (any, error) {
			result, err := proceed(ctx)
			jp.Result, jp.Err = result, err
			if handlerErr := handler(ctx, jp); handlerErr != nil {
				return nil, handlerErr
			}
			return result, err
		}
	case AfterThrowing:
		return func(ctx context.Context, jp JoinPoint, proceed Proceed) (any, error) {
			result, err := proceed(ctx)
			if err == nil {
				return result, nil
			}
			jp.Err = err
			if handlerErr := handler(ctx, jp); handlerErr != nil {
				return nil, handlerErr
			}
			return result, err
		}
	case AfterReturning:
		return func(ctx context.Context, jp JoinPoint, proceed Proceed) (any, error) {
			result, err := proceed(ctx)
			if err != nil {
				return result, err
			}
			jp.Result = result
			if handlerErr := handler(ctx, jp); handlerErr != nil {
				return nil, handlerErr
			}
			return result, nil
		}
	}
	panic("aspect: no adapter for marker " + marker.String())
}

// Call invokes a value-returning body through the registry.
func Call[T any](ctx context.Context, r *Registry, name string, marker Marker, body func(ctx context.Context) (T, error), args ...Param) (T, error) {
	var zero T
	if body == nil {
		return zero, errors.Wrapf(ErrNilBody, "operation='%s'", name)
	}
	result, err := r.Invoke(ctx, Operation{
		Name:   name,
		Marker: marker,
		Args:   args,
		Body: func(ctx context.Context) (any, error) {
			value, err := body(ctx)
			return value, err
		},
	})
	if result == nil {
		return zero, err
	}
	value, ok := result.(T)
	if !ok {
		if err != nil {
			return zero, err
		}
		return zero, errors.Wrapf(ErrResultType, "operation='%s' result=%T", name, result)
	}
	return value, err
}

// Run invokes a body with no result through the registry.
func Run(ctx context.Context, r *Registry, name string, marker Marker, body func(ctx context.Context) error, args ...Param) error {
	if body == nil {
		return errors.Wrapf(ErrNilBody, "operation='%s'", name)
	}
	_, err := r.Invoke(ctx, Operation{
		Name:   name,
		Marker: marker,
		Args:   args,
		Body: func(ctx context.Context) (any, error) {
			return nil, body(ctx)
		},
	})
	return err
}
