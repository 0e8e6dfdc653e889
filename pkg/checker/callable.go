package checker

import (
	"context"
	"errors"
)

// Callable is the function under contract. Arguments are passed by
// parameter name.
type Callable interface {
	Name() string
	Invoke(ctx context.Context, args map[string]any) (any, error)
}

// Func adapts a plain function to Callable.
type Func struct {
	name string
	fn   func(ctx context.Context, args map[string]any) (any, error)
}

// NewCallable wraps fn under name.
func NewCallable(
	name string,
	fn func(ctx context.Context, args map[string]any) (any, error),
) *Func {
	return &Func{name: name, fn: fn}
}

// Name returns the callable name.
func (f *Func) Name() string { return f.name }

// Invoke calls the wrapped function.
func (f *Func) Invoke(
	ctx context.Context, args map[string]any,
) (any, error) {
	if f.fn == nil {
		return nil, errors.New("callable has no function")
	}
	return f.fn(ctx, args)
}

func validCallable(c Callable) bool {
	if c == nil {
		return false
	}
	if f, ok := c.(*Func); ok {
		return f != nil && f.fn != nil
	}
	return true
}
