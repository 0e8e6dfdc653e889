package checker

import (
	"context"
	"fmt"

	"digital.vasic.praspel/pkg/model"
)

// Kind names a concrete checker.
type Kind string

const (
	KindPrecondition  Kind = "precondition"
	KindPostcondition Kind = "postcondition"
	KindInvariant     Kind = "invariant"
	KindRuntime       Kind = "runtime"
)

// Kinds lists the concrete checker kinds.
func Kinds() []Kind {
	return []Kind{
		KindPrecondition, KindPostcondition, KindInvariant, KindRuntime,
	}
}

// New creates the checker of the given kind.
func New(
	kind Kind,
	spec *model.Specification,
	callable Callable,
	opts ...Option,
) (AssertionChecker, error) {
	var (
		c   AssertionChecker
		err error
	)
	switch kind {
	case KindPrecondition:
		c, err = NewPreconditionChecker(spec, callable, opts...)
	case KindPostcondition:
		c, err = NewPostconditionChecker(spec, callable, opts...)
	case KindInvariant:
		c, err = NewInvariantChecker(spec, callable, opts...)
	case KindRuntime, "":
		c, err = NewRuntimeChecker(spec, callable, opts...)
	default:
		return nil, fmt.Errorf(
			"%w: unknown checker kind %q",
			ErrInvalidConfiguration, kind,
		)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// PreconditionChecker checks data against the requires clause. It
// never invokes the callable.
type PreconditionChecker struct {
	*Base
}

// NewPreconditionChecker creates a PreconditionChecker.
func NewPreconditionChecker(
	spec *model.Specification,
	callable Callable,
	opts ...Option,
) (*PreconditionChecker, error) {
	b, err := NewBase(spec, callable, opts...)
	if err != nil {
		return nil, err
	}
	return &PreconditionChecker{Base: b}, nil
}

// Evaluate checks the requires clause.
func (c *PreconditionChecker) Evaluate(
	ctx context.Context, trace *Trace,
) (bool, error) {
	return c.Check(ctx, trace, Plan{
		Checker:  string(KindPrecondition),
		Scope:    ScopeRequires,
		Generate: c.GenerateData,
	})
}

// GenerateData samples the requires domains.
func (c *PreconditionChecker) GenerateData() (map[string]any, error) {
	return c.GenerateFromDomains()
}

// PostconditionChecker invokes the callable on data that satisfies
// the requires clause and checks the ensures clause.
type PostconditionChecker struct {
	*Base
}

// NewPostconditionChecker creates a PostconditionChecker.
func NewPostconditionChecker(
	spec *model.Specification,
	callable Callable,
	opts ...Option,
) (*PostconditionChecker, error) {
	b, err := NewBase(spec, callable, opts...)
	if err != nil {
		return nil, err
	}
	return &PostconditionChecker{Base: b}, nil
}

// Evaluate checks requires, invokes, then checks ensures.
func (c *PostconditionChecker) Evaluate(
	ctx context.Context, trace *Trace,
) (bool, error) {
	return c.Check(ctx, trace, Plan{
		Checker:  string(KindPostcondition),
		Scope:    ScopeRequires | ScopeEnsures,
		Generate: c.GenerateData,
	})
}

// GenerateData samples the requires domains.
func (c *PostconditionChecker) GenerateData() (map[string]any, error) {
	return c.GenerateFromDomains()
}

// InvariantChecker checks the invariant clause before and after
// the invocation.
type InvariantChecker struct {
	*Base
}

// NewInvariantChecker creates an InvariantChecker.
func NewInvariantChecker(
	spec *model.Specification,
	callable Callable,
	opts ...Option,
) (*InvariantChecker, error) {
	b, err := NewBase(spec, callable, opts...)
	if err != nil {
		return nil, err
	}
	return &InvariantChecker{Base: b}, nil
}

// Evaluate checks the invariant around one invocation.
func (c *InvariantChecker) Evaluate(
	ctx context.Context, trace *Trace,
) (bool, error) {
	return c.Check(ctx, trace, Plan{
		Checker:  string(KindInvariant),
		Scope:    ScopeInvariant,
		Generate: c.GenerateData,
	})
}

// GenerateData samples the requires domains.
func (c *InvariantChecker) GenerateData() (map[string]any, error) {
	return c.GenerateFromDomains()
}

// RuntimeChecker checks every clause family and runs the
// executable description examples.
type RuntimeChecker struct {
	*Base
}

// NewRuntimeChecker creates a RuntimeChecker.
func NewRuntimeChecker(
	spec *model.Specification,
	callable Callable,
	opts ...Option,
) (*RuntimeChecker, error) {
	b, err := NewBase(spec, callable, opts...)
	if err != nil {
		return nil, err
	}
	return &RuntimeChecker{Base: b}, nil
}

// Evaluate checks the whole specification.
func (c *RuntimeChecker) Evaluate(
	ctx context.Context, trace *Trace,
) (bool, error) {
	return c.Check(ctx, trace, Plan{
		Checker:  string(KindRuntime),
		Scope:    ScopeAll,
		Generate: c.GenerateData,
	})
}

// GenerateData samples the requires domains.
func (c *RuntimeChecker) GenerateData() (map[string]any, error) {
	return c.GenerateFromDomains()
}

var (
	_ AssertionChecker = (*PreconditionChecker)(nil)
	_ AssertionChecker = (*PostconditionChecker)(nil)
	_ AssertionChecker = (*InvariantChecker)(nil)
	_ AssertionChecker = (*RuntimeChecker)(nil)
)
