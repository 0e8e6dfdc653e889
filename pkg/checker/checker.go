// Package checker evaluates specifications against callables.
//
// A checker binds a specification, the callable it describes and a
// set of named argument values. Evaluate checks the clauses of its
// family against that data and reports a verdict plus, optionally, a
// Trace of every check. Data is either bound explicitly with SetData
// or produced from the realistic domains of the requires clause when
// automatic generation is enabled.
//
// Checkers are not safe for concurrent use. Create one checker per
// goroutine; specifications may be shared as long as nobody mutates
// them during evaluation.
package checker

import (
	"context"
	"fmt"
	"maps"
	"math/rand/v2"
	"reflect"
	"sync"

	"digital.vasic.praspel/pkg/assertion"
	"digital.vasic.praspel/pkg/logging"
	"digital.vasic.praspel/pkg/model"
	"digital.vasic.praspel/pkg/render"
)

// AssertionChecker is the extension point every concrete checker
// implements.
type AssertionChecker interface {
	// Evaluate checks the bound (or generated) data against the
	// specification. trace may be nil.
	Evaluate(ctx context.Context, trace *Trace) (bool, error)

	// GenerateData produces one value per requires variable.
	GenerateData() (map[string]any, error)
}

// State is the lifecycle position of a checker.
type State int

const (
	// StateConfigured means specification and callable are set
	// but no data is bound.
	StateConfigured State = iota
	// StateDataBound means data is available for evaluation.
	StateDataBound
	// StateEvaluated means at least one evaluation ran on the
	// current data.
	StateEvaluated
)

func (s State) String() string {
	switch s {
	case StateConfigured:
		return "configured"
	case StateDataBound:
		return "data-bound"
	case StateEvaluated:
		return "evaluated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// CallablePolicy decides how a callable that returns an undeclared
// error, or panics, is reported.
type CallablePolicy int

const (
	// PropagateCallableErrors returns the callable's error wrapped
	// from Evaluate and lets panics escape.
	PropagateCallableErrors CallablePolicy = iota
	// CallableErrorsAsViolations records a failed trace entry,
	// recovers panics and returns a *Violation.
	CallableErrorsAsViolations
)

func (p CallablePolicy) String() string {
	switch p {
	case PropagateCallableErrors:
		return "propagate"
	case CallableErrorsAsViolations:
		return "violation"
	default:
		return fmt.Sprintf("CallablePolicy(%d)", int(p))
	}
}

// ParseCallablePolicy maps "propagate" or "violation" to a policy.
func ParseCallablePolicy(name string) (CallablePolicy, error) {
	switch name {
	case "", "propagate":
		return PropagateCallableErrors, nil
	case "violation", "violations":
		return CallableErrorsAsViolations, nil
	default:
		return PropagateCallableErrors, fmt.Errorf(
			"%w: unknown callable policy %q",
			ErrInvalidConfiguration, name,
		)
	}
}

const defaultMaxAttempts = 64

// Base holds the state shared by every checker. Concrete checkers
// embed *Base and implement Evaluate and GenerateData on top of
// Check and GenerateFromDomains.
type Base struct {
	spec     *model.Specification
	callable Callable
	data     map[string]any
	generate bool
	state    State

	engine      assertion.Engine
	rng         *rand.Rand
	maxAttempts int
	policy      CallablePolicy
	logger      logging.Logger
	runID       string

	newRenderer  func() render.Renderer
	rendererOnce sync.Once
	renderer     render.Renderer
}

// NewBase creates the shared checker state. Both spec and callable
// are required.
func NewBase(
	spec *model.Specification,
	callable Callable,
	opts ...Option,
) (*Base, error) {
	if spec == nil {
		return nil, fmt.Errorf(
			"%w: specification must not be nil",
			ErrInvalidConfiguration,
		)
	}
	if !validCallable(callable) {
		return nil, fmt.Errorf(
			"%w: callable must not be nil",
			ErrInvalidConfiguration,
		)
	}

	b := &Base{
		spec:        spec,
		callable:    callable,
		state:       StateConfigured,
		engine:      assertion.NewEngine(),
		rng:         rand.New(rand.NewPCG(0, 0)),
		maxAttempts: defaultMaxAttempts,
		policy:      PropagateCallableErrors,
		logger:      logging.NullLogger{},
		newRenderer: func() render.Renderer {
			return render.NewPraspel()
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Specification returns the specification under check.
func (b *Base) Specification() *model.Specification { return b.spec }

// SetSpecification replaces the specification and returns the
// previous one. A nil spec is rejected and nothing changes.
func (b *Base) SetSpecification(
	spec *model.Specification,
) (*model.Specification, error) {
	if spec == nil {
		return b.spec, fmt.Errorf(
			"%w: specification must not be nil",
			ErrInvalidConfiguration,
		)
	}
	old := b.spec
	b.spec = spec
	return old, nil
}

// Callable returns the callable under check.
func (b *Base) Callable() Callable { return b.callable }

// SetCallable replaces the callable and returns the previous one.
// A nil callable is rejected and nothing changes.
func (b *Base) SetCallable(c Callable) (Callable, error) {
	if !validCallable(c) {
		return b.callable, fmt.Errorf(
			"%w: callable must not be nil",
			ErrInvalidConfiguration,
		)
	}
	old := b.callable
	b.callable = c
	return old, nil
}

// Data returns a copy of the bound data, or nil.
func (b *Base) Data() map[string]any { return maps.Clone(b.data) }

// SetData binds a copy of data and returns the previously bound
// data. Binding nil clears the data.
func (b *Base) SetData(data map[string]any) map[string]any {
	old := b.data
	b.data = maps.Clone(data)
	if b.data == nil {
		b.state = StateConfigured
	} else {
		b.state = StateDataBound
	}
	return old
}

// SetDataFrom binds any map keyed by strings, such as the output
// of a YAML or JSON decoder. Other values are rejected and the
// bound data is left untouched.
func (b *Base) SetDataFrom(v any) (map[string]any, error) {
	if v == nil {
		return b.SetData(nil), nil
	}
	if m, ok := v.(map[string]any); ok {
		return b.SetData(m), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map ||
		rv.Type().Key().Kind() != reflect.String {
		return b.data, fmt.Errorf(
			"%w: data must map names to values, got %T",
			ErrInvalidConfiguration, v,
		)
	}

	m := make(map[string]any, rv.Len())
	it := rv.MapRange()
	for it.Next() {
		m[it.Key().String()] = it.Value().Interface()
	}
	return b.SetData(m), nil
}

// AutomaticallyGenerateData switches generate mode and returns the
// previous setting.
func (b *Base) AutomaticallyGenerateData(on bool) bool {
	old := b.generate
	b.generate = on
	return old
}

// CanGenerateData reports whether generate mode is on.
func (b *Base) CanGenerateData() bool { return b.generate }

// Renderer returns the checker's renderer, creating it on first
// use.
func (b *Base) Renderer() render.Renderer {
	b.rendererOnce.Do(func() {
		if b.newRenderer != nil {
			b.renderer = b.newRenderer()
		}
		if b.renderer == nil {
			b.renderer = render.NewPraspel()
		}
	})
	return b.renderer
}

// State returns the lifecycle state.
func (b *Base) State() State { return b.state }

// Engine returns the predicate engine.
func (b *Base) Engine() assertion.Engine { return b.engine }

// Logger returns the logger.
func (b *Base) Logger() logging.Logger { return b.logger }

// Policy returns the callable failure policy.
func (b *Base) Policy() CallablePolicy { return b.policy }

// Rand returns the random source used for generation.
func (b *Base) Rand() *rand.Rand { return b.rng }
