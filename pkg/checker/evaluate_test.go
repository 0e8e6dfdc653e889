package checker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.praspel/pkg/assertion"
	"digital.vasic.praspel/pkg/model"
	"digital.vasic.praspel/pkg/realdom"
)

func TestRuntimeChecker_NoDataFails(t *testing.T) {
	var calls int
	c, err := NewRuntimeChecker(addSpec(), addFunc(&calls))
	require.NoError(t, err)

	ok, err := c.Evaluate(context.Background(), nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNoData)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Equal(t, StateConfigured, c.State())
	assert.Zero(t, calls)
}

func TestRuntimeChecker_Pass(t *testing.T) {
	var calls int
	c, err := NewRuntimeChecker(addSpec(), addFunc(&calls))
	require.NoError(t, err)
	c.SetData(map[string]any{"x": 2, "y": 3})

	var trace Trace
	ok, err := c.Evaluate(context.Background(), &trace)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, calls)
	assert.Equal(t, StateEvaluated, c.State())

	assert.Equal(t, "runtime", trace.Checker)
	assert.Equal(t, "add", trace.Subject)
	assert.Equal(t, 5, trace.Result)
	assert.Contains(t, trace.Rendered, "@requires x: integer(0, 10)")
	assert.Equal(t, map[string]any{"x": 2, "y": 3}, trace.Data)
	assert.True(t, trace.Passed())
	assert.NoError(t, trace.Err())

	phases := make([]Phase, len(trace.Entries))
	for i, e := range trace.Entries {
		phases[i] = e.Phase
	}
	assert.Equal(t, []Phase{
		PhasePre, PhasePre, PhasePre,
		PhaseInvoke,
		PhasePost, PhasePost,
	}, phases)
}

func TestRuntimeChecker_ReusesBoundData(t *testing.T) {
	var calls int
	c, err := NewRuntimeChecker(addSpec(), addFunc(&calls))
	require.NoError(t, err)
	c.SetData(map[string]any{"x": 1, "y": 1})

	for i := 0; i < 3; i++ {
		ok, err := c.Evaluate(context.Background(), nil)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 3, calls)
	assert.Equal(t, map[string]any{"x": 1, "y": 1}, c.Data())
}

func TestRuntimeChecker_PreconditionFailureSkipsInvocation(t *testing.T) {
	var calls int
	c, err := NewRuntimeChecker(addSpec(), addFunc(&calls))
	require.NoError(t, err)
	c.SetData(map[string]any{"x": 11, "y": 1})

	var trace Trace
	ok, err := c.Evaluate(context.Background(), &trace)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, calls)

	failures := trace.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, model.RequiresName, failures[0].Clause)
	assert.Equal(t, "x", failures[0].Target)
	assert.Equal(t, "11 not in integer(0, 10)", failures[0].Message)

	// invoke + \result domain + \result predicate
	assert.Len(t, trace.Skipped(), 3)

	var v *Violation
	require.ErrorAs(t, trace.Err(), &v)
	assert.Equal(t, "x", v.Target)
	assert.Equal(t, 11, v.Actual)
}

func TestRuntimeChecker_MissingVariable(t *testing.T) {
	var calls int
	c, err := NewRuntimeChecker(addSpec(), addFunc(&calls))
	require.NoError(t, err)
	c.SetData(map[string]any{"x": 1})

	var trace Trace
	ok, err := c.Evaluate(context.Background(), &trace)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, calls)

	failures := trace.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "y is not bound", failures[0].Message)
}

func TestRuntimeChecker_PostconditionFailureIsGrouped(t *testing.T) {
	buggy := NewCallable("add", func(
		_ context.Context, args map[string]any,
	) (any, error) {
		return args["x"].(int) - 100, nil
	})
	c, err := NewRuntimeChecker(addSpec(), buggy)
	require.NoError(t, err)
	c.SetData(map[string]any{"x": 2, "y": 3})

	var trace Trace
	ok, err := c.Evaluate(context.Background(), &trace)
	require.NoError(t, err)
	assert.False(t, ok)

	var group *GroupViolation
	require.ErrorAs(t, trace.Err(), &group)
	require.Len(t, group.Violations, 2)
	assert.Equal(t, "domain", group.Violations[0].Type)
	assert.Equal(t, "greater_or_equal", group.Violations[1].Type)
	assert.Equal(t, 2, group.Violations[1].Expected)
	assert.Equal(t, -98, group.Violations[1].Actual)
}

func TestRuntimeChecker_GenerateMode(t *testing.T) {
	var calls int
	c, err := NewRuntimeChecker(addSpec(), addFunc(&calls),
		WithGenerateData(true), WithSeed(42),
	)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		ok, err := c.Evaluate(context.Background(), nil)
		require.NoError(t, err)
		assert.True(t, ok)

		data := c.Data()
		require.Contains(t, data, "x")
		require.Contains(t, data, "y")
		assert.True(t, realdom.NewInteger(0, 10).Predicate(data["x"]))
		assert.True(t, realdom.NewInteger(0, 10).Predicate(data["y"]))
	}
	assert.Equal(t, 10, calls)
	assert.Equal(t, StateEvaluated, c.State())
}

func TestGenerateData_DeterministicForSeed(t *testing.T) {
	var calls int
	newChecker := func() *RuntimeChecker {
		c, err := NewRuntimeChecker(addSpec(), addFunc(&calls), WithSeed(7))
		require.NoError(t, err)
		return c
	}

	a, b := newChecker(), newChecker()
	for i := 0; i < 5; i++ {
		da, err := a.GenerateData()
		require.NoError(t, err)
		db, err := b.GenerateData()
		require.NoError(t, err)
		assert.Equal(t, da, db)
	}
}

func TestGenerateData_RejectionSampling(t *testing.T) {
	spec := model.NewSpecification()
	spec.RequiresOrCreate().
		Declare("x", realdom.NewInteger(0, 9)).
		Assert(assertion.Definition{Type: "greater_than", Target: "x", Value: 4})

	var calls int
	c, err := NewPreconditionChecker(spec, addFunc(&calls), WithSeed(3))
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		data, err := c.GenerateData()
		require.NoError(t, err)
		assert.Greater(t, data["x"].(int), 4)
	}
}

func TestGenerateData_Unsatisfiable(t *testing.T) {
	spec := model.NewSpecification()
	spec.RequiresOrCreate().
		Declare("x", realdom.NewInteger(0, 3)).
		Assert(assertion.Definition{Type: "greater_than", Target: "x", Value: 10})

	var calls int
	c, err := NewRuntimeChecker(spec, addFunc(&calls),
		WithGenerateData(true), WithMaxGenerationAttempts(5),
	)
	require.NoError(t, err)

	ok, err := c.Evaluate(context.Background(), nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrGeneration)

	var v *Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, model.RequiresName, v.Clause)
	assert.Contains(t, v.Message, "after 5 attempts")

	_, err = c.GenerateData()
	assert.NotErrorIs(t, err, ErrGeneration)
	assert.Equal(t, StateConfigured, c.State())
	assert.Zero(t, calls)
}

func TestGenerateData_EmptyDomainsAreGrouped(t *testing.T) {
	spec := model.NewSpecification()
	spec.RequiresOrCreate().
		Declare("a", realdom.NewEnum()).
		Declare("b", realdom.NewEnum())

	var calls int
	c, err := NewRuntimeChecker(spec, addFunc(&calls))
	require.NoError(t, err)

	_, err = c.GenerateData()
	var group *GroupViolation
	require.ErrorAs(t, err, &group)
	assert.Len(t, group.Violations, 2)
	assert.ErrorIs(t, err, realdom.ErrEmptyDomain)
}

func TestGenerateData_NoRequiresClause(t *testing.T) {
	var calls int
	c, err := NewRuntimeChecker(model.NewSpecification(), addFunc(&calls))
	require.NoError(t, err)

	data, err := c.GenerateData()
	require.NoError(t, err)
	assert.NotNil(t, data)
	assert.Empty(t, data)
}

func TestRuntimeChecker_CallableErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	c, err := NewRuntimeChecker(addSpec(), failingFunc(boom))
	require.NoError(t, err)
	c.SetData(map[string]any{"x": 1, "y": 1})

	var trace Trace
	ok, err := c.Evaluate(context.Background(), &trace)
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateEvaluated, c.State())

	failures := trace.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, PhaseInvoke, failures[0].Phase)
	assert.Len(t, trace.Skipped(), 2)
}

func TestRuntimeChecker_CallableErrorAsViolation(t *testing.T) {
	boom := errors.New("boom")
	c, err := NewRuntimeChecker(addSpec(), failingFunc(boom),
		WithCallablePolicy(CallableErrorsAsViolations),
	)
	require.NoError(t, err)
	c.SetData(map[string]any{"x": 1, "y": 1})

	ok, err := c.Evaluate(context.Background(), nil)
	assert.False(t, ok)

	var v *Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "add", v.Target)
	assert.ErrorIs(t, err, boom)
}

func TestRuntimeChecker_PanicPolicies(t *testing.T) {
	c, err := NewRuntimeChecker(addSpec(), panickingFunc(),
		WithCallablePolicy(CallableErrorsAsViolations),
	)
	require.NoError(t, err)
	c.SetData(map[string]any{"x": 1, "y": 1})

	ok, err := c.Evaluate(context.Background(), nil)
	assert.False(t, ok)
	var v *Violation
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.Message, "panicked")

	p, err := NewRuntimeChecker(addSpec(), panickingFunc())
	require.NoError(t, err)
	p.SetData(map[string]any{"x": 1, "y": 1})
	assert.Panics(t, func() {
		_, _ = p.Evaluate(context.Background(), nil)
	})
}

func TestRuntimeChecker_DeclaredErrorPasses(t *testing.T) {
	c, err := NewRuntimeChecker(addSpec(),
		failingFunc(fmt.Errorf("add: %w", overflowError{})))
	require.NoError(t, err)
	c.SetData(map[string]any{"x": 1, "y": 1})

	var trace Trace
	ok, err := c.Evaluate(context.Background(), &trace)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, trace.Result)
	assert.Len(t, trace.Skipped(), 2)

	var thrown []TraceEntry
	for _, e := range trace.Entries {
		if e.Type == model.ThrowableName {
			thrown = append(thrown, e)
		}
	}
	require.Len(t, thrown, 1)
	assert.True(t, thrown[0].Passed)
}

func TestRuntimeChecker_ContextCancelled(t *testing.T) {
	var calls int
	c, err := NewRuntimeChecker(addSpec(), addFunc(&calls))
	require.NoError(t, err)
	c.SetData(map[string]any{"x": 1, "y": 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := c.Evaluate(ctx, nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestRuntimeChecker_Examples(t *testing.T) {
	spec := addSpec()
	spec.DescriptionOrCreate().Examples().
		Append("add(1, 2) = 3").
		Append("{args: {x: 1, y: 2}, result: 3}").
		Append("{args: {x: 4, y: 4}, result: 9}").
		Append(`{"args": {"x": 0, "y": 0}}`)

	var calls int
	c, err := NewRuntimeChecker(spec, addFunc(&calls))
	require.NoError(t, err)
	c.SetData(map[string]any{"x": 1, "y": 1})

	var trace Trace
	ok, err := c.Evaluate(context.Background(), &trace)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 4, calls)

	var examples []TraceEntry
	for _, e := range trace.Entries {
		if e.Phase == PhaseExample {
			examples = append(examples, e)
		}
	}
	require.Len(t, examples, 4)
	assert.True(t, examples[0].Skipped)
	assert.True(t, examples[1].Passed)
	assert.False(t, examples[2].Passed)
	assert.Equal(t, "expected 9, got 8", examples[2].Message)
	assert.True(t, examples[3].Passed)

	var v *Violation
	require.ErrorAs(t, trace.Err(), &v)
	assert.Equal(t, "[2]", v.Target)
}

func TestRuntimeChecker_ExampleViolationsAreGrouped(t *testing.T) {
	spec := model.NewSpecification()
	spec.DescriptionOrCreate().Examples().
		Append("{args: {x: 5}}").
		Append("{args: {x: 6}}").
		Append("{args: {x: 1}, result: 3}")

	var calls int
	fn := NewCallable("bounded", func(_ context.Context, args map[string]any) (any, error) {
		calls++
		x := args["x"].(int)
		if x >= 5 {
			return nil, fmt.Errorf("x too large: %d", x)
		}
		return x + 2, nil
	})
	c, err := NewRuntimeChecker(spec, fn,
		WithCallablePolicy(CallableErrorsAsViolations),
	)
	require.NoError(t, err)
	c.SetData(map[string]any{"x": 1})

	var trace Trace
	ok, err := c.Evaluate(context.Background(), &trace)
	assert.False(t, ok)
	// One invocation plus three examples.
	assert.Equal(t, 4, calls)

	var examples []TraceEntry
	for _, e := range trace.Entries {
		if e.Phase == PhaseExample {
			examples = append(examples, e)
		}
	}
	require.Len(t, examples, 3)
	assert.False(t, examples[0].Passed)
	assert.False(t, examples[1].Passed)
	assert.True(t, examples[2].Passed)

	var g *GroupViolation
	require.ErrorAs(t, err, &g)
	require.Len(t, g.Violations, 2)
	assert.Equal(t, "[0]", g.Violations[0].Target)
	assert.Equal(t, "[1]", g.Violations[1].Target)
	assert.ErrorContains(t, g.Violations[1].Err, "x too large: 6")
}

func TestRuntimeChecker_FailingCallableStillRunsExamples(t *testing.T) {
	spec := addSpec()
	spec.DescriptionOrCreate().Examples().
		Append("{args: {x: 1, y: 1}}").
		Append("{args: {x: 2, y: 2}}").
		Append("{args: {x: 3, y: 3}}")

	calls := 0
	fn := NewCallable("add", func(context.Context, map[string]any) (any, error) {
		calls++
		return nil, errors.New("boom")
	})
	c, err := NewRuntimeChecker(spec, fn,
		WithCallablePolicy(CallableErrorsAsViolations),
	)
	require.NoError(t, err)
	c.SetData(map[string]any{"x": 1, "y": 1})

	var trace Trace
	ok, err := c.Evaluate(context.Background(), &trace)
	assert.False(t, ok)
	assert.Equal(t, 4, calls)

	var g *GroupViolation
	require.ErrorAs(t, err, &g)
	require.Len(t, g.Violations, 4)
	assert.Equal(t, "add", g.Violations[0].Target)
	assert.Equal(t, "[2]", g.Violations[3].Target)

	// Ensures depends on the failed invocation.
	skipped := trace.Skipped()
	require.NotEmpty(t, skipped)
	assert.Equal(t, model.EnsuresName, skipped[0].Clause)
}

func TestRuntimeChecker_PropagateStopsAtFirstExample(t *testing.T) {
	spec := model.NewSpecification()
	spec.DescriptionOrCreate().Examples().
		Append("{args: {x: 1}}").
		Append("{args: {x: 2}}")

	calls := 0
	boom := errors.New("boom")
	fn := NewCallable("f", func(context.Context, map[string]any) (any, error) {
		calls++
		if calls > 1 {
			return nil, boom
		}
		return 0, nil
	})
	c, err := NewRuntimeChecker(spec, fn)
	require.NoError(t, err)
	c.SetData(map[string]any{"x": 0})

	ok, err := c.Evaluate(context.Background(), nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestPreconditionChecker_NeverInvokes(t *testing.T) {
	var calls int
	c, err := NewPreconditionChecker(addSpec(), addFunc(&calls))
	require.NoError(t, err)
	c.SetData(map[string]any{"x": 1, "y": 2})

	var trace Trace
	ok, err := c.Evaluate(context.Background(), &trace)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, calls)
	assert.Len(t, trace.Entries, 3)
}

func TestPostconditionChecker_IgnoresExamples(t *testing.T) {
	spec := addSpec()
	spec.DescriptionOrCreate().Examples().Append("{args: {x: 1, y: 1}, result: 5}")

	var calls int
	c, err := NewPostconditionChecker(spec, addFunc(&calls))
	require.NoError(t, err)
	c.SetData(map[string]any{"x": 1, "y": 2})

	ok, err := c.Evaluate(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, calls)
}

func TestInvariantChecker(t *testing.T) {
	spec := addSpec()
	spec.InvariantOrCreate().
		Declare("x", realdom.NewInteger(0, 10)).
		Assert(assertion.Definition{Type: "less_or_equal", Target: "x", Value: 10})

	var calls int
	c, err := NewInvariantChecker(spec, addFunc(&calls))
	require.NoError(t, err)

	c.SetData(map[string]any{"x": 3, "y": 4})
	var trace Trace
	ok, err := c.Evaluate(context.Background(), &trace)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, calls)

	var before, after int
	for _, e := range trace.Entries {
		switch e.Phase {
		case PhaseInvariantBefore:
			before++
		case PhaseInvariantAfter:
			after++
		case PhasePre, PhasePost:
			t.Fatalf("unexpected phase %s", e.Phase)
		}
	}
	assert.Equal(t, 2, before)
	assert.Equal(t, 2, after)

	c.SetData(map[string]any{"x": 20, "y": 4})
	ok, err = c.Evaluate(context.Background(), &trace)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, calls)
	assert.Len(t, trace.Failures(), 2)
}

func TestCheck_LogsEvaluation(t *testing.T) {
	rec := &recordingLogger{}
	var calls int
	c, err := NewRuntimeChecker(addSpec(), addFunc(&calls),
		WithLogger(rec), WithRunID("run-7"),
	)
	require.NoError(t, err)

	c.SetData(map[string]any{"x": 11, "y": 0})
	_, err = c.Evaluate(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, rec.evaluations, 1)
	got := rec.evaluations[0]
	assert.Equal(t, "runtime", got.Checker)
	assert.Equal(t, "run-7", got.RunID)
	assert.Equal(t, "add", got.Subject)
	assert.False(t, got.Passed)
	assert.Len(t, got.Failures, 1)
	assert.Empty(t, got.Error)
}

func TestCheck_CustomEngine(t *testing.T) {
	engine := assertion.NewEngine()
	require.NoError(t, engine.Register("even", func(
		_ assertion.Definition, v any,
	) (bool, string) {
		n, ok := v.(int)
		return ok && n%2 == 0, "even"
	}))

	spec := model.NewSpecification()
	spec.RequiresOrCreate().
		Declare("x", realdom.NewInteger(0, 100)).
		Assert(assertion.Definition{Type: "even", Target: "x"})

	var calls int
	c, err := NewPreconditionChecker(spec, addFunc(&calls),
		WithEngine(engine), WithGenerateData(true), WithSeed(11),
	)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		ok, err := c.Evaluate(context.Background(), nil)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Zero(t, c.Data()["x"].(int)%2)
	}
}
