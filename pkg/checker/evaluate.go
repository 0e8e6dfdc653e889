package checker

import (
	"context"
	"fmt"
	"maps"
	"time"

	"digital.vasic.praspel/pkg/logging"
	"digital.vasic.praspel/pkg/model"
	"digital.vasic.praspel/pkg/realdom"
)

// Scope selects the clause families a Check covers.
type Scope uint

const (
	// ScopeRequires checks the requires clause. A failure
	// prevents the invocation.
	ScopeRequires Scope = 1 << iota
	// ScopeInvariant checks the invariant before and after the
	// invocation.
	ScopeInvariant
	// ScopeEnsures invokes the callable and checks the ensures
	// clause against the arguments and \result.
	ScopeEnsures
	// ScopeExamples runs executable description examples.
	ScopeExamples

	ScopeAll = ScopeRequires | ScopeInvariant | ScopeEnsures | ScopeExamples
)

func (s Scope) has(f Scope) bool { return s&f != 0 }

func (s Scope) invokes() bool {
	return s.has(ScopeInvariant) || s.has(ScopeEnsures)
}

// Plan describes one evaluation for Check.
type Plan struct {
	// Checker names the checker kind in traces and logs.
	Checker string
	Scope   Scope
	// Generate produces data in generate mode. Nil falls back to
	// GenerateFromDomains.
	Generate func() (map[string]any, error)
}

// Check runs the evaluation described by plan. It is the body of
// every concrete Evaluate.
//
// All clauses in scope are checked even after a failure, except
// that a failed requires or invariant check prevents the
// invocation; clauses that depend on it are recorded as skipped.
// A routine contract failure returns (false, nil). Errors are
// returned when no data can be produced, when the context is done,
// and when the callable fails in a way its throwable clause does
// not declare. Under CallableErrorsAsViolations such failures do
// not stop the evaluation: they are returned together at the end
// as a *Violation or *GroupViolation.
func (b *Base) Check(
	ctx context.Context,
	trace *Trace,
	plan Plan,
) (ok bool, err error) {
	start := time.Now()

	data, err := b.bind(plan.Generate)
	if err != nil {
		b.logger.Debug("no data for evaluation",
			logging.CheckerField(plan.Checker),
			logging.SubjectField(b.callable.Name()),
			logging.ErrorField(err),
		)
		return false, err
	}

	t := &Trace{
		Checker:  plan.Checker,
		Subject:  b.callable.Name(),
		Rendered: b.Renderer().Render(b.spec),
		Data:     maps.Clone(data),
	}
	ev := &evaluation{base: b, trace: t}

	defer func() {
		b.state = StateEvaluated
		ok = err == nil && t.Passed()
		if trace != nil {
			*trace = *t
		}
		b.logEvaluation(t, ok, err, time.Since(start))
	}()

	spec := b.spec
	inv := spec.Invariant()
	ens := spec.Ensures()

	if req := spec.Requires(); req != nil && plan.Scope.has(ScopeRequires) {
		ev.checkBlock(req.Name(), PhasePre, &req.Block, data)
	}
	if inv != nil && plan.Scope.has(ScopeInvariant) {
		ev.checkBlock(inv.Name(), PhaseInvariantBefore, &inv.Block, data)
	}

	if plan.Scope.invokes() {
		if err = ev.invokeAndCheck(ctx, plan.Scope, data, ens, inv); err != nil {
			return false, err
		}
	}

	if plan.Scope.has(ScopeExamples) {
		if err = ev.checkExamples(ctx); err != nil {
			return false, err
		}
	}

	if err = fold(ev.violations); err != nil {
		return false, err
	}
	return t.Passed(), nil
}

func (b *Base) bind(
	generate func() (map[string]any, error),
) (map[string]any, error) {
	if b.generate {
		if generate == nil {
			generate = b.GenerateFromDomains
		}
		data, err := generate()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
		}
		if data == nil {
			data = map[string]any{}
		}
		b.SetData(data)
		return b.data, nil
	}
	if b.data == nil {
		return nil, ErrNoData
	}
	return b.data, nil
}

func (b *Base) logEvaluation(
	t *Trace, ok bool, err error, elapsed time.Duration,
) {
	entry := logging.EvaluationLog{
		Timestamp:  time.Now().Format(time.RFC3339Nano),
		RunID:      b.runID,
		Checker:    t.Checker,
		Subject:    t.Subject,
		Data:       t.Data,
		Result:     t.Result,
		Passed:     ok,
		Failures:   t.failureMessages(),
		DurationMs: elapsed.Milliseconds(),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	b.logger.LogEvaluation(entry)
}

// evaluation accumulates the trace of one Check.
type evaluation struct {
	base  *Base
	trace *Trace
	// violations collects callable failures under
	// CallableErrorsAsViolations, in evaluation order.
	violations []*Violation
}

// absorb keeps a callable violation and returns nil when the
// policy lets evaluation continue. Any other error is returned.
func (e *evaluation) absorb(err error) error {
	if e.base.policy != CallableErrorsAsViolations {
		return err
	}
	v, ok := err.(*Violation)
	if !ok {
		return err
	}
	e.violations = append(e.violations, v)
	return nil
}

func (e *evaluation) checkBlock(
	clause string,
	phase Phase,
	block *model.Block,
	values map[string]any,
) {
	for _, v := range block.Variables() {
		entry := TraceEntry{
			Clause: clause,
			Phase:  phase,
			Target: v.Name,
			Type:   "domain",
		}
		value, bound := values[v.Name]
		switch {
		case !bound:
			entry.Message = v.Name + " is not bound"
		case v.Domain == nil:
			entry.Actual = value
			entry.Passed = true
			entry.Message = "no domain declared"
		default:
			entry.Expected = v.Domain.String()
			entry.Actual = value
			entry.Passed = v.Domain.Predicate(value)
			if entry.Passed {
				entry.Message = fmt.Sprintf("%v in %s", value, v.Domain)
			} else {
				entry.Message = fmt.Sprintf("%v not in %s", value, v.Domain)
			}
		}
		if !bound && v.Domain != nil {
			entry.Expected = v.Domain.String()
		}
		e.trace.add(entry)
	}

	for _, r := range e.base.engine.EvaluateAll(block.Predicates(), values) {
		e.trace.add(TraceEntry{
			Clause:   clause,
			Phase:    phase,
			Target:   r.Target,
			Type:     r.Type,
			Expected: r.Expected,
			Actual:   r.Actual,
			Passed:   r.Passed,
			Message:  r.Message,
		})
	}
}

func (e *evaluation) skipBlock(
	clause string,
	phase Phase,
	block *model.Block,
	reason string,
) {
	for _, v := range block.Variables() {
		e.trace.add(TraceEntry{
			Clause:  clause,
			Phase:   phase,
			Target:  v.Name,
			Type:    "domain",
			Skipped: true,
			Message: reason,
		})
	}
	for _, p := range block.Predicates() {
		e.trace.add(TraceEntry{
			Clause:  clause,
			Phase:   phase,
			Target:  p.Target,
			Type:    p.Type,
			Skipped: true,
			Message: reason,
		})
	}
}

func (e *evaluation) skipAfter(
	scope Scope, ens *model.Ensures, inv *model.Invariant, reason string,
) {
	if ens != nil && scope.has(ScopeEnsures) {
		e.skipBlock(ens.Name(), PhasePost, &ens.Block, reason)
	}
	if inv != nil && scope.has(ScopeInvariant) {
		e.skipBlock(inv.Name(), PhaseInvariantAfter, &inv.Block, reason)
	}
}

func (e *evaluation) invokeAndCheck(
	ctx context.Context,
	scope Scope,
	args map[string]any,
	ens *model.Ensures,
	inv *model.Invariant,
) error {
	subject := e.base.callable.Name()

	if !e.trace.Passed() {
		const reason = "not invoked: precondition failed"
		e.trace.add(TraceEntry{
			Phase:   PhaseInvoke,
			Target:  subject,
			Skipped: true,
			Message: reason,
		})
		e.skipAfter(scope, ens, inv, reason)
		return nil
	}

	result, thrown, err := e.call(ctx, PhaseInvoke, "", subject, args)
	if err != nil {
		e.skipAfter(scope, ens, inv, "not checked: callable failed")
		return e.absorb(err)
	}

	if thrown {
		if ens != nil && scope.has(ScopeEnsures) {
			e.skipBlock(ens.Name(), PhasePost, &ens.Block,
				"not checked: declared error raised")
		}
		if inv != nil && scope.has(ScopeInvariant) {
			e.checkBlock(inv.Name(), PhaseInvariantAfter, &inv.Block, args)
		}
		return nil
	}

	e.trace.Result = result
	e.trace.add(TraceEntry{
		Phase:   PhaseInvoke,
		Target:  subject,
		Actual:  result,
		Passed:  true,
		Message: "returned",
	})

	values := maps.Clone(args)
	values[model.ResultVariable] = result

	if ens != nil && scope.has(ScopeEnsures) {
		e.checkBlock(ens.Name(), PhasePost, &ens.Block, values)
	}
	if inv != nil && scope.has(ScopeInvariant) {
		e.checkBlock(inv.Name(), PhaseInvariantAfter, &inv.Block, values)
	}
	return nil
}

// call invokes the callable. thrown reports an error the throwable
// clause declares; it is recorded as a passing entry. Undeclared
// errors are recorded as failures and returned per the policy.
func (e *evaluation) call(
	ctx context.Context,
	phase Phase,
	clause, target string,
	args map[string]any,
) (result any, thrown bool, err error) {
	b := e.base
	subject := b.callable.Name()

	if err := ctx.Err(); err != nil {
		e.trace.add(TraceEntry{
			Clause:  clause,
			Phase:   phase,
			Target:  target,
			Message: "not invoked: " + err.Error(),
		})
		return nil, false, fmt.Errorf("invoke %s: %w", subject, err)
	}

	result, callErr := b.invoke(ctx, args)
	if callErr == nil {
		return result, false, nil
	}

	if th := b.spec.Throwable(); th != nil && th.Allows(callErr) {
		e.trace.add(TraceEntry{
			Clause:  clause,
			Phase:   phase,
			Target:  target,
			Type:    model.ThrowableName,
			Actual:  callErr.Error(),
			Passed:  true,
			Message: "declared error: " + callErr.Error(),
		})
		return nil, true, nil
	}

	entry := TraceEntry{
		Clause:  clause,
		Phase:   phase,
		Target:  target,
		Type:    model.ThrowableName,
		Actual:  callErr.Error(),
		Message: "undeclared error: " + callErr.Error(),
	}
	e.trace.add(entry)

	if b.policy == CallableErrorsAsViolations {
		v := entry.violation()
		v.Err = callErr
		return nil, false, v
	}
	return nil, false, fmt.Errorf("invoke %s: %w", subject, callErr)
}

func (b *Base) invoke(
	ctx context.Context, args map[string]any,
) (result any, err error) {
	if b.policy == CallableErrorsAsViolations {
		defer func() {
			if r := recover(); r != nil {
				result = nil
				err = fmt.Errorf("callable panicked: %v", r)
			}
		}()
	}
	return b.callable.Invoke(ctx, maps.Clone(args))
}

func (e *evaluation) checkExamples(ctx context.Context) error {
	d := e.base.spec.Description()
	if d == nil {
		return nil
	}

	for i, text := range d.Examples().All() {
		target := fmt.Sprintf("[%d]", i)

		ex, ok := parseExample(text)
		if !ok {
			e.trace.add(TraceEntry{
				Clause:  model.DescriptionName,
				Phase:   PhaseExample,
				Target:  target,
				Skipped: true,
				Message: "not executable",
			})
			continue
		}

		result, thrown, err := e.call(
			ctx, PhaseExample, model.DescriptionName, target, ex.args,
		)
		if err != nil {
			if err = e.absorb(err); err != nil {
				return err
			}
			continue
		}
		if thrown {
			continue
		}

		entry := TraceEntry{
			Clause: model.DescriptionName,
			Phase:  PhaseExample,
			Target: target,
			Actual: result,
		}
		if ex.hasResult {
			entry.Type = "equals"
			entry.Expected = ex.result
			entry.Passed = realdom.Equal(ex.result, result)
			if entry.Passed {
				entry.Message = fmt.Sprintf("returned %v", result)
			} else {
				entry.Message = fmt.Sprintf(
					"expected %v, got %v", ex.result, result,
				)
			}
		} else {
			entry.Passed = true
			entry.Message = "returned"
		}
		e.trace.add(entry)
	}
	return nil
}
