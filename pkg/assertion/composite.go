package assertion

import "fmt"

// AllPassComposite evaluates every predicate and reports whether
// all of them held. The first failure is named in the message.
func AllPassComposite(
	engine Engine,
	predicates []Definition,
	values map[string]any,
) Result {
	results := engine.EvaluateAll(predicates, values)

	for _, r := range results {
		if !r.Passed {
			return Result{
				Type:   "all_pass",
				Passed: false,
				Message: fmt.Sprintf(
					"predicate '%s' on '%s' failed: %s",
					r.Type, r.Target, r.Message,
				),
			}
		}
	}

	return Result{
		Type:   "all_pass",
		Passed: true,
		Message: fmt.Sprintf(
			"all %d predicates passed", len(results),
		),
	}
}

// AnyPassComposite evaluates every predicate and reports whether
// at least one held.
func AnyPassComposite(
	engine Engine,
	predicates []Definition,
	values map[string]any,
) Result {
	results := engine.EvaluateAll(predicates, values)

	for _, r := range results {
		if r.Passed {
			return Result{
				Type:   "any_pass",
				Passed: true,
				Message: fmt.Sprintf(
					"predicate '%s' on '%s' passed",
					r.Type, r.Target,
				),
			}
		}
	}

	return Result{
		Type:   "any_pass",
		Passed: false,
		Message: fmt.Sprintf(
			"none of %d predicates passed",
			len(results),
		),
	}
}

// CompositeAllPass returns an Evaluator that applies a fixed set
// of sub-predicates to the value and requires all to hold. It lets
// a conjunction be registered under its own type name.
func CompositeAllPass(
	engine Engine,
	sub []Definition,
) Evaluator {
	return func(_ Definition, value any) (bool, string) {
		r := AllPassComposite(engine, retarget(sub), map[string]any{
			compositeTarget: value,
		})
		return r.Passed, r.Message
	}
}

// CompositeAnyPass returns an Evaluator that applies a fixed set
// of sub-predicates to the value and requires at least one to hold.
func CompositeAnyPass(
	engine Engine,
	sub []Definition,
) Evaluator {
	return func(_ Definition, value any) (bool, string) {
		r := AnyPassComposite(engine, retarget(sub), map[string]any{
			compositeTarget: value,
		})
		return r.Passed, r.Message
	}
}

const compositeTarget = "value"

// retarget points every sub-predicate at the composite's value.
func retarget(sub []Definition) []Definition {
	out := make([]Definition, len(sub))
	for i, d := range sub {
		d.Target = compositeTarget
		d.Ref = ""
		out[i] = d
	}
	return out
}
