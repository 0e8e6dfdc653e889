package assertion

import (
	"fmt"
	"sort"
	"sync"
)

// Engine defines the interface for predicate evaluation engines.
type Engine interface {
	// Evaluate checks a single predicate against the given
	// value.
	Evaluate(predicate Definition, value any) Result

	// EvaluateAll checks multiple predicates against a map of
	// named values. Each predicate's Target field is used as
	// the key into the values map, and its Ref field, when set,
	// names the variable holding the expected value.
	EvaluateAll(
		predicates []Definition,
		values map[string]any,
	) []Result

	// Register adds a custom evaluator for the given predicate
	// type. Returns an error if the type is already registered.
	Register(predicateType string, evaluator Evaluator) error
}

// DefaultEngine is the standard Engine implementation. It is
// safe for concurrent use.
type DefaultEngine struct {
	mu         sync.RWMutex
	evaluators map[string]Evaluator
}

// NewEngine creates a DefaultEngine with the built-in evaluators
// pre-registered.
func NewEngine() *DefaultEngine {
	e := &DefaultEngine{
		evaluators: make(map[string]Evaluator),
	}
	e.registerDefaults()
	return e
}

// registerDefaults registers the built-in evaluators.
func (e *DefaultEngine) registerDefaults() {
	e.evaluators["equals"] = evaluateEquals
	e.evaluators["not_equals"] = evaluateNotEquals
	e.evaluators["greater_than"] = compareNumbers(">",
		func(a, b float64) bool { return a > b })
	e.evaluators["greater_or_equal"] = compareNumbers(">=",
		func(a, b float64) bool { return a >= b })
	e.evaluators["less_than"] = compareNumbers("<",
		func(a, b float64) bool { return a < b })
	e.evaluators["less_or_equal"] = compareNumbers("<=",
		func(a, b float64) bool { return a <= b })
	e.evaluators["in_range"] = evaluateInRange
	e.evaluators["not_empty"] = evaluateNotEmpty
	e.evaluators["contains"] = evaluateContains
	e.evaluators["contains_any"] = evaluateContainsAny
	e.evaluators["min_length"] = evaluateMinLength
	e.evaluators["max_length"] = evaluateMaxLength
	e.evaluators["matches"] = evaluateMatches
	e.evaluators["min_count"] = evaluateMinCount
	e.evaluators["exact_count"] = evaluateExactCount
	e.evaluators["all_valid"] = evaluateAllValid
	e.evaluators["no_duplicates"] = evaluateNoDuplicates
	e.evaluators["all_pass"] = evaluateAllPass
	e.evaluators["type_of"] = evaluateTypeOf
}

// Register adds a custom evaluator for the given predicate type.
// Returns an error if the type is already registered.
func (e *DefaultEngine) Register(
	predicateType string,
	evaluator Evaluator,
) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.evaluators[predicateType]; exists {
		return fmt.Errorf(
			"predicate type already registered: %s",
			predicateType,
		)
	}

	e.evaluators[predicateType] = evaluator
	return nil
}

// Evaluate runs a single predicate against the provided value.
func (e *DefaultEngine) Evaluate(
	predicate Definition,
	value any,
) Result {
	e.mu.RLock()
	evaluator, exists := e.evaluators[predicate.Type]
	e.mu.RUnlock()

	if !exists {
		return Result{
			Type:   predicate.Type,
			Target: predicate.Target,
			Passed: false,
			Message: fmt.Sprintf(
				"unknown predicate type: %s",
				predicate.Type,
			),
		}
	}

	passed, message := evaluator(predicate, value)
	if !passed && predicate.Message != "" {
		message = predicate.Message + ": " + message
	}

	expected := predicate.Value
	if expected == nil && len(predicate.Values) > 0 {
		expected = predicate.Values
	}

	return Result{
		Type:     predicate.Type,
		Target:   predicate.Target,
		Expected: expected,
		Actual:   value,
		Passed:   passed,
		Message:  message,
	}
}

// EvaluateAll runs multiple predicates against a map of named
// values. If a target or a referenced variable is missing, the
// predicate fails.
func (e *DefaultEngine) EvaluateAll(
	predicates []Definition,
	values map[string]any,
) []Result {
	results := make([]Result, 0, len(predicates))

	for _, p := range predicates {
		value, exists := values[p.Target]
		if !exists {
			results = append(results, Result{
				Type:   p.Type,
				Target: p.Target,
				Passed: false,
				Message: fmt.Sprintf(
					"target not found: %s", p.Target,
				),
			})
			continue
		}

		if p.Ref != "" {
			ref, ok := values[p.Ref]
			if !ok {
				results = append(results, Result{
					Type:   p.Type,
					Target: p.Target,
					Actual: value,
					Passed: false,
					Message: fmt.Sprintf(
						"reference not found: %s", p.Ref,
					),
				})
				continue
			}
			p.Value = ref
		}

		results = append(results, e.Evaluate(p, value))
	}

	return results
}

// HasEvaluator returns true if the given predicate type has a
// registered evaluator.
func (e *DefaultEngine) HasEvaluator(
	predicateType string,
) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, exists := e.evaluators[predicateType]
	return exists
}

// Types returns the registered predicate types, sorted.
func (e *DefaultEngine) Types() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]string, 0, len(e.evaluators))
	for name := range e.evaluators {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
