// Package assertion provides the predicate engine behind the
// executable contract clauses. A predicate names an evaluator type,
// the variable it constrains and an expected value; the engine ships
// with comparison, string and collection evaluators and accepts
// custom ones.
package assertion

// Definition describes a single predicate over a named variable.
type Definition struct {
	// Type is the evaluator type (e.g., "greater_than",
	// "matches", "min_length").
	Type string `json:"type" yaml:"type"`

	// Target is the variable the predicate constrains. The
	// return value of a callable is addressed as `\result`.
	Target string `json:"target" yaml:"target"`

	// Value is the expected value for single-value predicates.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`

	// Values holds expected values for multi-value predicates
	// (e.g., "contains_any", "in_range").
	Values []any `json:"values,omitempty" yaml:"values,omitempty"`

	// Ref names another variable whose value is used as the
	// expected value, e.g. `\result greater_or_equal x`.
	Ref string `json:"ref,omitempty" yaml:"ref,omitempty"`

	// Message is a human-readable description shown on
	// failure.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Result captures the outcome of evaluating a single predicate.
type Result struct {
	// Type is the evaluator type that was applied.
	Type string `json:"type"`

	// Target is the variable checked.
	Target string `json:"target"`

	// Expected is the value the predicate expected.
	Expected any `json:"expected"`

	// Actual is the value that was observed.
	Actual any `json:"actual"`

	// Passed indicates whether the predicate held.
	Passed bool `json:"passed"`

	// Message is a human-readable description of the outcome.
	Message string `json:"message"`
}
