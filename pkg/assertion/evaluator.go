package assertion

// Evaluator is a function that evaluates a single predicate type
// against a concrete value. It returns whether the predicate held
// and a human-readable explanation.
type Evaluator func(predicate Definition, value any) (bool, string)
