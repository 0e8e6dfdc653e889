package checker

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfiguration is returned when a checker is given a
// missing or malformed specification, callable or data set.
var ErrInvalidConfiguration = errors.New("invalid checker configuration")

// ErrNoData is returned by Evaluate when no data is bound and
// automatic generation is disabled.
var ErrNoData = fmt.Errorf(
	"%w: no data bound and generation disabled",
	ErrInvalidConfiguration,
)

// ErrGeneration wraps the error returned by Evaluate when generate
// mode cannot produce data satisfying the requires clause. The
// underlying *Violation or *GroupViolation stays reachable with
// errors.As.
var ErrGeneration = errors.New("data generation failed")

// Violation describes one contract failure.
type Violation struct {
	Clause   string
	Target   string
	Type     string
	Expected any
	Actual   any
	Message  string
	// Err is the underlying cause, when the violation came from
	// a failing generator or callable.
	Err error
}

func (v *Violation) Error() string {
	msg := v.Message
	if msg == "" && v.Err != nil {
		msg = v.Err.Error()
	}

	where := strings.TrimSpace(v.Clause + " " + v.Target)
	if where == "" {
		return "contract violation: " + msg
	}
	return fmt.Sprintf("contract violation in %s: %s", where, msg)
}

// Unwrap returns the underlying cause.
func (v *Violation) Unwrap() error { return v.Err }

// GroupViolation aggregates several violations found in one
// evaluation, in evaluation order.
type GroupViolation struct {
	Violations []*Violation
}

func (g *GroupViolation) Error() string {
	parts := make([]string, len(g.Violations))
	for i, v := range g.Violations {
		parts[i] = v.Error()
	}
	return fmt.Sprintf(
		"%d contract violations: %s",
		len(g.Violations), strings.Join(parts, "; "),
	)
}

// Unwrap exposes the members to errors.Is and errors.As.
func (g *GroupViolation) Unwrap() []error {
	errs := make([]error, len(g.Violations))
	for i, v := range g.Violations {
		errs[i] = v
	}
	return errs
}

// fold returns nil, the single violation, or a group.
func fold(violations []*Violation) error {
	switch len(violations) {
	case 0:
		return nil
	case 1:
		return violations[0]
	default:
		return &GroupViolation{Violations: violations}
	}
}
