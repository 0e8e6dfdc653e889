package checker

import (
	"fmt"
	"strings"
)

// Phase identifies when during an evaluation an entry was
// recorded.
type Phase string

const (
	PhasePre             Phase = "pre"
	PhaseInvariantBefore Phase = "invariant-before"
	PhaseInvoke          Phase = "invoke"
	PhasePost            Phase = "post"
	PhaseInvariantAfter  Phase = "invariant-after"
	PhaseExample         Phase = "example"
)

// TraceEntry is one checked (or skipped) domain membership,
// predicate, invocation or example.
type TraceEntry struct {
	Clause   string `json:"clause"`
	Phase    Phase  `json:"phase"`
	Target   string `json:"target"`
	Type     string `json:"type,omitempty"`
	Expected any    `json:"expected,omitempty"`
	Actual   any    `json:"actual,omitempty"`
	Passed   bool   `json:"passed"`
	Skipped  bool   `json:"skipped,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Failed reports whether the entry was checked and did not pass.
func (e TraceEntry) Failed() bool {
	return !e.Passed && !e.Skipped
}

func (e TraceEntry) String() string {
	head := strings.TrimSpace(
		fmt.Sprintf("%s %s %s", e.Clause, e.Target, e.Type),
	)
	if e.Message == "" {
		return head
	}
	return head + ": " + e.Message
}

func (e TraceEntry) violation() *Violation {
	return &Violation{
		Clause:   e.Clause,
		Target:   e.Target,
		Type:     e.Type,
		Expected: e.Expected,
		Actual:   e.Actual,
		Message:  e.Message,
	}
}

// Trace records what an evaluation checked. Pass a non-nil *Trace
// to Evaluate to receive one; its previous content is replaced.
type Trace struct {
	Checker  string         `json:"checker"`
	Subject  string         `json:"subject"`
	Rendered string         `json:"rendered,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Result   any            `json:"result,omitempty"`
	Entries  []TraceEntry   `json:"entries"`
}

// Passed reports whether no checked entry failed.
func (t *Trace) Passed() bool {
	for _, e := range t.Entries {
		if e.Failed() {
			return false
		}
	}
	return true
}

// Failures returns the failed entries in evaluation order.
func (t *Trace) Failures() []TraceEntry {
	var out []TraceEntry
	for _, e := range t.Entries {
		if e.Failed() {
			out = append(out, e)
		}
	}
	return out
}

// Skipped returns the entries that were not checked.
func (t *Trace) Skipped() []TraceEntry {
	var out []TraceEntry
	for _, e := range t.Entries {
		if e.Skipped {
			out = append(out, e)
		}
	}
	return out
}

// Err folds the failures into nil, a *Violation, or a
// *GroupViolation when more than one entry failed.
func (t *Trace) Err() error {
	failures := t.Failures()
	violations := make([]*Violation, len(failures))
	for i, f := range failures {
		violations[i] = f.violation()
	}
	return fold(violations)
}

func (t *Trace) add(e TraceEntry) {
	t.Entries = append(t.Entries, e)
}

func (t *Trace) failureMessages() []string {
	failures := t.Failures()
	if len(failures) == 0 {
		return nil
	}
	out := make([]string, len(failures))
	for i, f := range failures {
		out[i] = f.String()
	}
	return out
}
