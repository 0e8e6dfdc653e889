package checker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrace_Folding(t *testing.T) {
	var tr Trace
	assert.True(t, tr.Passed())
	assert.NoError(t, tr.Err())

	tr.add(TraceEntry{Clause: "requires", Target: "x", Passed: true})
	tr.add(TraceEntry{Clause: "ensures", Target: "y", Skipped: true})
	assert.True(t, tr.Passed())
	assert.Len(t, tr.Skipped(), 1)
	assert.NoError(t, tr.Err())

	tr.add(TraceEntry{Clause: "ensures", Target: `\result`, Type: "equals", Message: "want 3"})
	var v *Violation
	require.ErrorAs(t, tr.Err(), &v)
	assert.Equal(t, `\result`, v.Target)

	tr.add(TraceEntry{Clause: "invariant", Target: "n", Type: "domain"})
	var g *GroupViolation
	require.ErrorAs(t, tr.Err(), &g)
	require.Len(t, g.Violations, 2)
	assert.Equal(t, "ensures", g.Violations[0].Clause)
	assert.Equal(t, "invariant", g.Violations[1].Clause)
	assert.Equal(t, []string{
		`ensures \result equals: want 3`,
		"invariant n domain",
	}, tr.failureMessages())
}

func TestViolation_Error(t *testing.T) {
	tests := []struct {
		name string
		v    *Violation
		want string
	}{
		{
			"clause and target",
			&Violation{Clause: "requires", Target: "x", Message: "too big"},
			"contract violation in requires x: too big",
		},
		{
			"target only",
			&Violation{Target: "add", Message: "failed"},
			"contract violation in add: failed",
		},
		{
			"cause only",
			&Violation{Err: errors.New("boom")},
			"contract violation: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Error())
		})
	}
}

func TestGroupViolation_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	g := &GroupViolation{Violations: []*Violation{
		{Clause: "requires", Target: "a", Message: "m1"},
		{Clause: "requires", Target: "b", Message: "m2", Err: cause},
	}}

	assert.Equal(t,
		"2 contract violations: contract violation in requires a: m1; "+
			"contract violation in requires b: m2",
		g.Error())
	assert.ErrorIs(t, g, cause)

	var v *Violation
	require.ErrorAs(t, g, &v)
	assert.Equal(t, "a", v.Target)
}

func TestFold(t *testing.T) {
	assert.NoError(t, fold(nil))

	one := &Violation{Message: "x"}
	assert.Same(t, one, fold([]*Violation{one}))

	var g *GroupViolation
	assert.ErrorAs(t, fold([]*Violation{one, one}), &g)
}

func TestParseExample(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		ok        bool
		args      map[string]any
		result    any
		hasResult bool
	}{
		{"prose", "add(1, 2) = 3", false, nil, nil, false},
		{"mapping without args", "{x: 1}", false, nil, nil, false},
		{"args not a mapping", "{args: [1, 2]}", false, nil, nil, false},
		{"empty document", "", false, nil, nil, false},
		{
			"yaml flow",
			"{args: {x: 1, y: 2}, result: 3}",
			true, map[string]any{"x": 1, "y": 2}, 3, true,
		},
		{
			"json without result",
			`{"args": {"s": "hi"}}`,
			true, map[string]any{"s": "hi"}, nil, false,
		},
		{
			"null args and null result",
			"args:\nresult:\n",
			true, map[string]any{}, nil, true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, ok := parseExample(tt.text)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.args, ex.args)
			assert.Equal(t, tt.result, ex.result)
			assert.Equal(t, tt.hasResult, ex.hasResult)
		})
	}
}
