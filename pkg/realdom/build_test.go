package realdom

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want string
	}{
		{"integer", []any{0, 10}, "integer(0, 10)"},
		{"float", []any{0, 2.5}, "float(0, 2.5)"},
		{"boolean", nil, "boolean()"},
		{"string", []any{1, 4}, "string(1, 4)"},
		{"enum", []any{"a", "b"}, `enum("a", "b")`},
		{"const", []any{7}, "const(7)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Build(tt.name, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.name, d.Name())
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []any
	}{
		{"nope", nil},
		{"integer", []any{1}},
		{"integer", []any{"a", 2}},
		{"integer", []any{5, 1}},
		{"float", []any{2.0, 1.0}},
		{"boolean", []any{true}},
		{"string", []any{-1, 2}},
		{"enum", nil},
		{"const", []any{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.name, tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "realdom: ")
		})
	}
}

type even struct{}

func (even) Name() string { return "even" }

func (even) Predicate(v any) bool {
	n, ok := v.(int)
	return ok && n%2 == 0
}

func (even) Sample(r *rand.Rand) (any, error) { return 2 * r.IntN(50), nil }

func (even) String() string { return "even()" }

func TestRegister(t *testing.T) {
	require.NoError(t, Register("even_test", func([]any) (Domain, error) {
		return even{}, nil
	}))
	assert.Contains(t, Names(), "even_test")

	d, err := Build("even_test", nil)
	require.NoError(t, err)
	assert.Equal(t, "even()", d.String())

	err = Register("integer", func([]any) (Domain, error) { return even{}, nil })
	assert.Error(t, err)
}
