package assertion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssertionString_TypeAndValue(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		expectedType string
		expectedVal  any
	}{
		{
			name:         "matches with pattern",
			input:        "matches:^a+$",
			expectedType: "matches",
			expectedVal:  "^a+$",
		},
		{
			name:         "not_empty without value",
			input:        "not_empty",
			expectedType: "not_empty",
			expectedVal:  nil,
		},
		{
			name:         "value with colons",
			input:        "contains:http://example.com",
			expectedType: "contains",
			expectedVal:  "http://example.com",
		},
		{
			name:         "empty string",
			input:        "",
			expectedType: "",
			expectedVal:  nil,
		},
		{
			name:         "type only with trailing colon",
			input:        "not_empty:",
			expectedType: "not_empty",
			expectedVal:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aType, aValue := ParseAssertionString(tt.input)
			assert.Equal(t, tt.expectedType, aType)
			assert.Equal(t, tt.expectedVal, aValue)
		})
	}
}

func TestParsePredicate(t *testing.T) {
	tests := []struct {
		input string
		want  Definition
	}{
		{
			`x greater_than:0`,
			Definition{Target: "x", Type: "greater_than", Value: 0},
		},
		{
			`\result greater_or_equal:@x`,
			Definition{Target: `\result`, Type: "greater_or_equal", Ref: "x"},
		},
		{
			`n in_range:1,10`,
			Definition{Target: "n", Type: "in_range", Values: []any{1, 10}},
		},
		{
			`s contains_any:foo,bar`,
			Definition{Target: "s", Type: "contains_any", Values: []any{"foo", "bar"}},
		},
		{
			`s matches:^[0-9]+$`,
			Definition{Target: "s", Type: "matches", Value: "^[0-9]+$"},
		},
		{
			`flag equals:true`,
			Definition{Target: "flag", Type: "equals", Value: true},
		},
		{
			`s not_empty`,
			Definition{Target: "s", Type: "not_empty"},
		},
		{
			`f less_than:2.5`,
			Definition{Target: "f", Type: "less_than", Value: 2.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePredicate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePredicate_Errors(t *testing.T) {
	for _, input := range []string{
		"", "onlytarget", "a b c", "x :3", "x equals:[1,",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ParsePredicate(input)
			assert.Error(t, err)
		})
	}
}
