package assertion

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseAssertionString parses a compact predicate string of the
// form "type:value" into its components. If no colon is present
// the entire string is treated as the type and value is nil.
//
// Examples:
//
//	"matches:^a+$"   -> ("matches", "^a+$")
//	"not_empty"      -> ("not_empty", nil)
//	"min_length:100" -> ("min_length", "100")
func ParseAssertionString(
	s string,
) (predicateType string, value any) {
	parts := strings.SplitN(s, ":", 2)
	predicateType = parts[0]

	if len(parts) > 1 {
		value = parts[1]
	}

	return
}

// ParsePredicate parses the compact clause form
// "target type[:value]" used in contract banks.
//
// The value is decoded as a YAML scalar, so "10" becomes an int and
// "true" a bool. A value of the form "@name" becomes a Ref to
// another variable. For in_range and contains_any a comma separated
// value is split into Values.
//
// Examples:
//
//	`x greater_than:0`
//	`\result greater_or_equal:@x`
//	`n in_range:1,10`
func ParsePredicate(s string) (Definition, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Definition{}, fmt.Errorf(
			"predicate %q: want \"target type[:value]\"", s,
		)
	}

	def := Definition{Target: fields[0]}
	typ, raw := ParseAssertionString(fields[1])
	if typ == "" {
		return Definition{}, fmt.Errorf(
			"predicate %q: missing type", s,
		)
	}
	def.Type = typ

	str, ok := raw.(string)
	if !ok {
		return def, nil
	}

	switch {
	case strings.HasPrefix(str, "@"):
		def.Ref = strings.TrimPrefix(str, "@")
	case typ == "in_range" || typ == "contains_any":
		for _, part := range strings.Split(str, ",") {
			v, err := decodeScalar(strings.TrimSpace(part))
			if err != nil {
				return Definition{}, fmt.Errorf(
					"predicate %q: %w", s, err,
				)
			}
			def.Values = append(def.Values, v)
		}
	case typ == "matches":
		def.Value = str
	default:
		v, err := decodeScalar(str)
		if err != nil {
			return Definition{}, fmt.Errorf(
				"predicate %q: %w", s, err,
			)
		}
		def.Value = v
	}

	return def, nil
}

// decodeScalar turns a textual scalar into its YAML-typed value.
func decodeScalar(s string) (any, error) {
	if s == "" {
		return "", nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("decode value %q: %w", s, err)
	}
	return v, nil
}
