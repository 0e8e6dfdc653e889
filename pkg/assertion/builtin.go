package assertion

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"

	"digital.vasic.praspel/pkg/realdom"
)

// regexCacheSize bounds the number of compiled patterns kept by
// the matches evaluator.
const regexCacheSize = 256

var regexCache = mustRegexCache()

func mustRegexCache() *lru.Cache[string, *regexp.Regexp] {
	c, err := lru.New[string, *regexp.Regexp](regexCacheSize)
	if err != nil {
		panic(err)
	}
	return c
}

// compilePattern returns a compiled pattern, reusing earlier
// compilations.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Add(pattern, re)
	return re, nil
}

// evaluateEquals checks that a value equals the expected value.
// Numbers compare by value regardless of their Go kind.
func evaluateEquals(
	predicate Definition,
	value any,
) (bool, string) {
	if realdom.Equal(predicate.Value, value) {
		return true, fmt.Sprintf("%v == %v", value, predicate.Value)
	}
	return false, fmt.Sprintf("%v != %v", value, predicate.Value)
}

// evaluateNotEquals is the negation of evaluateEquals.
func evaluateNotEquals(
	predicate Definition,
	value any,
) (bool, string) {
	if realdom.Equal(predicate.Value, value) {
		return false, fmt.Sprintf("%v == %v", value, predicate.Value)
	}
	return true, fmt.Sprintf("%v != %v", value, predicate.Value)
}

// compareNumbers builds a numeric comparison evaluator.
func compareNumbers(
	op string,
	cmp func(a, b float64) bool,
) Evaluator {
	return func(predicate Definition, value any) (bool, string) {
		actual, ok := toFloat64(value)
		if !ok {
			return false, "value is not a number"
		}
		expected, ok := toFloat64(predicate.Value)
		if !ok {
			return false, "expected value is not a number"
		}
		if cmp(actual, expected) {
			return true, fmt.Sprintf("%v %s %v", value, op, predicate.Value)
		}
		return false, fmt.Sprintf("not %v %s %v", value, op, predicate.Value)
	}
}

// evaluateInRange checks that a numeric value lies in the closed
// interval given by Values[0] and Values[1].
func evaluateInRange(
	predicate Definition,
	value any,
) (bool, string) {
	if len(predicate.Values) != 2 {
		return false, "in_range needs exactly two bounds"
	}
	lo, ok1 := toFloat64(predicate.Values[0])
	hi, ok2 := toFloat64(predicate.Values[1])
	if !ok1 || !ok2 {
		return false, "bounds are not numbers"
	}
	actual, ok := toFloat64(value)
	if !ok {
		return false, "value is not a number"
	}
	if actual >= lo && actual <= hi {
		return true, fmt.Sprintf("%v in [%v, %v]", value, lo, hi)
	}
	return false, fmt.Sprintf("%v outside [%v, %v]", value, lo, hi)
}

// evaluateNotEmpty checks that a value is non-nil and non-empty.
func evaluateNotEmpty(
	_ Definition,
	value any,
) (bool, string) {
	if value == nil {
		return false, "value is nil"
	}

	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return false, "string is empty"
		}
	case []any:
		if len(v) == 0 {
			return false, "array is empty"
		}
	case map[string]any:
		if len(v) == 0 {
			return false, "map is empty"
		}
	}

	return true, "value is not empty"
}

// evaluateContains checks that a string value contains the
// expected substring.
func evaluateContains(
	predicate Definition,
	value any,
) (bool, string) {
	str, ok := value.(string)
	if !ok {
		return false, "value is not a string"
	}

	expected, ok := predicate.Value.(string)
	if !ok {
		return false, "expected value is not a string"
	}

	if strings.Contains(str, expected) {
		return true, fmt.Sprintf("contains '%s'", expected)
	}

	return false, fmt.Sprintf(
		"does not contain '%s'", expected,
	)
}

// evaluateContainsAny checks that a string value contains at
// least one of the expected substrings.
func evaluateContainsAny(
	predicate Definition,
	value any,
) (bool, string) {
	str, ok := value.(string)
	if !ok {
		return false, "value is not a string"
	}

	var values []string
	switch v := predicate.Value.(type) {
	case string:
		values = strings.Split(v, ",")
	case []string:
		values = v
	default:
		for _, item := range predicate.Values {
			if s, ok := item.(string); ok {
				values = append(values, s)
			}
		}
	}

	for _, expected := range values {
		if strings.Contains(str, strings.TrimSpace(expected)) {
			return true, fmt.Sprintf(
				"contains '%s'", expected,
			)
		}
	}

	return false, fmt.Sprintf(
		"does not contain any of: %v", values,
	)
}

// evaluateMinLength checks that a string has at least Value
// characters.
func evaluateMinLength(
	predicate Definition,
	value any,
) (bool, string) {
	str, ok := value.(string)
	if !ok {
		return false, "value is not a string"
	}

	minLength, ok := toInt(predicate.Value)
	if !ok {
		return false, "expected value is not a number"
	}

	actual := utf8.RuneCountInString(str)
	if actual >= minLength {
		return true, fmt.Sprintf(
			"length %d >= %d", actual, minLength,
		)
	}

	return false, fmt.Sprintf(
		"length %d < %d", actual, minLength,
	)
}

// evaluateMaxLength checks that a string has at most Value
// characters.
func evaluateMaxLength(
	predicate Definition,
	value any,
) (bool, string) {
	str, ok := value.(string)
	if !ok {
		return false, "value is not a string"
	}

	maxLength, ok := toInt(predicate.Value)
	if !ok {
		return false, "expected value is not a number"
	}

	actual := utf8.RuneCountInString(str)
	if actual <= maxLength {
		return true, fmt.Sprintf(
			"length %d <= %d", actual, maxLength,
		)
	}

	return false, fmt.Sprintf(
		"length %d > %d", actual, maxLength,
	)
}

// evaluateMatches checks a string against a regular expression.
func evaluateMatches(
	predicate Definition,
	value any,
) (bool, string) {
	str, ok := value.(string)
	if !ok {
		return false, "value is not a string"
	}

	pattern, ok := predicate.Value.(string)
	if !ok {
		return false, "pattern is not a string"
	}

	re, err := compilePattern(pattern)
	if err != nil {
		return false, fmt.Sprintf("invalid pattern: %v", err)
	}

	if re.MatchString(str) {
		return true, fmt.Sprintf("matches /%s/", pattern)
	}
	return false, fmt.Sprintf("does not match /%s/", pattern)
}

// evaluateMinCount checks that a countable value (number, slice or
// map) meets a minimum count.
func evaluateMinCount(
	predicate Definition,
	value any,
) (bool, string) {
	count, ok := toCount(value)
	if !ok {
		return false, "value is not countable"
	}

	minCount, ok := toInt(predicate.Value)
	if !ok {
		return false, "expected value is not a number"
	}

	if count >= minCount {
		return true, fmt.Sprintf(
			"count %d >= %d", count, minCount,
		)
	}

	return false, fmt.Sprintf(
		"count %d < %d", count, minCount,
	)
}

// evaluateExactCount checks that a countable value exactly
// matches the expected count.
func evaluateExactCount(
	predicate Definition,
	value any,
) (bool, string) {
	count, ok := toCount(value)
	if !ok {
		return false, "value is not countable"
	}

	expected, ok := toInt(predicate.Value)
	if !ok {
		return false, "expected value is not a number"
	}

	if count == expected {
		return true, fmt.Sprintf(
			"count %d == %d", count, expected,
		)
	}

	return false, fmt.Sprintf(
		"count %d != %d", count, expected,
	)
}

// evaluateAllValid checks that every item in a slice is
// non-nil and non-empty.
func evaluateAllValid(
	_ Definition,
	value any,
) (bool, string) {
	items, ok := toSlice(value)
	if !ok {
		return false, "value is not an array"
	}

	for i, item := range items {
		if item == nil {
			return false, fmt.Sprintf(
				"item %d is nil", i,
			)
		}
		if str, ok := item.(string); ok && str == "" {
			return false, fmt.Sprintf(
				"item %d is empty", i,
			)
		}
	}

	return true, "all items are valid"
}

// evaluateNoDuplicates checks that a slice contains no
// duplicate values (compared via fmt.Sprintf("%v")).
func evaluateNoDuplicates(
	_ Definition,
	value any,
) (bool, string) {
	items, ok := toSlice(value)
	if !ok {
		return false, "value is not an array"
	}

	seen := make(map[string]bool, len(items))
	for _, item := range items {
		key := fmt.Sprintf("%v", item)
		if seen[key] {
			return false, fmt.Sprintf(
				"duplicate found: %s", key,
			)
		}
		seen[key] = true
	}

	return true, "no duplicates found"
}

// evaluateAllPass checks that all items in a slice of results
// have passed. Accepts []Result or []any with map entries
// containing a "passed" key.
func evaluateAllPass(
	_ Definition,
	value any,
) (bool, string) {
	results, ok := value.([]Result)
	if !ok {
		items, ok := value.([]any)
		if !ok {
			return false, "value is not an array of results"
		}
		for i, item := range items {
			if m, ok := item.(map[string]any); ok {
				if p, ok := m["passed"].(bool); ok && !p {
					return false, fmt.Sprintf(
						"item %d failed", i,
					)
				}
			}
		}
		return true, "all items passed"
	}

	for _, result := range results {
		if !result.Passed {
			return false, fmt.Sprintf(
				"predicate '%s' failed: %s",
				result.Type, result.Message,
			)
		}
	}

	return true, "all predicates passed"
}

// evaluateTypeOf checks the dynamic kind of a value against a
// type name: "nil", "bool", "int", "float", "number", "string",
// "slice" or "map".
func evaluateTypeOf(
	predicate Definition,
	value any,
) (bool, string) {
	expected, ok := predicate.Value.(string)
	if !ok {
		return false, "expected type is not a string"
	}

	actual := typeName(value)
	if actual == expected ||
		(expected == "number" && (actual == "int" || actual == "float")) {
		return true, fmt.Sprintf("value is %s", actual)
	}
	return false, fmt.Sprintf("value is %s, not %s", actual, expected)
}

// --- helpers ---

// typeName classifies a value into the names used by type_of.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Int64, reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		return "slice"
	case reflect.Map:
		return "map"
	}
	return reflect.TypeOf(v).String()
}

// toInt converts an any value to int.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	case int64:
		return int(n), true
	}
	return 0, false
}

// toFloat64 converts a numeric value of any kind to float64.
func toFloat64(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// toSlice converts any slice or array into []any.
func toSlice(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// toCount extracts an integer count from a value: numbers count
// as themselves, slices and maps by length.
func toCount(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case float64:
		return int(val), true
	case int64:
		return int(val), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	}
	return 0, false
}
