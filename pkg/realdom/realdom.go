// Package realdom provides realistic domains: value sets that can
// both validate a value (Predicate) and synthesize one (Sample).
// Contracts bind each declared variable to a domain, which is what
// lets a checker generate input data on its own.
package realdom

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"reflect"
	"strings"
)

// ErrEmptyDomain is returned by Sample when a domain has no value
// to produce.
var ErrEmptyDomain = errors.New("realdom: empty domain")

// Domain is a realistic domain.
type Domain interface {
	// Name returns the domain family (e.g., "integer").
	Name() string

	// Predicate reports whether v belongs to the domain.
	Predicate(v any) bool

	// Sample draws a value from the domain using r. The same
	// source state always yields the same value.
	Sample(r *rand.Rand) (any, error)

	// String renders the domain with its arguments, e.g.
	// "integer(0, 10)".
	String() string
}

// Integer is a closed range of integers.
type Integer struct {
	Min, Max int64
}

// NewInteger returns the integer domain [min, max].
func NewInteger(min, max int64) *Integer {
	return &Integer{Min: min, Max: max}
}

// Name returns "integer".
func (*Integer) Name() string { return "integer" }

// Predicate accepts any integer kind, and floats holding an
// integral value, inside the range.
func (d *Integer) Predicate(v any) bool {
	n, ok := toInt64(v)
	if !ok {
		return false
	}
	return n >= d.Min && n <= d.Max
}

// Sample returns an int inside the range.
func (d *Integer) Sample(r *rand.Rand) (any, error) {
	if d.Max < d.Min {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDomain, d)
	}
	span := uint64(d.Max) - uint64(d.Min)
	if span == math.MaxUint64 {
		return int(int64(r.Uint64())), nil
	}
	return int(d.Min + int64(r.Uint64N(span+1))), nil
}

func (d *Integer) String() string {
	return fmt.Sprintf("integer(%d, %d)", d.Min, d.Max)
}

// Float is a closed range of floats.
type Float struct {
	Min, Max float64
}

// NewFloat returns the float domain [min, max].
func NewFloat(min, max float64) *Float {
	return &Float{Min: min, Max: max}
}

// Name returns "float".
func (*Float) Name() string { return "float" }

// Predicate accepts any numeric value inside the range.
func (d *Float) Predicate(v any) bool {
	f, ok := toFloat64(v)
	if !ok || math.IsNaN(f) {
		return false
	}
	return f >= d.Min && f <= d.Max
}

// Sample returns a float64 inside the range.
func (d *Float) Sample(r *rand.Rand) (any, error) {
	if d.Max < d.Min || math.IsNaN(d.Min) || math.IsNaN(d.Max) {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDomain, d)
	}
	return d.Min + r.Float64()*(d.Max-d.Min), nil
}

func (d *Float) String() string {
	return fmt.Sprintf("float(%g, %g)", d.Min, d.Max)
}

// Boolean is {true, false}.
type Boolean struct{}

// NewBoolean returns the boolean domain.
func NewBoolean() *Boolean { return &Boolean{} }

// Name returns "boolean".
func (*Boolean) Name() string { return "boolean" }

// Predicate accepts bool values.
func (*Boolean) Predicate(v any) bool {
	_, ok := v.(bool)
	return ok
}

// Sample returns true or false.
func (*Boolean) Sample(r *rand.Rand) (any, error) {
	return r.IntN(2) == 1, nil
}

func (*Boolean) String() string { return "boolean()" }

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// String is the set of ASCII letter strings whose length lies in
// [MinLen, MaxLen]. Predicate counts runes.
type String struct {
	MinLen, MaxLen int
}

// NewString returns the string domain with the given length bounds.
func NewString(minLen, maxLen int) *String {
	return &String{MinLen: minLen, MaxLen: maxLen}
}

// Name returns "string".
func (*String) Name() string { return "string" }

// Predicate accepts strings of a valid length.
func (d *String) Predicate(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	n := len([]rune(s))
	return n >= d.MinLen && n <= d.MaxLen
}

// Sample returns a string of letters.
func (d *String) Sample(r *rand.Rand) (any, error) {
	if d.MaxLen < d.MinLen || d.MaxLen < 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDomain, d)
	}
	lo := max(d.MinLen, 0)
	n := lo + r.IntN(d.MaxLen-lo+1)
	var sb strings.Builder
	sb.Grow(n)
	for range n {
		sb.WriteByte(letters[r.IntN(len(letters))])
	}
	return sb.String(), nil
}

func (d *String) String() string {
	return fmt.Sprintf("string(%d, %d)", d.MinLen, d.MaxLen)
}

// Enum is a finite set of values.
type Enum struct {
	Values []any
}

// NewEnum returns the domain holding exactly values.
func NewEnum(values ...any) *Enum {
	return &Enum{Values: values}
}

// Name returns "enum".
func (*Enum) Name() string { return "enum" }

// Predicate accepts values equal to one of the members. Numbers
// compare by value, so 3 and 3.0 are equal.
func (d *Enum) Predicate(v any) bool {
	for _, m := range d.Values {
		if Equal(m, v) {
			return true
		}
	}
	return false
}

// Sample returns one of the members.
func (d *Enum) Sample(r *rand.Rand) (any, error) {
	if len(d.Values) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDomain, d)
	}
	return d.Values[r.IntN(len(d.Values))], nil
}

func (d *Enum) String() string {
	return "enum(" + joinValues(d.Values) + ")"
}

// Constant holds a single value.
type Constant struct {
	Value any
}

// NewConstant returns the domain {v}.
func NewConstant(v any) *Constant {
	return &Constant{Value: v}
}

// Name returns "const".
func (*Constant) Name() string { return "const" }

// Predicate accepts the constant.
func (d *Constant) Predicate(v any) bool { return Equal(d.Value, v) }

// Sample returns the constant.
func (d *Constant) Sample(_ *rand.Rand) (any, error) { return d.Value, nil }

func (d *Constant) String() string {
	return "const(" + formatValue(d.Value) + ")"
}

// Disjunction is the union of several domains.
type Disjunction struct {
	Domains []Domain
}

// Or returns the union of domains.
func Or(domains ...Domain) *Disjunction {
	return &Disjunction{Domains: domains}
}

// Name returns "or".
func (*Disjunction) Name() string { return "or" }

// Predicate accepts v if any member domain accepts it.
func (d *Disjunction) Predicate(v any) bool {
	for _, m := range d.Domains {
		if m.Predicate(v) {
			return true
		}
	}
	return false
}

// Sample picks a member domain uniformly, then samples it.
func (d *Disjunction) Sample(r *rand.Rand) (any, error) {
	if len(d.Domains) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDomain, d)
	}
	return d.Domains[r.IntN(len(d.Domains))].Sample(r)
}

func (d *Disjunction) String() string {
	parts := make([]string, len(d.Domains))
	for i, m := range d.Domains {
		parts[i] = m.String()
	}
	return strings.Join(parts, " or ")
}

// Equal compares two values, treating numbers of any kind by value.
func Equal(a, b any) bool {
	fa, okA := toFloat64(a)
	fb, okB := toFloat64(b)
	if okA && okB {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func joinValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatValue(v)
	}
	return strings.Join(parts, ", ")
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), n <= math.MaxInt64
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case float32:
		return floatToInt64(float64(n))
	case float64:
		return floatToInt64(n)
	}
	return 0, false
}

// floatToInt64 accepts only whole values int64 can hold. 2^63 itself
// is representable as a float64 but not as an int64.
func floatToInt64(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		i, ok := toInt64(n)
		return float64(i), ok
	}
	return 0, false
}
