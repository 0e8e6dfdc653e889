package realdom

import (
	"fmt"
	"sort"
	"sync"
)

// Constructor builds a domain from positional arguments, as they
// appear in a declarative contract (e.g. integer(0, 10)).
type Constructor func(args []any) (Domain, error)

var (
	constructorsMu sync.RWMutex
	constructors   = map[string]Constructor{
		"integer": buildInteger,
		"float":   buildFloat,
		"boolean": buildBoolean,
		"string":  buildString,
		"enum":    buildEnum,
		"const":   buildConst,
	}
)

// Register adds a named domain constructor. It returns an error if
// the name is taken.
func Register(name string, c Constructor) error {
	constructorsMu.Lock()
	defer constructorsMu.Unlock()

	if _, exists := constructors[name]; exists {
		return fmt.Errorf("realdom: domain already registered: %s", name)
	}
	constructors[name] = c
	return nil
}

// Names returns the registered domain names, sorted.
func Names() []string {
	constructorsMu.RLock()
	defer constructorsMu.RUnlock()

	out := make([]string, 0, len(constructors))
	for name := range constructors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Build constructs the named domain.
func Build(name string, args []any) (Domain, error) {
	constructorsMu.RLock()
	c, ok := constructors[name]
	constructorsMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("realdom: unknown domain: %s", name)
	}
	d, err := c(args)
	if err != nil {
		return nil, fmt.Errorf("realdom: %s: %w", name, err)
	}
	return d, nil
}

func buildInteger(args []any) (Domain, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("want 2 arguments, got %d", len(args))
	}
	lo, ok1 := toInt64(args[0])
	hi, ok2 := toInt64(args[1])
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("bounds must be integers")
	}
	if hi < lo {
		return nil, fmt.Errorf("empty range [%d, %d]", lo, hi)
	}
	return NewInteger(lo, hi), nil
}

func buildFloat(args []any) (Domain, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("want 2 arguments, got %d", len(args))
	}
	lo, ok1 := toFloat64(args[0])
	hi, ok2 := toFloat64(args[1])
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("bounds must be numbers")
	}
	if hi < lo {
		return nil, fmt.Errorf("empty range [%g, %g]", lo, hi)
	}
	return NewFloat(lo, hi), nil
}

func buildBoolean(args []any) (Domain, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("want no arguments, got %d", len(args))
	}
	return NewBoolean(), nil
}

func buildString(args []any) (Domain, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("want 2 arguments, got %d", len(args))
	}
	lo, ok1 := toInt64(args[0])
	hi, ok2 := toInt64(args[1])
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("lengths must be integers")
	}
	if lo < 0 || hi < lo {
		return nil, fmt.Errorf("invalid lengths [%d, %d]", lo, hi)
	}
	return NewString(int(lo), int(hi)), nil
}

func buildEnum(args []any) (Domain, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("want at least 1 argument")
	}
	return NewEnum(args...), nil
}

func buildConst(args []any) (Domain, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("want 1 argument, got %d", len(args))
	}
	return NewConstant(args[0]), nil
}
