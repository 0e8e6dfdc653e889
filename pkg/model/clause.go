// Package model holds the in-memory form of a contract: a
// Specification made of named clauses. The model is a typed
// container only; evaluation lives in the checker package.
package model

import (
	"errors"
	"fmt"
	"slices"

	"digital.vasic.praspel/pkg/assertion"
	"digital.vasic.praspel/pkg/realdom"
)

// Clause names. A Specification stores at most one clause per name.
const (
	DescriptionName = "description"
	RequiresName    = "requires"
	EnsuresName     = "ensures"
	InvariantName   = "invariant"
	ThrowableName   = "throwable"
)

// ResultVariable is the reserved variable name bound to the value
// returned by the callable under test.
const ResultVariable = `\result`

// Clause is a named fragment of a contract.
type Clause interface {
	// Name returns the identity under which the clause is stored
	// in a Specification.
	Name() string
}

// Description is the @description clause. It carries free-form
// usage examples.
type Description struct {
	examples *Examples
}

// NewDescription creates a Description with no examples.
func NewDescription() *Description {
	return &Description{examples: NewExamples()}
}

// Name returns DescriptionName.
func (*Description) Name() string { return DescriptionName }

// Examples returns the example store.
func (d *Description) Examples() *Examples {
	if d.examples == nil {
		d.examples = NewExamples()
	}
	return d.examples
}

// Variable declares an input or output slot constrained by a
// realistic domain.
type Variable struct {
	Name   string
	Domain realdom.Domain
}

// Block is the shared body of the clauses with executable
// semantics: ordered variable declarations followed by ordered
// predicates.
type Block struct {
	variables  []Variable
	predicates []assertion.Definition
}

// Declare binds name to domain. Redeclaring a name replaces its
// domain in place.
func (b *Block) Declare(name string, domain realdom.Domain) *Block {
	for i := range b.variables {
		if b.variables[i].Name == name {
			b.variables[i].Domain = domain
			return b
		}
	}
	b.variables = append(b.variables, Variable{Name: name, Domain: domain})
	return b
}

// Variable returns the declaration for name.
func (b *Block) Variable(name string) (Variable, bool) {
	for _, v := range b.variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// Variables returns the declarations in declaration order.
func (b *Block) Variables() []Variable {
	return slices.Clone(b.variables)
}

// Assert appends a predicate.
func (b *Block) Assert(def assertion.Definition) *Block {
	b.predicates = append(b.predicates, def)
	return b
}

// Predicates returns the predicates in declaration order.
func (b *Block) Predicates() []assertion.Definition {
	return slices.Clone(b.predicates)
}

// Empty reports whether the block declares nothing.
func (b *Block) Empty() bool {
	return len(b.variables) == 0 && len(b.predicates) == 0
}

// Requires is the @requires clause (preconditions). Its variables
// describe the inputs that data generation must produce.
type Requires struct{ Block }

// Name returns RequiresName.
func (*Requires) Name() string { return RequiresName }

// Ensures is the @ensures clause (postconditions). It may declare
// ResultVariable.
type Ensures struct{ Block }

// Name returns EnsuresName.
func (*Ensures) Name() string { return EnsuresName }

// Invariant is the @invariant clause, checked both before and
// after the invocation.
type Invariant struct{ Block }

// Name returns InvariantName.
func (*Invariant) Name() string { return InvariantName }

// Kinder is implemented by errors that expose a stable kind used
// to match @throwable declarations.
type Kinder interface {
	Kind() string
}

// Throwable is the @throwable clause: the error kinds a callable is
// allowed to fail with.
type Throwable struct {
	kinds []string
}

// Name returns ThrowableName.
func (*Throwable) Name() string { return ThrowableName }

// Declare adds kind to the allowed list.
func (t *Throwable) Declare(kind string) *Throwable {
	if !slices.Contains(t.kinds, kind) {
		t.kinds = append(t.kinds, kind)
	}
	return t
}

// Kinds returns the declared kinds.
func (t *Throwable) Kinds() []string {
	return slices.Clone(t.kinds)
}

// Allows reports whether err, or any error it wraps, matches a
// declared kind. An error matches through its Kind method or its
// dynamic type name (for example "*fs.PathError").
func (t *Throwable) Allows(err error) bool {
	if err == nil || len(t.kinds) == 0 {
		return false
	}
	for _, kind := range ErrorKinds(err) {
		if slices.Contains(t.kinds, kind) {
			return true
		}
	}
	return false
}

// ErrorKinds lists every kind err answers to, walking its wrap
// chain.
func ErrorKinds(err error) []string {
	var kinds []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		if k, ok := e.(Kinder); ok {
			kinds = append(kinds, k.Kind())
		}
		kinds = append(kinds, fmt.Sprintf("%T", e))
	}
	return kinds
}
