package bank

import "digital.vasic.praspel/pkg/assertion"

// File is the on-disk structure of a contract bank. Banks are
// written in YAML or JSON; both map onto the same fields.
type File struct {
	Version   string         `json:"version" yaml:"version"`
	Name      string         `json:"name" yaml:"name"`
	Contracts []Contract     `json:"contracts" yaml:"contracts"`
	Metadata  map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Contract is the declarative form of one specification.
type Contract struct {
	// ID identifies the contract inside a bank.
	ID string `json:"id" yaml:"id"`
	// Subject names the callable the contract describes. It
	// defaults to ID.
	Subject string `json:"subject,omitempty" yaml:"subject,omitempty"`
	// Checker selects the checker kind; empty means runtime.
	Checker string   `json:"checker,omitempty" yaml:"checker,omitempty"`
	Tags    []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Description holds usage examples, appended in order.
	Description []string `json:"description,omitempty" yaml:"description,omitempty"`
	Requires    *Block   `json:"requires,omitempty" yaml:"requires,omitempty"`
	Ensures     *Block   `json:"ensures,omitempty" yaml:"ensures,omitempty"`
	Invariant   *Block   `json:"invariant,omitempty" yaml:"invariant,omitempty"`
	Throwable   []string `json:"throwable,omitempty" yaml:"throwable,omitempty"`
}

// SubjectName returns Subject, or ID when Subject is empty.
func (c Contract) SubjectName() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.ID
}

// Block declares variables and predicates of one clause.
//
// Assert lines use the compact "target type[:value]" form, e.g.
// "x greater_than:0" or `\result greater_or_equal:@x`. Predicates
// holds fully spelled out definitions and is applied after Assert.
type Block struct {
	Variables  []Variable             `json:"variables,omitempty" yaml:"variables,omitempty"`
	Assert     []string               `json:"assert,omitempty" yaml:"assert,omitempty"`
	Predicates []assertion.Definition `json:"predicates,omitempty" yaml:"predicates,omitempty"`
}

// Variable binds a name to a domain expression such as
// "integer(0, 10)" or "boolean() or const(null)".
type Variable struct {
	Name   string `json:"name" yaml:"name"`
	Domain string `json:"domain" yaml:"domain"`
}
