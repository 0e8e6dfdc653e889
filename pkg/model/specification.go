package model

import "slices"

// Specification is the parsed contract of one callable: an ordered
// mapping from clause name to Clause. Clause names are unique.
//
// A Specification is not safe for concurrent mutation.
type Specification struct {
	clauses map[string]Clause
	order   []string
}

// NewSpecification creates an empty Specification.
func NewSpecification() *Specification {
	return &Specification{clauses: make(map[string]Clause)}
}

// Set stores c under c.Name(). It returns the clause it replaced,
// or nil. A replaced clause keeps its position. Setting a nil clause
// is a no-op.
func (s *Specification) Set(c Clause) Clause {
	if c == nil {
		return nil
	}
	if s.clauses == nil {
		s.clauses = make(map[string]Clause)
	}
	name := c.Name()
	old, ok := s.clauses[name]
	if !ok {
		s.order = append(s.order, name)
	}
	s.clauses[name] = c
	return old
}

// Get returns the clause stored under name, or nil.
func (s *Specification) Get(name string) Clause {
	return s.clauses[name]
}

// Has reports whether a clause is stored under name.
func (s *Specification) Has(name string) bool {
	_, ok := s.clauses[name]
	return ok
}

// Remove deletes the clause stored under name and returns it.
func (s *Specification) Remove(name string) Clause {
	old, ok := s.clauses[name]
	if !ok {
		return nil
	}
	delete(s.clauses, name)
	if i := slices.Index(s.order, name); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return old
}

// Names returns clause names in insertion order.
func (s *Specification) Names() []string {
	return slices.Clone(s.order)
}

// Clauses returns clauses in insertion order.
func (s *Specification) Clauses() []Clause {
	out := make([]Clause, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.clauses[name])
	}
	return out
}

// Len returns the number of clauses.
func (s *Specification) Len() int {
	return len(s.clauses)
}

// Description returns the @description clause, or nil.
func (s *Specification) Description() *Description {
	d, _ := s.clauses[DescriptionName].(*Description)
	return d
}

// Requires returns the @requires clause, or nil.
func (s *Specification) Requires() *Requires {
	r, _ := s.clauses[RequiresName].(*Requires)
	return r
}

// Ensures returns the @ensures clause, or nil.
func (s *Specification) Ensures() *Ensures {
	e, _ := s.clauses[EnsuresName].(*Ensures)
	return e
}

// Invariant returns the @invariant clause, or nil.
func (s *Specification) Invariant() *Invariant {
	i, _ := s.clauses[InvariantName].(*Invariant)
	return i
}

// Throwable returns the @throwable clause, or nil.
func (s *Specification) Throwable() *Throwable {
	t, _ := s.clauses[ThrowableName].(*Throwable)
	return t
}

// DescriptionOrCreate returns the @description clause, adding an
// empty one first if needed.
func (s *Specification) DescriptionOrCreate() *Description {
	if d := s.Description(); d != nil {
		return d
	}
	d := NewDescription()
	s.Set(d)
	return d
}

// RequiresOrCreate returns the @requires clause, adding an empty
// one first if needed.
func (s *Specification) RequiresOrCreate() *Requires {
	if r := s.Requires(); r != nil {
		return r
	}
	r := &Requires{}
	s.Set(r)
	return r
}

// EnsuresOrCreate returns the @ensures clause, adding an empty one
// first if needed.
func (s *Specification) EnsuresOrCreate() *Ensures {
	if e := s.Ensures(); e != nil {
		return e
	}
	e := &Ensures{}
	s.Set(e)
	return e
}

// InvariantOrCreate returns the @invariant clause, adding an empty
// one first if needed.
func (s *Specification) InvariantOrCreate() *Invariant {
	if i := s.Invariant(); i != nil {
		return i
	}
	i := &Invariant{}
	s.Set(i)
	return i
}

// ThrowableOrCreate returns the @throwable clause, adding an empty
// one first if needed.
func (s *Specification) ThrowableOrCreate() *Throwable {
	if t := s.Throwable(); t != nil {
		return t
	}
	t := &Throwable{}
	s.Set(t)
	return t
}
