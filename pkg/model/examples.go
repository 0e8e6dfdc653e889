package model

import (
	"iter"
	"slices"
)

// Examples is an ordered, integer-indexed collection of example
// strings. Indices are sparse: removing an entry never repacks the
// remaining ones, so callers check Exists before relying on a
// position.
//
// Iteration follows first-insertion order. Overwriting an existing
// index keeps its original position.
type Examples struct {
	values map[int]string
	order  []int
	next   int
}

// NewExamples creates an empty example store.
func NewExamples() *Examples {
	return &Examples{
		values: make(map[int]string),
	}
}

// Exists reports whether an example is stored at index i.
func (e *Examples) Exists(i int) bool {
	_, ok := e.values[i]
	return ok
}

// Get returns the example stored at index i. The boolean is false
// when nothing is stored there.
func (e *Examples) Get(i int) (string, bool) {
	v, ok := e.values[i]
	return v, ok
}

// Set stores value at exactly index i, creating or overwriting the
// entry. It returns the store to allow chaining.
func (e *Examples) Set(i int, value string) *Examples {
	e.lazyInit()
	if _, ok := e.values[i]; !ok {
		e.order = append(e.order, i)
	}
	e.values[i] = value
	if i >= e.next {
		e.next = i + 1
	}
	return e
}

// Append stores value at NextIndex. It returns the store to allow
// chaining.
func (e *Examples) Append(value string) *Examples {
	return e.Set(e.next, value)
}

// NextIndex returns the index the next Append will use. It is one
// greater than the highest index ever stored and never decreases,
// even after removals.
func (e *Examples) NextIndex() int {
	return e.next
}

// Remove deletes the example at index i. Removing a missing index
// is a no-op.
func (e *Examples) Remove(i int) {
	if _, ok := e.values[i]; !ok {
		return
	}
	delete(e.values, i)
	if pos := slices.Index(e.order, i); pos >= 0 {
		e.order = slices.Delete(e.order, pos, pos+1)
	}
}

// Count returns the number of live examples.
func (e *Examples) Count() int {
	return len(e.values)
}

// Indices returns the live indices in iteration order.
func (e *Examples) Indices() []int {
	return slices.Clone(e.order)
}

// All returns an iterator over (index, example) pairs. Each call
// to the returned sequence takes a snapshot of the store, so later
// mutations never disturb an iteration already in progress and a
// fresh range reflects the current contents.
func (e *Examples) All() iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		order := slices.Clone(e.order)
		values := make([]string, len(order))
		for k, i := range order {
			values[k] = e.values[i]
		}
		for k, i := range order {
			if !yield(i, values[k]) {
				return
			}
		}
	}
}

func (e *Examples) lazyInit() {
	if e.values == nil {
		e.values = make(map[int]string)
	}
}
