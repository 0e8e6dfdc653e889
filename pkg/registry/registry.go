// Package registry provides subject registration and lookup. A
// subject pairs a callable with the specification it is checked
// against.
package registry

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"digital.vasic.praspel/pkg/checker"
	"digital.vasic.praspel/pkg/model"
)

// ID identifies a registered subject.
type ID string

// ErrNotFound is returned by Get for unknown IDs.
var ErrNotFound = errors.New("subject not found")

// Subject is a callable under contract.
type Subject struct {
	ID            ID
	Callable      checker.Callable
	Specification *model.Specification
	// Kind selects the checker. Empty means the runner default.
	Kind checker.Kind
	Tags []string
}

// Registry defines the interface for managing subjects.
type Registry interface {
	// Register adds a subject.
	Register(s *Subject) error

	// Get retrieves a subject by ID.
	Get(id ID) (*Subject, error)

	// Unregister removes a subject and reports whether it
	// existed.
	Unregister(id ID) bool

	// List returns all subjects sorted by ID.
	List() []*Subject

	// ListByTag returns subjects carrying tag, sorted by ID.
	ListByTag(tag string) []*Subject

	// Clear removes all subjects.
	Clear()

	// Count returns the number of registered subjects.
	Count() int
}

// DefaultRegistry is the standard Registry implementation.
// It is safe for concurrent use.
type DefaultRegistry struct {
	mu       sync.RWMutex
	subjects map[ID]*Subject
}

// NewRegistry creates a new, empty DefaultRegistry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		subjects: make(map[ID]*Subject),
	}
}

// Default is the package-level default registry instance.
var Default = NewRegistry()

// Register adds a subject to the registry. It rejects subjects
// without an ID, callable or specification, and duplicate IDs.
func (r *DefaultRegistry) Register(s *Subject) error {
	switch {
	case s == nil:
		return errors.New("nil subject")
	case s.ID == "":
		return errors.New("subject has no ID")
	case s.Callable == nil:
		return fmt.Errorf("subject %s has no callable", s.ID)
	case s.Specification == nil:
		return fmt.Errorf("subject %s has no specification", s.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.subjects[s.ID]; exists {
		return fmt.Errorf("subject already registered: %s", s.ID)
	}
	r.subjects[s.ID] = s
	return nil
}

// Get retrieves a subject by ID.
func (r *DefaultRegistry) Get(id ID) (*Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.subjects[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Unregister removes a subject.
func (r *DefaultRegistry) Unregister(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.subjects[id]
	delete(r.subjects, id)
	return exists
}

// List returns all registered subjects sorted by ID.
func (r *DefaultRegistry) List() []*Subject {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Subject, 0, len(r.subjects))
	for _, s := range r.subjects {
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// ListByTag returns subjects carrying tag.
func (r *DefaultRegistry) ListByTag(tag string) []*Subject {
	var out []*Subject
	for _, s := range r.List() {
		if slices.Contains(s.Tags, tag) {
			out = append(out, s)
		}
	}
	return out
}

// Clear removes all subjects.
func (r *DefaultRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects = make(map[ID]*Subject)
}

// Count returns the number of registered subjects.
func (r *DefaultRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subjects)
}
