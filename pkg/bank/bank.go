// Package bank loads declarative contract banks from YAML and JSON
// files and turns them into specifications.
package bank

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"digital.vasic.praspel/pkg/assertion"
	"digital.vasic.praspel/pkg/model"
)

// Entry is a loaded contract together with its built
// specification.
type Entry struct {
	Contract      Contract
	Specification *model.Specification
	Source        string
}

// Bank holds contracts loaded from files. It is safe for
// concurrent use.
type Bank struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	sources []string
}

// New creates a new empty Bank.
func New() *Bank {
	return &Bank{
		entries: make(map[string]*Entry),
	}
}

// LoadFile loads contracts from a .yaml, .yml or .json file.
// Contracts replace previously loaded ones with the same ID. The
// file is loaded atomically: on error nothing is stored.
func (b *Bank) LoadFile(path string) error {
	file, err := readFile(path)
	if err != nil {
		return err
	}

	built := make([]*Entry, 0, len(file.Contracts))
	for i, c := range file.Contracts {
		if c.ID == "" {
			return fmt.Errorf(
				"contract at index %d in %s has no ID", i, path,
			)
		}
		spec, err := c.Specification()
		if err != nil {
			return fmt.Errorf("contract %s in %s: %w", c.ID, path, err)
		}
		built = append(built, &Entry{
			Contract:      c,
			Specification: spec,
			Source:        path,
		})
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.dropSourceLocked(path)
	for _, e := range built {
		b.entries[e.Contract.ID] = e
	}
	if !slices.Contains(b.sources, path) {
		b.sources = append(b.sources, path)
	}
	return nil
}

// LoadDir loads every bank file directly inside dir.
func (b *Bank) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read bank directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !IsBankFile(entry.Name()) {
			continue
		}
		if err := b.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// LoadGlob loads every bank file matching a doublestar pattern
// such as "contracts/**/*.yaml". It returns the matched paths.
func (b *Bank) LoadGlob(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(matches)

	var loaded []string
	for _, path := range matches {
		if !IsBankFile(path) {
			continue
		}
		if err := b.LoadFile(path); err != nil {
			return loaded, err
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// RemoveSource drops every contract loaded from path and returns
// how many were removed.
func (b *Bank) RemoveSource(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.dropSourceLocked(path)
	if i := slices.Index(b.sources, path); i >= 0 {
		b.sources = slices.Delete(b.sources, i, i+1)
	}
	return n
}

func (b *Bank) dropSourceLocked(path string) int {
	n := 0
	for id, e := range b.entries {
		if e.Source == path {
			delete(b.entries, id)
			n++
		}
	}
	return n
}

// Get retrieves a contract by ID.
func (b *Bank) Get(id string) (*Entry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.entries[id]
	return e, ok
}

// All returns all loaded entries sorted by ID.
func (b *Bank) All() []*Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	result := make([]*Entry, 0, len(b.entries))
	for _, e := range b.entries {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Contract.ID < result[j].Contract.ID
	})
	return result
}

// ByTag returns entries carrying tag, sorted by ID.
func (b *Bank) ByTag(tag string) []*Entry {
	var result []*Entry
	for _, e := range b.All() {
		if slices.Contains(e.Contract.Tags, tag) {
			result = append(result, e)
		}
	}
	return result
}

// Count returns the number of loaded contracts.
func (b *Bank) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Sources returns the list of loaded file paths.
func (b *Bank) Sources() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.sources)
}

// IsBankFile reports whether path has a bank file extension.
func IsBankFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func readFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank file %s: %w", path, err)
	}
	file, err := decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("parse bank file %s: %w", path, err)
	}
	return file, nil
}

func decode(path string, data []byte) (*File, error) {
	var file File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, err
		}
	}
	return &file, nil
}

// Specification builds the in-memory specification. Clauses are
// added in the order description, requires, ensures, invariant,
// throwable; absent sections produce no clause.
func (c Contract) Specification() (*model.Specification, error) {
	spec := model.NewSpecification()

	if len(c.Description) > 0 {
		examples := spec.DescriptionOrCreate().Examples()
		for _, text := range c.Description {
			examples.Append(text)
		}
	}
	if c.Requires != nil {
		if err := c.Requires.build(model.RequiresName, &spec.RequiresOrCreate().Block); err != nil {
			return nil, err
		}
	}
	if c.Ensures != nil {
		if err := c.Ensures.build(model.EnsuresName, &spec.EnsuresOrCreate().Block); err != nil {
			return nil, err
		}
	}
	if c.Invariant != nil {
		if err := c.Invariant.build(model.InvariantName, &spec.InvariantOrCreate().Block); err != nil {
			return nil, err
		}
	}
	if len(c.Throwable) > 0 {
		th := spec.ThrowableOrCreate()
		for _, kind := range c.Throwable {
			th.Declare(kind)
		}
	}
	return spec, nil
}

func (blk *Block) build(clause string, into *model.Block) error {
	for _, v := range blk.Variables {
		if v.Name == "" {
			return fmt.Errorf("%s: variable without name", clause)
		}
		d, err := ParseDomain(v.Domain)
		if err != nil {
			return fmt.Errorf("%s: variable %s: %w", clause, v.Name, err)
		}
		into.Declare(v.Name, d)
	}
	for _, line := range blk.Assert {
		def, err := assertion.ParsePredicate(line)
		if err != nil {
			return fmt.Errorf("%s: %w", clause, err)
		}
		into.Assert(def)
	}
	for _, def := range blk.Predicates {
		into.Assert(def)
	}
	return nil
}
