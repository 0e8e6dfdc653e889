package bank

import (
	"fmt"
	"os"

	"digital.vasic.praspel/pkg/assertion"
	"digital.vasic.praspel/pkg/checker"
)

// ValidationError represents a validation issue found in a bank file.
type ValidationError struct {
	Field   string
	Message string
	Index   int // -1 if not applicable
}

func (e ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("contracts[%d].%s: %s", e.Index, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateFile validates a bank file and returns all errors found.
// Predicate types are checked against the built-in evaluators.
func ValidateFile(path string) []ValidationError {
	data, err := os.ReadFile(path)
	if err != nil {
		return []ValidationError{{Field: "file", Message: err.Error(), Index: -1}}
	}

	file, err := decode(path, data)
	if err != nil {
		return []ValidationError{{Field: "syntax", Message: err.Error(), Index: -1}}
	}
	return Validate(file, assertion.NewEngine())
}

// Validate checks a decoded bank against engine's predicate types.
func Validate(file *File, engine *assertion.DefaultEngine) []ValidationError {
	var errs []ValidationError

	if file.Version == "" {
		errs = append(errs, ValidationError{
			Field: "version", Message: "version is required", Index: -1,
		})
	}

	ids := make(map[string]bool)
	for i, c := range file.Contracts {
		switch {
		case c.ID == "":
			errs = append(errs, ValidationError{
				Field: "id", Message: "contract ID is required", Index: i,
			})
		case ids[c.ID]:
			errs = append(errs, ValidationError{
				Field: "id", Message: fmt.Sprintf("duplicate ID: %s", c.ID), Index: i,
			})
		default:
			ids[c.ID] = true
		}

		if c.Checker != "" && !knownKind(c.Checker) {
			errs = append(errs, ValidationError{
				Field:   "checker",
				Message: fmt.Sprintf("unknown checker kind %q", c.Checker),
				Index:   i,
			})
		}

		for _, blk := range []struct {
			name  string
			block *Block
		}{
			{"requires", c.Requires},
			{"ensures", c.Ensures},
			{"invariant", c.Invariant},
		} {
			if blk.block != nil {
				errs = append(errs, validateBlock(blk.name, blk.block, engine, i)...)
			}
		}
	}

	return errs
}

func knownKind(name string) bool {
	for _, k := range checker.Kinds() {
		if string(k) == name {
			return true
		}
	}
	return false
}

func validateBlock(
	clause string,
	blk *Block,
	engine *assertion.DefaultEngine,
	index int,
) []ValidationError {
	var errs []ValidationError

	for _, v := range blk.Variables {
		if v.Name == "" {
			errs = append(errs, ValidationError{
				Field: clause + ".variables", Message: "variable name is required", Index: index,
			})
			continue
		}
		if _, err := ParseDomain(v.Domain); err != nil {
			errs = append(errs, ValidationError{
				Field:   clause + ".variables." + v.Name,
				Message: err.Error(),
				Index:   index,
			})
		}
	}

	defs := make([]assertion.Definition, 0, len(blk.Assert)+len(blk.Predicates))
	for _, line := range blk.Assert {
		def, err := assertion.ParsePredicate(line)
		if err != nil {
			errs = append(errs, ValidationError{
				Field: clause + ".assert", Message: err.Error(), Index: index,
			})
			continue
		}
		defs = append(defs, def)
	}
	defs = append(defs, blk.Predicates...)

	for _, def := range defs {
		if !engine.HasEvaluator(def.Type) {
			errs = append(errs, ValidationError{
				Field:   clause + ".predicates",
				Message: fmt.Sprintf("unknown predicate type %q", def.Type),
				Index:   index,
			})
		}
		if def.Target == "" {
			errs = append(errs, ValidationError{
				Field:   clause + ".predicates",
				Message: fmt.Sprintf("predicate %q has no target", def.Type),
				Index:   index,
			})
		}
	}

	return errs
}
