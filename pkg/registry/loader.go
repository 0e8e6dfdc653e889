package registry

import (
	"errors"
	"fmt"

	"digital.vasic.praspel/pkg/bank"
	"digital.vasic.praspel/pkg/checker"
)

// BindBank registers one subject per bank contract whose subject
// name has an entry in callables. The subject ID is the contract
// ID. Contracts without a callable are reported in the returned
// error; the others are still registered. An already registered ID
// is replaced, so a reloaded bank can be bound again.
func BindBank(
	reg Registry,
	b *bank.Bank,
	callables map[string]checker.Callable,
) ([]ID, error) {
	var (
		bound []ID
		errs  []error
	)

	for _, entry := range b.All() {
		c := entry.Contract
		fn, ok := callables[c.SubjectName()]
		if !ok || fn == nil {
			errs = append(errs, fmt.Errorf(
				"contract %s from %s: no callable named %q",
				c.ID, entry.Source, c.SubjectName(),
			))
			continue
		}

		s := &Subject{
			ID:            ID(c.ID),
			Callable:      fn,
			Specification: entry.Specification,
			Kind:          checker.Kind(c.Checker),
			Tags:          c.Tags,
		}
		reg.Unregister(s.ID)
		if err := reg.Register(s); err != nil {
			errs = append(errs, fmt.Errorf("contract %s: %w", c.ID, err))
			continue
		}
		bound = append(bound, s.ID)
	}

	return bound, errors.Join(errs...)
}
