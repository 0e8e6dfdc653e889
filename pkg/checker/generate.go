package checker

import (
	"fmt"

	"digital.vasic.praspel/pkg/model"
)

// GenerateFromDomains draws one value per requires variable from
// its realistic domain and retries until every requires predicate
// holds, up to the configured number of attempts. A specification
// without a requires clause yields an empty, non-nil map.
//
// Variables without a usable domain fail immediately: a *Violation
// for one, a *GroupViolation for several.
func (b *Base) GenerateFromDomains() (map[string]any, error) {
	req := b.spec.Requires()
	if req == nil {
		return map[string]any{}, nil
	}

	vars := req.Variables()
	preds := req.Predicates()

	var last []string
	for attempt := 0; attempt < b.maxAttempts; attempt++ {
		data := make(map[string]any, len(vars))
		var violations []*Violation

		for _, v := range vars {
			if v.Domain == nil {
				violations = append(violations, &Violation{
					Clause:  model.RequiresName,
					Target:  v.Name,
					Message: "no domain declared",
				})
				continue
			}
			value, err := v.Domain.Sample(b.rng)
			if err != nil {
				violations = append(violations, &Violation{
					Clause:   model.RequiresName,
					Target:   v.Name,
					Expected: v.Domain.String(),
					Message:  "cannot sample domain",
					Err:      err,
				})
				continue
			}
			data[v.Name] = value
		}
		if len(violations) > 0 {
			return nil, fold(violations)
		}

		last = last[:0]
		for _, r := range b.engine.EvaluateAll(preds, data) {
			if !r.Passed {
				last = append(last, r.Target+" "+r.Type)
			}
		}
		if len(last) == 0 {
			return data, nil
		}
	}

	return nil, &Violation{
		Clause: model.RequiresName,
		Message: fmt.Sprintf(
			"no data satisfied %v after %d attempts",
			last, b.maxAttempts,
		),
	}
}
