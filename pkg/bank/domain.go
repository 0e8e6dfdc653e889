package bank

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"digital.vasic.praspel/pkg/realdom"
)

// ParseDomain builds a realistic domain from its textual form.
// Alternatives are separated by " or "; each alternative is a
// registered domain name followed by a parenthesized argument list
// whose items are YAML scalars:
//
//	integer(0, 10)
//	enum("red", "green") or const(null)
func ParseDomain(expr string) (realdom.Domain, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty domain expression")
	}

	alternatives := strings.Split(expr, " or ")
	domains := make([]realdom.Domain, 0, len(alternatives))
	for _, alt := range alternatives {
		d, err := parseSingleDomain(strings.TrimSpace(alt))
		if err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}

	if len(domains) == 1 {
		return domains[0], nil
	}
	return realdom.Or(domains...), nil
}

func parseSingleDomain(expr string) (realdom.Domain, error) {
	open := strings.IndexByte(expr, '(')
	if open <= 0 || !strings.HasSuffix(expr, ")") {
		return nil, fmt.Errorf("malformed domain %q: want name(args)", expr)
	}

	name := strings.TrimSpace(expr[:open])
	inner := strings.TrimSpace(expr[open+1 : len(expr)-1])

	var args []any
	if inner != "" {
		if err := yaml.Unmarshal([]byte("["+inner+"]"), &args); err != nil {
			return nil, fmt.Errorf("domain %q: arguments: %w", expr, err)
		}
	}
	return realdom.Build(name, args)
}
