// Package render turns a Specification back into readable
// contract text for traces and diagnostics.
package render

import (
	"fmt"
	"strings"

	"digital.vasic.praspel/pkg/assertion"
	"digital.vasic.praspel/pkg/model"
)

// Renderer produces a textual form of a specification.
type Renderer interface {
	Render(spec *model.Specification) string
}

// Praspel renders specifications in annotation form, one block per
// clause in specification order:
//
//	@description:
//	    [0] 'add(1, 2) = 3'
//	@requires x: integer(0, 10) and y: boolean();
//	    x greater_than 0;
//	@ensures \result: integer(0, 20);
//	@throwable ErrOverflow;
type Praspel struct {
	// Indent prefixes every predicate and example line.
	Indent string
}

// NewPraspel creates a Praspel renderer with a four space indent.
func NewPraspel() *Praspel {
	return &Praspel{Indent: "    "}
}

// Render returns the annotation text for spec. A nil or empty
// specification renders as the empty string.
func (p *Praspel) Render(spec *model.Specification) string {
	if spec == nil {
		return ""
	}

	var sb strings.Builder
	for _, c := range spec.Clauses() {
		switch clause := c.(type) {
		case *model.Description:
			p.writeDescription(&sb, clause)
		case *model.Requires:
			p.writeBlock(&sb, clause.Name(), &clause.Block)
		case *model.Ensures:
			p.writeBlock(&sb, clause.Name(), &clause.Block)
		case *model.Invariant:
			p.writeBlock(&sb, clause.Name(), &clause.Block)
		case *model.Throwable:
			fmt.Fprintf(&sb, "@%s %s;\n",
				clause.Name(), strings.Join(clause.Kinds(), ", "))
		default:
			fmt.Fprintf(&sb, "@%s;\n", c.Name())
		}
	}
	return sb.String()
}

func (p *Praspel) writeDescription(sb *strings.Builder, d *model.Description) {
	sb.WriteString("@description:\n")
	for i, example := range d.Examples().All() {
		fmt.Fprintf(sb, "%s[%d] '%s'\n", p.Indent, i, example)
	}
}

func (p *Praspel) writeBlock(sb *strings.Builder, name string, b *model.Block) {
	vars := b.Variables()
	parts := make([]string, len(vars))
	for i, v := range vars {
		domain := "undefined"
		if v.Domain != nil {
			domain = v.Domain.String()
		}
		parts[i] = v.Name + ": " + domain
	}

	sb.WriteString("@" + name)
	if len(parts) > 0 {
		sb.WriteString(" " + strings.Join(parts, " and "))
	}
	sb.WriteString(";\n")

	for _, pred := range b.Predicates() {
		fmt.Fprintf(sb, "%s%s;\n", p.Indent, Predicate(pred))
	}
}

// Predicate renders a single predicate as "target type expected".
func Predicate(def assertion.Definition) string {
	switch {
	case def.Ref != "":
		return fmt.Sprintf("%s %s %s", def.Target, def.Type, def.Ref)
	case def.Value != nil:
		return fmt.Sprintf("%s %s %s", def.Target, def.Type, formatValue(def.Value))
	case len(def.Values) > 0:
		parts := make([]string, len(def.Values))
		for i, v := range def.Values {
			parts[i] = formatValue(v)
		}
		return fmt.Sprintf("%s %s (%s)", def.Target, def.Type,
			strings.Join(parts, ", "))
	}
	return def.Target + " " + def.Type
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}
