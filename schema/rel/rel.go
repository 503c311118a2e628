package rel

import (
	"errors"
	"fmt"
)

// A Target is one member of a relationship target expression. Exactly
// one of Name and Decl is set: Name is a forward reference resolved by
// registered declaration name, Decl is the declaration value itself.
type Target struct {
	Name string
	Decl any
}

// A TypeExpr is the declared target expression of a relationship. A
// single target resolves directly. Optional and List wrap the target
// without changing it; the wiring pass unwraps them. Two or more
// targets form a union, which the wiring pass rejects.
type TypeExpr struct {
	Targets  []Target
	Optional bool
	List     bool
}

// Union reports whether the expression names more than one concrete target.
func (e TypeExpr) Union() bool { return len(e.Targets) > 1 }

// A Descriptor for relationship configuration. Like field descriptors,
// it defers configuration conflicts to Err.
type Descriptor struct {
	Name          string         // attribute name on the declaring model.
	Target        TypeExpr       // declared target expression.
	BackPopulates string         // inverse attribute name on the target.
	LinkModel     any            // many-to-many link declaration, by name or value.
	Override      any            // explicit fully-configured relationship record.
	Args          []any          // extra positional relationship arguments.
	Kwargs        map[string]any // extra keyword relationship arguments.
	Err           error
}

// Builder is the fluent configuration surface for relationships.
type Builder struct {
	desc *Descriptor
}

// To returns a relationship builder targeting the given declarations.
// Each target is either a declaration value or a string naming one
// that will be registered later (a forward reference). More than one
// target declares a union, which wiring rejects; the builder keeps it
// so the error carries the full expression.
func To(name string, targets ...any) *Builder {
	b := &Builder{desc: &Descriptor{Name: name}}
	if name == "" {
		b.err(errors.New("relationship name cannot be empty"))
	}
	if len(targets) == 0 {
		b.err(fmt.Errorf("relationship %q declared with no target", name))
	}
	for _, t := range targets {
		switch t := t.(type) {
		case nil:
			b.err(fmt.Errorf("relationship %q has a nil target", name))
		case string:
			b.desc.Target.Targets = append(b.desc.Target.Targets, Target{Name: t})
		default:
			b.desc.Target.Targets = append(b.desc.Target.Targets, Target{Decl: t})
		}
	}
	return b
}

// Optional marks the target expression as none-compatible. Wiring
// unwraps it; it does not change the resolved target.
func (b *Builder) Optional() *Builder {
	b.desc.Target.Optional = true
	return b
}

// List marks the relationship as many-valued. Wiring unwraps one level.
func (b *Builder) List() *Builder {
	b.desc.Target.List = true
	return b
}

// BackPopulates names the inverse attribute on the target model.
func (b *Builder) BackPopulates(name string) *Builder {
	b.desc.BackPopulates = name
	return b
}

// LinkModel sets the many-to-many link declaration, by name or value.
// The link model's own table becomes the secondary table of the
// relationship; a link model without a table fails at wiring.
func (b *Builder) LinkModel(decl any) *Builder {
	b.desc.LinkModel = decl
	return b
}

// Override sets an explicit, fully-configured relationship record that
// wiring binds verbatim. It is mutually exclusive with Args and Kwargs.
func (b *Builder) Override(r any) *Builder {
	b.desc.Override = r
	return b
}

// Args sets extra positional relationship arguments.
func (b *Builder) Args(args ...any) *Builder {
	b.desc.Args = args
	return b
}

// Kwargs sets extra keyword relationship arguments. They merge last
// and override same-named inferred keys.
func (b *Builder) Kwargs(kw map[string]any) *Builder {
	b.desc.Kwargs = kw
	return b
}

// Descriptor returns the descriptor of the relationship, running the
// final conflict checks.
func (b *Builder) Descriptor() *Descriptor {
	d := b.desc
	if d.Override != nil {
		if len(d.Args) > 0 || len(d.Kwargs) > 0 {
			b.err(fmt.Errorf("relationship %q: explicit override is mutually exclusive with Args and Kwargs", d.Name))
		}
	}
	return d
}

// err records the first configuration error of the builder.
func (b *Builder) err(err error) {
	if b.desc.Err == nil {
		b.desc.Err = err
	}
}
