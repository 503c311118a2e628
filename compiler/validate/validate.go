// Package validate compiles loaded field records into a validator
// program: per-field coercion and constraint checking with aggregated
// errors. Relationships never reach this package.
package validate

import (
	"errors"
	"fmt"

	"github.com/syssam/tabula"
	"github.com/syssam/tabula/compiler/load"
)

// Program is the compiled validator of one model's field set.
type Program struct {
	model  string
	order  []string
	fields map[string]*load.Field
}

// Compile builds the validator program for the given fields. Field
// order is preserved so aggregated errors report deterministically.
func Compile(model string, fields []*load.Field) *Program {
	p := &Program{
		model:  model,
		order:  make([]string, 0, len(fields)),
		fields: make(map[string]*load.Field, len(fields)),
	}
	for _, f := range fields {
		p.order = append(p.order, f.Name)
		p.fields[f.Name] = f
	}
	return p
}

// Model returns the model name the program validates.
func (p *Program) Model() string { return p.model }

// Fields returns the validated field names in declaration order.
func (p *Program) Fields() []string { return p.order }

// Has reports whether the program validates the named field.
func (p *Program) Has(name string) bool {
	_, ok := p.fields[name]
	return ok
}

// Validate checks and coerces a full set of construction values. It
// never stops at the first failure; all field errors aggregate into
// one ValidationError. The cleaned values are returned even on error,
// with failing fields kept at their raw input, so callers with a
// lenient error policy can still construct from them.
func (p *Program) Validate(values map[string]any) (map[string]any, error) {
	cleaned := make(map[string]any, len(p.order))
	var fieldErrs []*tabula.FieldError
	for name := range values {
		if !p.Has(name) {
			fieldErrs = append(fieldErrs, &tabula.FieldError{Name: name, Err: errors.New("unknown field")})
		}
	}
	for _, name := range p.order {
		f := p.fields[name]
		v, ok := values[name]
		if !ok {
			dv, derr := p.missing(f)
			if derr != nil {
				fieldErrs = append(fieldErrs, &tabula.FieldError{Name: name, Err: derr})
				continue
			}
			cleaned[name] = dv
			continue
		}
		cv, err := coerce(f, v)
		if err != nil {
			fieldErrs = append(fieldErrs, &tabula.FieldError{Name: name, Err: err})
			cleaned[name] = v
			continue
		}
		cleaned[name] = cv
	}
	if len(fieldErrs) > 0 {
		return cleaned, tabula.NewValidationError(p.model, fieldErrs...)
	}
	return cleaned, nil
}

// ValidateField checks and coerces a single field value, as the
// attribute protocol does on every assignment.
func (p *Program) ValidateField(name string, v any) (any, error) {
	f, ok := p.fields[name]
	if !ok {
		return nil, tabula.NewValidationError(p.model, &tabula.FieldError{Name: name, Err: errors.New("unknown field")})
	}
	cv, err := coerce(f, v)
	if err != nil {
		return nil, tabula.NewValidationError(p.model, &tabula.FieldError{Name: name, Err: err})
	}
	return cv, nil
}

// missing resolves the value of an absent field: the declared factory
// or static default, the injected sentinel, or a required-field error.
func (p *Program) missing(f *load.Field) (any, error) {
	switch {
	case f.DefaultFunc != nil:
		return f.DefaultFunc(), nil
	case f.Default && !f.Injected:
		return f.DefaultValue, nil
	case f.Injected:
		return nil, nil
	case f.Optional:
		return nil, nil
	default:
		return nil, errors.New("field required")
	}
}

func coerce(f *load.Field, v any) (any, error) {
	if v == nil {
		if f.Nillable || f.Optional || f.Injected || (f.Default && f.DefaultValue == nil) {
			return nil, nil
		}
		return nil, errors.New("none is not an allowed value")
	}
	cv, err := coerceType(f, v)
	if err != nil {
		return nil, err
	}
	if err := checkConstraints(f, cv); err != nil {
		return nil, err
	}
	return cv, nil
}

func typeError(f *load.Field, v any) error {
	return fmt.Errorf("value of type %T is not a valid %s", v, f.Type)
}
