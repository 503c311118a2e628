// Package runtime holds the instance side of compiled models: a
// canonical value holder whose writes fan out to the persistence and
// validation layers in a fixed order.
package runtime

import (
	"fmt"
	"sort"

	"github.com/syssam/tabula/compiler/synth"
)

// InstrumentationKey is the reserved attribute name the persistence
// layer stores its bookkeeping under. Writes to it bypass both
// observers and land nowhere near field values.
const InstrumentationKey = "__instrumentation__"

// Instance is the canonical value holder of one model. Values are
// written through Set; reading is direct.
type Instance struct {
	model *synth.Model

	// values holds the post-coercion field values and raw relationship
	// values.
	values map[string]any

	// set tracks explicitly-assigned fields, the input to revalidation.
	set map[string]bool

	// dirty records the pre-validation value of every instrumented
	// write, the raw material of persistence change tracking.
	dirty map[string]any

	// instrumentation is whatever was stored under the reserved key.
	instrumentation any
}

// Model returns the compiled model of the instance.
func (i *Instance) Model() *synth.Model { return i.model }

// Get returns the current value of the named attribute.
func (i *Instance) Get(name string) (any, bool) {
	v, ok := i.values[name]
	return v, ok
}

// Values returns a copy of the current attribute values.
func (i *Instance) Values() map[string]any {
	out := make(map[string]any, len(i.values))
	for k, v := range i.values {
		out[k] = v
	}
	return out
}

// FieldsSet returns the explicitly-assigned field names, sorted.
func (i *Instance) FieldsSet() []string {
	names := make([]string, 0, len(i.set))
	for name := range i.set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dirty returns the pre-validation values recorded by the change
// tracking observer since construction.
func (i *Instance) Dirty() map[string]any {
	out := make(map[string]any, len(i.dirty))
	for k, v := range i.dirty {
		out[k] = v
	}
	return out
}

// Instrumentation returns the value stored under the reserved key.
func (i *Instance) Instrumentation() any { return i.instrumentation }

// Set writes one attribute through the fixed observer order. The
// reserved instrumentation key bypasses everything. For instrumented
// storage attributes the persistence observer runs first and records
// the pre-validation value; the validation observer then coerces the
// value, unless the attribute is a relationship. The two writes are
// not transactional: a failed validation write leaves the persistence
// write in place and returns the error.
func (i *Instance) Set(name string, value any) error {
	if name == InstrumentationKey {
		i.instrumentation = value
		return nil
	}
	if i.model.Instrumented(name) {
		i.dirty[name] = value
		i.values[name] = value
	}
	if i.model.HasRel(name) {
		i.values[name] = value
		return nil
	}
	cv, err := i.model.Program.ValidateField(name, value)
	if err != nil {
		return err
	}
	i.values[name] = cv
	i.set[name] = true
	return nil
}

// New constructs an instance of the model from construction keywords.
// Field keywords run through the validator in one aggregated pass;
// relationship keywords route through Set; the reserved key bypasses
// both. Storage-backed models tolerate validation failures unless
// registered strict: the failing values are kept raw and the error is
// dropped, so zero-argument construction of a storage-backed model
// never fails.
func New(m *synth.Model, kwargs map[string]any) (*Instance, error) {
	if m == nil {
		return nil, fmt.Errorf("tabula: nil model")
	}
	inst := &Instance{
		model:  m,
		values: make(map[string]any),
		set:    make(map[string]bool),
		dirty:  make(map[string]any),
	}
	fields := make(map[string]any)
	rels := make(map[string]any)
	for k, v := range kwargs {
		switch {
		case k == InstrumentationKey:
			inst.instrumentation = v
		case m.HasRel(k):
			rels[k] = v
		default:
			fields[k] = v
		}
	}
	cleaned, err := m.Program.Validate(fields)
	if err != nil && !swallow(m) {
		return nil, err
	}
	// Merge the cleaned values without discarding anything already
	// managed by the persistence layer.
	for k, v := range cleaned {
		if _, managed := inst.values[k]; managed {
			continue
		}
		inst.values[k] = v
	}
	for k := range fields {
		if m.Program.Has(k) {
			inst.set[k] = true
		}
	}
	for k, v := range rels {
		if err := inst.Set(k, v); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// Revalidate re-derives construction keywords from the explicitly
// assigned fields of src and runs the construction pipeline again. The
// instrumentation state of src carries over untouched.
func Revalidate(m *synth.Model, src *Instance) (*Instance, error) {
	if src == nil {
		return nil, fmt.Errorf("tabula: nil instance")
	}
	kwargs := make(map[string]any, len(src.set)+1)
	for name := range src.set {
		kwargs[name] = src.values[name]
	}
	if src.instrumentation != nil {
		kwargs[InstrumentationKey] = src.instrumentation
	}
	return New(m, kwargs)
}

// swallow reports whether construction drops validation errors: the
// lenient default of storage-backed models, unless registered strict.
func swallow(m *synth.Model) bool {
	return m.IsTable() && !m.Strict
}
