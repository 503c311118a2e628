// Package synth compiles declarations into models in two explicit
// stages: Register loads each declaration and derives its validator
// and storage mapping, Resolve then wires every relationship in one
// deterministic pass. Nothing is implicit: there is no global state,
// and a registry is the unit of forward-reference visibility.
package synth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/tabula"
	"github.com/syssam/tabula/compiler/load"
	"github.com/syssam/tabula/compiler/mapping"
	"github.com/syssam/tabula/compiler/validate"
	sqlschema "github.com/syssam/tabula/dialect/sql/schema"
)

// Registry owns a set of compiled models and the shared schema
// container they default to. Forward references resolve against the
// registry they were registered in, never against any global state.
type Registry struct {
	models   map[string]*Model
	order    []string
	metadata *sqlschema.Metadata
	resolved bool
}

// NewRegistry returns an empty registry with a fresh shared container.
func NewRegistry() *Registry {
	return &Registry{
		models:   make(map[string]*Model),
		metadata: sqlschema.NewMetadata(),
	}
}

// Metadata returns the registry's default shared container.
func (r *Registry) Metadata() *sqlschema.Metadata {
	return r.metadata
}

// Model returns the compiled model with the given name, if registered.
func (r *Registry) Model(name string) (*Model, bool) {
	m, ok := r.models[name]
	return m, ok
}

// Models returns all compiled models in registration order.
func (r *Registry) Models() []*Model {
	ms := make([]*Model, 0, len(r.order))
	for _, name := range r.order {
		ms = append(ms, r.models[name])
	}
	return ms
}

// Options configure a single registration.
type Options struct {
	load     []load.Option
	metadata *sqlschema.Metadata
	base     *Model
	strict   bool
}

// Option configures a Register call.
type Option func(*Options)

// WithTable sets the registration-level storage-backed flag. An
// explicit Config value on the declaration still wins.
func WithTable(v bool) Option {
	return func(o *Options) { o.load = append(o.load, load.WithTable(v)) }
}

// WithPluralTableName derives pluralized table names.
func WithPluralTableName() Option {
	return func(o *Options) { o.load = append(o.load, load.WithPluralTableName()) }
}

// WithMetadata makes the model adopt the given shared container
// instead of the registry default. A non-table model that adopts a
// container is abstract: it contributes no table, its descendants do.
func WithMetadata(m *sqlschema.Metadata) Option {
	return func(o *Options) { o.metadata = m }
}

// WithBase registers the declaration as a read-only projection of an
// already-registered storage-backed model. Projections share the base
// table and are skipped by the resolution pass.
func WithBase(base *Model) Option {
	return func(o *Options) { o.base = base }
}

// WithStrictValidation makes storage-backed construction of this model
// return validation errors instead of swallowing them.
func WithStrictValidation() Option {
	return func(o *Options) { o.strict = true }
}

// Register loads and compiles a declaration: fields become the
// validator program, and storage-backed models additionally derive one
// column per field and bind a table into the shared container.
// Relationship targets are kept as declared; Resolve wires them.
func Register(r *Registry, decl tabula.Interface, opts ...Option) (*Model, error) {
	return r.Register(decl, opts...)
}

// Register implements the phase-1 compilation of one declaration.
func (r *Registry) Register(decl tabula.Interface, opts ...Option) (*Model, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	s, err := load.Load(decl, o.load...)
	if err != nil {
		return nil, tabula.NewConfigurationError("", "", err)
	}
	if _, ok := r.models[s.Name]; ok {
		return nil, tabula.NewConfigurationError(s.Name, "", errors.New("already registered"))
	}
	m := &Model{
		Name:    s.Name,
		Schema:  s,
		Program: validate.Compile(s.Name, s.Fields),
		Rels:    make(map[string]*sqlschema.Relationship),
		Strict:  o.strict,
	}
	// Container adoption: declaration config wins over the
	// registration option, the registry default applies last.
	switch {
	case s.Config.Metadata != nil:
		m.Metadata = s.Config.Metadata
	case o.metadata != nil:
		m.Metadata = o.metadata
	default:
		m.Metadata = r.metadata
	}
	if (s.Config.Metadata != nil || o.metadata != nil) && !s.Table {
		m.Abstract = true
	}
	if o.base != nil {
		if err := r.project(m, o.base); err != nil {
			return nil, err
		}
	} else if s.Table {
		if err := r.bindTable(m); err != nil {
			return nil, err
		}
	}
	r.models[m.Name] = m
	r.order = append(r.order, m.Name)
	return m, nil
}

// project wires a read-only projection onto its base model.
func (r *Registry) project(m *Model, base *Model) error {
	if !base.IsTable() {
		return tabula.NewConfigurationError(m.Name, "", fmt.Errorf("projection base %q is not storage-backed", base.Name))
	}
	if m.Schema.Table {
		return tabula.NewConfigurationError(m.Name, "", errors.New("a projection cannot be a table itself"))
	}
	m.Base = base
	m.Metadata = base.Metadata
	m.Columns = base.Columns
	return nil
}

// bindTable derives one column per field and adds the assembled table
// to the shared container.
func (r *Registry) bindTable(m *Model) error {
	s := m.Schema
	t := sqlschema.NewTable(s.TableName)
	m.Columns = make(map[string]*sqlschema.Column, len(s.Fields))
	for _, f := range s.Fields {
		c, err := mapping.Derive(f)
		if err != nil {
			return withModel(err, m.Name)
		}
		if err := t.AddColumn(c); err != nil {
			return tabula.NewConfigurationError(m.Name, f.Name, err)
		}
		m.Columns[f.Name] = c
	}
	if err := m.Metadata.AddTable(t); err != nil {
		return tabula.NewConfigurationError(m.Name, "", err)
	}
	m.Table = t
	return nil
}

// Resolve runs the phase-2 wiring pass once over every storage-backed
// model, in registration order. Projections and non-table models are
// skipped. After a successful pass further calls are no-ops.
func (r *Registry) Resolve() error {
	if r.resolved {
		return nil
	}
	for _, name := range r.order {
		m := r.models[name]
		if !m.IsTable() {
			continue
		}
		for _, lr := range m.Schema.Rels {
			bound, err := r.wire(m, lr)
			if err != nil {
				return err
			}
			m.Rels[lr.Name] = bound
		}
	}
	r.resolved = true
	return nil
}

// wire binds one declared relationship against the registry.
func (r *Registry) wire(m *Model, lr *load.Rel) (*sqlschema.Relationship, error) {
	if lr.Override != nil {
		bound, ok := lr.Override.(*sqlschema.Relationship)
		if !ok {
			return nil, tabula.NewConfigurationError(m.Name, lr.Name, fmt.Errorf("explicit override must be a *schema.Relationship, got %T", lr.Override))
		}
		return bound, nil
	}
	if len(lr.TargetNames) > 1 {
		return nil, tabula.NewUnresolvedTargetError(m.Name, lr.Name,
			strings.Join(lr.TargetNames, " | "),
			fmt.Sprintf("union of %d concrete targets", len(lr.TargetNames)))
	}
	if len(lr.TargetNames) == 0 {
		return nil, tabula.NewConfigurationError(m.Name, lr.Name, errors.New("relationship has no target"))
	}
	targetName := lr.TargetNames[0]
	// A declaration value binds directly; only forward references by
	// name must find a registered model.
	byValue := len(lr.Target.Targets) > 0 && lr.Target.Targets[0].Decl != nil
	if !byValue {
		if _, ok := r.models[targetName]; !ok {
			return nil, tabula.NewUnresolvedTargetError(m.Name, lr.Name, targetName, "no model registered under that name")
		}
	}
	bound := &sqlschema.Relationship{
		Name:          lr.Name,
		Target:        targetName,
		BackPopulates: lr.BackPopulates,
		List:          lr.List,
		Optional:      lr.Optional,
	}
	if lr.LinkModelName != "" {
		link, ok := r.models[lr.LinkModelName]
		if !ok {
			return nil, tabula.NewUnresolvedTargetError(m.Name, lr.Name, lr.LinkModelName, "link model is not registered")
		}
		if !link.IsTable() {
			return nil, tabula.NewUnresolvedTargetError(m.Name, lr.Name, lr.LinkModelName, "link model has no table")
		}
		bound.Secondary = link.Table.Name
	}
	// Extra keywords merge last and override the inferred keys they name.
	for k, v := range lr.Kwargs {
		switch k {
		case "back_populates":
			if s, ok := v.(string); ok {
				bound.BackPopulates = s
				continue
			}
		case "secondary":
			if s, ok := v.(string); ok {
				bound.Secondary = s
				continue
			}
		}
		if bound.Attrs == nil {
			bound.Attrs = make(map[string]any)
		}
		bound.Attrs[k] = v
	}
	return bound, nil
}

// withModel stamps the model name onto typed errors raised below the
// model level.
func withModel(err error, model string) error {
	var ue *tabula.UnmappableTypeError
	if errors.As(err, &ue) {
		ue.Model = model
		return err
	}
	var ce *tabula.ConfigurationError
	if errors.As(err, &ce) {
		ce.Model = model
		return err
	}
	return tabula.NewConfigurationError(model, "", err)
}
