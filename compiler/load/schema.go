// Package load flattens model declarations into serializable records
// consumed by the mapping and validation compilers. Loading is where
// declaration-level errors surface: builder conflicts, panicking user
// methods, and invalid configuration.
package load

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/go-openapi/inflect"

	"github.com/syssam/tabula"
	"github.com/syssam/tabula/schema/field"
	"github.com/syssam/tabula/schema/rel"
)

// Schema represents a tabula.Interface declaration flattened into
// plain records.
type Schema struct {
	Name      string   `json:"name,omitempty"`
	Table     bool     `json:"table,omitempty"`
	TableName string   `json:"table_name,omitempty"`
	Fields    []*Field `json:"fields,omitempty"`
	Rels      []*Rel   `json:"rels,omitempty"`

	// Config is the raw declaration configuration. The shared
	// container it may carry is runtime state and never serialized.
	Config tabula.Config `json:"-" msgpack:"-"`
}

// Field represents a field descriptor flattened into a plain record.
// Runtime-only values (factories, manual column overrides) carry no
// snapshot representation.
type Field struct {
	Name          string         `json:"name,omitempty"`
	Type          field.Type     `json:"type,omitempty"`
	Alias         string         `json:"alias,omitempty"`
	Title         string         `json:"title,omitempty"`
	Comment       string         `json:"comment,omitempty"`
	Optional      bool           `json:"optional,omitempty"`
	Nillable      bool           `json:"nillable,omitempty"`
	Default       bool           `json:"default,omitempty"`
	DefaultValue  any            `json:"default_value,omitempty"`
	DefaultFunc   func() any     `json:"-" msgpack:"-"`
	Injected      bool           `json:"injected,omitempty"`
	MinLen        int            `json:"min_len,omitempty"`
	MaxLen        int            `json:"max_len,omitempty"`
	Min           *float64       `json:"min,omitempty"`
	Max           *float64       `json:"max,omitempty"`
	MaxDigits     int            `json:"max_digits,omitempty"`
	DecimalPlaces int            `json:"decimal_places,omitempty"`
	Enums         []string       `json:"enums,omitempty"`
	PrimaryKey    bool           `json:"primary_key,omitempty"`
	ForeignKey    string         `json:"foreign_key,omitempty"`
	Unique        bool           `json:"unique,omitempty"`
	Index         bool           `json:"index,omitempty"`
	Nullable      *bool          `json:"nullable,omitempty"`
	StorageType   string         `json:"storage_type,omitempty"`
	Column        any            `json:"-" msgpack:"-"`
	ColumnArgs    []any          `json:"-" msgpack:"-"`
	ColumnKwargs  map[string]any `json:"column_kwargs,omitempty"`
}

// HasRealDefault reports whether the field carries a declared default,
// as opposed to the sentinel the loader injects into storage-backed
// schemas. Nullability derivation looks only at real defaults.
func (f *Field) HasRealDefault() bool {
	return (f.Default || f.DefaultFunc != nil) && !f.Injected
}

// Rel represents a relationship descriptor flattened into a plain
// record. The live target expression is runtime state; snapshots keep
// only the textual target names.
type Rel struct {
	Name          string         `json:"name,omitempty"`
	Target        rel.TypeExpr   `json:"-" msgpack:"-"`
	TargetNames   []string       `json:"targets,omitempty"`
	Optional      bool           `json:"optional,omitempty"`
	List          bool           `json:"list,omitempty"`
	BackPopulates string         `json:"back_populates,omitempty"`
	LinkModel     any            `json:"-" msgpack:"-"`
	LinkModelName string         `json:"link_model,omitempty"`
	Override      any            `json:"-" msgpack:"-"`
	Args          []any          `json:"-" msgpack:"-"`
	Kwargs        map[string]any `json:"kwargs,omitempty"`
}

// NewField creates a loaded field from a field descriptor. It returns
// an error if the descriptor recorded one.
func NewField(fd *field.Descriptor) (*Field, error) {
	if fd.Err != nil {
		return nil, fmt.Errorf("field %q: %w", fd.Name, fd.Err)
	}
	lf := &Field{
		Name:          fd.Name,
		Type:          fd.Type,
		Alias:         fd.Alias,
		Title:         fd.Title,
		Comment:       fd.Comment,
		Optional:      fd.Optional,
		Nillable:      fd.Nillable,
		Default:       fd.DefaultSet,
		DefaultFunc:   fd.DefaultFunc,
		MinLen:        fd.MinLen,
		MaxLen:        fd.MaxLen,
		Min:           fd.Min,
		Max:           fd.Max,
		MaxDigits:     fd.MaxDigits,
		DecimalPlaces: fd.DecimalPlaces,
		Enums:         fd.Enums,
		PrimaryKey:    fd.PrimaryKey,
		ForeignKey:    fd.ForeignKey,
		Unique:        fd.Unique,
		Index:         fd.Index,
		Nullable:      fd.Nullable,
		StorageType:   fd.StorageType,
		Column:        fd.Column,
		ColumnArgs:    fd.ColumnArgs,
		ColumnKwargs:  fd.ColumnKwargs,
	}
	// Keep only snapshot-encodable defaults. Factories stay runtime-only.
	if fd.DefaultSet {
		if _, err := json.Marshal(fd.Default); err == nil {
			lf.DefaultValue = fd.Default
		}
	}
	return lf, nil
}

// NewRel creates a loaded relationship from a relationship descriptor.
// It returns an error if the descriptor recorded one.
func NewRel(rd *rel.Descriptor) (*Rel, error) {
	if rd.Err != nil {
		return nil, fmt.Errorf("relationship %q: %w", rd.Name, rd.Err)
	}
	lr := &Rel{
		Name:          rd.Name,
		Target:        rd.Target,
		Optional:      rd.Target.Optional,
		List:          rd.Target.List,
		BackPopulates: rd.BackPopulates,
		LinkModel:     rd.LinkModel,
		Override:      rd.Override,
		Args:          rd.Args,
		Kwargs:        rd.Kwargs,
	}
	for _, t := range rd.Target.Targets {
		lr.TargetNames = append(lr.TargetNames, TargetName(t))
	}
	switch lm := rd.LinkModel.(type) {
	case nil:
	case string:
		lr.LinkModelName = lm
	default:
		lr.LinkModelName = typeName(lm)
	}
	return lr, nil
}

// TargetName returns the textual form of a target: its forward
// reference name, or the declaration type name.
func TargetName(t rel.Target) string {
	if t.Name != "" {
		return t.Name
	}
	return typeName(t.Decl)
}

// Options configure loading. The storage-backed flag resolves with a
// fixed priority: an explicit Config value wins over the registration
// option, and the absence of both means not storage-backed.
type Options struct {
	// Table is the registration-level storage-backed flag.
	Table *bool
	// PluralTableName derives plural table names (team -> teams).
	PluralTableName bool
}

// Option configures a Load call.
type Option func(*Options)

// WithTable sets the registration-level storage-backed flag.
func WithTable(v bool) Option {
	return func(o *Options) { o.Table = &v }
}

// WithPluralTableName derives pluralized table names.
func WithPluralTableName() Option {
	return func(o *Options) { o.PluralTableName = true }
}

// Load flattens the given declaration. All user methods run behind
// recover so a panicking declaration reports an error instead of
// crashing the build.
func Load(decl tabula.Interface, opts ...Option) (*Schema, error) {
	if decl == nil {
		return nil, fmt.Errorf("nil declaration")
	}
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	s := &Schema{Name: typeName(decl)}
	if c, ok := decl.(tabula.Configurator); ok {
		cfg, err := safeConfig(c)
		if err != nil {
			return nil, fmt.Errorf("schema %q: %w", s.Name, err)
		}
		s.Config = cfg
	}
	switch {
	case s.Config.Table != nil:
		s.Table = *s.Config.Table
	case o.Table != nil:
		s.Table = *o.Table
	}
	if s.Table {
		s.TableName = s.Config.TableName
		if s.TableName == "" {
			s.TableName = inflect.Underscore(s.Name)
			if o.PluralTableName {
				s.TableName = inflect.Pluralize(s.TableName)
			}
		}
	}
	mixFields, mixRels, err := safeMixin(decl)
	if err != nil {
		return nil, fmt.Errorf("schema %q: %w", s.Name, err)
	}
	fields, err := safeFields(decl)
	if err != nil {
		return nil, fmt.Errorf("schema %q: %w", s.Name, err)
	}
	fields = append(mixFields, fields...)
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		lf, err := NewField(f.Descriptor())
		if err != nil {
			return nil, fmt.Errorf("schema %q: %w", s.Name, err)
		}
		if seen[lf.Name] {
			return nil, fmt.Errorf("schema %q: duplicate field %q", s.Name, lf.Name)
		}
		seen[lf.Name] = true
		s.Fields = append(s.Fields, lf)
	}
	rels, err := safeRels(decl)
	if err != nil {
		return nil, fmt.Errorf("schema %q: %w", s.Name, err)
	}
	rels = append(mixRels, rels...)
	for _, r := range rels {
		lr, err := NewRel(r.Descriptor())
		if err != nil {
			return nil, fmt.Errorf("schema %q: %w", s.Name, err)
		}
		if seen[lr.Name] {
			return nil, fmt.Errorf("schema %q: duplicate field or relationship %q", s.Name, lr.Name)
		}
		seen[lr.Name] = true
		s.Rels = append(s.Rels, lr)
	}
	if s.Table {
		s.injectDefaults()
	}
	return s, nil
}

// injectDefaults marks every field without a declared default as
// carrying the injected nil sentinel. The sentinel makes zero-argument
// construction of storage-backed models total; the Injected flag keeps
// it reversible and distinct from a declared nil default.
func (s *Schema) injectDefaults() {
	for _, f := range s.Fields {
		if f.Default || f.DefaultFunc != nil {
			continue
		}
		f.Injected = true
	}
}

// MarshalSchema encodes the declaration as JSON that decodes into the
// Schema records above.
func MarshalSchema(decl tabula.Interface, opts ...Option) ([]byte, error) {
	s, err := Load(decl, opts...)
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

// UnmarshalSchema decodes a JSON buffer into a loaded schema.
func UnmarshalSchema(buf []byte) (*Schema, error) {
	s := &Schema{}
	if err := json.Unmarshal(buf, s); err != nil {
		return nil, err
	}
	for _, f := range s.Fields {
		if err := f.defaults(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// defaults renormalizes decoded numeric defaults, whose concrete type
// depends on the codec that produced them.
func (f *Field) defaults() error {
	if !f.Default || f.DefaultValue == nil || !f.Type.Numeric() {
		return nil
	}
	rv := reflect.ValueOf(f.DefaultValue)
	var n float64
	switch {
	case rv.CanFloat():
		n = rv.Float()
	case rv.CanInt():
		n = float64(rv.Int())
	case rv.CanUint():
		n = float64(rv.Uint())
	default:
		return fmt.Errorf("unexpected default value type %T for field %q", f.DefaultValue, f.Name)
	}
	switch t := f.Type; {
	case t >= field.TypeInt && t <= field.TypeInt64:
		f.DefaultValue = int64(n)
	case t >= field.TypeUint && t <= field.TypeUint64:
		f.DefaultValue = uint64(n)
	case t.Float():
		f.DefaultValue = n
	}
	return nil
}

func typeName(v any) string {
	return indirect(reflect.TypeOf(v)).Name()
}

// safeMixin flattens the mixed-in descriptors of the declaration, if it
// composes any, behind recover. Mixed-in fields and relationships load
// before the declaration's own.
func safeMixin(decl tabula.Interface) (fields []tabula.Field, rels []tabula.Rel, err error) {
	mx, ok := decl.(interface{ Mixin() []tabula.Mixin })
	if !ok {
		return nil, nil, nil
	}
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%T mixin panics: %v", decl, v)
			fields, rels = nil, nil
		}
	}()
	for _, m := range mx.Mixin() {
		fields = append(fields, m.Fields()...)
		rels = append(rels, m.Rels()...)
	}
	return fields, rels, nil
}

// safeFields wraps the declaration Fields method with recover to
// ensure no panics in loading.
func safeFields(decl tabula.Interface) (fields []tabula.Field, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%T.Fields panics: %v", decl, v)
			fields = nil
		}
	}()
	return decl.Fields(), nil
}

// safeRels wraps the declaration Rels method with recover to ensure no
// panics in loading.
func safeRels(decl tabula.Interface) (rels []tabula.Rel, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%T.Rels panics: %v", decl, v)
			rels = nil
		}
	}()
	return decl.Rels(), nil
}

// safeConfig wraps the declaration Config method with recover to
// ensure no panics in loading.
func safeConfig(c tabula.Configurator) (cfg tabula.Config, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%T.Config panics: %v", c, v)
			cfg = tabula.Config{}
		}
	}()
	return c.Config(), nil
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
