package field

import (
	"errors"
	"fmt"
)

// A Descriptor for field configuration. It is the immutable product of
// a builder and is consumed exactly once by the loader. Descriptors do
// not fail eagerly; configuration conflicts are recorded in Err and
// surfaced when the declaration is loaded.
type Descriptor struct {
	Name          string         // storage and validation name.
	Type          Type           // declared value type.
	Alias         string         // documentation-only alternative name.
	Title         string         // documentation-only title.
	Comment       string         // documentation-only description.
	Optional      bool           // not required on construction.
	Nillable      bool           // value may be none-like.
	Default       any            // static default value.
	DefaultSet    bool           // Default was assigned explicitly (nil is a valid default).
	DefaultFunc   func() any     // default factory; takes precedence over Default.
	Injected      bool           // default was injected by the loader, not declared.
	MinLen        int            // minimum length (string/bytes); 0 means unset.
	MaxLen        int            // maximum length (string/bytes); 0 means unset.
	Min           *float64       // minimum numeric bound.
	Max           *float64       // maximum numeric bound.
	MaxDigits     int            // decimal precision; 0 means unset.
	DecimalPlaces int            // decimal scale; 0 means unset.
	Enums         []string       // allowed values for enum fields.
	PrimaryKey    bool           // column is part of the primary key.
	ForeignKey    string         // referenced "table.column"; empty means none.
	Unique        bool           // unique constraint.
	Index         bool           // plain index.
	Nullable      *bool          // explicit nullability override.
	StorageType   string         // explicit storage type, used verbatim.
	Column        any            // manual column override, opaque to the descriptor.
	ColumnArgs    []any          // extra positional column arguments.
	ColumnKwargs  map[string]any // extra keyword column arguments.
	Err           error
}

// Builder is the fluent configuration surface shared by all field
// constructors. Unlike statically generated per-type builders, fields
// here are compiled at runtime, so one builder covers every type.
type Builder struct {
	desc *Descriptor
}

// New returns a field builder of the given type. The typed
// constructors below are the preferred entry points.
func New(name string, t Type) *Builder {
	b := &Builder{desc: &Descriptor{Name: name, Type: t}}
	if name == "" {
		b.err(errors.New("field name cannot be empty"))
	}
	if !t.Valid() {
		b.err(fmt.Errorf("invalid field type %q", t))
	}
	return b
}

// Bool returns a new boolean field.
func Bool(name string) *Builder { return New(name, TypeBool) }

// Int returns a new int field.
func Int(name string) *Builder { return New(name, TypeInt) }

// Int8 returns a new int8 field.
func Int8(name string) *Builder { return New(name, TypeInt8) }

// Int16 returns a new int16 field.
func Int16(name string) *Builder { return New(name, TypeInt16) }

// Int32 returns a new int32 field.
func Int32(name string) *Builder { return New(name, TypeInt32) }

// Int64 returns a new int64 field.
func Int64(name string) *Builder { return New(name, TypeInt64) }

// Uint returns a new uint field.
func Uint(name string) *Builder { return New(name, TypeUint) }

// Uint8 returns a new uint8 field.
func Uint8(name string) *Builder { return New(name, TypeUint8) }

// Uint16 returns a new uint16 field.
func Uint16(name string) *Builder { return New(name, TypeUint16) }

// Uint32 returns a new uint32 field.
func Uint32(name string) *Builder { return New(name, TypeUint32) }

// Uint64 returns a new uint64 field.
func Uint64(name string) *Builder { return New(name, TypeUint64) }

// Float returns a new float64 field.
func Float(name string) *Builder { return New(name, TypeFloat64) }

// Float32 returns a new float32 field.
func Float32(name string) *Builder { return New(name, TypeFloat32) }

// String returns a new string field.
func String(name string) *Builder { return New(name, TypeString) }

// Bytes returns a new binary field.
func Bytes(name string) *Builder { return New(name, TypeBytes) }

// Time returns a new datetime field.
func Time(name string) *Builder { return New(name, TypeTime) }

// Date returns a new date field.
func Date(name string) *Builder { return New(name, TypeDate) }

// Duration returns a new interval field.
func Duration(name string) *Builder { return New(name, TypeDuration) }

// TimeOfDay returns a new wall-clock time field.
func TimeOfDay(name string) *Builder { return New(name, TypeTimeOfDay) }

// Decimal returns a new fixed-point decimal field.
func Decimal(name string) *Builder { return New(name, TypeDecimal) }

// Enum returns a new enum field. Use Values to set the allowed values.
func Enum(name string) *Builder { return New(name, TypeEnum) }

// UUID returns a new universally-unique-identifier field.
func UUID(name string) *Builder { return New(name, TypeUUID) }

// IP returns a new network-address field, persisted as character data.
func IP(name string) *Builder { return New(name, TypeIP) }

// FilePath returns a new filesystem-path field, persisted as character data.
func FilePath(name string) *Builder { return New(name, TypeFilePath) }

// JSON returns a new JSON field.
func JSON(name string) *Builder { return New(name, TypeJSON) }

// Other returns a field with no builtin storage mapping. It requires
// an explicit StorageType or a manual Column override.
func Other(name string) *Builder { return New(name, TypeOther) }

// Default sets the static default value of the field. A nil default is
// meaningful (it marks the field none-compatible for nullability
// derivation) and is distinct from no default at all.
func (b *Builder) Default(v any) *Builder {
	b.desc.Default = v
	b.desc.DefaultSet = true
	return b
}

// DefaultFunc sets a default factory. It takes precedence over a
// static default when both are present.
func (b *Builder) DefaultFunc(fn func() any) *Builder {
	b.desc.DefaultFunc = fn
	return b
}

// Optional marks the field as not required on construction.
func (b *Builder) Optional() *Builder {
	b.desc.Optional = true
	return b
}

// Nillable marks the field value as none-compatible. A nillable field
// derives a nullable column unless overridden.
func (b *Builder) Nillable() *Builder {
	b.desc.Nillable = true
	b.desc.Optional = true
	return b
}

// Alias sets a documentation-only alternative name.
func (b *Builder) Alias(s string) *Builder {
	b.desc.Alias = s
	return b
}

// Title sets a documentation-only title.
func (b *Builder) Title(s string) *Builder {
	b.desc.Title = s
	return b
}

// Comment sets a documentation-only description.
func (b *Builder) Comment(s string) *Builder {
	b.desc.Comment = s
	return b
}

// MinLen sets the minimum length for string and bytes fields.
func (b *Builder) MinLen(n int) *Builder {
	b.desc.MinLen = n
	return b
}

// MaxLen sets the maximum length for string and bytes fields. The
// derived character column carries it as its size.
func (b *Builder) MaxLen(n int) *Builder {
	b.desc.MaxLen = n
	return b
}

// Min sets the minimum value for numeric fields.
func (b *Builder) Min(v float64) *Builder {
	b.desc.Min = &v
	return b
}

// Max sets the maximum value for numeric fields.
func (b *Builder) Max(v float64) *Builder {
	b.desc.Max = &v
	return b
}

// Range sets both numeric bounds.
func (b *Builder) Range(min, max float64) *Builder {
	return b.Min(min).Max(max)
}

// MaxDigits sets the precision of a decimal field.
func (b *Builder) MaxDigits(n int) *Builder {
	b.desc.MaxDigits = n
	return b
}

// DecimalPlaces sets the scale of a decimal field.
func (b *Builder) DecimalPlaces(n int) *Builder {
	b.desc.DecimalPlaces = n
	return b
}

// Values sets the allowed values of an enum field.
func (b *Builder) Values(vs ...string) *Builder {
	if b.desc.Type != TypeEnum {
		b.err(fmt.Errorf("Values is allowed only on enum fields (got %s)", b.desc.Type))
	}
	b.desc.Enums = vs
	return b
}

// PrimaryKey marks the derived column as part of the primary key.
func (b *Builder) PrimaryKey() *Builder {
	b.desc.PrimaryKey = true
	return b
}

// ForeignKey sets the referenced column as a "table.column" string.
func (b *Builder) ForeignKey(ref string) *Builder {
	b.desc.ForeignKey = ref
	return b
}

// Unique adds a unique constraint to the derived column.
func (b *Builder) Unique() *Builder {
	b.desc.Unique = true
	return b
}

// Index adds a plain index on the derived column.
func (b *Builder) Index() *Builder {
	b.desc.Index = true
	return b
}

// Nullable overrides the derived nullability. The override always wins
// over optionality and default-based derivation.
func (b *Builder) Nullable(v bool) *Builder {
	b.desc.Nullable = &v
	return b
}

// StorageType sets an explicit storage type, used verbatim by the
// mapping resolver instead of type dispatch.
func (b *Builder) StorageType(t string) *Builder {
	b.desc.StorageType = t
	return b
}

// Column sets a manual, fully-configured column override. It is
// mutually exclusive with every shorthand mapping hint and with
// defaults; the conflict is reported when the declaration is loaded.
func (b *Builder) Column(c any) *Builder {
	b.desc.Column = c
	return b
}

// ColumnArgs sets extra positional column arguments.
func (b *Builder) ColumnArgs(args ...any) *Builder {
	b.desc.ColumnArgs = args
	return b
}

// ColumnKwargs sets extra keyword column arguments. They merge last
// and override same-named shorthand-derived keywords.
func (b *Builder) ColumnKwargs(kw map[string]any) *Builder {
	b.desc.ColumnKwargs = kw
	return b
}

// Descriptor returns the descriptor of the field, running the final
// conflict checks.
func (b *Builder) Descriptor() *Descriptor {
	d := b.desc
	if d.Column != nil {
		for hint, set := range map[string]bool{
			"PrimaryKey":   d.PrimaryKey,
			"ForeignKey":   d.ForeignKey != "",
			"Unique":       d.Unique,
			"Index":        d.Index,
			"Nullable":     d.Nullable != nil,
			"StorageType":  d.StorageType != "",
			"ColumnArgs":   len(d.ColumnArgs) > 0,
			"ColumnKwargs": len(d.ColumnKwargs) > 0,
			"Default":      d.DefaultSet,
			"DefaultFunc":  d.DefaultFunc != nil,
		} {
			if set {
				b.err(fmt.Errorf("manual column override is mutually exclusive with %s", hint))
				break
			}
		}
	}
	if d.DefaultSet && d.DefaultFunc != nil {
		b.err(errors.New("Default and DefaultFunc are mutually exclusive"))
	}
	if d.Type == TypeEnum && len(d.Enums) == 0 && d.Err == nil {
		b.err(errors.New("enum field declared with no values"))
	}
	return d
}

// err records the first configuration error of the builder.
func (b *Builder) err(err error) {
	if b.desc.Err == nil {
		b.desc.Err = err
	}
}
