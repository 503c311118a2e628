// Package mapping derives storage columns from loaded field records.
// Derivation is pure: the same record always yields the same column,
// and nothing here touches a database.
package mapping

import (
	"fmt"

	"github.com/syssam/tabula"
	"github.com/syssam/tabula/compiler/load"
	sqlschema "github.com/syssam/tabula/dialect/sql/schema"
	"github.com/syssam/tabula/schema/field"
)

// defaultSize is the character size used when a string-like field
// declares no maximum length.
const defaultSize = 255

// Derive resolves the storage column of a loaded field.
//
// A manual column override is returned verbatim. An explicit storage
// type skips type dispatch. Otherwise the declared type resolves in a
// fixed order, so equal inputs always produce equal columns. A type
// with no mapping and no override fails with UnmappableTypeError.
func Derive(f *load.Field) (*sqlschema.Column, error) {
	if f.Column != nil {
		c, ok := f.Column.(*sqlschema.Column)
		if !ok {
			return nil, tabula.NewConfigurationError("", f.Name, fmt.Errorf("manual column override must be a *schema.Column, got %T", f.Column))
		}
		return c, nil
	}
	c := &sqlschema.Column{
		Name:       f.Name,
		Type:       f.Type,
		PrimaryKey: f.PrimaryKey,
		Unique:     f.Unique,
		Indexed:    f.Index,
		ForeignKey: f.ForeignKey,
		Args:       f.ColumnArgs,
	}
	if f.StorageType != "" {
		c.StorageType = f.StorageType
	} else if err := dispatch(f, c); err != nil {
		return nil, err
	}
	c.Nullable = nullable(f)
	// A factory beats a static default when both survive loading.
	switch {
	case f.DefaultFunc != nil:
		c.DefaultFunc = f.DefaultFunc
	case f.Default && !f.Injected:
		c.Default = f.DefaultValue
	}
	applyKwargs(f, c)
	return c, nil
}

// dispatch resolves the storage type of the declared field type. The
// order is fixed; changing it changes derived schemas.
func dispatch(f *load.Field, c *sqlschema.Column) error {
	switch t := f.Type; {
	case t == field.TypeEnum:
		c.Enums = f.Enums
		c.Size = longest(f.Enums)
		c.StorageType = fmt.Sprintf("VARCHAR(%d)", c.Size)
	case t == field.TypeString:
		c.Size = f.MaxLen
		if c.Size == 0 {
			c.Size = defaultSize
		}
		c.StorageType = fmt.Sprintf("VARCHAR(%d)", c.Size)
	case t.Float():
		c.StorageType = "FLOAT"
	case t == field.TypeBool:
		c.StorageType = "BOOLEAN"
	case t.Integer():
		switch t {
		case field.TypeInt8, field.TypeInt16:
			c.StorageType = "SMALLINT"
		case field.TypeInt64, field.TypeUint, field.TypeUint32, field.TypeUint64:
			c.StorageType = "BIGINT"
		default:
			c.StorageType = "INTEGER"
		}
	case t == field.TypeTime:
		c.StorageType = "TIMESTAMP"
	case t == field.TypeDate:
		c.StorageType = "DATE"
	case t == field.TypeDuration:
		c.StorageType = "INTERVAL"
	case t == field.TypeTimeOfDay:
		c.StorageType = "TIME"
	case t == field.TypeBytes:
		c.StorageType = "BLOB"
	case t == field.TypeDecimal:
		c.Precision = f.MaxDigits
		c.Scale = f.DecimalPlaces
		if c.Precision > 0 {
			c.StorageType = fmt.Sprintf("DECIMAL(%d,%d)", c.Precision, c.Scale)
		} else {
			c.StorageType = "DECIMAL"
		}
	case t == field.TypeIP, t == field.TypeFilePath:
		c.Size = f.MaxLen
		if c.Size == 0 {
			c.Size = defaultSize
		}
		c.StorageType = fmt.Sprintf("VARCHAR(%d)", c.Size)
	case t == field.TypeUUID:
		c.StorageType = "UUID"
	case t == field.TypeJSON:
		c.StorageType = "JSON"
	default:
		return tabula.NewUnmappableTypeError("", f.Name, f.Type)
	}
	return nil
}

// nullable derives column nullability. Primary keys are never
// nullable. An explicit override wins otherwise. Without one, a column
// is nullable when its field is nillable or declares a nil default;
// the loader-injected sentinel does not count.
func nullable(f *load.Field) bool {
	if f.PrimaryKey {
		return false
	}
	if f.Nullable != nil {
		return *f.Nullable
	}
	if f.Nillable {
		return true
	}
	return f.Default && !f.Injected && f.DefaultValue == nil && f.DefaultFunc == nil
}

// applyKwargs merges extra column keywords last, overriding the
// shorthand-derived values they name. Unrecognized keys are kept as
// column attributes.
func applyKwargs(f *load.Field, c *sqlschema.Column) {
	for k, v := range f.ColumnKwargs {
		switch k {
		case "nullable":
			if b, ok := v.(bool); ok && !c.PrimaryKey {
				c.Nullable = b
				continue
			}
		case "unique":
			if b, ok := v.(bool); ok {
				c.Unique = b
				continue
			}
		case "index":
			if b, ok := v.(bool); ok {
				c.Indexed = b
				continue
			}
		case "primary_key":
			if b, ok := v.(bool); ok {
				c.PrimaryKey = b
				continue
			}
		case "storage_type":
			if s, ok := v.(string); ok {
				c.StorageType = s
				continue
			}
		case "default":
			c.Default = v
			continue
		}
		if c.Attrs == nil {
			c.Attrs = make(map[string]any)
		}
		c.Attrs[k] = v
	}
}

func longest(vs []string) int {
	n := 0
	for _, v := range vs {
		if len(v) > n {
			n = len(v)
		}
	}
	return n
}
