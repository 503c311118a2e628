// Package field provides fluent builders for defining model fields in tabula.
//
// A field declaration carries everything both halves of the compiler need:
// the validation-side shape (type, constraints, optionality) and the
// storage-side hints (primary key, foreign key, nullability, storage type):
//
//	field.Int64("id").PrimaryKey()
//	field.String("name").MaxLen(64).Index()
//	field.Decimal("price").MaxDigits(5).DecimalPlaces(2)
//
// # Nullability
//
// Optional fields are not required on construction but still map to
// NOT NULL columns unless they are Nillable or carry a nil-compatible
// default:
//
//	field.String("role").Optional().Default("user") // NOT NULL
//	field.String("nickname").Nillable()             // NULL
//	field.Int("age").Nullable(false)                // override always wins
//
// # Defaults
//
// Fields take either a literal default or a factory:
//
//	field.String("status").Default("active")
//	field.UUID("id").DefaultFunc(func() any { return uuid.New() })
//
// # Manual columns
//
// A fully-configured column can replace the derived one. It excludes
// every shorthand storage hint on the same field:
//
//	field.String("data").Column(&sqlschema.Column{Name: "data", StorageType: "JSONB"})
package field
