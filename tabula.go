// Package tabula turns one declaration into two representations: a
// validated data object and a relational storage schema. Declarations
// describe their fields and relationships with the fluent builders of
// schema/field and schema/rel; the compiler packages derive a
// validator program and a storage mapping from the same descriptors.
package tabula

import (
	sqlschema "github.com/syssam/tabula/dialect/sql/schema"
	"github.com/syssam/tabula/schema/field"
	"github.com/syssam/tabula/schema/rel"
)

// Interface is the minimum surface of a model declaration. Fields and
// relationships are separate methods; relationships never reach the
// validator and fields never carry wiring information.
type Interface interface {
	// Fields returns the field descriptors of the declaration.
	Fields() []Field
	// Rels returns the relationship descriptors of the declaration.
	Rels() []Rel
}

// A Field yields a field descriptor. *field.Builder implements it.
type Field interface {
	Descriptor() *field.Descriptor
}

// A Rel yields a relationship descriptor. *rel.Builder implements it.
type Rel interface {
	Descriptor() *rel.Descriptor
}

// Mixin composes a reusable set of fields and relationships into model
// declarations. A declaration exposes its mixins through the optional
// Mixin method; mixed-in descriptors load before the declaration's own.
type Mixin interface {
	// Fields returns the fields the mixin contributes.
	Fields() []Field
	// Rels returns the relationships the mixin contributes.
	Rels() []Rel
}

// Config holds declaration-level configuration. A declaration exposes
// it by implementing the optional Config method:
//
//	func (Hero) Config() tabula.Config {
//		return tabula.Config{Table: tabula.Bool(true)}
//	}
type Config struct {
	// Table decides whether the model is storage-backed. The explicit
	// value wins over registration options; nil inherits them and
	// defaults to false.
	Table *bool

	// TableName overrides the derived table name. Empty derives the
	// snake_case form of the declaration type name.
	TableName string

	// Metadata is the shared schema container to adopt. A declaration
	// that only adopts a container and is not a table itself becomes
	// abstract: its descendants contribute tables, it does not.
	Metadata *sqlschema.Metadata
}

// Configurator is implemented by declarations carrying configuration.
type Configurator interface {
	Config() Config
}

// Schema is the default declaration implementation. Embed it to
// declare only what the model needs:
//
//	type Hero struct {
//		tabula.Schema
//	}
//
//	func (Hero) Fields() []tabula.Field {
//		return []tabula.Field{
//			field.Int64("id").PrimaryKey(),
//			field.String("name").Index(),
//		}
//	}
type Schema struct{}

// Fields of the schema. Declarations override it.
func (Schema) Fields() []Field { return nil }

// Rels of the schema. Declarations override it.
func (Schema) Rels() []Rel { return nil }

// Mixin of the schema. Declarations override it to compose mixins.
func (Schema) Mixin() []Mixin { return nil }

// Bool returns a pointer to v, for use in Config literals.
func Bool(v bool) *bool { return &v }
