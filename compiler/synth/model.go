package synth

import (
	sqlschema "github.com/syssam/tabula/dialect/sql/schema"

	"github.com/syssam/tabula/compiler/load"
	"github.com/syssam/tabula/compiler/validate"
)

// Model is a compiled declaration: the validator program and, for
// storage-backed models, the derived table bound to the shared
// container. Relationships stay unresolved until the registry's
// resolution pass.
type Model struct {
	Name   string
	Schema *load.Schema

	// Program validates the field set. Relationships never appear in it.
	Program *validate.Program

	// Table is the derived table of a storage-backed model. Abstract
	// models and projections have none of their own.
	Table *sqlschema.Table

	// Metadata is the shared container the model participates in.
	Metadata *sqlschema.Metadata

	// Columns maps field names to their derived columns.
	Columns map[string]*sqlschema.Column

	// Rels maps relationship names to their bound records after the
	// resolution pass.
	Rels map[string]*sqlschema.Relationship

	// Abstract models adopt a container without contributing a table;
	// their descendants do.
	Abstract bool

	// Base is set on read-only projections of a storage-backed model.
	// Projections share the base table and are never re-wired.
	Base *Model

	// Strict makes storage-backed construction surface validation
	// errors instead of swallowing them.
	Strict bool
}

// IsTable reports whether the model carries its own table.
func (m *Model) IsTable() bool {
	return m.Table != nil
}

// ReadOnly reports whether the model is a projection of another
// storage-backed model.
func (m *Model) ReadOnly() bool {
	return m.Base != nil
}

// Instrumented reports whether the named attribute is a storage
// attribute tracked by the persistence layer. Columns and
// relationships of storage-backed models are instrumented; plain data
// models have no persistence layer at all.
func (m *Model) Instrumented(name string) bool {
	if !m.IsTable() && !m.ReadOnly() {
		return false
	}
	if _, ok := m.Columns[name]; ok {
		return true
	}
	return m.HasRel(name)
}

// Rel returns the bound relationship with the given name, if any.
func (m *Model) Rel(name string) (*sqlschema.Relationship, bool) {
	r, ok := m.Rels[name]
	return r, ok
}

// HasRel reports whether the declaration names the given relationship,
// bound or not.
func (m *Model) HasRel(name string) bool {
	for _, r := range m.Schema.Rels {
		if r.Name == name {
			return true
		}
	}
	return false
}
