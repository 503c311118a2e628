// Package schema holds the storage-side model of compiled declarations:
// columns derived from field descriptors, tables assembled from them, and
// the shared metadata container adopted by storage-backed models.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/syssam/tabula/schema/field"
)

// Column is the storage mapping of a single field. It is derived once
// by the mapping resolver and treated as immutable afterwards.
type Column struct {
	Name        string         // column name.
	Type        field.Type     // declared field type the column was derived from.
	StorageType string         // rendered SQL type, e.g. "VARCHAR(64)".
	Nullable    bool           // null or not null.
	PrimaryKey  bool           // part of the table primary key.
	Unique      bool           // unique constraint.
	Indexed     bool           // plain index on the column.
	ForeignKey  string         // referenced "table.column"; empty means none.
	Default     any            // static server-visible default.
	DefaultFunc func() any     // default factory, evaluated per instance.
	Size        int            // character size; 0 means unset.
	Precision   int            // decimal precision; 0 means unset.
	Scale       int            // decimal scale; 0 means unset.
	Enums       []string       // allowed enum values.
	Attrs       map[string]any // extra column keywords, merged last.
	Args        []any          // extra positional column arguments.
}

// HasDefault reports whether the column carries any default, static
// or factory.
func (c *Column) HasDefault() bool {
	return c.Default != nil || c.DefaultFunc != nil
}

// ForeignKey is a single-column reference assembled from the column's
// "table.column" declaration at table-build time.
type ForeignKey struct {
	Symbol    string  // constraint name.
	Column    *Column // referencing column.
	RefTable  string  // referenced table name.
	RefColumn string  // referenced column name.
}

// Index is a named index over one or more columns.
type Index struct {
	Name    string
	Unique  bool
	Columns []*Column
}

// Relationship is the storage-layer relationship record bound to a
// model by the wiring pass. It is descriptive only; this module does
// not load related rows.
type Relationship struct {
	Name          string         // attribute name on the declaring model.
	Target        string         // resolved target model name.
	Secondary     string         // link table name for many-to-many; empty means none.
	BackPopulates string         // inverse attribute on the target.
	List          bool           // many-valued.
	Optional      bool           // none-compatible.
	Attrs         map[string]any // extra relationship keywords, merged last.
}

// Table is the storage schema of one model.
type Table struct {
	Name        string
	Columns     []*Column
	PrimaryKey  []*Column
	ForeignKeys []*ForeignKey
	Indexes     []*Index

	columns map[string]*Column
}

// NewTable returns a new empty table with the given name.
func NewTable(name string) *Table {
	return &Table{
		Name:    name,
		columns: make(map[string]*Column),
	}
}

// AddColumn appends a column to the table, wiring its primary key,
// foreign key and index declarations into the table-level records.
// Duplicate column names are rejected.
func (t *Table) AddColumn(c *Column) error {
	if _, ok := t.columns[c.Name]; ok {
		return fmt.Errorf("duplicate column %q in table %q", c.Name, t.Name)
	}
	t.columns[c.Name] = c
	t.Columns = append(t.Columns, c)
	if c.PrimaryKey {
		t.PrimaryKey = append(t.PrimaryKey, c)
	}
	if c.ForeignKey != "" {
		refTable, refColumn, ok := strings.Cut(c.ForeignKey, ".")
		if !ok {
			return fmt.Errorf("malformed foreign key %q on column %q (want \"table.column\")", c.ForeignKey, c.Name)
		}
		t.ForeignKeys = append(t.ForeignKeys, &ForeignKey{
			Symbol:    fmt.Sprintf("%s_%s_fkey", t.Name, c.Name),
			Column:    c,
			RefTable:  refTable,
			RefColumn: refColumn,
		})
	}
	if c.Indexed {
		t.Indexes = append(t.Indexes, &Index{
			Name:    fmt.Sprintf("%s_%s_idx", t.Name, c.Name),
			Columns: []*Column{c},
		})
	}
	return nil
}

// Column returns the column with the given name, if it exists.
func (t *Table) Column(name string) (*Column, bool) {
	c, ok := t.columns[name]
	return c, ok
}

// Metadata is the shared schema container. Storage-backed models add
// their tables to exactly one Metadata; abstract models adopt an
// existing one without contributing a table.
type Metadata struct {
	tables map[string]*Table
}

// NewMetadata returns an empty metadata container.
func NewMetadata() *Metadata {
	return &Metadata{tables: make(map[string]*Table)}
}

// AddTable registers a table in the container. Table names are unique
// within one container.
func (m *Metadata) AddTable(t *Table) error {
	if _, ok := m.tables[t.Name]; ok {
		return fmt.Errorf("duplicate table %q in metadata", t.Name)
	}
	m.tables[t.Name] = t
	return nil
}

// Table returns the table with the given name, if it exists.
func (m *Metadata) Table(name string) (*Table, bool) {
	t, ok := m.tables[name]
	return t, ok
}

// Tables returns all tables sorted by name.
func (m *Metadata) Tables() []*Table {
	ts := make([]*Table, 0, len(m.tables))
	for _, t := range m.tables {
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].Name < ts[j].Name })
	return ts
}
