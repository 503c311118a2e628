package schema

import (
	"fmt"

	atlas "ariga.io/atlas/sql/schema"

	"github.com/syssam/tabula/schema/field"
)

// Atlas converts the container into an atlas schema value, enabling
// inspection and diffing against live databases with the atlas
// toolchain. Foreign keys must reference tables inside the container.
func (m *Metadata) Atlas(name string) (*atlas.Schema, error) {
	s := atlas.New(name)
	tables := make(map[string]*atlas.Table)
	columns := make(map[string]map[string]*atlas.Column)
	for _, t := range m.Tables() {
		at := atlas.NewTable(t.Name)
		cols := make(map[string]*atlas.Column, len(t.Columns))
		for _, c := range t.Columns {
			ac, err := atlasColumn(c)
			if err != nil {
				return nil, fmt.Errorf("table %q: %w", t.Name, err)
			}
			at.AddColumns(ac)
			cols[c.Name] = ac
		}
		for _, pk := range t.PrimaryKey {
			if at.PrimaryKey == nil {
				at.PrimaryKey = &atlas.Index{Unique: true, Table: at}
			}
			at.PrimaryKey.Parts = append(at.PrimaryKey.Parts, &atlas.IndexPart{
				SeqNo: len(at.PrimaryKey.Parts),
				C:     cols[pk.Name],
			})
		}
		for _, idx := range t.Indexes {
			ai := &atlas.Index{Name: idx.Name, Unique: idx.Unique, Table: at}
			for i, c := range idx.Columns {
				ai.Parts = append(ai.Parts, &atlas.IndexPart{SeqNo: i, C: cols[c.Name]})
			}
			at.AddIndexes(ai)
		}
		s.AddTables(at)
		tables[t.Name] = at
		columns[t.Name] = cols
	}
	// Second pass: foreign keys may point at tables built later.
	for _, t := range m.Tables() {
		at := tables[t.Name]
		for _, fk := range t.ForeignKeys {
			ref, ok := tables[fk.RefTable]
			if !ok {
				return nil, fmt.Errorf("table %q: foreign key %q references unknown table %q", t.Name, fk.Symbol, fk.RefTable)
			}
			refCol, ok := columns[fk.RefTable][fk.RefColumn]
			if !ok {
				return nil, fmt.Errorf("table %q: foreign key %q references unknown column %q.%q", t.Name, fk.Symbol, fk.RefTable, fk.RefColumn)
			}
			at.AddForeignKeys(&atlas.ForeignKey{
				Symbol:     fk.Symbol,
				Table:      at,
				Columns:    []*atlas.Column{columns[t.Name][fk.Column.Name]},
				RefTable:   ref,
				RefColumns: []*atlas.Column{refCol},
			})
		}
	}
	return s, nil
}

func atlasColumn(c *Column) (*atlas.Column, error) {
	ct := &atlas.ColumnType{Raw: c.StorageType, Null: c.Nullable}
	switch {
	case c.Type.Integer():
		ct.Type = &atlas.IntegerType{T: c.StorageType}
	case c.Type.Float():
		ct.Type = &atlas.FloatType{T: c.StorageType}
	case c.Type == field.TypeBool:
		ct.Type = &atlas.BoolType{T: c.StorageType}
	case c.Type == field.TypeEnum:
		ct.Type = &atlas.EnumType{T: c.StorageType, Values: c.Enums}
	case c.Type.Stringer():
		ct.Type = &atlas.StringType{T: c.StorageType, Size: c.Size}
	case c.Type == field.TypeTime, c.Type == field.TypeDate, c.Type == field.TypeTimeOfDay:
		ct.Type = &atlas.TimeType{T: c.StorageType}
	case c.Type == field.TypeBytes:
		ct.Type = &atlas.BinaryType{T: c.StorageType}
	case c.Type == field.TypeDecimal:
		ct.Type = &atlas.DecimalType{T: c.StorageType, Precision: c.Precision, Scale: c.Scale}
	case c.Type == field.TypeUUID:
		ct.Type = &atlas.UUIDType{T: c.StorageType}
	case c.Type == field.TypeJSON:
		ct.Type = &atlas.JSONType{T: c.StorageType}
	default:
		ct.Type = &atlas.UnsupportedType{T: c.StorageType}
	}
	ac := atlas.NewColumn(c.Name)
	ac.Type = ct
	if c.Default != nil {
		lit, err := defaultLiteral(c.Default)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		ac.Default = &atlas.RawExpr{X: lit}
	}
	return ac, nil
}
