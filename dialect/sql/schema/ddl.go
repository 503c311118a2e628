package schema

import (
	"fmt"
	"strings"

	"github.com/syssam/tabula/dialect"
)

// quote returns the identifier quoted for the given dialect.
func quote(d, ident string) string {
	if d == dialect.MySQL {
		return "`" + ident + "`"
	}
	return `"` + ident + `"`
}

// DDL renders the CREATE TABLE statement of the table for the given
// dialect. Factory defaults are evaluated per instance and are not
// part of the emitted schema.
func (t *Table) DDL(d string) (string, error) {
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("table %q has no columns", t.Name)
	}
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(quote(d, t.Name))
	b.WriteString(" (")
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		if err := c.writeDDL(&b, d); err != nil {
			return "", fmt.Errorf("table %q: %w", t.Name, err)
		}
	}
	if len(t.PrimaryKey) > 0 {
		b.WriteString(", PRIMARY KEY (")
		for i, c := range t.PrimaryKey {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(quote(d, c.Name))
		}
		b.WriteString(")")
	}
	for _, fk := range t.ForeignKeys {
		fmt.Fprintf(&b, ", CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
			quote(d, fk.Symbol), quote(d, fk.Column.Name), quote(d, fk.RefTable), quote(d, fk.RefColumn))
	}
	b.WriteString(")")
	return b.String(), nil
}

// IndexDDL renders the CREATE INDEX statements of the table.
func (t *Table) IndexDDL(d string) []string {
	stmts := make([]string, 0, len(t.Indexes))
	for _, idx := range t.Indexes {
		var b strings.Builder
		b.WriteString("CREATE ")
		if idx.Unique {
			b.WriteString("UNIQUE ")
		}
		fmt.Fprintf(&b, "INDEX %s ON %s (", quote(d, idx.Name), quote(d, t.Name))
		for i, c := range idx.Columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(quote(d, c.Name))
		}
		b.WriteString(")")
		stmts = append(stmts, b.String())
	}
	return stmts
}

// DDL renders the full container: one CREATE TABLE per table followed
// by its index statements, in table-name order.
func (m *Metadata) DDL(d string) ([]string, error) {
	var stmts []string
	for _, t := range m.Tables() {
		stmt, err := t.DDL(d)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		stmts = append(stmts, t.IndexDDL(d)...)
	}
	return stmts, nil
}

func (c *Column) writeDDL(b *strings.Builder, d string) error {
	if c.StorageType == "" {
		return fmt.Errorf("column %q has no storage type", c.Name)
	}
	b.WriteString(quote(d, c.Name))
	b.WriteString(" ")
	b.WriteString(c.StorageType)
	if c.Nullable {
		b.WriteString(" NULL")
	} else {
		b.WriteString(" NOT NULL")
	}
	if c.Default != nil {
		lit, err := defaultLiteral(c.Default)
		if err != nil {
			return fmt.Errorf("column %q: %w", c.Name, err)
		}
		b.WriteString(" DEFAULT ")
		b.WriteString(lit)
	}
	if c.Unique {
		b.WriteString(" UNIQUE")
	}
	return nil
}

func defaultLiteral(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'", nil
	case bool:
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprintf("%v", v), nil
	case fmt.Stringer:
		return "'" + strings.ReplaceAll(v.String(), "'", "''") + "'", nil
	default:
		return "", fmt.Errorf("unsupported default literal %T", v)
	}
}
