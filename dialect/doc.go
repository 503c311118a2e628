// Package dialect provides database dialect abstraction for tabula.
//
// The package defines the interfaces used for database-specific
// operations, supporting PostgreSQL, MySQL, and SQLite backends.
//
// Each dialect is identified by a constant string:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// The Driver interface wraps all database operations:
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// ExecQuerier is the subset implemented by both Driver and Tx, and is
// what query helpers accept:
//
//	db, err := sql.Open(dialect.SQLite, "file:test?mode=memory")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
// Sub-packages:
//
//   - dialect/sql: database/sql driver implementation and typed result scanning
//   - dialect/sql/schema: the derived storage schema model and DDL emission
package dialect
