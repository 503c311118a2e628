// Package sql provides the execution glue between compiled models and
// SQL databases: a dialect.Driver implementation over database/sql and
// the two typed result shapes of model queries.
//
// # Driver
//
// Open or wrap a database/sql handle:
//
//	drv, err := sql.Open(dialect.SQLite, "file:app.db")
//	drv := sql.OpenDB(dialect.Postgres, db)
//
// The driver implements dialect.Driver, so Exec, Query and Tx work the
// same against any supported backend.
//
// # Result shapes
//
// A query that projects a single model column yields scalars:
//
//	names, err := sql.SelectScalar[string](ctx, drv, `SELECT "name" FROM "hero"`)
//
// A query across several models or columns yields positional tuples:
//
//	rows, err := sql.SelectTuple(ctx, drv,
//		`SELECT h."name", t."name" FROM "hero" h JOIN "team" t ON h."team_id" = t."id"`)
package sql
