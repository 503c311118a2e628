package sql

import (
	"context"
	"fmt"

	"github.com/syssam/tabula/dialect"
)

// SelectScalar executes a single-column query and scans every row into
// a value of type T. Queries over one model project into scalars, not
// tuples, so a result set with more than one column is an error.
func SelectScalar[T any](ctx context.Context, drv dialect.Driver, query string, args ...any) ([]T, error) {
	rows := &Rows{}
	if err := drv.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: columns: %w", err)
	}
	if n := len(columns); n != 1 {
		return nil, fmt.Errorf("dialect/sql: scalar select expects 1 column, got %d", n)
	}
	var out []T
	for rows.Next() {
		var v T
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("dialect/sql: scan: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SelectTuple executes a multi-column query and scans every row into a
// positional tuple. Queries over more than one model keep the row
// shape; each tuple has one element per selected column.
func SelectTuple(ctx context.Context, drv dialect.Driver, query string, args ...any) ([][]any, error) {
	rows := &Rows{}
	if err := drv.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: columns: %w", err)
	}
	var out [][]any
	for rows.Next() {
		tuple := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range tuple {
			dest[i] = &tuple[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("dialect/sql: scan: %w", err)
		}
		out = append(out, tuple)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
