// Package sqlsource loads database records as loosely-typed maps and casts
// them into schema-backed structs.
//
// Rows are scanned column-by-column into map[string]any, the same shape a
// JSON decode produces, then handed to the morph cast. Drivers return TEXT
// columns as []byte; those are widened to string so the cast coercion rules
// apply uniformly.
package sqlsource

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/SamHutchings/structmorph/morph"
)

// MapsFromRows scans every remaining row into a map keyed by column name.
// The caller keeps ownership of rows and must close them.
func MapsFromRows(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlsource: columns: %w", err)
	}

	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlsource: scan: %w", err)
		}

		record := make(map[string]any, len(cols))
		for i, col := range cols {
			v := vals[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			record[col] = v
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

// QueryMaps runs a query and returns every row as a map keyed by column name.
func QueryMaps(ctx context.Context, db *sql.DB, query string, args ...any) ([]map[string]any, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlsource: query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return MapsFromRows(rows)
}

// QueryStructs runs a query and casts every row into a *T via the schema
// cast. A row that fails the cast fails the whole call with the changeset
// error for that row.
func QueryStructs[T any](ctx context.Context, db *sql.DB, query string, args ...any) ([]*T, error) {
	records, err := QueryMaps(ctx, db, query, args...)
	if err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(records))
	for i, record := range records {
		cast, err := morph.Cast[T](record)
		if err != nil {
			return nil, fmt.Errorf("sqlsource: row %d: %w", i, err)
		}
		out = append(out, cast)
	}
	return out, nil
}

// QueryStruct runs a query expected to produce a single row and casts it
// into a *T. sql.ErrNoRows is returned when the query matches nothing.
func QueryStruct[T any](ctx context.Context, db *sql.DB, query string, args ...any) (*T, error) {
	results, err := QueryStructs[T](ctx, db, query, args...)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, sql.ErrNoRows
	}
	return results[0], nil
}
