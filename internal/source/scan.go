package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// adhocRowLimit caps rows returned by ad hoc queries from the query
// orchestrator, bounding latency and memory rather than concurrency.
const adhocRowLimit = 100

// QuoteIdent quotes a caller-supplied identifier for interpolation into
// query text. Embedded quotes are doubled; this is the single place where
// table and column names meet SQL.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ScanTable returns every row of a table.
func (s *Source) ScanTable(ctx context.Context, table string) ([]Row, error) {
	var result []Row
	err := s.withDB(ctx, func(ctx context.Context, db *sql.DB) error {
		rows, err := queryRows(ctx, db, fmt.Sprintf("SELECT * FROM %s", QuoteIdent(table)))
		if err != nil {
			return err
		}
		result = rows
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}
	return result, nil
}

// DistinctValues returns up to limit distinct non-null values of a column.
func (s *Source) DistinctValues(ctx context.Context, table, column string, limit int) ([]Value, error) {
	var result []Value
	err := s.withDB(ctx, func(ctx context.Context, db *sql.DB) error {
		query := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL LIMIT %d",
			QuoteIdent(column), QuoteIdent(table), QuoteIdent(column), limit)
		rows, err := db.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var raw any
			if err := rows.Scan(&raw); err != nil {
				return err
			}
			result = append(result, FromAny(raw))
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("distinct %s.%s: %w", table, column, err)
	}
	return result, nil
}

// CountDistinct returns the number of distinct values of a column,
// counting nulls as zero.
func (s *Source) CountDistinct(ctx context.Context, table, column string) (int64, error) {
	var n int64
	err := s.withDB(ctx, func(ctx context.Context, db *sql.DB) error {
		query := fmt.Sprintf("SELECT count(DISTINCT %s) FROM %s",
			QuoteIdent(column), QuoteIdent(table))
		return db.QueryRowContext(ctx, query).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count distinct %s.%s: %w", table, column, err)
	}
	return n, nil
}

// CountMatching returns how many of the given values are present in the
// column's domain. Values travel as parameters, never as query text.
func (s *Source) CountMatching(ctx context.Context, table, column string, values []Value) (int64, error) {
	if len(values) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(values)), ",")
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v.Native()
	}

	var n int64
	err := s.withDB(ctx, func(ctx context.Context, db *sql.DB) error {
		query := fmt.Sprintf("SELECT count(*) FROM %s WHERE %s IN (%s)",
			QuoteIdent(table), QuoteIdent(column), placeholders)
		return db.QueryRowContext(ctx, query, args...).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count matching %s.%s: %w", table, column, err)
	}
	return n, nil
}

// Query executes an ad hoc read query, capping the result set.
func (s *Source) Query(ctx context.Context, query string) ([]Row, error) {
	var result []Row
	err := s.withDB(ctx, func(ctx context.Context, db *sql.DB) error {
		rows, err := queryRows(ctx, db, query)
		if err != nil {
			return err
		}
		if len(rows) > adhocRowLimit {
			rows = rows[:adhocRowLimit]
		}
		result = rows
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return result, nil
}

func queryRows(ctx context.Context, db *sql.DB, query string, args ...any) ([]Row, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []Row
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = FromAny(raw[i])
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
