package source

import (
	"context"
	"database/sql"
	"fmt"
)

// sampleRowLimit bounds the number of rows kept per table for display.
const sampleRowLimit = 5

// Column describes one column of a source table.
type Column struct {
	Name         string
	DeclaredType string
	NotNull      bool
	PrimaryKey   bool
}

// TableSchema describes one source table. Immutable for the duration of a
// conversion run.
type TableSchema struct {
	Name       string
	Columns    []Column
	PrimaryKey string
	RowCount   int64
	SampleRows []Row
}

// SchemaInfo is the result of a full introspection pass.
type SchemaInfo struct {
	Tables    []string
	Schemas   map[string]*TableSchema
	TotalRows int64
}

const listTablesSQL = `SELECT table_name FROM information_schema.tables
WHERE table_schema = 'main' AND table_type = 'BASE TABLE'
ORDER BY table_name`

// Introspect enumerates every table with column metadata, row count, and a
// small sample. Pure read; no inference happens here.
func (s *Source) Introspect(ctx context.Context) (*SchemaInfo, error) {
	info := &SchemaInfo{Schemas: make(map[string]*TableSchema)}

	err := s.withDB(ctx, func(ctx context.Context, db *sql.DB) error {
		rows, err := db.QueryContext(ctx, listTablesSQL)
		if err != nil {
			return fmt.Errorf("list tables: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return fmt.Errorf("scan table name: %w", err)
			}
			info.Tables = append(info.Tables, name)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("list tables: %w", err)
		}

		for _, name := range info.Tables {
			schema, err := introspectTable(ctx, db, name)
			if err != nil {
				return fmt.Errorf("introspect %s: %w", name, err)
			}
			if len(schema.Columns) == 0 {
				continue
			}
			info.Schemas[name] = schema
			info.TotalRows += schema.RowCount
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Drop tables that were skipped for having no columns.
	kept := info.Tables[:0]
	for _, name := range info.Tables {
		if _, ok := info.Schemas[name]; ok {
			kept = append(kept, name)
		}
	}
	info.Tables = kept

	return info, nil
}

func introspectTable(ctx context.Context, db *sql.DB, table string) (*TableSchema, error) {
	schema := &TableSchema{Name: table}

	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", QuoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("table_info: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int64
			name    string
			ctype   string
			notnull bool
			dflt    sql.NullString
			pk      bool
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan table_info: %w", err)
		}
		schema.Columns = append(schema.Columns, Column{
			Name:         name,
			DeclaredType: ctype,
			NotNull:      notnull,
			PrimaryKey:   pk,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("table_info: %w", err)
	}
	if len(schema.Columns) == 0 {
		return schema, nil
	}

	// Declared key wins; otherwise fall back to the first column in
	// declaration order.
	schema.PrimaryKey = schema.Columns[0].Name
	for _, col := range schema.Columns {
		if col.PrimaryKey {
			schema.PrimaryKey = col.Name
			break
		}
	}

	countSQL := fmt.Sprintf("SELECT count(*) FROM %s", QuoteIdent(table))
	if err := db.QueryRowContext(ctx, countSQL).Scan(&schema.RowCount); err != nil {
		return nil, fmt.Errorf("row count: %w", err)
	}

	sampleSQL := fmt.Sprintf("SELECT * FROM %s LIMIT %d", QuoteIdent(table), sampleRowLimit)
	sample, err := queryRows(ctx, db, sampleSQL)
	if err != nil {
		return nil, fmt.Errorf("sample rows: %w", err)
	}
	schema.SampleRows = sample

	return schema, nil
}

// Schema introspects a single table.
func (s *Source) Schema(ctx context.Context, table string) (*TableSchema, error) {
	var schema *TableSchema
	err := s.withDB(ctx, func(ctx context.Context, db *sql.DB) error {
		var err error
		schema, err = introspectTable(ctx, db, table)
		return err
	})
	if err != nil {
		return nil, err
	}
	return schema, nil
}
