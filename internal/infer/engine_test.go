package infer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"tablegraph/internal/source"
	"tablegraph/internal/source/sourcetest"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func schema(name, pk string, rowCount int64, cols ...string) *source.TableSchema {
	s := &source.TableSchema{Name: name, PrimaryKey: pk, RowCount: rowCount}
	for _, c := range cols {
		s.Columns = append(s.Columns, source.Column{Name: c})
	}
	return s
}

func TestDetectReferenceNamePattern(t *testing.T) {
	// orders.customer_id matches the target key name; 4 of 5 sampled values
	// exist in customers.customer_id, above the 0.3 threshold.
	src := sourcetest.New(t,
		func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(`SELECT DISTINCT "customer_id" FROM "orders" WHERE "customer_id" IS NOT NULL LIMIT 10`).
				WillReturnRows(sqlmock.NewRows([]string{"customer_id"}).
					AddRow(1).AddRow(2).AddRow(3).AddRow(4).AddRow(5))
		},
		func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(`SELECT count(*) FROM "customers" WHERE "customer_id" IN (?,?,?,?,?)`).
				WithArgs(int64(1), int64(2), int64(3), int64(4), int64(5)).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
		},
	)

	e := New(src, DefaultConfig(), discard())
	det := e.DetectReference(context.Background(),
		schema("orders", "order_id", 100, "order_id", "customer_id", "amount"),
		schema("customers", "customer_id", 20, "customer_id", "name"))

	if det.Outcome != Matched {
		t.Fatalf("Outcome = %v, want Matched", det.Outcome)
	}
	if det.Column != "customer_id" {
		t.Errorf("Column = %q", det.Column)
	}
	if det.Rule != RuleNamePattern {
		t.Errorf("Rule = %q", det.Rule)
	}
	if det.Ratio != 0.8 {
		t.Errorf("Ratio = %v, want 0.8", det.Ratio)
	}
}

func TestDetectReferenceBelowThreshold(t *testing.T) {
	// 1 of 5 sampled values match: 0.2 is not above the 0.3 threshold, and
	// the cardinality rule rejects the remaining columns too.
	src := sourcetest.New(t,
		func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(`SELECT DISTINCT "customer_id" FROM "orders" WHERE "customer_id" IS NOT NULL LIMIT 10`).
				WillReturnRows(sqlmock.NewRows([]string{"customer_id"}).
					AddRow(1).AddRow(2).AddRow(3).AddRow(4).AddRow(5))
		},
		func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(`SELECT count(*) FROM "customers" WHERE "customer_id" IN (?,?,?,?,?)`).
				WithArgs(int64(1), int64(2), int64(3), int64(4), int64(5)).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		},
		// Cardinality rule probes each column; both have too many distinct
		// values relative to the 100-row table.
		func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(`SELECT count(DISTINCT "order_id") FROM "orders"`).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(100))
		},
		func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(`SELECT count(DISTINCT "customer_id") FROM "orders"`).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(80))
		},
	)

	e := New(src, DefaultConfig(), discard())
	det := e.DetectReference(context.Background(),
		schema("orders", "order_id", 100, "order_id", "customer_id"),
		schema("customers", "customer_id", 20, "customer_id", "name"))

	if det.Outcome != NotMatched {
		t.Fatalf("Outcome = %v, want NotMatched", det.Outcome)
	}
}

func TestDetectReferenceExactThreshold(t *testing.T) {
	// Exactly 3 of 10 sampled values match. Acceptance requires the ratio to
	// exceed 0.3, so the boundary itself is rejected; the cardinality rule
	// then rejects both columns on distinct counts.
	src := sourcetest.New(t,
		func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(`SELECT DISTINCT "customer_id" FROM "orders" WHERE "customer_id" IS NOT NULL LIMIT 10`).
				WillReturnRows(sqlmock.NewRows([]string{"customer_id"}).
					AddRow(1).AddRow(2).AddRow(3).AddRow(4).AddRow(5).
					AddRow(6).AddRow(7).AddRow(8).AddRow(9).AddRow(10))
		},
		func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(`SELECT count(*) FROM "customers" WHERE "customer_id" IN (?,?,?,?,?,?,?,?,?,?)`).
				WithArgs(int64(1), int64(2), int64(3), int64(4), int64(5),
					int64(6), int64(7), int64(8), int64(9), int64(10)).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		},
		func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(`SELECT count(DISTINCT "order_id") FROM "orders"`).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(100))
		},
		func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(`SELECT count(DISTINCT "customer_id") FROM "orders"`).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(50))
		},
	)

	e := New(src, DefaultConfig(), discard())
	det := e.DetectReference(context.Background(),
		schema("orders", "order_id", 100, "order_id", "customer_id"),
		schema("customers", "customer_id", 20, "customer_id", "name"))

	if det.Outcome != NotMatched {
		t.Fatalf("Outcome = %v, want NotMatched at an exact 0.3 ratio", det.Outcome)
	}
}

func TestDetectReferenceCardinalityFallback(t *testing.T) {
	// No column name matches the target key, but product_ref has low
	// cardinality (8 distinct over 100 rows) and its sampled values overlap
	// the target domain. Any overlap at all is accepted here.
	src := sourcetest.New(t,
		func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(`SELECT count(DISTINCT "review_id") FROM "reviews"`).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(100))
		},
		func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(`SELECT count(DISTINCT "product_ref") FROM "reviews"`).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(8))
		},
		func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(`SELECT DISTINCT "product_ref" FROM "reviews" WHERE "product_ref" IS NOT NULL LIMIT 5`).
				WillReturnRows(sqlmock.NewRows([]string{"product_ref"}).
					AddRow(10).AddRow(11).AddRow(12).AddRow(13).AddRow(14))
		},
		func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(`SELECT count(*) FROM "products" WHERE "product_id" IN (?,?,?,?,?)`).
				WithArgs(int64(10), int64(11), int64(12), int64(13), int64(14)).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		},
	)

	e := New(src, DefaultConfig(), discard())
	det := e.DetectReference(context.Background(),
		schema("reviews", "review_id", 100, "review_id", "product_ref"),
		schema("products", "product_id", 50, "product_id", "name"))

	if det.Outcome != Matched {
		t.Fatalf("Outcome = %v, want Matched", det.Outcome)
	}
	if det.Rule != RuleCardinality {
		t.Errorf("Rule = %q, want cardinality", det.Rule)
	}
	if det.Column != "product_ref" {
		t.Errorf("Column = %q", det.Column)
	}
}

func TestDetectReferenceSelfPairSkipsKey(t *testing.T) {
	// employees referencing itself: emp_id must not be probed against
	// itself, but manager_id may still be accepted.
	src := sourcetest.New(t,
		func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(`SELECT count(DISTINCT "manager_id") FROM "employees"`).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		},
		func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(`SELECT DISTINCT "manager_id" FROM "employees" WHERE "manager_id" IS NOT NULL LIMIT 5`).
				WillReturnRows(sqlmock.NewRows([]string{"manager_id"}).AddRow(1).AddRow(2))
		},
		func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(`SELECT count(*) FROM "employees" WHERE "emp_id" IN (?,?)`).
				WithArgs(int64(1), int64(2)).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		},
	)

	emp := schema("employees", "emp_id", 30, "emp_id", "manager_id")
	e := New(src, DefaultConfig(), discard())
	det := e.DetectReference(context.Background(), emp, emp)

	if det.Outcome != Matched {
		t.Fatalf("Outcome = %v, want Matched", det.Outcome)
	}
	if det.Column != "manager_id" {
		t.Errorf("Column = %q, want manager_id", det.Column)
	}
}

func TestDetectReferenceInconclusive(t *testing.T) {
	// Every verification query fails; the pair is reported inconclusive
	// rather than failing the caller.
	queryErr := errors.New("disk I/O error")
	src := sourcetest.New(t,
		func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(`SELECT DISTINCT "customer_id" FROM "orders" WHERE "customer_id" IS NOT NULL LIMIT 10`).
				WillReturnError(queryErr)
		},
		func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(`SELECT count(DISTINCT "customer_id") FROM "orders"`).
				WillReturnError(queryErr)
		},
	)

	e := New(src, DefaultConfig(), discard())
	det := e.DetectReference(context.Background(),
		schema("orders", "customer_id", 100, "customer_id"),
		schema("customers", "customer_id", 20, "customer_id"))

	if det.Outcome != Inconclusive {
		t.Fatalf("Outcome = %v, want Inconclusive", det.Outcome)
	}
	if det.Column != "customer_id" {
		t.Errorf("Column = %q", det.Column)
	}
	if det.Reason == "" {
		t.Error("expected a reason for the inconclusive outcome")
	}
}

func TestDetectCategoricalPriority(t *testing.T) {
	// Both department and status are present; department is earlier in the
	// priority list and wins.
	src := sourcetest.New(t,
		func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(`SELECT DISTINCT "department" FROM "employees" WHERE "department" IS NOT NULL LIMIT 20`).
				WillReturnRows(sqlmock.NewRows([]string{"department"}).
					AddRow("Engineering").AddRow("  ").AddRow("Sales"))
		},
	)

	e := New(src, DefaultConfig(), discard())
	cat, err := e.DetectCategorical(context.Background(),
		schema("employees", "emp_id", 30, "emp_id", "status", "department"))
	if err != nil {
		t.Fatalf("DetectCategorical: %v", err)
	}
	if cat == nil {
		t.Fatal("expected a categorical column")
	}
	if cat.Column != "department" {
		t.Errorf("Column = %q, want department", cat.Column)
	}
	// Blank values are dropped.
	if len(cat.Values) != 2 {
		t.Errorf("Values = %v, want 2 entries", cat.Values)
	}
}

func TestDetectCategoricalValueCap(t *testing.T) {
	// More distinct values than the cap, with blanks mixed in: blanks are
	// dropped first, then at most CategoryValueLimit values survive.
	rows := sqlmock.NewRows([]string{"category"})
	rows.AddRow("cat_00").AddRow("cat_01").AddRow("  ").AddRow("cat_02")
	for i := 3; i < 23; i++ {
		rows.AddRow(fmt.Sprintf("cat_%02d", i))
	}
	rows.AddRow("")

	src := sourcetest.New(t,
		func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(`SELECT DISTINCT "category" FROM "products" WHERE "category" IS NOT NULL LIMIT 20`).
				WillReturnRows(rows)
		},
	)

	e := New(src, DefaultConfig(), discard())
	cat, err := e.DetectCategorical(context.Background(),
		schema("products", "id", 500, "id", "category"))
	if err != nil {
		t.Fatalf("DetectCategorical: %v", err)
	}
	if cat == nil {
		t.Fatal("expected a categorical column")
	}
	if len(cat.Values) != DefaultConfig().CategoryValueLimit {
		t.Fatalf("Values = %d, want exactly %d", len(cat.Values), DefaultConfig().CategoryValueLimit)
	}
	for _, v := range cat.Values {
		if strings.TrimSpace(v) == "" {
			t.Error("blank value survived the cap")
		}
	}
	if cat.Values[0] != "cat_00" || cat.Values[19] != "cat_19" {
		t.Errorf("unexpected value order: first=%q last=%q", cat.Values[0], cat.Values[19])
	}
}

func TestDetectCategoricalNone(t *testing.T) {
	src := sourcetest.New(t)
	e := New(src, DefaultConfig(), discard())
	cat, err := e.DetectCategorical(context.Background(),
		schema("measurements", "id", 10, "id", "reading"))
	if err != nil {
		t.Fatalf("DetectCategorical: %v", err)
	}
	if cat != nil {
		t.Errorf("expected nil, got %+v", cat)
	}
}

func TestDetectCategoricalCaseInsensitive(t *testing.T) {
	src := sourcetest.New(t,
		func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(`SELECT DISTINCT "Department" FROM "staff" WHERE "Department" IS NOT NULL LIMIT 20`).
				WillReturnRows(sqlmock.NewRows([]string{"Department"}).AddRow("HR"))
		},
	)

	e := New(src, DefaultConfig(), discard())
	cat, err := e.DetectCategorical(context.Background(),
		schema("staff", "id", 5, "id", "Department"))
	if err != nil {
		t.Fatalf("DetectCategorical: %v", err)
	}
	if cat == nil || cat.Column != "Department" {
		t.Fatalf("cat = %+v, want Department", cat)
	}
}
