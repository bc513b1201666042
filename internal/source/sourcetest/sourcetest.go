// Package sourcetest builds Source handles backed by sqlmock. Each logical
// operation on a Source opens and closes its own handle, so expectations are
// scripted per operation, in execution order.
package sourcetest

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"tablegraph/internal/source"
)

// Step prepares the expectations for one logical operation.
type Step func(mock sqlmock.Sqlmock)

// New returns a Source whose operations consume the given steps in order.
func New(t *testing.T, steps ...Step) *source.Source {
	t.Helper()
	i := 0
	return source.NewWithOpener(func(ctx context.Context) (*sql.DB, error) {
		if i >= len(steps) {
			t.Fatalf("unexpected database open (operation %d, scripted %d)", i+1, len(steps))
		}
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		if err != nil {
			t.Fatalf("sqlmock: %v", err)
		}
		steps[i](mock)
		i++
		return db, nil
	})
}
