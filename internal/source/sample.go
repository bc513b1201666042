package source

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
)

var (
	sampleDepartments = []string{"Engineering", "Marketing", "Sales", "HR", "Finance"}
	sampleSurnames    = []string{"Smith", "Johnson", "Brown", "Davis", "Wilson", "Taylor"}
)

// CreateSampleDatabase writes a small employees database to path. The data
// contains a self-referencing manager_id column and a low-cardinality
// department column, enough to exercise both inference rules end to end.
func CreateSampleDatabase(ctx context.Context, path string) error {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb: %w", err)
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS employees (
		emp_id      INTEGER PRIMARY KEY,
		name        VARCHAR,
		department  VARCHAR,
		manager_id  INTEGER,
		salary      INTEGER,
		hire_year   INTEGER,
		performance DOUBLE
	)`)
	if err != nil {
		return fmt.Errorf("create employees: %w", err)
	}

	rng := rand.New(rand.NewSource(42))
	insert := `INSERT OR REPLACE INTO employees VALUES (?, ?, ?, ?, ?, ?, ?)`

	for i := 1; i <= 30; i++ {
		name := fmt.Sprintf("Employee_%d %s", i, sampleSurnames[rng.Intn(len(sampleSurnames))])
		dept := sampleDepartments[rng.Intn(len(sampleDepartments))]
		salary := 75000 + rng.Intn(85000)
		hireYear := 2018 + rng.Intn(7)
		performance := 3.0 + rng.Float64()*2.0

		// Everyone but the first employee reports to someone above them.
		var manager any
		if i > 1 {
			manager = (i + 1) / 2
		}

		if _, err := db.ExecContext(ctx, insert,
			i, name, dept, manager, salary, hireYear, performance); err != nil {
			return fmt.Errorf("insert employee %d: %w", i, err)
		}
	}

	return nil
}
