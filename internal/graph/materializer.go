package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// EdgeSpec identifies one inferred reference edge kind.
type EdgeSpec struct {
	SourceLabel string
	SourceKey   string
	TargetLabel string
	TargetKey   string
	Column      string
}

// RelName returns the deterministic relationship type for this edge kind.
func (e EdgeSpec) RelName() string {
	return ReferenceRelName(e.Column)
}

// KeyPair holds one row's primary-key value and the referenced key value.
type KeyPair struct {
	SourceID any
	TargetID any
}

// UpsertEntityNodes merges one node per row under the given label, keyed by
// the sanitized primary-key property. Re-running with the same rows leaves
// the node set unchanged and refreshes attributes. Returns the number of
// nodes carrying the label after the merge.
func (s *Neo4jStore) UpsertEntityNodes(ctx context.Context, label, key string, rows []map[string]any) (int, error) {
	safeLabel := SafeIdentifier(label)
	safeKey := SafeIdentifier(key)

	session := s.session(ctx)
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		UNWIND $rows AS row
		MERGE (n:%s { %s: row.%s })
		SET n += row`, backtick(safeLabel), backtick(safeKey), backtick(safeKey))

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, query, map[string]any{"rows": rows}); err != nil {
			return nil, err
		}

		countQuery := fmt.Sprintf("MATCH (n:%s) RETURN count(n) AS count", backtick(safeLabel))
		res, err := tx.Run(ctx, countQuery, nil)
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return rec.Values[0], nil
	})
	if err != nil {
		return 0, fmt.Errorf("upsert %s nodes: %w", safeLabel, err)
	}

	count, _ := result.(int64)
	return int(count), nil
}

// UpsertReferenceEdges merges one directed edge per key pair. Pairs whose
// target node does not exist fail the MATCH and are silently dropped, so a
// dangling reference is never materialized. Returns the number of pairs
// that connected two existing nodes.
func (s *Neo4jStore) UpsertReferenceEdges(ctx context.Context, spec EdgeSpec, pairs []KeyPair) (int, error) {
	if len(pairs) == 0 {
		return 0, nil
	}

	rows := make([]map[string]any, len(pairs))
	for i, p := range pairs {
		rows[i] = map[string]any{"source": p.SourceID, "target": p.TargetID}
	}

	query := fmt.Sprintf(`
		UNWIND $pairs AS pair
		MATCH (source:%s { %s: pair.source })
		MATCH (target:%s { %s: pair.target })
		MERGE (source)-[:%s]->(target)
		RETURN count(*) AS connected`,
		backtick(SafeIdentifier(spec.SourceLabel)), backtick(SafeIdentifier(spec.SourceKey)),
		backtick(SafeIdentifier(spec.TargetLabel)), backtick(SafeIdentifier(spec.TargetKey)),
		backtick(spec.RelName()))

	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"pairs": rows})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return rec.Values[0], nil
	})
	if err != nil {
		return 0, fmt.Errorf("upsert %s edges: %w", spec.RelName(), err)
	}

	count, _ := result.(int64)
	return int(count), nil
}

// UpsertCategoryEdges merges one shared Category node per distinct value
// and links every row carrying that value to it.
func (s *Neo4jStore) UpsertCategoryEdges(ctx context.Context, label, column string, values []string) error {
	safeLabel := SafeIdentifier(label)
	safeColumn := SafeIdentifier(column)
	relName := CategoryRelName(column)

	query := fmt.Sprintf(`
		MATCH (n:%s) WHERE n.%s = $value
		MERGE (cat:Category { name: $value })
		MERGE (n)-[:%s]->(cat)`,
		backtick(safeLabel), backtick(safeColumn), backtick(relName))

	session := s.session(ctx)
	defer session.Close(ctx)

	for _, value := range values {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, query, map[string]any{"value": value})
		})
		if err != nil {
			return fmt.Errorf("upsert %s categories: %w", safeLabel, err)
		}
	}
	return nil
}

// DeclareUniqueConstraint (re)declares key uniqueness for a table label.
func (s *Neo4jStore) DeclareUniqueConstraint(ctx context.Context, label, key string) error {
	safeLabel := SafeIdentifier(label)
	safeKey := SafeIdentifier(key)
	name := SafeIdentifier(fmt.Sprintf("unique_%s_%s", safeLabel, safeKey))

	query := fmt.Sprintf(
		"CREATE CONSTRAINT %s IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
		name, backtick(safeLabel), backtick(safeKey))

	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, nil)
	})
	if err != nil {
		return fmt.Errorf("declare constraint %s: %w", name, err)
	}
	return nil
}

// backtick quotes an already-sanitized identifier for Cypher.
func backtick(ident string) string {
	return "`" + ident + "`"
}
