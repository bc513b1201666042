// Package graph materializes inferred nodes and edges into Neo4j.
package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Store defines the graph operations the converter and orchestrator need.
type Store interface {
	Close(ctx context.Context) error
	Reset(ctx context.Context) error
	UpsertEntityNodes(ctx context.Context, label, key string, rows []map[string]any) (int, error)
	UpsertReferenceEdges(ctx context.Context, spec EdgeSpec, pairs []KeyPair) (int, error)
	UpsertCategoryEdges(ctx context.Context, label, column string, values []string) error
	DeclareUniqueConstraint(ctx context.Context, label, key string) error
	ExecuteCypher(ctx context.Context, query string) ([]map[string]any, error)
	Catalog(ctx context.Context) (*Catalog, error)
}

// LabelCount is the number of nodes carrying a label.
type LabelCount struct {
	Label string
	Count int64
}

// Catalog summarizes the materialized graph for schema prompts and stats.
type Catalog struct {
	Labels            []LabelCount
	RelationshipTypes []string
}

// Neo4jStore implements Store against a Neo4j server. One long-lived driver
// handle is shared across all operations within a process; the owner must
// release it via Close at shutdown.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
	dbName string
	logger *slog.Logger
}

// NewNeo4jStore connects to Neo4j and verifies connectivity.
func NewNeo4jStore(uri, username, password, dbName string, logger *slog.Logger) (*Neo4jStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	return &Neo4jStore{driver: driver, dbName: dbName, logger: logger}, nil
}

func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Neo4jStore) session(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.dbName})
}

// Reset removes all nodes, edges, and previously declared uniqueness
// constraints. Tolerant of an already-empty graph.
func (s *Neo4jStore) Reset(ctx context.Context) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, "MATCH (n) DETACH DELETE n", nil)
	})
	if err != nil {
		return fmt.Errorf("reset graph: %w", err)
	}

	// Constraint listing is a server-side procedure; some deployments
	// restrict it. Failing to drop old constraints must not fail the run.
	names, err := s.constraintNames(ctx, session)
	if err != nil {
		s.logger.Warn("could not list constraints", "error", err)
		return nil
	}
	for _, name := range names {
		query := fmt.Sprintf("DROP CONSTRAINT %s IF EXISTS", SafeIdentifier(name))
		if _, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, query, nil)
		}); err != nil {
			s.logger.Warn("could not drop constraint", "constraint", name, "error", err)
		}
	}

	return nil
}

func (s *Neo4jStore) constraintNames(ctx context.Context, session neo4j.SessionWithContext) ([]string, error) {
	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "SHOW CONSTRAINTS YIELD name RETURN name", nil)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		var names []string
		for _, record := range records {
			if name, ok := record.Values[0].(string); ok {
				names = append(names, name)
			}
		}
		return names, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

// ExecuteCypher runs a read query and returns rows as maps.
func (s *Neo4jStore) ExecuteCypher(ctx context.Context, query string) ([]map[string]any, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}

		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}

		var results []map[string]any
		for _, record := range records {
			rowMap := make(map[string]any)
			for i, key := range record.Keys {
				rowMap[key] = convertNeo4jValue(record.Values[i])
			}
			results = append(results, rowMap)
		}
		return results, nil
	})
	if err != nil {
		return nil, fmt.Errorf("cypher execution failed: %w", err)
	}

	return result.([]map[string]any), nil
}

// Catalog reports node labels with counts and distinct relationship types.
func (s *Neo4jStore) Catalog(ctx context.Context) (*Catalog, error) {
	labelRows, err := s.ExecuteCypher(ctx,
		"MATCH (n) UNWIND labels(n) AS label RETURN label, count(*) AS count ORDER BY count DESC")
	if err != nil {
		return nil, err
	}

	relRows, err := s.ExecuteCypher(ctx,
		"MATCH ()-[r]->() RETURN DISTINCT type(r) AS type ORDER BY type")
	if err != nil {
		return nil, err
	}

	catalog := &Catalog{}
	for _, row := range labelRows {
		label, _ := row["label"].(string)
		count, _ := row["count"].(int64)
		catalog.Labels = append(catalog.Labels, LabelCount{Label: label, Count: count})
	}
	for _, row := range relRows {
		if t, ok := row["type"].(string); ok {
			catalog.RelationshipTypes = append(catalog.RelationshipTypes, t)
		}
	}
	return catalog, nil
}

// convertNeo4jValue converts Neo4j types to Go native types.
func convertNeo4jValue(val any) any {
	switch v := val.(type) {
	case neo4j.Node:
		return map[string]any{
			"labels":     v.Labels,
			"properties": v.Props,
			"id":         v.ElementId,
		}
	case neo4j.Relationship:
		return map[string]any{
			"type":       v.Type,
			"properties": v.Props,
			"startNode":  v.StartElementId,
			"endNode":    v.EndElementId,
		}
	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = convertNeo4jValue(item)
		}
		return result
	case map[string]any:
		result := make(map[string]any)
		for k, item := range v {
			result[k] = convertNeo4jValue(item)
		}
		return result
	default:
		return v
	}
}
