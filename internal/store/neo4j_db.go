package store

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Neo4jDatabase implements GraphDatabase on a Neo4j server
type Neo4jDatabase struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewNeo4jDatabase creates a driver for uri with basic auth
func NewNeo4jDatabase(uri, username, password string, logger *zap.Logger) (*Neo4jDatabase, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}
	return &Neo4jDatabase{driver: driver, logger: logger}, nil
}

func (db *Neo4jDatabase) VerifyConnectivity(ctx context.Context) error {
	if err := db.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("failed to verify Neo4j connectivity: %w", err)
	}
	return nil
}

func (db *Neo4jDatabase) Close(ctx context.Context) error {
	return db.driver.Close(ctx)
}

func (db *Neo4jDatabase) ExecuteRead(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	session := db.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, collect(ctx, query, params))
	if err != nil {
		db.logger.Error("Failed to execute Neo4j read", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return records.([]map[string]any), nil
}

func (db *Neo4jDatabase) ExecuteWrite(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	session := db.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	records, err := session.ExecuteWrite(ctx, collect(ctx, query, params))
	if err != nil {
		db.logger.Error("Failed to execute Neo4j write", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return records.([]map[string]any), nil
}

// collect runs one query inside a managed transaction and returns its
// records as plain maps
func collect(ctx context.Context, query string, params map[string]any) neo4j.ManagedTransactionWork {
	return func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}

		var records []map[string]any
		for result.Next(ctx) {
			records = append(records, result.Record().AsMap())
		}
		if err = result.Err(); err != nil {
			return nil, err
		}
		return records, nil
	}
}
