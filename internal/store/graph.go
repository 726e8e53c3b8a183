// Package store persists verdicts in a Cypher-speaking graph database.
package store

import (
	"context"
	"errors"
	"fmt"

	"smellsense/internal/config"

	"go.uber.org/zap"
)

// ErrNoRecords is returned by the single-record helpers on an empty result
var ErrNoRecords = errors.New("no records returned")

// GraphDatabase is the query surface shared by the Kuzu and Neo4j backends
type GraphDatabase interface {
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
	ExecuteRead(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
	ExecuteWrite(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}

// single narrows a result to exactly one record
func single(records []map[string]any, err error) (map[string]any, error) {
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	if len(records) > 1 {
		return nil, fmt.Errorf("expected single record, got %d", len(records))
	}
	return records[0], nil
}

// Open connects the configured backend. It returns nil when no store is
// configured.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (GraphDatabase, error) {
	var (
		db  GraphDatabase
		err error
	)
	switch cfg.Store.Backend {
	case config.StoreNone, "":
		return nil, nil
	case config.StoreKuzu:
		db, err = NewKuzuDatabase(cfg.Kuzu.Path, logger)
	case config.StoreNeo4j:
		db, err = NewNeo4jDatabase(cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q: %w", cfg.Store.Backend, config.ErrConfiguration)
	}
	if err != nil {
		return nil, err
	}

	if err := db.VerifyConnectivity(ctx); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to verify database connectivity: %w", err)
	}
	return db, nil
}
