// Package store persists ingested sources and synthesized strategies.
// Two backends: SQLite for single-user CLI work, Postgres for the server.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/optionslab/strategy-cli/internal/model"
)

// SourceFilter specifies criteria for listing sources.
type SourceFilter struct {
	SourceType model.SourceType `json:"source_type,omitempty"`
	Limit      int              `json:"limit,omitempty"`
	Offset     int              `json:"offset,omitempty"`
}

// Store defines the persistence interface for sources and strategies.
// Get methods return (nil, nil) when the record does not exist.
type Store interface {
	// Sources
	SaveSource(ctx context.Context, src *model.Source) error
	GetSource(ctx context.Context, id string) (*model.Source, error)
	ListSources(ctx context.Context, filter SourceFilter) ([]model.Source, error)
	DeleteSource(ctx context.Context, id string) error

	// Strategies
	SaveStrategy(ctx context.Context, st *model.StrategyAggregate) error
	GetStrategy(ctx context.Context, id string) (*model.StrategyAggregate, error)
	ListStrategies(ctx context.Context) ([]model.StrategyAggregate, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Pool is the subset of pgxpool.Pool the Postgres store uses. pgxmock
// implements it for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}
