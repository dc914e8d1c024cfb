// Package store is the canonical data store for reconciled candidate
// and election records. Collectors never touch the tables directly;
// all writes go through the election resolver, the merge engine, and
// the run ledger.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/ballotwatch/candidate-sync/internal/db"
)

// Store bundles canonical-store access for the pipeline.
type Store struct {
	Elections  *ElectionStore
	Candidates *CandidateStore
	Runs       *RunLedger
	States     *StateStore

	pool db.Pool
}

// New creates a Store over an existing pool.
func New(pool db.Pool) *Store {
	return &Store{
		Elections:  &ElectionStore{pool: pool},
		Candidates: &CandidateStore{pool: pool},
		Runs:       &RunLedger{pool: pool},
		States:     &StateStore{pool: pool},
		pool:       pool,
	}
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// Connect opens a pgx connection pool against the canonical store and
// verifies reachability. An unreachable store is a run-fatal condition
// for every collector, so failure here aborts before any ledger entry
// is created.
func Connect(ctx context.Context, connString string, poolCfg *PoolConfig) (*pgxpool.Pool, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "store: parse connection config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "store: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "store: ping")
	}
	return pool, nil
}
