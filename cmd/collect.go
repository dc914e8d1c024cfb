package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ballotwatch/candidate-sync/internal/store"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Candidate collection pipeline",
	Long:  "Runs source collectors, inspects collection history, and verifies store invariants.",
}

func init() {
	rootCmd.AddCommand(collectCmd)
}

// storePool creates a pgxpool.Pool against the canonical store using
// the configured connection string and pool tuning.
func storePool(ctx context.Context) (*pgxpool.Pool, error) {
	dsn := cfg.Store.DatabaseURL
	if dsn == "" {
		return nil, eris.New("collect: no database_url configured (set store.database_url)")
	}

	return store.Connect(ctx, dsn, &store.PoolConfig{
		MaxConns: cfg.Store.MaxConns,
		MinConns: cfg.Store.MinConns,
	})
}
