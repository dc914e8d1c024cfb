package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ballotwatch/candidate-sync/internal/store"
)

var collectMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations",
	Long:  "Applies all pending SQL migrations, including the state seed data, in lexicographic order.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := storePool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := store.Migrate(ctx, pool); err != nil {
			return eris.Wrap(err, "collect migrate")
		}

		zap.L().Info("all migrations applied successfully")
		return nil
	},
}

func init() {
	collectCmd.AddCommand(collectMigrateCmd)
}
