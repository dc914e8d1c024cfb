package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ballotwatch/candidate-sync/internal/store"
)

var collectVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify store invariants",
	Long:  "Checks ledger accounting, stale runs, confidence bounds, and candidate/election seat agreement. Exits non-zero when violations are found.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := storePool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		findings, err := store.Verify(ctx, pool)
		if err != nil {
			return eris.Wrap(err, "collect verify")
		}

		if len(findings) == 0 {
			zap.L().Info("store verified clean")
			return nil
		}

		formatFindings(os.Stdout, findings)
		return eris.Errorf("collect verify: %d invariant violations", len(findings))
	},
}

func init() {
	collectCmd.AddCommand(collectVerifyCmd)
}

func formatFindings(out io.Writer, findings []store.Finding) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CHECK\tDETAIL")
	for _, f := range findings {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", f.Check, f.Detail)
	}
	_ = w.Flush()
}
