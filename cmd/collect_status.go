package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ballotwatch/candidate-sync/internal/model"
	"github.com/ballotwatch/candidate-sync/internal/store"
)

var collectStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show collection run history",
	Long:  "Displays the most recent collection runs from the ledger, newest first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")

		pool, err := storePool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		st := store.New(pool)
		runs, err := st.Runs.List(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "collect status")
		}

		if len(runs) == 0 {
			zap.L().Info("no collection runs found, run 'collect run' to start collecting")
			return nil
		}

		formatRunEntries(os.Stdout, runs)

		last := make(map[string]*time.Time)
		for _, src := range runSources(runs) {
			t, err := st.Runs.LastCompleted(ctx, src)
			if err != nil {
				return eris.Wrap(err, "collect status")
			}
			last[src] = t
		}
		formatLastCompleted(os.Stdout, runSources(runs), last)
		return nil
	},
}

func init() {
	collectStatusCmd.Flags().Int("limit", 20, "max runs to display")
	collectCmd.AddCommand(collectStatusCmd)
}

// formatRunEntries writes a tabular representation of ledger entries to w.
func formatRunEntries(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSOURCE\tSTATUS\tSTARTED\tDURATION\tFOUND\tADDED\tUPDATED\tERRORS")
	_, _ = fmt.Fprintln(w, "--\t------\t------\t-------\t--------\t-----\t-----\t-------\t------")

	for _, r := range runs {
		dur := "-"
		if r.DurationMS != nil {
			dur = (time.Duration(*r.DurationMS) * time.Millisecond).Round(time.Second).String()
		}

		errCol := ""
		if n := len(r.Errors); n > 0 {
			errCol = fmt.Sprintf("%d (%s)", n, truncate(r.Errors[0].Message, 40))
		}

		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID,
			r.Source,
			r.Status,
			r.StartedAt.Format("2006-01-02 15:04"),
			dur,
			r.RecordsFound,
			r.RecordsAdded,
			r.RecordsUpdated,
			errCol,
		)
	}
	_ = w.Flush()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// runSources returns the distinct sources among the listed runs in
// first-seen order.
func runSources(runs []model.Run) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range runs {
		if !seen[r.Source] {
			seen[r.Source] = true
			out = append(out, r.Source)
		}
	}
	return out
}

// formatLastCompleted writes a per-source summary of the most recent
// successful run.
func formatLastCompleted(out io.Writer, sources []string, last map[string]*time.Time) {
	_, _ = fmt.Fprintln(out)
	for _, src := range sources {
		if t := last[src]; t != nil {
			_, _ = fmt.Fprintf(out, "%s: last completed %s\n", src, t.Format("2006-01-02 15:04"))
		} else {
			_, _ = fmt.Fprintf(out, "%s: never completed\n", src)
		}
	}
}
