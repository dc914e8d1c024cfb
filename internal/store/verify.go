package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ballotwatch/candidate-sync/internal/db"
)

// Finding is one invariant violation discovered by Verify.
type Finding struct {
	Check  string
	Detail string
}

// staleRunAge is how long a run may stay in status running before it is
// considered abandoned by a crashed process.
const staleRunAge = 6 * time.Hour

// Verify checks the canonical store's run and candidate invariants over
// live data: ledger counter accounting, no abandoned running runs,
// confidence bounds, and candidate/election seat agreement. It returns
// one finding per violation; an empty slice means the store is clean.
func Verify(ctx context.Context, pool db.Pool) ([]Finding, error) {
	var findings []Finding

	checks := []struct {
		name string
		sql  string
	}{
		{
			"run_accounting",
			`SELECT 'run ' || id || ' (' || source || '): added+updated=' ||
			        (records_added + records_updated) || ' > found=' || records_found
			 FROM collection_runs
			 WHERE records_added + records_updated > records_found`,
		},
		{
			"stale_running",
			fmt.Sprintf(
				`SELECT 'run ' || id || ' (' || source || ') running since ' || started_at
				 FROM collection_runs
				 WHERE status = 'running' AND started_at < now() - interval '%d hours'`,
				int(staleRunAge.Hours())),
		},
		{
			"confidence_bounds",
			`SELECT 'candidate ' || id || ': confidence=' || data_confidence
			 FROM candidates
			 WHERE data_confidence < 0 OR data_confidence > 1`,
		},
		{
			"seat_agreement",
			`SELECT 'candidate ' || c.id || ': ' || c.state || '/' || c.office ||
			        ' vs election ' || e.id || ': ' || e.state || '/' || e.office
			 FROM candidates c
			 JOIN elections e ON e.id = c.election_id
			 WHERE c.state <> e.state OR c.office <> e.office`,
		},
	}

	for _, check := range checks {
		rows, err := pool.Query(ctx, check.sql)
		if err != nil {
			return nil, eris.Wrapf(err, "verify: %s", check.name)
		}
		for rows.Next() {
			var detail string
			if err := rows.Scan(&detail); err != nil {
				rows.Close()
				return nil, eris.Wrapf(err, "verify: scan %s", check.name)
			}
			findings = append(findings, Finding{Check: check.name, Detail: detail})
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, eris.Wrapf(err, "verify: iterate %s", check.name)
		}
		rows.Close()
	}

	return findings, nil
}
