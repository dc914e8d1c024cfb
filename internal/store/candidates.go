package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/ballotwatch/candidate-sync/internal/db"
	"github.com/ballotwatch/candidate-sync/internal/model"
)

// CandidateStore is the merge engine: the only write path into the
// candidates table. Two conflict policies live behind the one Upsert
// entry point, selected by whether the draft carries a stable
// provider-issued filing id.
type CandidateStore struct {
	pool db.Pool
}

// Identity fields (names, party) are only overwritten when the incoming
// confidence is at least the stored one, so a low-confidence source
// cannot clobber a high-confidence spelling. data_confidence itself is
// monotone via GREATEST. xmax = 0 distinguishes a fresh insert from a
// conflict-update.
const upsertByFilingSQL = `
	INSERT INTO candidates (
		id, filing_id, full_name, first_name, last_name, party,
		state, office, district, senate_class, incumbent, status,
		election_id, data_confidence, sources, last_verified
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now())
	ON CONFLICT (filing_id) DO UPDATE SET
		status          = EXCLUDED.status,
		incumbent       = EXCLUDED.incumbent,
		full_name       = CASE WHEN EXCLUDED.data_confidence >= candidates.data_confidence
		                       THEN EXCLUDED.full_name ELSE candidates.full_name END,
		first_name      = CASE WHEN EXCLUDED.data_confidence >= candidates.data_confidence
		                       THEN EXCLUDED.first_name ELSE candidates.first_name END,
		last_name       = CASE WHEN EXCLUDED.data_confidence >= candidates.data_confidence
		                       THEN EXCLUDED.last_name ELSE candidates.last_name END,
		party           = CASE WHEN EXCLUDED.data_confidence >= candidates.data_confidence
		                       THEN EXCLUDED.party ELSE candidates.party END,
		data_confidence = GREATEST(candidates.data_confidence, EXCLUDED.data_confidence),
		sources         = ARRAY(SELECT DISTINCT s FROM unnest(candidates.sources || EXCLUDED.sources) AS s),
		last_verified   = now()
	RETURNING (xmax = 0) AS inserted`

const insertByNaturalKeySQL = `
	INSERT INTO candidates (
		id, full_name, first_name, last_name, party,
		state, office, district, senate_class, incumbent, status,
		election_id, data_confidence, sources, last_verified
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now())
	ON CONFLICT ON CONSTRAINT candidates_election_name_key DO NOTHING`

// Upsert merges a normalized draft into the canonical store under the
// election it resolved to, and reports whether a new row was created.
// Uniqueness conflicts never surface as errors; only structurally
// invalid drafts do.
func (s *CandidateStore) Upsert(ctx context.Context, draft model.Candidate, electionID int64) (bool, error) {
	if draft.FullName == "" {
		return false, eris.New("store: upsert: draft has no full name")
	}
	if electionID == 0 {
		return false, eris.New("store: upsert: draft has no election")
	}

	if draft.FilingID != "" {
		return s.upsertByFilingID(ctx, draft, electionID)
	}
	return s.insertByNaturalKey(ctx, draft, electionID)
}

func (s *CandidateStore) upsertByFilingID(ctx context.Context, draft model.Candidate, electionID int64) (bool, error) {
	var inserted bool
	err := s.pool.QueryRow(ctx, upsertByFilingSQL,
		uuid.NewString(), draft.FilingID, draft.FullName, draft.FirstName, draft.LastName,
		string(draft.Party), draft.State, string(draft.Office), draft.District, draft.SenateClass,
		draft.Incumbent, string(draft.Status), electionID, draft.Confidence,
		[]string{draft.Source},
	).Scan(&inserted)
	if err != nil {
		return false, eris.Wrapf(err, "store: upsert candidate %s", draft.FilingID)
	}
	return inserted, nil
}

// insertByNaturalKey is the insert-only policy for sources without a
// native identifier. It cannot merge differing spellings of the same
// person; that limitation is accepted rather than papered over with
// guessed heuristics.
func (s *CandidateStore) insertByNaturalKey(ctx context.Context, draft model.Candidate, electionID int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, insertByNaturalKeySQL,
		uuid.NewString(), draft.FullName, draft.FirstName, draft.LastName,
		string(draft.Party), draft.State, string(draft.Office), draft.District, draft.SenateClass,
		draft.Incumbent, string(draft.Status), electionID, draft.Confidence,
		[]string{draft.Source},
	)
	if err != nil {
		return false, eris.Wrapf(err, "store: insert candidate %q", draft.FullName)
	}
	return tag.RowsAffected() == 1, nil
}
