package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/ballotwatch/candidate-sync/internal/db"
	"github.com/ballotwatch/candidate-sync/internal/model"
)

// ErrNoElection is returned when a draft matches no canonical election
// and no creation hint is available. Callers treat it as a per-record
// skip, not a run failure.
var ErrNoElection = eris.New("store: no matching election")

// ElectionStore resolves normalized drafts to canonical election rows,
// creating rows lazily for contests the seed data missed.
type ElectionStore struct {
	pool db.Pool
}

const electionSelectSQL = `
	SELECT id FROM elections
	WHERE state = $1 AND office = $2 AND district IS NOT DISTINCT FROM $3
	ORDER BY election_date DESC
	LIMIT 1`

const electionInsertSQL = `
	INSERT INTO elections (state, office, district, senate_class, election_type, election_date)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT ON CONSTRAINT elections_seat_key DO NOTHING`

// Resolve maps a draft's (state, office, district) to an election id.
// Regular elections are expected to pre-exist; when none is found and
// the draft carries an election date hint, a row is created with
// insert-on-conflict-do-nothing and re-selected, which tolerates
// concurrent creation by another collector. Without a hint, or if the
// re-select still finds nothing, ErrNoElection is returned.
func (s *ElectionStore) Resolve(ctx context.Context, draft model.Candidate) (int64, error) {
	id, err := s.lookup(ctx, draft)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, eris.Wrapf(err, "store: resolve election %s/%s", draft.State, draft.Office)
	}

	if draft.ElectionDate.IsZero() {
		return 0, ErrNoElection
	}

	etype := draft.ElectionType
	if etype == "" {
		etype = model.Regular
	}

	if _, err := s.pool.Exec(ctx, electionInsertSQL,
		draft.State, string(draft.Office), draft.District, draft.SenateClass,
		string(etype), draft.ElectionDate,
	); err != nil {
		return 0, eris.Wrapf(err, "store: create election %s/%s", draft.State, draft.Office)
	}

	id, err = s.lookup(ctx, draft)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNoElection
		}
		return 0, eris.Wrapf(err, "store: re-select election %s/%s", draft.State, draft.Office)
	}
	return id, nil
}

func (s *ElectionStore) lookup(ctx context.Context, draft model.Candidate) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, electionSelectSQL,
		draft.State, string(draft.Office), draft.District,
	).Scan(&id)
	return id, err
}

const upcomingElectionsSQL = `
	SELECT id, state, office, district, senate_class, election_type, election_date
	FROM elections
	WHERE election_date >= now()::date
	ORDER BY state, office, district`

// Upcoming lists elections whose date has not passed, in stable order.
// The wiki collector uses this to build its contest-page scope.
func (s *ElectionStore) Upcoming(ctx context.Context) ([]model.Election, error) {
	rows, err := s.pool.Query(ctx, upcomingElectionsSQL)
	if err != nil {
		return nil, eris.Wrap(err, "store: list upcoming elections")
	}
	defer rows.Close()

	var out []model.Election
	for rows.Next() {
		var e model.Election
		var office, etype string
		if err := rows.Scan(&e.ID, &e.State, &office, &e.District, &e.SenateClass, &etype, &e.Date); err != nil {
			return nil, eris.Wrap(err, "store: scan election")
		}
		e.Office = model.Office(office)
		e.Type = model.ElectionType(etype)
		out = append(out, e)
	}
	return out, rows.Err()
}
