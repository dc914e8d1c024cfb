package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/ballotwatch/candidate-sync/internal/db"
	"github.com/ballotwatch/candidate-sync/internal/model"
)

// StateStore reads the states seed reference table.
type StateStore struct {
	pool db.Pool
}

// All returns every state ordered by code.
func (s *StateStore) All(ctx context.Context) ([]model.State, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT code, name, house_seats FROM states ORDER BY code")
	if err != nil {
		return nil, eris.Wrap(err, "store: list states")
	}
	defer rows.Close()

	var out []model.State
	for rows.Next() {
		var st model.State
		if err := rows.Scan(&st.Code, &st.Name, &st.HouseSeats); err != nil {
			return nil, eris.Wrap(err, "store: scan state")
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// NamesByCode returns a code -> full name lookup for slug construction.
func (s *StateStore) NamesByCode(ctx context.Context) (map[string]string, error) {
	states, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(states))
	for _, st := range states {
		names[st.Code] = st.Name
	}
	return names, nil
}
