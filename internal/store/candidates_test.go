package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballotwatch/candidate-sync/internal/model"
)

func filedDraft() model.Candidate {
	return model.Candidate{
		FilingID:     "S6AZ00241",
		FullName:     "SMITH, JANE Q",
		FirstName:    "JANE",
		LastName:     "SMITH",
		Party:        model.Democratic,
		State:        "AZ",
		Office:       model.Senate,
		Status:       model.StatusFiled,
		ElectionType: model.Regular,
		ElectionDate: time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC),
		Confidence:   0.9,
		Source:       "fec",
	}
}

func TestUpsert_FilingID_Inserted(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO candidates").
		WillReturnRows(pgxmock.NewRows([]string{"inserted"}).AddRow(true))

	cs := &CandidateStore{pool: mock}
	inserted, err := cs.Upsert(context.Background(), filedDraft(), 41)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_FilingID_UpdatedOnConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO candidates").
		WillReturnRows(pgxmock.NewRows([]string{"inserted"}).AddRow(false))

	cs := &CandidateStore{pool: mock}
	inserted, err := cs.Upsert(context.Background(), filedDraft(), 41)
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestUpsert_NaturalKey_Inserted(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO candidates").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	draft := filedDraft()
	draft.FilingID = ""
	draft.Source = "ballotpedia"

	cs := &CandidateStore{pool: mock}
	inserted, err := cs.Upsert(context.Background(), draft, 41)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_NaturalKey_ConflictIsNoOp(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO candidates").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	draft := filedDraft()
	draft.FilingID = ""

	cs := &CandidateStore{pool: mock}
	inserted, err := cs.Upsert(context.Background(), draft, 41)
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestUpsert_RejectsInvalidDrafts(t *testing.T) {
	cs := &CandidateStore{}

	draft := filedDraft()
	draft.FullName = ""
	_, err := cs.Upsert(context.Background(), draft, 41)
	assert.Error(t, err)

	_, err = cs.Upsert(context.Background(), filedDraft(), 0)
	assert.Error(t, err)
}

func TestUpsertSQL_ConfidencePolicy(t *testing.T) {
	// The merge policy is encoded in SQL; pin the clauses that carry the
	// invariants so a rewrite cannot silently drop them.
	assert.Contains(t, upsertByFilingSQL, "GREATEST(candidates.data_confidence, EXCLUDED.data_confidence)")
	assert.Contains(t, upsertByFilingSQL, "EXCLUDED.data_confidence >= candidates.data_confidence")
	assert.Contains(t, upsertByFilingSQL, "(xmax = 0)")
	assert.Contains(t, insertByNaturalKeySQL, "DO NOTHING")
}
