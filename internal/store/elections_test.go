package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ballotwatch/candidate-sync/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func intp(n int) *int { return &n }

func senateDraft() model.Candidate {
	return model.Candidate{
		FullName:     "SMITH, JANE",
		State:        "AZ",
		Office:       model.Senate,
		ElectionType: model.Regular,
		ElectionDate: time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestResolve_ExistingElection(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id FROM elections").
		WithArgs("AZ", "senate", (*int)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(41)))

	es := &ElectionStore{pool: mock}
	id, err := es.Resolve(context.Background(), senateDraft())
	require.NoError(t, err)
	assert.Equal(t, int64(41), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolve_CreatesWhenMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id FROM elections").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec("INSERT INTO elections").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT id FROM elections").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(99)))

	draft := senateDraft()
	draft.ElectionType = model.Special

	es := &ElectionStore{pool: mock}
	id, err := es.Resolve(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, int64(99), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolve_ConcurrentCreateLosesRaceButFindsRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// Insert conflicts with a concurrently created row (0 rows affected);
	// the re-select still resolves it.
	mock.ExpectQuery("SELECT id FROM elections").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec("INSERT INTO elections").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT id FROM elections").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	es := &ElectionStore{pool: mock}
	id, err := es.Resolve(context.Background(), senateDraft())
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolve_NoHintSkips(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id FROM elections").
		WillReturnError(pgx.ErrNoRows)

	draft := senateDraft()
	draft.ElectionDate = time.Time{}

	es := &ElectionStore{pool: mock}
	_, err = es.Resolve(context.Background(), draft)
	assert.ErrorIs(t, err, ErrNoElection)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolve_StillMissingAfterCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id FROM elections").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec("INSERT INTO elections").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT id FROM elections").
		WillReturnError(pgx.ErrNoRows)

	es := &ElectionStore{pool: mock}
	_, err = es.Resolve(context.Background(), senateDraft())
	assert.ErrorIs(t, err, ErrNoElection)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolve_QueryErrorPropagates(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id FROM elections").
		WillReturnError(eris.New("connection refused"))

	es := &ElectionStore{pool: mock}
	_, err = es.Resolve(context.Background(), senateDraft())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoElection)
}

func TestUpcoming(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	date := time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, state, office, district").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "state", "office", "district", "senate_class", "election_type", "election_date",
		}).
			AddRow(int64(1), "AZ", "senate", (*int)(nil), intp(3), "regular", date).
			AddRow(int64(2), "AZ", "house", intp(4), (*int)(nil), "regular", date))

	es := &ElectionStore{pool: mock}
	elections, err := es.Upcoming(context.Background())
	require.NoError(t, err)
	require.Len(t, elections, 2)
	assert.Equal(t, model.Senate, elections[0].Office)
	assert.Nil(t, elections[0].District)
	assert.Equal(t, 3, *elections[0].SenateClass)
	assert.Equal(t, model.House, elections[1].Office)
	assert.Equal(t, 4, *elections[1].District)
}
