package collector

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ballotwatch/candidate-sync/internal/model"
	"github.com/ballotwatch/candidate-sync/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type fakeCollector struct {
	name  string
	stats *model.Stats
	err   error
	calls int
	seq   *[]string
}

func (f *fakeCollector) Name() string { return f.name }

func (f *fakeCollector) Collect(ctx context.Context, st *store.Store) (*model.Stats, error) {
	f.calls++
	if f.seq != nil {
		*f.seq = append(*f.seq, f.name)
	}
	return f.stats, f.err
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	a := &fakeCollector{name: "fec"}
	b := &fakeCollector{name: "ballotpedia"}
	reg.Register(a)
	reg.Register(b)

	assert.Equal(t, []string{"fec", "ballotpedia"}, reg.Names())

	got, err := reg.Get("fec")
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = reg.Get("nope")
	assert.Error(t, err)

	sel, err := reg.Select([]string{"ballotpedia"})
	require.NoError(t, err)
	require.Len(t, sel, 1)
	assert.Same(t, b, sel[0])

	all, err := reg.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRunner_CompletesSuccessfulRun(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO collection_runs").
		WithArgs("fec").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectExec("UPDATE collection_runs").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	c := &fakeCollector{name: "fec", stats: &model.Stats{Found: 5, Added: 3, Updated: 2}}
	reg := NewRegistry()
	reg.Register(c)

	r := NewRunner(store.New(mock), reg)
	require.NoError(t, r.Run(context.Background(), RunOpts{Concurrency: 1}))
	assert.Equal(t, 1, c.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_DefaultsToSequentialRegistrationOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// Ordered expectations: the filings collector's whole lifecycle
	// finishes before the wiki collector starts.
	mock.ExpectQuery("INSERT INTO collection_runs").
		WithArgs("fec").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectExec("UPDATE collection_runs").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("INSERT INTO collection_runs").
		WithArgs("ballotpedia").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectExec("UPDATE collection_runs").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	var seq []string
	first := &fakeCollector{name: "fec", stats: &model.Stats{}, seq: &seq}
	second := &fakeCollector{name: "ballotpedia", stats: &model.Stats{}, seq: &seq}
	reg := NewRegistry()
	reg.Register(first)
	reg.Register(second)

	r := NewRunner(store.New(mock), reg)
	require.NoError(t, r.Run(context.Background(), RunOpts{}))
	assert.Equal(t, []string{"fec", "ballotpedia"}, seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_FailedCollectorFinalizesLedgerAndReturnsError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO collection_runs").
		WithArgs("fec").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectExec("UPDATE collection_runs").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	c := &fakeCollector{
		name:  "fec",
		stats: &model.Stats{Found: 2},
		err:   eris.New("pagination aborted: retries exhausted"),
	}
	reg := NewRegistry()
	reg.Register(c)

	r := NewRunner(store.New(mock), reg)
	err = r.Run(context.Background(), RunOpts{Concurrency: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 collectors failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_OneFailureDoesNotStopOthers(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO collection_runs").
		WithArgs("fec").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectExec("UPDATE collection_runs").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("INSERT INTO collection_runs").
		WithArgs("ballotpedia").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectExec("UPDATE collection_runs").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	bad := &fakeCollector{name: "fec", stats: &model.Stats{}, err: eris.New("boom")}
	good := &fakeCollector{name: "ballotpedia", stats: &model.Stats{Found: 1, Added: 1}}
	reg := NewRegistry()
	reg.Register(bad)
	reg.Register(good)

	r := NewRunner(store.New(mock), reg)
	err = r.Run(context.Background(), RunOpts{Concurrency: 1})
	require.Error(t, err)
	assert.Equal(t, 1, bad.calls)
	assert.Equal(t, 1, good.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_LedgerStartFailureAborts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO collection_runs").
		WillReturnError(eris.New("connection refused"))

	c := &fakeCollector{name: "fec", stats: &model.Stats{}}
	reg := NewRegistry()
	reg.Register(c)

	r := NewRunner(store.New(mock), reg)
	err = r.Run(context.Background(), RunOpts{Concurrency: 1})
	require.Error(t, err)
	assert.Equal(t, 0, c.calls)
}

func TestRunner_UnknownSource(t *testing.T) {
	r := NewRunner(store.New(nil), NewRegistry())
	err := r.Run(context.Background(), RunOpts{Sources: []string{"mystery"}})
	assert.Error(t, err)
}
