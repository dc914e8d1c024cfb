// Package fec collects candidate filings from the FEC API, the
// government filings provider. Filings carry a stable candidate id, so
// merges use the strong id-keyed upsert policy.
package fec

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ballotwatch/candidate-sync/internal/collector"
	"github.com/ballotwatch/candidate-sync/internal/fetcher"
	"github.com/ballotwatch/candidate-sync/internal/model"
	"github.com/ballotwatch/candidate-sync/internal/normalize"
	"github.com/ballotwatch/candidate-sync/internal/resilience"
	"github.com/ballotwatch/candidate-sync/internal/store"
)

// Config holds the provider-specific parameters for the FEC collector.
type Config struct {
	APIKey       string
	BaseURL      string
	Cycle        int
	PerPage      int
	RequestDelay time.Duration
	Confidence   float64
	UserAgent    string
}

// Collector drives the FEC paginated candidate listing for the senate
// and house offices of one cycle.
type Collector struct {
	cfg   Config
	fetch fetcher.Fetcher
}

// New creates the FEC collector. The fetch client is constructed here
// with the provider's pacing policy: 500ms between requests, linear
// retry backoff.
func New(cfg Config) *Collector {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.open.fec.gov/v1"
	}
	if cfg.Cycle == 0 {
		cfg.Cycle = nextEvenYear(time.Now())
	}
	if cfg.PerPage == 0 {
		cfg.PerPage = 100
	}
	if cfg.RequestDelay == 0 {
		cfg.RequestDelay = 500 * time.Millisecond
	}
	if cfg.Confidence == 0 {
		cfg.Confidence = 0.9
	}
	return &Collector{
		cfg: cfg,
		fetch: fetcher.New(fetcher.Options{
			Source:       "fec",
			UserAgent:    cfg.UserAgent,
			RequestDelay: cfg.RequestDelay,
			Backoff:      resilience.Linear,
		}),
	}
}

// Name implements collector.Collector.
func (c *Collector) Name() string { return "fec" }

// fecCandidate is the provider's raw record shape.
type fecCandidate struct {
	CandidateID        string `json:"candidate_id"`
	Name               string `json:"name"`
	Party              string `json:"party"`
	Office             string `json:"office"`
	State              string `json:"state"`
	District           string `json:"district"`
	IncumbentChallenge string `json:"incumbent_challenge"`
	CandidateStatus    string `json:"candidate_status"`
}

type listResponse struct {
	Pagination struct {
		Page  int `json:"page"`
		Pages int `json:"pages"`
		Count int `json:"count"`
	} `json:"pagination"`
	Results []json.RawMessage `json:"results"`
}

// Collect traverses the active filings for senate and house in the
// configured cycle. Individual bad records are recorded in the stats
// error list and skipped; a pagination failure aborts the run.
func (c *Collector) Collect(ctx context.Context, st *store.Store) (*model.Stats, error) {
	stats := &model.Stats{}

	if c.cfg.APIKey == "" {
		return stats, eris.New("fec: api key is required (set fec.api_key)")
	}

	log := zap.L().With(zap.String("source", "fec"), zap.Int("cycle", c.cfg.Cycle))

	for _, office := range []string{"S", "H"} {
		log.Info("collecting office", zap.String("office", office))
		if err := c.collectOffice(ctx, st, office, stats); err != nil {
			return stats, eris.Wrapf(err, "fec: office %s", office)
		}
	}
	return stats, nil
}

func (c *Collector) collectOffice(ctx context.Context, st *store.Store, office string, stats *model.Stats) error {
	fetch := func(ctx context.Context, page int) (*collector.Page, error) {
		var resp listResponse
		if err := c.fetch.GetJSON(ctx, c.listURL(office, page), &resp); err != nil {
			return nil, err
		}
		return &collector.Page{Records: resp.Results, TotalPages: resp.Pagination.Pages}, nil
	}

	return collector.EachRecord(ctx, fetch, func(raw json.RawMessage) error {
		stats.Found++
		c.processRecord(ctx, st, raw, stats)
		return ctx.Err()
	})
}

// processRecord runs one raw filing through normalize, resolve, and
// merge. Every failure is a per-record outcome appended to the error
// list; traversal always continues.
func (c *Collector) processRecord(ctx context.Context, st *store.Store, raw json.RawMessage, stats *model.Stats) {
	var rec fecCandidate
	if err := json.Unmarshal(raw, &rec); err != nil {
		stats.RecordError(eris.Wrap(err, "fec: decode record"), "fec/unparsed")
		return
	}

	draft, err := c.normalizeRecord(rec)
	rctx := fmt.Sprintf("%s/%s/%s", rec.State, rec.Office, rec.Name)
	if err != nil {
		stats.RecordError(err, rctx)
		return
	}

	electionID, err := st.Elections.Resolve(ctx, draft)
	if err != nil {
		stats.RecordError(err, rctx)
		return
	}

	inserted, err := st.Candidates.Upsert(ctx, draft, electionID)
	if err != nil {
		stats.RecordError(err, rctx)
		return
	}
	if inserted {
		stats.Added++
	} else {
		stats.Updated++
	}
}

// normalizeRecord converts a raw filing into a canonical draft. Field
// problems degrade to defaults; only a missing identity is an error.
func (c *Collector) normalizeRecord(rec fecCandidate) (model.Candidate, error) {
	if rec.CandidateID == "" {
		return model.Candidate{}, eris.New("fec: record has no candidate id")
	}
	if rec.State == "" {
		return model.Candidate{}, eris.New("fec: record has no state")
	}

	office, ok := normalize.Office(rec.Office)
	if !ok {
		return model.Candidate{}, eris.Errorf("fec: unsupported office code %q", rec.Office)
	}

	full, first, last := normalize.Name(rec.Name)
	if full == "" {
		return model.Candidate{}, eris.New("fec: record has no name")
	}

	var district *int
	if office == model.House {
		district = normalize.District(rec.District)
	}

	return model.Candidate{
		FilingID:     rec.CandidateID,
		FullName:     full,
		FirstName:    first,
		LastName:     last,
		Party:        normalize.Party(rec.Party),
		State:        rec.State,
		Office:       office,
		District:     district,
		Incumbent:    normalize.Incumbent(rec.IncumbentChallenge),
		Status:       normalize.Status(rec.CandidateStatus),
		ElectionType: model.Regular,
		ElectionDate: GeneralElectionDate(c.cfg.Cycle),
		Confidence:   c.cfg.Confidence,
		Source:       "fec",
	}, nil
}

// listURL builds the paginated candidate listing URL, restricted to
// currently-active statutory filings.
func (c *Collector) listURL(office string, page int) string {
	q := url.Values{}
	q.Set("api_key", c.cfg.APIKey)
	q.Set("office", office)
	q.Set("cycle", fmt.Sprintf("%d", c.cfg.Cycle))
	q.Set("candidate_status", "C")
	q.Set("sort", "name")
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("per_page", fmt.Sprintf("%d", c.cfg.PerPage))
	return fmt.Sprintf("%s/candidates/?%s", c.cfg.BaseURL, q.Encode())
}

// GeneralElectionDate returns the federal general election day for a
// cycle year: the first Tuesday after the first Monday of November.
func GeneralElectionDate(year int) time.Time {
	nov1 := time.Date(year, time.November, 1, 0, 0, 0, 0, time.UTC)
	firstMonday := 1 + (int(time.Monday)-int(nov1.Weekday())+7)%7
	return time.Date(year, time.November, firstMonday+1, 0, 0, 0, 0, time.UTC)
}

func nextEvenYear(now time.Time) int {
	y := now.Year()
	if y%2 == 1 {
		y++
	}
	return y
}
