// Package ballotpedia collects announced candidates from contest pages
// on the Ballotpedia wiki. The wiki issues no stable candidate ids, so
// drafts carry no filing id and merge under the insert-only natural-key
// policy at a lower confidence than government filings.
package ballotpedia

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ballotwatch/candidate-sync/internal/fetcher"
	"github.com/ballotwatch/candidate-sync/internal/model"
	"github.com/ballotwatch/candidate-sync/internal/normalize"
	"github.com/ballotwatch/candidate-sync/internal/resilience"
	"github.com/ballotwatch/candidate-sync/internal/store"
)

// Config holds the provider-specific parameters for the wiki collector.
type Config struct {
	BaseURL      string
	RequestDelay time.Duration
	Confidence   float64
	UserAgent    string
}

// Collector walks the contest pages for every upcoming election in the
// canonical store. The scope comes from the store rather than from the
// wiki's own index pages, so the government-filings collector should run
// first to seed the election rows.
type Collector struct {
	cfg   Config
	fetch fetcher.Fetcher
}

// New creates the wiki collector. The fetch client is constructed here
// with the provider's pacing policy: 2s between requests out of
// politeness to the wiki, exponential retry backoff.
func New(cfg Config) *Collector {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://ballotpedia.org"
	}
	if cfg.RequestDelay == 0 {
		cfg.RequestDelay = 2 * time.Second
	}
	if cfg.Confidence == 0 {
		cfg.Confidence = 0.6
	}
	return &Collector{
		cfg: cfg,
		fetch: fetcher.New(fetcher.Options{
			Source:       "ballotpedia",
			UserAgent:    cfg.UserAgent,
			RequestDelay: cfg.RequestDelay,
			Backoff:      resilience.Exponential,
		}),
	}
}

// Name implements collector.Collector.
func (c *Collector) Name() string { return "ballotpedia" }

// Collect fetches and parses one contest page per upcoming election.
// A page that cannot be fetched or yields no candidates only affects
// that contest; the traversal continues. Store errors while building
// the scope are run-fatal because no contest can proceed without it.
func (c *Collector) Collect(ctx context.Context, st *store.Store) (*model.Stats, error) {
	stats := &model.Stats{}
	log := zap.L().With(zap.String("source", "ballotpedia"))

	stateNames, err := st.States.NamesByCode(ctx)
	if err != nil {
		return stats, eris.Wrap(err, "ballotpedia: load state names")
	}
	elections, err := st.Elections.Upcoming(ctx)
	if err != nil {
		return stats, eris.Wrap(err, "ballotpedia: load election scope")
	}
	log.Info("contest scope built", zap.Int("elections", len(elections)))

	for _, e := range elections {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		stateName, ok := stateNames[e.State]
		if !ok {
			stats.RecordErrorf(e.State, "ballotpedia: unknown state code %q", e.State)
			continue
		}

		slug := ContestSlug(stateName, e.Office, e.District, e.Date.Year())
		c.collectContest(ctx, st, e, slug, stats)
	}
	return stats, nil
}

// collectContest processes one contest page. Failures are per-contest
// outcomes recorded against the slug, including a page that parses to
// zero candidates: a silent empty contest would be indistinguishable
// from a site redesign breaking the extraction pattern.
func (c *Collector) collectContest(ctx context.Context, st *store.Store, e model.Election, slug string, stats *model.Stats) {
	body, err := c.fetch.Get(ctx, c.pageURL(slug))
	if err != nil {
		stats.RecordError(eris.Wrapf(err, "ballotpedia: fetch contest page"), slug)
		return
	}

	candidates := parseCandidates(body)
	if len(candidates) == 0 {
		stats.RecordErrorf(slug, "ballotpedia: contest page yielded no candidates")
		return
	}

	class := e.SenateClass
	if e.Office == model.Senate && class == nil {
		class = parseSenateClass(body)
	}

	for _, cand := range candidates {
		stats.Found++

		draft := c.draft(cand, e)
		draft.SenateClass = class

		inserted, err := st.Candidates.Upsert(ctx, draft, e.ID)
		if err != nil {
			stats.RecordError(err, fmt.Sprintf("%s/%s", slug, cand.Name))
			continue
		}
		if inserted {
			stats.Added++
		} else {
			stats.Updated++
		}
	}
}

// draft builds a normalized draft from one parsed page entry. Seat
// fields come from the canonical election row, not the page, so a
// mislabeled page cannot move a candidate to the wrong seat.
func (c *Collector) draft(cand contestCandidate, e model.Election) model.Candidate {
	full, first, last := normalize.DisplayName(cand.Name)
	return model.Candidate{
		FullName:     full,
		FirstName:    first,
		LastName:     last,
		Party:        hintParty(cand.PartyHint),
		State:        e.State,
		Office:       e.Office,
		District:     e.District,
		SenateClass:  e.SenateClass,
		Incumbent:    cand.Incumbent,
		Status:       model.StatusDeclared,
		ElectionType: e.Type,
		ElectionDate: e.Date,
		Confidence:   c.cfg.Confidence,
		Source:       "ballotpedia",
	}
}

func (c *Collector) pageURL(slug string) string {
	return c.cfg.BaseURL + "/" + url.PathEscape(slug)
}
