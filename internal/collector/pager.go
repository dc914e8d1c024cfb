package collector

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// Page is one page of raw provider records plus the provider-reported
// total page count from the page metadata.
type Page struct {
	Records    []json.RawMessage
	TotalPages int
}

// PageFunc fetches one page. The fetch client underneath provides the
// inter-page delay, so pagination needs no sleeping of its own.
type PageFunc func(ctx context.Context, page int) (*Page, error)

// EachRecord drives a provider's listing protocol to completion: pages
// are fetched in order starting at 1, the total is taken from the first
// page's metadata, and every record is passed to visit. The sequence is
// lazy and non-restartable; any page failure aborts the whole read,
// because skipping a page would silently lose records. visit returning
// an error also aborts (used for context cancellation).
func EachRecord(ctx context.Context, fetch PageFunc, visit func(json.RawMessage) error) error {
	total := 1
	for page := 1; page <= total; page++ {
		p, err := fetch(ctx, page)
		if err != nil {
			return eris.Wrapf(err, "pager: fetch page %d", page)
		}

		if page == 1 && p.TotalPages > 0 {
			total = p.TotalPages
		}

		for _, rec := range p.Records {
			if err := visit(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
