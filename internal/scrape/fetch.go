// Package scrape implements the fetch-normalize-filter pipeline over the
// marketplace listing endpoint.
package scrape

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/modelscan/pkg/marketplace"
)

// DefaultMaxPages bounds pagination when no cap is configured. Hitting the
// cap is treated as a malformed upstream continuation signal, not a
// truncation point.
const DefaultMaxPages = 200

// Options configures a scrape run.
type Options struct {
	// Family optionally narrows the listing. It is passed upstream as a
	// query parameter and enforced locally by the filter stage.
	Family string

	// MaxPages is the hard pagination cap. DefaultMaxPages when zero.
	MaxPages int
}

// RawRecord pairs an upstream listing entry with the page it came from.
type RawRecord struct {
	Fields marketplace.RawModel
	Page   int
}

// FetchAll walks the listing pages sequentially starting at page 1,
// aggregating records until a page is empty or carries no continuation
// signal. It returns the raw records and the number of pages fetched.
//
// Any page failure discards everything fetched so far: a partial snapshot
// must never reach the published artifact. Pagination is inherently serial
// because each continuation depends on the previous response.
func FetchAll(ctx context.Context, client marketplace.Client, opts Options) ([]RawRecord, int, error) {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var raw []RawRecord
	pages := 0
	for page := 1; ; page++ {
		if page > maxPages {
			return nil, 0, eris.Errorf("scrape: pagination exceeded %d pages, upstream continuation signal is malformed", maxPages)
		}

		lp, err := client.FetchPage(ctx, page, opts.Family)
		if err != nil {
			return nil, 0, eris.Wrapf(err, "scrape: page %d", page)
		}
		pages = page

		for _, m := range lp.Results {
			raw = append(raw, RawRecord{Fields: m, Page: page})
		}
		zap.L().Debug("scrape: fetched page",
			zap.Int("page", page),
			zap.Int("results", len(lp.Results)),
			zap.Bool("has_next", lp.HasNextPage),
		)

		if len(lp.Results) == 0 || !lp.HasNextPage {
			break
		}
	}

	return raw, pages, nil
}
