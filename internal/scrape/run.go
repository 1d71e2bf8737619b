package scrape

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/modelscan/internal/model"
	"github.com/sells-group/modelscan/pkg/marketplace"
)

// Result is the immutable outcome of one scrape run.
type Result struct {
	Records []model.ModelRecord
	Report  Report
	Pages   int
	Elapsed time.Duration
}

// Stats converts the result into a run-history stats row.
func (r *Result) Stats() model.ScrapeStats {
	return model.ScrapeStats{
		Records:    len(r.Records),
		Rejected:   r.Report.Rejected,
		Duplicates: r.Report.Duplicates,
		Pages:      r.Pages,
		DurationMS: r.Elapsed.Milliseconds(),
	}
}

// Run executes the full pipeline: fetch all pages, normalize, filter.
// Fetch failures are fatal and discard all partial results; normalization
// rejections are recoverable and reported in Result.Report.
//
// The family predicate is sent upstream as a narrowing hint, but the local
// filter stage is authoritative for the result's membership.
func Run(ctx context.Context, client marketplace.Client, opts Options) (*Result, error) {
	start := time.Now()

	raws, pages, err := FetchAll(ctx, client, opts)
	if err != nil {
		return nil, err
	}

	records, report := NormalizeAll(raws)
	records = FilterByFamily(records, opts.Family)

	result := &Result{
		Records: records,
		Report:  report,
		Pages:   pages,
		Elapsed: time.Since(start),
	}

	zap.L().Info("scrape complete",
		zap.Int("records", len(result.Records)),
		zap.Int("rejected", report.Rejected),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("pages", pages),
		zap.Duration("elapsed", result.Elapsed),
	)

	return result, nil
}
