package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/modelscan/internal/model"
	"github.com/sells-group/modelscan/internal/scrape"
	"github.com/sells-group/modelscan/internal/store"
)

// Run-history recording is best-effort: a store failure logs a warning and
// never fails the scrape itself.

func recordRunStart(ctx context.Context, st store.Store) *model.Run {
	if st == nil {
		return nil
	}
	run, err := st.CreateRun(ctx, scrapeFamily)
	if err != nil {
		zap.L().Warn("failed to record run start", zap.Error(err))
		return nil
	}
	return run
}

func recordRunSuccess(ctx context.Context, st store.Store, run *model.Run, result *scrape.Result) {
	if st == nil || run == nil {
		return
	}
	if err := st.CompleteRun(ctx, run.ID, result.Stats()); err != nil {
		zap.L().Warn("failed to record run result", zap.String("run_id", run.ID), zap.Error(err))
	}
}

func recordRunFailure(ctx context.Context, st store.Store, run *model.Run, cause error) {
	if st == nil || run == nil {
		return
	}
	if err := st.FailRun(ctx, run.ID, cause.Error()); err != nil {
		zap.L().Warn("failed to record run failure", zap.String("run_id", run.ID), zap.Error(err))
	}
}
