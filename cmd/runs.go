package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/modelscan/internal/model"
	"github.com/sells-group/modelscan/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect scrape run history",
	Long:  "Commands for listing and viewing recorded scrape runs. Requires a store driver other than \"none\".",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scrape runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		since, _ := cmd.Flags().GetDuration("since")

		filter := store.RunFilter{
			Status: model.RunStatus(status),
			Limit:  limit,
		}
		if since > 0 {
			filter.StartedAfter = time.Now().Add(-since)
		}

		runs, err := st.ListRuns(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

// openStore opens and migrates the run-history store, rejecting the "none"
// driver since history commands need a backend.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, eris.New("run history is disabled (store.driver is \"none\")")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func formatRunsList(w io.Writer, runs []model.Run) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tFAMILY\tRECORDS\tREJECTED\tPAGES\tSTARTED")
	for _, run := range runs {
		records, rejected, pages := "-", "-", "-"
		if run.Stats != nil {
			records = fmt.Sprintf("%d", run.Stats.Records)
			rejected = fmt.Sprintf("%d", run.Stats.Rejected)
			pages = fmt.Sprintf("%d", run.Stats.Pages)
		}
		family := run.Family
		if family == "" {
			family = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			run.ID, run.Status, family, records, rejected, pages,
			run.StartedAt.Local().Format(time.RFC3339),
		)
	}
	tw.Flush()
}

func init() {
	runsListCmd.Flags().String("status", "", "filter by status (running|succeeded|failed)")
	runsListCmd.Flags().Int("limit", 20, "maximum runs to list")
	runsListCmd.Flags().Duration("since", 0, "only runs started within this duration (e.g. 24h)")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
