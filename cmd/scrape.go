package main

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/modelscan/internal/cache"
	"github.com/sells-group/modelscan/internal/output"
	"github.com/sells-group/modelscan/internal/scrape"
	"github.com/sells-group/modelscan/pkg/marketplace"
)

var (
	scrapeOutput       string
	scrapeFamily       string
	scrapeFormat       string
	scrapeCacheDir     string
	scrapeCacheTimeout int
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch the marketplace model listing",
	Long:  "Fetches all listing pages through the response cache, normalizes them into the canonical record schema, and renders a table or writes the structured JSON artifact.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := validateFormat(scrapeFormat); err != nil {
			return err
		}

		client := newMarketplaceClient(newPageCache())

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		if st != nil {
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate store")
			}
		}

		run := recordRunStart(ctx, st)

		result, err := scrape.Run(ctx, client, scrape.Options{
			Family:   scrapeFamily,
			MaxPages: cfg.Marketplace.MaxPages,
		})
		if err != nil {
			recordRunFailure(ctx, st, run, err)
			return eris.Wrap(err, "scrape")
		}
		recordRunSuccess(ctx, st, run, result)

		if len(result.Records) == 0 {
			zap.L().Warn("no models found", zap.String("family", scrapeFamily))
			return nil
		}

		if scrapeFormat == "table" {
			output.RenderTable(os.Stdout, result.Records)
		} else if scrapeOutput == "" {
			if err := output.EncodeJSON(os.Stdout, result.Records); err != nil {
				return err
			}
		}

		if scrapeOutput != "" {
			if err := output.WriteJSON(scrapeOutput, result.Records); err != nil {
				return err
			}
			zap.L().Info("artifact written",
				zap.String("path", scrapeOutput),
				zap.Int("records", len(result.Records)),
			)
		}

		return nil
	},
}

// validateFormat rejects output formats other than table and json before
// any network work happens.
func validateFormat(format string) error {
	switch format {
	case "table", "json":
		return nil
	default:
		return eris.Errorf("unsupported format %q (expected table or json)", format)
	}
}

// newPageCache builds the response cache from flags, falling back to config.
func newPageCache() *cache.Cache {
	dir := scrapeCacheDir
	if dir == "" {
		dir = cfg.Cache.Dir
	}
	timeout := scrapeCacheTimeout
	if timeout == 0 {
		timeout = cfg.Cache.TimeoutSecs
	}
	return cache.New(dir, time.Duration(timeout)*time.Second)
}

func newMarketplaceClient(pc marketplace.PageCache) marketplace.Client {
	return marketplace.NewClient(
		marketplace.WithBaseURL(cfg.Marketplace.BaseURL),
		marketplace.WithUserAgent(cfg.Marketplace.UserAgent),
		marketplace.WithPageSize(cfg.Marketplace.PageSize),
		marketplace.WithTimeout(time.Duration(cfg.Marketplace.TimeoutSecs)*time.Second),
		marketplace.WithRateLimit(cfg.Marketplace.RateLimit, cfg.Marketplace.RateBurst),
		marketplace.WithCache(pc),
	)
}

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeOutput, "output", "o", "", "output JSON file path")
	scrapeCmd.Flags().StringVarP(&scrapeFamily, "model-family", "m", "", "filter by model family (e.g. DeepSeek)")
	scrapeCmd.Flags().StringVarP(&scrapeFormat, "format", "f", "table", "output format (table|json)")
	scrapeCmd.Flags().StringVar(&scrapeCacheDir, "cache-dir", "", "cache directory path (default from config)")
	scrapeCmd.Flags().IntVar(&scrapeCacheTimeout, "cache-timeout", 0, "cache timeout in seconds (default from config)")
	rootCmd.AddCommand(scrapeCmd)
}
