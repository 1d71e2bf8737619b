package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the on-disk response cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove cache entries older than the freshness window",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c := newPageCache()
		removed, err := c.Purge()
		if err != nil {
			return eris.Wrap(err, "cache purge")
		}
		zap.L().Info("cache purged",
			zap.String("dir", c.Dir()),
			zap.Int("removed", removed),
		)
		fmt.Printf("Removed %d stale entries from %s\n", removed, c.Dir())
		return nil
	},
}

func init() {
	cachePurgeCmd.Flags().StringVar(&scrapeCacheDir, "cache-dir", "", "cache directory path (default from config)")
	cachePurgeCmd.Flags().IntVar(&scrapeCacheTimeout, "cache-timeout", 0, "cache timeout in seconds (default from config)")
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
