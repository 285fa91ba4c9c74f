package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/cppbind/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or reset the build cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:          "stats",
	Short:        "Show build cache statistics",
	RunE:         runCacheStats,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
}

var cacheClearCmd = &cobra.Command{
	Use:          "clear",
	Short:        "Remove all build cache entries",
	RunE:         runCacheClear,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	c, err := cache.New(cfg.CacheDir())
	if err != nil {
		return err
	}
	defer c.Close()

	stats, err := c.Stats()
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	log.Info("Cache:   %s", c.Root())
	log.Info("Entries: %d", stats.Entries)
	log.Info("Size:    %d bytes", stats.Size)

	if stats.Latest != nil {
		log.Info("Latest:  %s at %s (%s, %d libraries, %d headers, %d wrappers)",
			stats.Latest.RunID,
			stats.Latest.Timestamp.Format(time.RFC3339),
			stats.Latest.BuildType,
			stats.Latest.Libraries,
			stats.Latest.Headers,
			stats.Latest.Wrappers,
		)
	}

	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	c, err := cache.New(cfg.CacheDir())
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	log.Success("Cache cleared")

	return nil
}
