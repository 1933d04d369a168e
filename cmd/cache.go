package cmd

import (
	"fmt"
	"time"

	"github.com/jherbrandson/gpt-helper/pkg/remote"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var clearOlderThan time.Duration

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the remote file cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show disk cache location and size",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		fmt.Printf("Cache directory: %s\n", store.Dir())
		fmt.Printf("Entry TTL:       %s\n", store.TTL())
		fmt.Printf("Disk usage:      %s\n", humanize.Bytes(uint64(store.DiskSize())))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached remote file contents",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		before := store.DiskSize()
		store.Clear(clearOlderThan)
		freed := before - store.DiskSize()
		logger.Info("Cleared cache",
			zap.Duration("olderThan", clearOlderThan),
			zap.String("freed", humanize.Bytes(uint64(max64(freed, 0)))))
		return nil
	},
}

// openStore opens the cache store for the current configuration, falling
// back to the default location when no configuration exists.
func openStore() (*remote.Store, error) {
	dir := ""
	ttl := time.Duration(0)
	if cfg, err := loadConfig(); err == nil {
		dir = cfg.CacheDir
		ttl = time.Duration(cfg.CacheTTLHours) * time.Hour
	}
	return remote.NewStore(dir, ttl, logger)
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func init() {
	cacheClearCmd.Flags().DurationVar(&clearOlderThan, "older-than", 0,
		"Only remove entries older than this duration (default: everything)")
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	RootCmd.AddCommand(cacheCmd)
}
