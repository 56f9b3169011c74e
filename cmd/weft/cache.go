package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weftlabs/weft-llm-go/cache/sqlite"
)

func newCacheCmd() *cobra.Command {
	var cachePath string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
	}

	openCache := func() (*sqlite.Cache, error) {
		path := cachePath
		if path == "" {
			var err error
			path, err = defaultCachePath()
			if err != nil {
				return nil, err
			}
		}
		return sqlite.Open(path, newLogger(false))
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCache()
			if err != nil {
				return err
			}
			defer func() { _ = cache.Close() }()

			stats, err := cache.Stats()
			if err != nil {
				return err
			}
			fmt.Printf("Entries: %d\n", stats.Entries)
			if stats.Entries > 0 {
				fmt.Printf("Oldest:  %s\n", stats.Oldest.Format("2006-01-02T15:04:05Z07:00"))
				fmt.Printf("Newest:  %s\n", stats.Newest.Format("2006-01-02T15:04:05Z07:00"))
			}
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCache()
			if err != nil {
				return err
			}
			defer func() { _ = cache.Close() }()

			if err := cache.Clear(); err != nil {
				return err
			}
			fmt.Println("Cache cleared.")
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cachePath, "cache", "", "cache database path (default ~/.weft/cache.db)")
	cmd.AddCommand(statsCmd, clearCmd)
	return cmd
}
