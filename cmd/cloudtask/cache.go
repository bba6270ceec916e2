package main

import (
	"github.com/spf13/cobra"

	"github.com/cloudtask/cloudtask/cmd/cloudtask/internal"
	"github.com/cloudtask/cloudtask/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the search result cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached search results",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
}

// runCacheClear executes the cache clear command
func runCacheClear(cmd *cobra.Command, args []string) error {
	flags, err := ParseGlobalFlags(cmd)
	if err != nil {
		return err
	}

	c := cache.New(appCfg.Cache.Dir, appCfg.Cache.TTL)
	if err := c.Clear(); err != nil {
		return err
	}

	formatter := internal.NewFormatter(flags.GetOutputFormat(), cmd.OutOrStdout())
	return formatter.PrintSuccess("Cache cleared")
}
