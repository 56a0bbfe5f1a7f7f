// Package main implements the taskleaf terminal client.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskleaf/taskleaf/tui"
)

var (
	flagConfig   string
	flagBaseURL  string
	flagPageSize int
)

var rootCmd = &cobra.Command{
	Use:   "taskleaf-tui",
	Short: "Terminal client for the taskleaf todo API",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := flagConfig
		if path == "" {
			path = tui.ResolveConfigPath()
		}
		cfg, err := tui.LoadOrCreate(path)
		if err != nil {
			return fmt.Errorf("load config %s: %w", path, err)
		}

		if flagBaseURL != "" {
			cfg.BaseURL = flagBaseURL
		}
		if flagPageSize > 0 {
			cfg.PageSize = flagPageSize
		}

		return tui.Run(cfg)
	},
	SilenceUsage: true,
}

func main() {
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "config file (default "+tui.ResolveConfigPath()+")")
	rootCmd.Flags().StringVar(&flagBaseURL, "api", "", "API base URL, overrides the config file")
	rootCmd.Flags().IntVar(&flagPageSize, "page-size", 0, "todos per page, overrides the config file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
