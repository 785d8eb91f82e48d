// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/skygraph/cmd/skygraph/config"
)

// --- Global Command Variables ---
var (
	serviceURL  string // CLI override for service.url
	credsPath   string // CLI override for crawl.creds_path
	phrasesPath string // CLI override for crawl.phrases_path
	dryRun      bool
	jsonLogs    bool
	verbose     bool
	metricsAddr string // e.g. "localhost:9109"; empty disables the listener

	rootCmd = &cobra.Command{
		Use:   "skygraph",
		Short: "A cli to explore and curate a Bluesky follow graph",
		Long: `Skygraph walks the Bluesky follow graph outward from the accounts
				you already follow, surfaces people whose bios match your
				interests, and can audit your existing follows against the
				same phrase list.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := config.Load(); err != nil {
				fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
				os.Exit(1)
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serviceURL, "service", "",
		"XRPC service URL (default from config)")
	rootCmd.PersistentFlags().StringVar(&credsPath, "creds", "",
		"Path to a two-line handle/app-password file (default from config)")
	rootCmd.PersistentFlags().StringVar(&phrasesPath, "phrases", "",
		"Path to a newline-separated phrase file (default from config)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false,
		"Log intended follow/unfollow mutations without performing them")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false,
		"Emit JSON instead of text on stderr")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log per-page pagination and filter decisions")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "",
		"Serve prometheus metrics on this address (e.g. localhost:9109)")

	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(auditCmd)
}

// resolve prefers the CLI override over the config value.
func resolve(flag, cfg string) string {
	if flag != "" {
		return flag
	}
	return cfg
}
