// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/skygraph/cmd/skygraph/config"
	"github.com/AleutianAI/skygraph/cmd/skygraph/internal/atproto"
	"github.com/AleutianAI/skygraph/cmd/skygraph/internal/audit"
	"github.com/AleutianAI/skygraph/cmd/skygraph/internal/stats"
	"github.com/AleutianAI/skygraph/pkg/ux"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	auditNoBio bool // auto-unfollow accounts with an empty bio
	auditAuto  bool // automatic rules only, never prompt
	auditLimit int  // cap on examined follows, 0 = all
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// auditCmd walks the viewer's existing follows and prunes the ones
// whose bios no longer match the phrase list. Matching bios are kept
// silently; with --no-bio, empty bios are unfollowed without a
// prompt; everything else goes to an interactive review unless --auto
// is set.
//
// Examples:
//
//	skygraph audit                     # interactive review
//	skygraph audit --no-bio --auto     # prune empty bios, keep the rest
//	skygraph audit --limit 50 --dry-run
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Review existing follows against the phrase list and unfollow misfits",
	Run:   runAudit,
}

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	auditCmd.Flags().BoolVar(&auditNoBio, "no-bio", false,
		"Unfollow accounts with an empty bio without prompting")
	auditCmd.Flags().BoolVar(&auditAuto, "auto", false,
		"Apply automatic rules only; keep everything that would need a prompt")
	auditCmd.Flags().IntVar(&auditLimit, "limit", 0,
		"Stop after examining this many follows (0 = all)")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runAudit(cmd *cobra.Command, args []string) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	client, log, err := establishSession(ctx, "audit")
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}
	defer log.Close()
	serveMetrics(log)

	phrases, err := loadPhraseSet()
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}

	cfg := config.Global.Crawl
	var reviewer audit.Reviewer = audit.InteractiveReviewer{}
	if auditAuto {
		reviewer = audit.KeepAll()
	}

	auditor, err := audit.New(audit.Config{
		Follows:   client.NewPager(atproto.EndpointFollows, client.DID(), cfg.PageSize, cfg.MaxPages),
		Client:    client,
		Reviewer:  reviewer,
		Phrases:   phrases,
		Stats:     stats.NewAggregator(os.Stderr),
		Log:       log,
		AutoNoBio: auditNoBio,
		Limit:     auditLimit,
		DryRun:    dryRun,
	})
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}

	ux.Title("skygraph audit")
	if dryRun {
		ux.Muted("dry run: no unfollows will be performed")
	}

	sum, runErr := auditor.Run(ctx)
	printAuditSummary(sum)
	if runErr != nil {
		ux.Error(fmt.Sprintf("audit aborted: %v", runErr))
		os.Exit(1)
	}
}

func printAuditSummary(sum audit.Summary) {
	ux.Box(fmt.Sprintf(
		"examined %d\nkept     %d\nremoved  %d\nfailed   %d",
		sum.Examined, sum.Kept, sum.Removed, sum.Failed,
	))
}
