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
	"github.com/AleutianAI/skygraph/cmd/skygraph/internal/crawl"
	"github.com/AleutianAI/skygraph/cmd/skygraph/internal/stats"
	"github.com/AleutianAI/skygraph/pkg/ux"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	crawlDepth    int    // frontier depth ceiling (overrides config)
	crawlPageSize int    // profiles per graph page (overrides config)
	crawlMaxPages int    // seed pagination ceiling (overrides config)
	crawlYes      bool   // accept every candidate without prompting
	crawlSeedFrom string // which edge direction seeds the frontier
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// crawlCmd explores the follow graph outward from the viewer's own
// follows and proposes new accounts to follow.
//
// Seeds are the accounts you already follow. Each matching seed is
// expanded one neighbor page deep, candidates are filtered against
// the phrase list and the session's dedup sets, and each survivor is
// offered for a yes/no decision (or auto-accepted with --yes).
//
// Examples:
//
//	skygraph crawl                      # interactive, config defaults
//	skygraph crawl --depth 1 --dry-run  # see who would be offered
//	skygraph crawl --yes --metrics-addr localhost:9109
var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Walk the follow graph and propose accounts with matching bios",
	Run:   runCrawl,
}

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	crawlCmd.Flags().IntVar(&crawlDepth, "depth", 0,
		"Maximum frontier depth (default from config)")
	crawlCmd.Flags().IntVar(&crawlPageSize, "page-size", 0,
		"Profiles per graph page (default from config)")
	crawlCmd.Flags().IntVar(&crawlMaxPages, "max-pages", 0,
		"Seed pagination ceiling (default from config)")
	crawlCmd.Flags().BoolVar(&crawlYes, "yes", false,
		"Follow every surfaced candidate without prompting")
	crawlCmd.Flags().StringVar(&crawlSeedFrom, "seed-source", "follows",
		"Seed the frontier from 'follows' or 'followers'")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runCrawl(cmd *cobra.Command, args []string) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	client, log, err := establishSession(ctx, "crawl")
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
	if phrases.Len() == 0 {
		ux.Error("the phrase file is empty; a crawl with no phrases matches nobody")
		os.Exit(1)
	}

	cfg := config.Global.Crawl
	depth := cfg.MaxDepth
	if crawlDepth > 0 {
		depth = crawlDepth
	}
	pageSize := cfg.PageSize
	if crawlPageSize > 0 {
		pageSize = crawlPageSize
	}
	maxPages := cfg.MaxPages
	if crawlMaxPages > 0 {
		maxPages = crawlMaxPages
	}

	var decider crawl.DecisionProvider = crawl.InteractiveDecider{}
	if crawlYes {
		decider = crawl.AcceptAll()
	}

	seedEndpoint := atproto.EndpointFollows
	switch crawlSeedFrom {
	case "follows":
	case "followers":
		seedEndpoint = atproto.EndpointFollowers
	default:
		ux.Error(fmt.Sprintf("unknown seed source %q (want follows or followers)", crawlSeedFrom))
		os.Exit(1)
	}

	engine, err := crawl.New(crawl.Config{
		Seeds:      client.NewPager(seedEndpoint, client.DID(), pageSize, maxPages),
		Client:     client,
		Decider:    decider,
		Phrases:    phrases,
		Stats:      stats.NewAggregator(os.Stderr),
		Log:        log,
		SelfKey:    client.DID(),
		SelfHandle: client.Handle(),
		MaxDepth:   depth,
		BatchSize:  pageSize,
		DryRun:     dryRun,
	})
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}

	ux.Title("skygraph crawl")
	if dryRun {
		ux.Muted("dry run: no follows will be created")
	}

	sum, runErr := engine.Run(ctx)
	printCrawlSummary(sum)
	if runErr != nil {
		ux.Error(fmt.Sprintf("crawl aborted: %v", runErr))
		os.Exit(1)
	}
}

func printCrawlSummary(sum crawl.Summary) {
	ux.Box(fmt.Sprintf(
		"seeds visited    %d\ncandidates shown %d\nfollowed         %d\nskipped          %d\nfailed           %d",
		sum.SeedsVisited, sum.CandidatesShown, sum.Followed, sum.Skipped, sum.Failed,
	))
}
