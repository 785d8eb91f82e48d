// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package crawl drives the breadth-first exploration of the follow
// graph.
//
// The engine consumes seeds lazily from a pager, gates every node
// through the phrase matcher and the dedup registry, fetches exactly
// one neighbor page per expanded seed, and hands surviving candidates
// to a decision provider. Accepted candidates get a follow edge (or
// dry-run bookkeeping) and may re-enter the frontier one level
// deeper.
//
// Failure semantics are asymmetric on purpose: a failed follow is
// recorded and the crawl moves on, while a failed fetch aborts the
// whole run. Mutation failures are per-item; fetch failures are
// structural.
//
// There is no total node ceiling. The only cancellation knobs are
// max depth, the seed pager's page ceiling, and the caller's context;
// a sufficiently connected graph with a generous depth can run for a
// very long time, which is accepted operator risk.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/AleutianAI/skygraph/cmd/skygraph/internal/atproto"
	"github.com/AleutianAI/skygraph/cmd/skygraph/internal/match"
	"github.com/AleutianAI/skygraph/cmd/skygraph/internal/stats"
	"github.com/AleutianAI/skygraph/pkg/logging"
)

// Event names recorded into the stats aggregator. The aggregator's
// pivot event, stats.EventNodeObserved, is recorded once per node the
// engine looks at, seed or neighbor.
const (
	EventSeedVisited        = "seed_visited"
	EventSeedNoKey          = "seed_no_key"
	EventSeedNoMatch        = "seed_no_match"
	EventFrontierReported   = "frontier_reported"
	EventDepthCapped        = "depth_capped"
	EventStaleNoMatch       = "stale_no_match"
	EventCandidateNoKey     = "candidate_no_key"
	EventCandidateDuplicate = "candidate_duplicate"
	EventCandidateSelf      = "candidate_self"
	EventCandidateConnected = "candidate_connected"
	EventCandidateNoMatch   = "candidate_no_match"
	EventCandidateShown     = "candidate_shown"
	EventFollowed           = "followed"
	EventSkipped            = "skipped"
	EventFollowFailed       = "follow_failed"
)

// SeedSource yields successive batches of frontier roots. Satisfied
// by *atproto.Pager.
type SeedSource interface {
	Next(ctx context.Context) ([]atproto.Profile, bool, error)
}

// GraphClient is the slice of the atproto client the engine needs.
type GraphClient interface {
	// NeighborPage fetches a single page of the actor's outgoing
	// edges. One page only; the engine never paginates per seed.
	NeighborPage(ctx context.Context, actor string, limit int) ([]atproto.Profile, error)

	// Follow creates a follow edge to the subject and returns the new
	// record URI.
	Follow(ctx context.Context, subjectDID string) (string, error)
}

// Config assembles an Engine.
type Config struct {
	Seeds   SeedSource
	Client  GraphClient
	Decider DecisionProvider
	Phrases match.PhraseSet
	Stats   *stats.Aggregator
	Log     *logging.Logger

	// SelfKey and SelfHandle identify the acting viewer, for the
	// self-loop guard.
	SelfKey    string
	SelfHandle string

	// MaxDepth bounds the frontier: entries live at 0..MaxDepth and
	// the deepest level is reported but never expanded.
	MaxDepth int

	// BatchSize is both the neighbor page size and the frontier level
	// below which the seed buffer is refilled. Coerced up to 1.
	BatchSize int

	// DryRun performs all bookkeeping but issues no follow mutations.
	DryRun bool
}

// Summary is the operator-facing outcome of one crawl.
type Summary struct {
	SeedsVisited    int
	CandidatesShown int
	Followed        int
	Skipped         int
	Failed          int
}

type frontierEntry struct {
	node  atproto.Profile
	depth int
}

// Engine holds one crawl invocation's state. Not reusable; build a
// new Engine per run.
type Engine struct {
	cfg      Config
	registry *Registry
	frontier []frontierEntry
	seedBuf  []atproto.Profile

	seedsDone bool
	summary   Summary
}

// New validates config and builds an Engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Seeds == nil {
		return nil, errors.New("crawl: seed source is required")
	}
	if cfg.Client == nil {
		return nil, errors.New("crawl: graph client is required")
	}
	if cfg.Decider == nil {
		return nil, errors.New("crawl: decision provider is required")
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewAggregator(io.Discard)
	}
	if cfg.Log == nil {
		cfg.Log = logging.Default()
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	if cfg.MaxDepth < 0 {
		cfg.MaxDepth = 0
	}
	return &Engine{
		cfg:      cfg,
		registry: NewRegistry(),
	}, nil
}

// Run executes the crawl to completion: the engine halts when the
// frontier is empty, the seed source is exhausted, and the seed
// buffer is drained. The returned Summary is valid even on error and
// reflects everything done up to the failure.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	e.cfg.Log.Info("crawl started",
		"max_depth", e.cfg.MaxDepth,
		"batch_size", e.cfg.BatchSize,
		"dry_run", e.cfg.DryRun,
	)

	for {
		if err := e.refillSeeds(ctx); err != nil {
			return e.summary, err
		}
		e.intakeSeeds()

		if len(e.frontier) == 0 {
			if e.seedsDone {
				break
			}
			continue
		}

		// FIFO pop: breadth-first, not depth-first.
		entry := e.frontier[0]
		e.frontier = e.frontier[1:]

		if err := e.expand(ctx, entry); err != nil {
			return e.summary, err
		}
	}

	e.cfg.Stats.FlushFinal()
	e.cfg.Log.Info("crawl finished",
		"seeds_visited", e.summary.SeedsVisited,
		"candidates_shown", e.summary.CandidatesShown,
		"followed", e.summary.Followed,
		"skipped", e.summary.Skipped,
		"failed", e.summary.Failed,
	)
	return e.summary, nil
}

// refillSeeds pulls the next seed batch when the frontier has dropped
// below one batch and the source still has pages. A seed fetch
// failure is structural and propagates.
func (e *Engine) refillSeeds(ctx context.Context) error {
	if e.seedsDone || len(e.frontier) >= e.cfg.BatchSize {
		return nil
	}

	batch, ok, err := e.cfg.Seeds.Next(ctx)
	if err != nil {
		return fmt.Errorf("seed intake: %w", err)
	}
	if !ok {
		e.seedsDone = true
		e.cfg.Log.Debug("seed source exhausted")
		return nil
	}
	e.seedBuf = append(e.seedBuf, batch...)
	return nil
}

// intakeSeeds drains the buffer into the frontier. Every usable seed
// is marked visited exactly once, whether or not its bio passes the
// gate; a seed that fails the matcher is never retried.
func (e *Engine) intakeSeeds() {
	for i := range e.seedBuf {
		seed := e.seedBuf[i]
		key := seed.PrimaryKey()
		if key == "" {
			e.cfg.Stats.Record(EventSeedNoKey)
			continue
		}
		if !e.registry.Admit(SetVisitedSeeds, key) {
			continue
		}
		e.cfg.Stats.Record(stats.EventNodeObserved)
		e.cfg.Stats.Record(EventSeedVisited)
		e.summary.SeedsVisited++

		if !e.cfg.Phrases.Matches(seed.BioText()) {
			e.cfg.Stats.Record(EventSeedNoMatch)
			continue
		}
		e.frontier = append(e.frontier, frontierEntry{node: seed, depth: 0})
	}
	e.seedBuf = e.seedBuf[:0]
}

// expand processes one popped frontier entry: re-validate, report,
// and unless the entry sits at max depth, fetch one neighbor page and
// run each neighbor through the candidate filter.
func (e *Engine) expand(ctx context.Context, entry frontierEntry) error {
	log := e.cfg.Log.With("node", entry.node.PrimaryKey(), "depth", entry.depth)

	// Bios are time-varying; the match that enqueued this entry is
	// not trusted at expansion time.
	if !e.cfg.Phrases.Matches(entry.node.BioText()) {
		e.cfg.Stats.Record(EventStaleNoMatch)
		log.Debug("frontier entry no longer matches, branch closed")
		return nil
	}

	e.cfg.Stats.Record(EventFrontierReported)
	log.Info("frontier entry", "handle", entry.node.Handle)

	if entry.depth >= e.cfg.MaxDepth {
		e.cfg.Stats.Record(EventDepthCapped)
		log.Debug("at max depth, branch terminal")
		return nil
	}

	neighbors, err := e.cfg.Client.NeighborPage(ctx, entry.node.Actor(), e.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("expanding %s: %w", entry.node.PrimaryKey(), err)
	}

	for i := range neighbors {
		if err := e.consider(ctx, neighbors[i], entry.depth); err != nil {
			return err
		}
	}
	return nil
}

// consider runs one neighbor through the candidate filter, the
// decision provider, and (on accept) the follow mutation.
func (e *Engine) consider(ctx context.Context, n atproto.Profile, parentDepth int) error {
	e.cfg.Stats.Record(stats.EventNodeObserved)

	key := n.PrimaryKey()
	switch {
	case key == "":
		e.cfg.Stats.Record(EventCandidateNoKey)
		return nil
	case e.registry.Contains(SetSeenCandidates, key):
		e.cfg.Stats.Record(EventCandidateDuplicate)
		return nil
	case key == e.cfg.SelfKey, n.Handle != "" && n.Handle == e.cfg.SelfHandle:
		e.cfg.Stats.Record(EventCandidateSelf)
		return nil
	case n.FollowedByViewer(), e.registry.Contains(SetFollowedSession, key):
		e.cfg.Stats.Record(EventCandidateConnected)
		return nil
	case !e.cfg.Phrases.Matches(n.BioText()):
		e.cfg.Stats.Record(EventCandidateNoMatch)
		return nil
	}

	e.registry.Admit(SetSeenCandidates, key)
	e.cfg.Stats.Record(EventCandidateShown)
	e.summary.CandidatesShown++

	depth := parentDepth + 1
	accept, err := e.cfg.Decider.Decide(Candidate{Profile: n, Depth: depth})
	if err != nil {
		return fmt.Errorf("decision provider: %w", err)
	}
	if !accept {
		e.cfg.Stats.Record(EventSkipped)
		e.summary.Skipped++
		return nil
	}

	if e.cfg.DryRun {
		e.cfg.Log.Info("dry-run: would follow", "subject", key, "handle", n.Handle)
	} else {
		if _, err := e.cfg.Client.Follow(ctx, key); err != nil {
			e.cfg.Stats.Record(EventFollowFailed)
			e.summary.Failed++
			e.cfg.Log.Warn("follow failed", "subject", key, "error", err)
			return nil
		}
	}
	e.cfg.Stats.Record(EventFollowed)
	e.summary.Followed++
	e.registry.Admit(SetFollowedSession, key)

	// The deepest level is reported but never expanded, so entries
	// live at 0..MaxDepth. The bio is re-checked before enqueue; same
	// gate as above, not a second source of truth.
	if depth <= e.cfg.MaxDepth && e.cfg.Phrases.Matches(n.BioText()) {
		e.frontier = append(e.frontier, frontierEntry{node: n, depth: depth})
	}
	return nil
}
