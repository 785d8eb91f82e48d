// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package audit walks the viewer's existing follows and prunes the
// ones that no longer fit.
//
// The pass is the inverse of the crawl: instead of growing the follow
// set from matching bios, it shrinks it. Each followed account is
// classified in order:
//
//  1. empty bio, with auto-prune enabled: unfollowed without a prompt
//  2. bio matches the phrase set: kept without a prompt
//  3. everything else: the reviewer decides
//
// Unfollow failures are per-account and never abort the audit; a
// failed page fetch does.
package audit

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/AleutianAI/skygraph/cmd/skygraph/internal/atproto"
	"github.com/AleutianAI/skygraph/cmd/skygraph/internal/match"
	"github.com/AleutianAI/skygraph/cmd/skygraph/internal/stats"
	"github.com/AleutianAI/skygraph/pkg/logging"
	"github.com/AleutianAI/skygraph/pkg/ux"
)

// Event names recorded into the stats aggregator.
const (
	EventFollowExamined   = "follow_examined"
	EventKeptMatching     = "kept_matching"
	EventKeptDeclined     = "kept_declined"
	EventRemovedNoBio     = "removed_no_bio"
	EventRemovedReviewed  = "removed_reviewed"
	EventUnfollowFailed   = "unfollow_failed"
	EventMissingRecordURI = "missing_record_uri"
)

// FollowSource yields successive pages of the viewer's follows.
// Satisfied by *atproto.Pager.
type FollowSource interface {
	Next(ctx context.Context) ([]atproto.Profile, bool, error)
}

// MutationClient is the slice of the atproto client the auditor needs.
type MutationClient interface {
	// DeleteFollow removes the follow record at the given at:// URI.
	DeleteFollow(ctx context.Context, atURI string) error
}

// Reviewer supplies the unfollow decision for accounts the automatic
// rules did not settle. Returning true means unfollow.
type Reviewer interface {
	Review(p atproto.Profile) (bool, error)
}

// ReviewerFunc adapts a function to Reviewer.
type ReviewerFunc func(atproto.Profile) (bool, error)

// Review calls f.
func (f ReviewerFunc) Review(p atproto.Profile) (bool, error) { return f(p) }

// KeepAll returns a Reviewer that keeps every undecided account,
// turning the audit into the automatic rules only.
func KeepAll() Reviewer {
	return ReviewerFunc(func(atproto.Profile) (bool, error) { return false, nil })
}

// InteractiveReviewer blocks on a terminal prompt per undecided
// account.
type InteractiveReviewer struct{}

// Review renders the account and asks the operator.
func (InteractiveReviewer) Review(p atproto.Profile) (bool, error) {
	fmt.Println(ux.ProfileCard(p.Label(), p.Handle, p.BioText()))
	return ux.Confirm(
		fmt.Sprintf("Unfollow @%s?", p.Handle),
		"the bio does not match any configured phrase",
	)
}

// Config assembles an Auditor.
type Config struct {
	Follows  FollowSource
	Client   MutationClient
	Reviewer Reviewer
	Phrases  match.PhraseSet
	Stats    *stats.Aggregator
	Log      *logging.Logger

	// AutoNoBio unfollows accounts with an empty bio without asking.
	AutoNoBio bool

	// Limit caps how many follows are examined. Zero means all.
	Limit int

	// DryRun performs all bookkeeping but issues no unfollow mutations.
	DryRun bool
}

// Summary is the operator-facing outcome of one audit.
type Summary struct {
	Examined int
	Kept     int
	Removed  int
	Failed   int
}

// Auditor holds one audit invocation's state.
type Auditor struct {
	cfg     Config
	summary Summary
}

// New validates config and builds an Auditor.
func New(cfg Config) (*Auditor, error) {
	if cfg.Follows == nil {
		return nil, errors.New("audit: follow source is required")
	}
	if cfg.Client == nil {
		return nil, errors.New("audit: mutation client is required")
	}
	if cfg.Reviewer == nil {
		return nil, errors.New("audit: reviewer is required")
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewAggregator(io.Discard)
	}
	if cfg.Log == nil {
		cfg.Log = logging.Default()
	}
	return &Auditor{cfg: cfg}, nil
}

// Run executes the audit to completion or to the examine limit. The
// returned Summary is valid even on error.
func (a *Auditor) Run(ctx context.Context) (Summary, error) {
	a.cfg.Log.Info("audit started",
		"auto_no_bio", a.cfg.AutoNoBio,
		"limit", a.cfg.Limit,
		"dry_run", a.cfg.DryRun,
	)

	for {
		batch, ok, err := a.cfg.Follows.Next(ctx)
		if err != nil {
			return a.summary, fmt.Errorf("follow page: %w", err)
		}
		if !ok {
			break
		}
		for i := range batch {
			if a.cfg.Limit > 0 && a.summary.Examined >= a.cfg.Limit {
				a.finish("limit reached")
				return a.summary, nil
			}
			if err := a.examine(ctx, batch[i]); err != nil {
				return a.summary, err
			}
		}
	}

	a.finish("follows exhausted")
	return a.summary, nil
}

func (a *Auditor) finish(reason string) {
	a.cfg.Stats.FlushFinal()
	a.cfg.Log.Info("audit finished",
		"reason", reason,
		"examined", a.summary.Examined,
		"kept", a.summary.Kept,
		"removed", a.summary.Removed,
		"failed", a.summary.Failed,
	)
}

// examine classifies one followed account and acts on the outcome.
func (a *Auditor) examine(ctx context.Context, p atproto.Profile) error {
	a.summary.Examined++
	a.cfg.Stats.Record(stats.EventNodeObserved)
	a.cfg.Stats.Record(EventFollowExamined)

	bio := p.BioText()

	if bio == "" && a.cfg.AutoNoBio {
		a.unfollow(ctx, p, EventRemovedNoBio)
		return nil
	}
	if a.cfg.Phrases.Matches(bio) {
		a.cfg.Stats.Record(EventKeptMatching)
		a.summary.Kept++
		return nil
	}

	remove, err := a.cfg.Reviewer.Review(p)
	if err != nil {
		return fmt.Errorf("reviewer: %w", err)
	}
	if !remove {
		a.cfg.Stats.Record(EventKeptDeclined)
		a.summary.Kept++
		return nil
	}
	a.unfollow(ctx, p, EventRemovedReviewed)
	return nil
}

// unfollow deletes the follow record behind the viewer relationship.
// Failures are recorded and absorbed.
func (a *Auditor) unfollow(ctx context.Context, p atproto.Profile, event string) {
	uri := p.Viewer.Following
	if uri == "" {
		a.cfg.Stats.Record(EventMissingRecordURI)
		a.summary.Failed++
		a.cfg.Log.Warn("no follow record URI on profile", "handle", p.Handle)
		return
	}

	if a.cfg.DryRun {
		a.cfg.Log.Info("dry-run: would unfollow", "handle", p.Handle, "uri", uri)
	} else {
		if err := a.cfg.Client.DeleteFollow(ctx, uri); err != nil {
			a.cfg.Stats.Record(EventUnfollowFailed)
			a.summary.Failed++
			a.cfg.Log.Warn("unfollow failed", "handle", p.Handle, "error", err)
			return
		}
	}
	a.cfg.Stats.Record(event)
	a.summary.Removed++
}
