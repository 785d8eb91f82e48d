// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package audit

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/skygraph/cmd/skygraph/internal/atproto"
	"github.com/AleutianAI/skygraph/cmd/skygraph/internal/match"
	"github.com/AleutianAI/skygraph/cmd/skygraph/internal/stats"
	"github.com/AleutianAI/skygraph/pkg/logging"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeFollows struct {
	batches [][]atproto.Profile
	idx     int
	err     error
}

func (f *fakeFollows) Next(_ context.Context) ([]atproto.Profile, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	if f.idx >= len(f.batches) {
		return nil, false, nil
	}
	b := f.batches[f.idx]
	f.idx++
	return b, true, nil
}

type fakeMutator struct {
	deleted []string
	failURI string
}

func (f *fakeMutator) DeleteFollow(_ context.Context, atURI string) error {
	if atURI == f.failURI {
		return &atproto.MutationError{Subject: atURI, Err: errors.New("boom")}
	}
	f.deleted = append(f.deleted, atURI)
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

func followed(handle, bio, recordURI string) atproto.Profile {
	p := atproto.Profile{DID: "did:plc:" + handle, Handle: handle + ".bsky.social", Description: bio}
	p.Viewer.Following = recordURI
	return p
}

func newTestAuditor(t *testing.T, cfg Config) (*Auditor, *stats.Aggregator) {
	t.Helper()
	agg := stats.NewAggregator(io.Discard)
	cfg.Stats = agg
	cfg.Log = logging.New(logging.Config{Level: logging.LevelError, Quiet: true})
	if cfg.Phrases.Len() == 0 {
		cfg.Phrases = match.NewPhraseSet([]string{"golang"})
	}
	aud, err := New(cfg)
	require.NoError(t, err)
	return aud, agg
}

// =============================================================================
// Auditor Tests
// =============================================================================

func TestAuditor_Classification(t *testing.T) {
	// One matching bio (kept silently), one empty bio (auto-pruned),
	// one non-matching bio (sent to the reviewer, who removes it).
	follows := &fakeFollows{batches: [][]atproto.Profile{{
		followed("match", "golang forever", "at://self/follow/1"),
		followed("empty", "", "at://self/follow/2"),
		followed("other", "birdwatching", "at://self/follow/3"),
	}}}
	mut := &fakeMutator{}

	var reviewedHandles []string
	aud, agg := newTestAuditor(t, Config{
		Follows: follows,
		Client:  mut,
		Reviewer: ReviewerFunc(func(p atproto.Profile) (bool, error) {
			reviewedHandles = append(reviewedHandles, p.Handle)
			return true, nil
		}),
		AutoNoBio: true,
	})

	sum, err := aud.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Examined)
	assert.Equal(t, 1, sum.Kept)
	assert.Equal(t, 2, sum.Removed)
	assert.Equal(t, 0, sum.Failed)

	// Only the undecided account reached the reviewer.
	assert.Equal(t, []string{"other.bsky.social"}, reviewedHandles)
	assert.Equal(t, []string{"at://self/follow/2", "at://self/follow/3"}, mut.deleted)

	assert.Equal(t, 1, agg.Cumulative(EventKeptMatching))
	assert.Equal(t, 1, agg.Cumulative(EventRemovedNoBio))
	assert.Equal(t, 1, agg.Cumulative(EventRemovedReviewed))
}

func TestAuditor_EmptyBioPromptedWithoutAutoPrune(t *testing.T) {
	follows := &fakeFollows{batches: [][]atproto.Profile{{
		followed("empty", "", "at://self/follow/1"),
	}}}
	mut := &fakeMutator{}

	reviewed := 0
	aud, _ := newTestAuditor(t, Config{
		Follows: follows,
		Client:  mut,
		Reviewer: ReviewerFunc(func(atproto.Profile) (bool, error) {
			reviewed++
			return false, nil
		}),
		AutoNoBio: false,
	})

	sum, err := aud.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, reviewed, "without auto-prune an empty bio goes to review")
	assert.Equal(t, 1, sum.Kept)
	assert.Empty(t, mut.deleted)
}

func TestAuditor_KeepAllIsAutomaticRulesOnly(t *testing.T) {
	follows := &fakeFollows{batches: [][]atproto.Profile{{
		followed("empty", "", "at://self/follow/1"),
		followed("other", "birdwatching", "at://self/follow/2"),
	}}}
	mut := &fakeMutator{}

	aud, _ := newTestAuditor(t, Config{
		Follows:   follows,
		Client:    mut,
		Reviewer:  KeepAll(),
		AutoNoBio: true,
	})

	sum, err := aud.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Removed, "empty bio still auto-pruned")
	assert.Equal(t, 1, sum.Kept)
	assert.Equal(t, []string{"at://self/follow/1"}, mut.deleted)
}

func TestAuditor_UnfollowFailureIsRecoverable(t *testing.T) {
	follows := &fakeFollows{batches: [][]atproto.Profile{{
		followed("bad", "", "at://self/follow/bad"),
		followed("good", "", "at://self/follow/good"),
	}}}
	mut := &fakeMutator{failURI: "at://self/follow/bad"}

	aud, agg := newTestAuditor(t, Config{
		Follows:   follows,
		Client:    mut,
		Reviewer:  KeepAll(),
		AutoNoBio: true,
	})

	sum, err := aud.Run(context.Background())
	require.NoError(t, err, "a failed mutation must not abort the audit")

	assert.Equal(t, 1, sum.Removed)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, []string{"at://self/follow/good"}, mut.deleted)
	assert.Equal(t, 1, agg.Cumulative(EventUnfollowFailed))
}

func TestAuditor_MissingRecordURI(t *testing.T) {
	follows := &fakeFollows{batches: [][]atproto.Profile{{
		followed("naked", "", ""),
	}}}
	mut := &fakeMutator{}

	aud, agg := newTestAuditor(t, Config{
		Follows:   follows,
		Client:    mut,
		Reviewer:  KeepAll(),
		AutoNoBio: true,
	})

	sum, err := aud.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 0, sum.Removed)
	assert.Empty(t, mut.deleted)
	assert.Equal(t, 1, agg.Cumulative(EventMissingRecordURI))
}

func TestAuditor_LimitStopsExamination(t *testing.T) {
	follows := &fakeFollows{batches: [][]atproto.Profile{
		{
			followed("a", "golang", "at://self/follow/1"),
			followed("b", "golang", "at://self/follow/2"),
		},
		{
			followed("c", "golang", "at://self/follow/3"),
		},
	}}
	mut := &fakeMutator{}

	aud, _ := newTestAuditor(t, Config{
		Follows:  follows,
		Client:   mut,
		Reviewer: KeepAll(),
		Limit:    2,
	})

	sum, err := aud.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Examined)
}

func TestAuditor_DryRunDoesNotMutate(t *testing.T) {
	follows := &fakeFollows{batches: [][]atproto.Profile{{
		followed("empty", "", "at://self/follow/1"),
	}}}
	mut := &fakeMutator{}

	aud, _ := newTestAuditor(t, Config{
		Follows:   follows,
		Client:    mut,
		Reviewer:  KeepAll(),
		AutoNoBio: true,
		DryRun:    true,
	})

	sum, err := aud.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Removed, "dry-run still counts the would-be unfollow")
	assert.Empty(t, mut.deleted)
}

func TestAuditor_PageFetchFailureAborts(t *testing.T) {
	follows := &fakeFollows{err: errors.New("rate limited")}

	aud, _ := newTestAuditor(t, Config{
		Follows:  follows,
		Client:   &fakeMutator{},
		Reviewer: KeepAll(),
	})

	_, err := aud.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "follow page")
}

func TestAuditor_ReviewerErrorIsFatal(t *testing.T) {
	follows := &fakeFollows{batches: [][]atproto.Profile{{
		followed("other", "birdwatching", "at://self/follow/1"),
	}}}

	aud, _ := newTestAuditor(t, Config{
		Follows: follows,
		Client:  &fakeMutator{},
		Reviewer: ReviewerFunc(func(atproto.Profile) (bool, error) {
			return false, errors.New("stdin closed")
		}),
	})

	_, err := aud.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reviewer")
}

func TestAuditor_ConfigValidation(t *testing.T) {
	if _, err := New(Config{Client: &fakeMutator{}, Reviewer: KeepAll()}); err == nil {
		t.Error("missing follow source must be rejected")
	}
	if _, err := New(Config{Follows: &fakeFollows{}, Reviewer: KeepAll()}); err == nil {
		t.Error("missing mutation client must be rejected")
	}
	if _, err := New(Config{Follows: &fakeFollows{}, Client: &fakeMutator{}}); err == nil {
		t.Error("missing reviewer must be rejected")
	}
}
