// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package crawl

// Registry set names. The sets have disjoint purposes: a key present
// in one says nothing about the others.
const (
	// SetVisitedSeeds holds nodes already taken up as frontier roots.
	SetVisitedSeeds = "visited_seeds"

	// SetSeenCandidates holds nodes ever shown as follow suggestions.
	SetSeenCandidates = "seen_candidates"

	// SetFollowedSession holds nodes followed during this run, so a
	// neighbor the server still reports as unconnected is not offered
	// twice.
	SetFollowedSession = "followed_session"
)

// Registry tracks which graph-node identities have already been
// produced, keyed by primary key. Admission is final: there is no
// removal, and the registry lives for one crawl invocation only.
//
// The explicit registry is what makes the cyclic, self-referential
// follow graph safe to walk: revisits dead-end here instead of
// recursing.
type Registry struct {
	sets map[string]map[string]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sets: make(map[string]map[string]struct{})}
}

// Admit records the key in the named set and reports whether this was
// its first admission. Every later call for the same key+set pair
// returns false. An empty key is never admitted.
func (r *Registry) Admit(set, key string) bool {
	if key == "" {
		return false
	}
	members, ok := r.sets[set]
	if !ok {
		members = make(map[string]struct{})
		r.sets[set] = members
	}
	if _, seen := members[key]; seen {
		return false
	}
	members[key] = struct{}{}
	return true
}

// Contains reports membership without admitting.
func (r *Registry) Contains(set, key string) bool {
	_, seen := r.sets[set][key]
	return seen
}

// Size returns how many keys the named set holds.
func (r *Registry) Size(set string) int {
	return len(r.sets[set])
}
