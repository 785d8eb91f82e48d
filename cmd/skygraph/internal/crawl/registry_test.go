// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package crawl

import "testing"

// =============================================================================
// Registry Tests
// =============================================================================

func TestRegistry_AdmitOncePerKey(t *testing.T) {
	r := NewRegistry()

	if !r.Admit(SetVisitedSeeds, "did:plc:alice") {
		t.Fatal("first admission must succeed")
	}
	if r.Admit(SetVisitedSeeds, "did:plc:alice") {
		t.Error("second admission of same key must fail")
	}
	if r.Size(SetVisitedSeeds) != 1 {
		t.Errorf("Size = %d, want 1", r.Size(SetVisitedSeeds))
	}
}

func TestRegistry_SetsAreIndependent(t *testing.T) {
	r := NewRegistry()

	r.Admit(SetVisitedSeeds, "did:plc:alice")

	if r.Contains(SetSeenCandidates, "did:plc:alice") {
		t.Error("admission into one set must not leak into another")
	}
	if !r.Admit(SetSeenCandidates, "did:plc:alice") {
		t.Error("same key must be admissible into a different set")
	}
}

func TestRegistry_EmptyKeyNeverAdmitted(t *testing.T) {
	r := NewRegistry()

	if r.Admit(SetVisitedSeeds, "") {
		t.Error("empty key must never be admitted")
	}
	if r.Contains(SetVisitedSeeds, "") {
		t.Error("empty key must never be contained")
	}
	if r.Size(SetVisitedSeeds) != 0 {
		t.Errorf("Size = %d, want 0", r.Size(SetVisitedSeeds))
	}
}

func TestRegistry_ContainsDoesNotAdmit(t *testing.T) {
	r := NewRegistry()

	if r.Contains(SetFollowedSession, "did:plc:bob") {
		t.Fatal("unknown key reported as contained")
	}
	// The lookup above must not have created membership.
	if !r.Admit(SetFollowedSession, "did:plc:bob") {
		t.Error("Contains must not admit")
	}
}

func TestRegistry_UnknownSet(t *testing.T) {
	r := NewRegistry()

	if r.Contains("no_such_set", "k") {
		t.Error("unknown set must be empty")
	}
	if r.Size("no_such_set") != 0 {
		t.Error("unknown set must have size 0")
	}
}
