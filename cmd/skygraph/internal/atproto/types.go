// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package atproto

import "strings"

// Profile is one account as returned by the graph listing endpoints.
//
// Profiles are constructed fresh from each API response and never
// mutated; the crawl engine classifies them and keeps only their
// primary key in its registry. Bio text can live in more than one
// place depending on the payload shape, so all candidate fields are
// declared here and reconciled by BioText.
type Profile struct {
	DID         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName,omitempty"`

	// Description is the primary profile bio field.
	Description string `json:"description,omitempty"`

	// Bio appears in some payload shapes instead of, or alongside,
	// Description.
	Bio string `json:"bio,omitempty"`

	// Nested holds an optional embedded profile object carrying its
	// own description (a further fallback location).
	Nested *NestedProfile `json:"profile,omitempty"`

	// Viewer carries the relationship between the logged-in account
	// and this profile.
	Viewer Viewer `json:"viewer,omitempty"`
}

// NestedProfile is the embedded profile object some payloads carry.
type NestedProfile struct {
	Description string `json:"description,omitempty"`
}

// Viewer describes the relation flags from the logged-in account's
// perspective.
type Viewer struct {
	// Following, when set, is the at:// URI of the viewer's follow
	// record for this account. Its presence doubles as the
	// already-connected flag, and it is the handle needed to delete
	// the edge.
	Following string `json:"following,omitempty"`

	// FollowedBy, when set, is the at:// URI of this account's follow
	// record for the viewer.
	FollowedBy string `json:"followedBy,omitempty"`

	Muted bool `json:"muted,omitempty"`
}

// PrimaryKey returns the stable identity for dedup: the DID when
// present, falling back to the mutable handle only when no DID
// exists. Empty means the record is unusable as a graph node.
func (p *Profile) PrimaryKey() string {
	if p.DID != "" {
		return p.DID
	}
	return p.Handle
}

// Actor returns the identity to pass as the actor parameter of a
// graph listing call. Same precedence as PrimaryKey.
func (p *Profile) Actor() string {
	return p.PrimaryKey()
}

// Label returns a human-facing name for display: the display name,
// falling back to the handle, then the DID.
func (p *Profile) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if p.Handle != "" {
		return p.Handle
	}
	return p.DID
}

// BioText reconciles the possible bio locations into one string for
// classification. Precedence follows the payload evolution: the bio
// field (or the nested profile description standing in for it) comes
// first, then the top-level description; non-empty parts are joined
// with a single space and the result is trimmed.
func (p *Profile) BioText() string {
	bio := strings.TrimSpace(p.Bio)
	if bio == "" && p.Nested != nil {
		bio = strings.TrimSpace(p.Nested.Description)
	}
	desc := strings.TrimSpace(p.Description)

	switch {
	case bio != "" && desc != "":
		return bio + " " + desc
	case bio != "":
		return bio
	default:
		return desc
	}
}

// FollowedByViewer reports whether the logged-in account already has
// a follow edge to this profile, as reported by the server.
func (p *Profile) FollowedByViewer() bool {
	return p.Viewer.Following != ""
}
