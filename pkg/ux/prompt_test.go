// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"bytes"
	"strings"
	"testing"
)

// =============================================================================
// ConfirmReader Tests
// =============================================================================

func TestConfirmReader_Accept(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"lowercase y", "y\n", true},
		{"yes word", "yes\n", true},
		{"uppercase Y", "Y\n", true},
		{"padded yes", "  yes  \n", true},
		{"empty line defaults to no", "\n", false},
		{"explicit no", "n\n", false},
		{"garbage", "maybe\n", false},
		{"eof without newline", "y", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := ConfirmReader(strings.NewReader(tt.input), &out, "Follow this account?")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ConfirmReader(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "[y/N]") {
				t.Errorf("prompt missing default marker, got %q", out.String())
			}
		})
	}
}

// =============================================================================
// ProfileCard Tests
// =============================================================================

func TestProfileCard_EmptyBio(t *testing.T) {
	card := ProfileCard("Ada", "ada.bsky.social", "")
	if !strings.Contains(card, "(no description)") {
		t.Errorf("empty bio should render placeholder, got %q", card)
	}
}

func TestProfileCard_WithBio(t *testing.T) {
	card := ProfileCard("Ada", "ada.bsky.social", "compilers and birds")
	if !strings.Contains(card, "compilers and birds") {
		t.Errorf("card missing bio text, got %q", card)
	}
	if !strings.Contains(card, "ada.bsky.social") {
		t.Errorf("card missing handle, got %q", card)
	}
}
