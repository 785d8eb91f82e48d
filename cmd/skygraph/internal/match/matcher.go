// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package match classifies account bios against an operator-supplied
// phrase set.
//
// Matching is a case-insensitive substring test of a full, possibly
// multi-word phrase against the normalized bio. It is deliberately not
// a tokenized or word-boundary test: the phrase "biology" matches the
// bio "xenobiology research". Normalization lower-cases and collapses
// internal whitespace runs, and is applied to phrases once at load
// time and to bios at every check. The matcher is a pure function with
// no hidden state.
package match

import (
	"fmt"
	"os"
	"strings"
)

// Normalize lower-cases s and collapses every internal whitespace run
// to a single space. Leading and trailing whitespace is dropped.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// PhraseSet holds normalized phrases for bio classification.
type PhraseSet struct {
	phrases []string
}

// NewPhraseSet builds a PhraseSet, normalizing each phrase. Phrases
// that normalize to the empty string are dropped.
func NewPhraseSet(phrases []string) PhraseSet {
	normalized := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if n := Normalize(p); n != "" {
			normalized = append(normalized, n)
		}
	}
	return PhraseSet{phrases: normalized}
}

// LoadPhrases reads a newline-separated phrase file. Blank lines are
// skipped; everything else is normalized into the set.
func LoadPhrases(path string) (PhraseSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PhraseSet{}, fmt.Errorf("read phrase file: %w", err)
	}
	return NewPhraseSet(strings.Split(string(data), "\n")), nil
}

// Matches reports whether any phrase occurs as a substring of the
// normalized text. Empty text or an empty phrase set is always false;
// there is no vacuous match.
func (s PhraseSet) Matches(text string) bool {
	if len(s.phrases) == 0 {
		return false
	}
	normalized := Normalize(text)
	if normalized == "" {
		return false
	}
	for _, p := range s.phrases {
		if strings.Contains(normalized, p) {
			return true
		}
	}
	return false
}

// Len returns the number of phrases in the set.
func (s PhraseSet) Len() int {
	return len(s.phrases)
}
