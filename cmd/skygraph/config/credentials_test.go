// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCredsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write creds file: %v", err)
	}
	return path
}

func TestLoadCredentials(t *testing.T) {
	path := writeCredsFile(t, "alice.bsky.social\nxxxx-yyyy-zzzz-wwww\n")

	creds, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials() failed: %v", err)
	}
	if creds.Handle != "alice.bsky.social" {
		t.Errorf("Handle = %q", creds.Handle)
	}
	if creds.Password != "xxxx-yyyy-zzzz-wwww" {
		t.Errorf("Password = %q", creds.Password)
	}
}

func TestLoadCredentials_TrimsWhitespace(t *testing.T) {
	path := writeCredsFile(t, "  alice.bsky.social \n\t secret \n")

	creds, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials() failed: %v", err)
	}
	if creds.Handle != "alice.bsky.social" || creds.Password != "secret" {
		t.Errorf("got %+v", creds)
	}
}

func TestLoadCredentials_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"handle only", "alice.bsky.social\n"},
		{"blank password", "alice.bsky.social\n\n"},
		{"blank handle", "\nsecret\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCredsFile(t, tt.content)
			if _, err := LoadCredentials(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadCredentials_MissingFile(t *testing.T) {
	if _, err := LoadCredentials(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing file")
	}
}
