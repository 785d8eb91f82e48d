// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation for identities that end
// up inside XRPC requests.
//
// Handles and DIDs come from user-editable files and from API
// responses; validating them before they are interpolated into record
// bodies keeps malformed identities from reaching the server as
// garbage mutations.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// handlePattern matches AT handles: dot-separated labels of lowercase
// alphanumerics and hyphens, at least two labels, no label starting or
// ending with a hyphen. e.g. "alice.bsky.social"
var handlePattern = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]([a-z0-9-]{0,61}[a-z0-9])?$`)

// didPattern matches DIDs: "did:" + lowercase method + ":" + a
// method-specific identifier. e.g. "did:plc:z72i7hdynmk6r22z27h6tvur"
var didPattern = regexp.MustCompile(`^did:[a-z]+:[a-zA-Z0-9._:%-]*[a-zA-Z0-9._-]$`)

const maxHandleLength = 253

// ValidateHandle validates an AT handle.
//
// Valid handles:
//   - at least two dot-separated labels
//   - lowercase letters, digits, hyphens
//   - at most 253 characters total
//
// Returns an error if the handle is invalid.
func ValidateHandle(handle string) error {
	if handle == "" {
		return fmt.Errorf("handle cannot be empty")
	}
	if len(handle) > maxHandleLength {
		return fmt.Errorf("handle exceeds %d characters", maxHandleLength)
	}
	if !handlePattern.MatchString(handle) {
		return fmt.Errorf("invalid handle format: %q (must be dot-separated lowercase labels like name.bsky.social)", handle)
	}
	return nil
}

// ValidateDID validates a DID such as "did:plc:..." or "did:web:...".
// Returns an error if the DID is invalid.
func ValidateDID(did string) error {
	if did == "" {
		return fmt.Errorf("did cannot be empty")
	}
	if !didPattern.MatchString(did) {
		return fmt.Errorf("invalid did format: %q", did)
	}
	return nil
}

// ValidateIdentifier validates a login identifier, which may be a
// handle or an email address.
func ValidateIdentifier(identifier string) error {
	if identifier == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	// Emails are passed through to the server mostly unchecked; the
	// handle grammar does not apply to them.
	if strings.Contains(identifier, "@") {
		if strings.Count(identifier, "@") != 1 || strings.HasPrefix(identifier, "@") || strings.HasSuffix(identifier, "@") {
			return fmt.Errorf("invalid email identifier: %q", identifier)
		}
		return nil
	}
	return ValidateHandle(identifier)
}
