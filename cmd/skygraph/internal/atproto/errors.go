// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package atproto

import (
	"errors"
	"fmt"
)

// Sentinel errors for the atproto package.
var (
	// ErrMalformedRecordURI indicates an at:// handle that does not
	// carry the expected {repo}/{collection}/{rkey} structure. Fatal
	// only for the single delete attempt that hit it.
	ErrMalformedRecordURI = errors.New("malformed record uri")

	// ErrMissingSession indicates a call that requires authentication
	// before CreateSession succeeded.
	ErrMissingSession = errors.New("missing session")

	// ErrIncompleteSession indicates a login response without an
	// access JWT or DID.
	ErrIncompleteSession = errors.New("login did not return accessJwt and did")
)

// TransportError wraps a network or process failure underneath an
// XRPC call. Transport errors are fatal: the fetch path propagates
// them to the caller and the whole run stops.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError wraps a malformed or error-flagged response body.
// The PDS reports failures as JSON objects carrying "error" and
// "message" fields; a non-JSON body on a nominally successful call is
// reported the same way. Fatal at the fetcher level.
type ProtocolError struct {
	Endpoint string
	Code     string
	Message  string
}

func (e *ProtocolError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("protocol: %s: %s", e.Endpoint, e.Message)
	}
	return fmt.Sprintf("protocol: %s: %s: %s", e.Endpoint, e.Code, e.Message)
}

// MutationError wraps a failed edge create or delete. Recoverable:
// the crawl records the failure for that candidate and continues.
type MutationError struct {
	Subject string
	Err     error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("mutation failed for %s: %v", e.Subject, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }
