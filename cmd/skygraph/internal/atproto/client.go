// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package atproto is a minimal XRPC client for the AT Protocol
// surface skygraph needs: session creation, the two graph listing
// endpoints, and follow record create/delete.
//
// The client holds a single authenticated session token, read-only
// after login and never refreshed mid-run. Every call blocks on a
// shared rate limiter before touching the network; there is no retry
// and no parallel fan-out. Errors follow a fixed taxonomy:
// TransportError and ProtocolError are fatal to the run, while
// MutationError is recoverable per candidate (see errors.go).
package atproto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/AleutianAI/skygraph/pkg/logging"
	"github.com/AleutianAI/skygraph/pkg/validation"
)

const (
	// followCollection is the record collection holding follow edges.
	followCollection = "app.bsky.graph.follow"

	defaultTimeout = 30 * time.Second

	// Defaults sized well under the public PDS rate limits.
	defaultRequestsPerSec = 8
	defaultBurst          = 8
)

// GraphEndpoint selects which edge direction a listing call walks.
type GraphEndpoint string

const (
	// EndpointFollows lists outgoing edges (who the actor follows).
	EndpointFollows GraphEndpoint = "app.bsky.graph.getFollows"

	// EndpointFollowers lists incoming edges (who follows the actor).
	EndpointFollowers GraphEndpoint = "app.bsky.graph.getFollowers"
)

// HTTPClient allows injecting mock HTTP clients for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks XRPC to one personal data server.
type Client struct {
	service   string
	http      HTTPClient
	limiter   *rate.Limiter
	log       *logging.Logger
	accessJWT string
	did       string
	handle    string
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithHTTPClient substitutes the transport, typically for tests.
func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger substitutes the package logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithRateLimit overrides the default request rate limiter.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// NewClient creates a Client for the given PDS base URL, e.g.
// "https://bsky.social".
func NewClient(service string, opts ...Option) *Client {
	c := &Client{
		service: strings.TrimRight(service, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(defaultRequestsPerSec), defaultBurst),
		log:     logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// Session
// =============================================================================

type sessionResponse struct {
	AccessJwt string `json:"accessJwt"`
	DID       string `json:"did"`
	Handle    string `json:"handle"`
	DIDDoc    struct {
		ID string `json:"id"`
	} `json:"didDoc"`
}

// CreateSession logs in with a handle (or DID) and app password and
// stores the access token on the client. The token is read-only after
// this call; a long crawl that outlives it surfaces a hard error.
func (c *Client) CreateSession(ctx context.Context, identifier, password string) error {
	payload := map[string]string{
		"identifier": identifier,
		"password":   password,
	}

	var out sessionResponse
	if err := c.post(ctx, "com.atproto.server.createSession", payload, &out); err != nil {
		return err
	}

	did := out.DID
	if did == "" {
		did = out.DIDDoc.ID
	}
	if out.AccessJwt == "" || did == "" {
		return ErrIncompleteSession
	}

	c.accessJWT = out.AccessJwt
	c.did = did
	c.handle = out.Handle
	if c.handle == "" {
		c.handle = identifier
	}

	c.log.Info("session created", "did", c.did, "handle", c.handle, "token_present", true)
	return nil
}

// DID returns the logged-in account's DID, empty before login.
func (c *Client) DID() string { return c.did }

// Handle returns the logged-in account's confirmed handle.
func (c *Client) Handle() string { return c.handle }

// =============================================================================
// Graph listing
// =============================================================================

type graphListResponse struct {
	Follows   []Profile `json:"follows"`
	Followers []Profile `json:"followers"`
	Cursor    string    `json:"cursor"`
}

// listGraphPage requests exactly one page of a graph listing. An
// empty cursor starts from the beginning. Returns the batch and the
// server's continuation cursor (empty when the server offered none).
func (c *Client) listGraphPage(ctx context.Context, endpoint GraphEndpoint, actor string, limit int, cursor string) ([]Profile, string, error) {
	if limit < 1 {
		limit = 1
	}

	query := url.Values{}
	query.Set("actor", actor)
	query.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	var out graphListResponse
	if err := c.get(ctx, string(endpoint), query, &out); err != nil {
		return nil, "", err
	}

	batch := out.Follows
	if endpoint == EndpointFollowers {
		batch = out.Followers
	}
	return batch, out.Cursor, nil
}

// NeighborPage fetches a single page of the actor's outgoing edges.
// Deliberately one page only: per-seed expansion cost stays bounded
// no matter how connected the neighbor is.
func (c *Client) NeighborPage(ctx context.Context, actor string, limit int) ([]Profile, error) {
	profiles, _, err := c.listGraphPage(ctx, EndpointFollows, actor, limit, "")
	return profiles, err
}

// =============================================================================
// Edge mutations
// =============================================================================

type followRecord struct {
	Type      string `json:"$type"`
	Subject   string `json:"subject"`
	CreatedAt string `json:"createdAt"`
}

type createRecordRequest struct {
	Repo       string       `json:"repo"`
	Collection string       `json:"collection"`
	Record     followRecord `json:"record"`
}

type createRecordResponse struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// Follow creates a follow edge from the logged-in account to the
// subject DID and returns the new record's at:// URI. Failures come
// back as *MutationError and are recoverable per candidate.
func (c *Client) Follow(ctx context.Context, subjectDID string) (string, error) {
	if c.accessJWT == "" {
		return "", ErrMissingSession
	}
	// Subjects come from API responses; a profile that only carried a
	// handle must not reach createRecord.
	if err := validation.ValidateDID(subjectDID); err != nil {
		return "", &MutationError{Subject: subjectDID, Err: err}
	}

	payload := createRecordRequest{
		Repo:       c.did,
		Collection: followCollection,
		Record: followRecord{
			Type:      followCollection,
			Subject:   subjectDID,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}

	var out createRecordResponse
	if err := c.post(ctx, "com.atproto.repo.createRecord", payload, &out); err != nil {
		return "", &MutationError{Subject: subjectDID, Err: err}
	}
	return out.URI, nil
}

type deleteRecordRequest struct {
	Repo       string `json:"repo"`
	Collection string `json:"collection"`
	RKey       string `json:"rkey"`
}

// DeleteFollow removes the follow edge stored at the given at:// URI.
// A URI that does not parse returns ErrMalformedRecordURI (fatal for
// this one delete, recoverable for the run); a failed call returns
// *MutationError.
func (c *Client) DeleteFollow(ctx context.Context, atURI string) error {
	if c.accessJWT == "" {
		return ErrMissingSession
	}

	collection, rkey, err := SplitRecordURI(atURI)
	if err != nil {
		return err
	}

	payload := deleteRecordRequest{
		Repo:       c.did,
		Collection: collection,
		RKey:       rkey,
	}
	if err := c.post(ctx, "com.atproto.repo.deleteRecord", payload, nil); err != nil {
		return &MutationError{Subject: atURI, Err: err}
	}
	return nil
}

// SplitRecordURI extracts the collection and record key from a record
// URI like at://did:plc:me/app.bsky.graph.follow/3laj123abc.
func SplitRecordURI(uri string) (collection, rkey string, err error) {
	if !strings.HasPrefix(uri, "at://") {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedRecordURI, uri)
	}
	parts := strings.Split(uri, "/")
	// at: / "" / authority / collection / rkey
	if len(parts) < 5 || parts[3] == "" || parts[4] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedRecordURI, uri)
	}
	return parts[3], parts[4], nil
}

// =============================================================================
// XRPC plumbing
// =============================================================================

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, query, nil, out)
}

func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, nil, body, out)
}

// do performs one XRPC call. The PDS reports failures as JSON bodies
// carrying "error" and "message" fields, sometimes with a 200 status,
// so the error shape is decoded before the caller's payload.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}

	u := c.service + "/xrpc/" + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Endpoint: endpoint, Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessJWT != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessJWT)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}

	if len(data) > 0 {
		var envelope struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return &ProtocolError{
				Endpoint: endpoint,
				Message:  fmt.Sprintf("non-JSON response: %.300s", data),
			}
		}
		if envelope.Error != "" {
			return &ProtocolError{Endpoint: endpoint, Code: envelope.Error, Message: envelope.Message}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ProtocolError{
			Endpoint: endpoint,
			Code:     http.StatusText(resp.StatusCode),
			Message:  fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return &ProtocolError{
				Endpoint: endpoint,
				Message:  fmt.Sprintf("decoding response: %v", err),
			}
		}
	}
	return nil
}
