// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package atproto

import (
	"context"
)

// defaultMaxPages caps a pager that was constructed without an
// explicit ceiling.
const defaultMaxPages = 100

// Pager lazily walks one graph listing, one bounded batch at a time.
//
// A Pager terminates on any of three conditions, all equally valid
// "exhausted" outcomes and indistinguishable to the consumer except
// via debug logging:
//
//   - the server returned an empty batch
//   - the server returned no cursor, or the same cursor as the
//     previous page (stall guard against a looping backend)
//   - the page ceiling was reached
//
// Transport and protocol errors are not retried; they abort the
// sequence. A Pager is not restartable; construct a new one for a
// fresh cursor state.
type Pager struct {
	client   *Client
	endpoint GraphEndpoint
	actor    string
	pageSize int
	maxPages int

	cursor string
	pages  int
	done   bool
}

// NewPager creates a pager over the actor's listing at the given
// endpoint. pageSize below 1 is coerced up to 1; maxPages below 1
// falls back to a defensive default.
func (c *Client) NewPager(endpoint GraphEndpoint, actor string, pageSize, maxPages int) *Pager {
	if pageSize < 1 {
		pageSize = 1
	}
	if maxPages < 1 {
		maxPages = defaultMaxPages
	}
	return &Pager{
		client:   c,
		endpoint: endpoint,
		actor:    actor,
		pageSize: pageSize,
		maxPages: maxPages,
	}
}

// Next returns the next non-empty batch. ok is false once the listing
// is exhausted; after that every call returns (nil, false, nil). An
// error aborts the sequence permanently.
func (p *Pager) Next(ctx context.Context) ([]Profile, bool, error) {
	if p.done {
		return nil, false, nil
	}
	if p.pages >= p.maxPages {
		p.client.log.Debug("pagination stopped at page ceiling",
			"endpoint", string(p.endpoint), "actor", p.actor, "pages", p.pages)
		p.done = true
		return nil, false, nil
	}

	batch, next, err := p.client.listGraphPage(ctx, p.endpoint, p.actor, p.pageSize, p.cursor)
	if err != nil {
		p.done = true
		return nil, false, err
	}
	p.pages++

	if len(batch) == 0 {
		p.client.log.Debug("pagination exhausted on empty batch",
			"endpoint", string(p.endpoint), "actor", p.actor, "pages", p.pages)
		p.done = true
		return nil, false, nil
	}

	// A missing cursor means the listing ended; an unchanged cursor
	// means the backend is not advancing. Either way this batch is the
	// last one yielded.
	if next == "" || next == p.cursor {
		p.client.log.Debug("pagination stopped on cursor",
			"endpoint", string(p.endpoint), "actor", p.actor,
			"pages", p.pages, "stalled", next != "")
		p.done = true
		return batch, true, nil
	}

	p.cursor = next
	return batch, true, nil
}

// Pages returns how many pages have been fetched so far.
func (p *Pager) Pages() int {
	return p.pages
}
