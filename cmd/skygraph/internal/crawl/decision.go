// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package crawl

import (
	"fmt"

	"github.com/AleutianAI/skygraph/cmd/skygraph/internal/atproto"
	"github.com/AleutianAI/skygraph/pkg/ux"
)

// Candidate is a neighbor node proposed for a new follow edge,
// together with the frontier depth it would enter at if accepted.
type Candidate struct {
	Profile atproto.Profile
	Depth   int
}

// DecisionProvider supplies the synchronous accept/decline signal for
// each candidate. The interactive prompt and the scripted providers
// below all satisfy it, which keeps the engine testable without a
// terminal.
type DecisionProvider interface {
	Decide(c Candidate) (bool, error)
}

// DecisionFunc adapts a function to DecisionProvider.
type DecisionFunc func(Candidate) (bool, error)

// Decide calls f.
func (f DecisionFunc) Decide(c Candidate) (bool, error) { return f(c) }

// AcceptAll returns a provider that accepts every candidate, used by
// the --yes flag and by dry runs that want full bookkeeping.
func AcceptAll() DecisionProvider {
	return DecisionFunc(func(Candidate) (bool, error) { return true, nil })
}

// DeclineAll returns a provider that declines every candidate.
func DeclineAll() DecisionProvider {
	return DecisionFunc(func(Candidate) (bool, error) { return false, nil })
}

// InteractiveDecider blocks on a terminal prompt per candidate. The
// profile card is printed above the prompt so the operator sees the
// bio they are deciding on.
type InteractiveDecider struct{}

// Decide renders the candidate and asks the operator.
func (InteractiveDecider) Decide(c Candidate) (bool, error) {
	fmt.Println(ux.ProfileCard(c.Profile.Label(), c.Profile.Handle, c.Profile.BioText()))
	return ux.Confirm(
		fmt.Sprintf("Follow @%s?", c.Profile.Handle),
		fmt.Sprintf("would join the frontier at depth %d", c.Depth),
	)
}
