// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Interactive confirmation prompts used by the crawl and audit
// decision steps. The prompt blocks the calling flow until the
// operator answers; callers that need non-interactive behavior
// substitute a scripted decision provider instead.

package ux

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
)

// Confirm asks the operator a yes/no question with a rich terminal
// form. The default answer is "No" so an accidental Enter never
// triggers a mutation.
//
// Returns the operator's choice, or an error if the terminal is not
// interactive or the form was aborted (Ctrl+C).
func Confirm(title, description string) (bool, error) {
	var accepted bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&accepted).
		Run()
	if err != nil {
		return false, fmt.Errorf("confirm prompt: %w", err)
	}
	return accepted, nil
}

// ConfirmReader is a plain line-oriented fallback for environments
// without a usable TTY (piped stdin, CI). It prints the question to w
// and reads a single line from r; only "y" or "yes" count as accept.
func ConfirmReader(r io.Reader, w io.Writer, question string) (bool, error) {
	fmt.Fprintf(w, "%s [y/N]: ", question)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read answer: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
