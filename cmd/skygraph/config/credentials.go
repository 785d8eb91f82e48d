// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/AleutianAI/skygraph/pkg/validation"
)

// Credentials holds the account identity used to create a session.
// Use an app password here, never the account password.
type Credentials struct {
	Handle   string
	Password string
}

// LoadCredentials reads a two-line credentials file: handle on the
// first line, app password on the second. Both lines must be
// non-empty; surrounding whitespace is trimmed.
func LoadCredentials(path string) (Credentials, error) {
	f, err := os.Open(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("open credentials file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() && len(lines) < 2 {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return Credentials{}, fmt.Errorf("read credentials file: %w", err)
	}

	if len(lines) < 2 || lines[0] == "" || lines[1] == "" {
		return Credentials{}, fmt.Errorf("credentials file %s must contain a handle line and a password line", path)
	}
	if err := validation.ValidateIdentifier(lines[0]); err != nil {
		return Credentials{}, fmt.Errorf("credentials file %s: %w", path, err)
	}
	return Credentials{Handle: lines[0], Password: lines[1]}, nil
}
