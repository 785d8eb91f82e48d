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
)

type SkygraphConfig struct {
	// Service: the XRPC endpoint and client-side rate limiting
	Service ServiceConfig `yaml:"service"`

	// Crawl: pagination and depth defaults, overridable by flags
	Crawl CrawlConfig `yaml:"crawl"`

	// Logging: optional file logging alongside stderr
	Logging LoggingConfig `yaml:"logging"`
}

type ServiceConfig struct {
	URL               string  `yaml:"url"`                 // e.g. https://bsky.social
	RequestsPerSecond float64 `yaml:"requests_per_second"` // client-side ceiling
	Burst             int     `yaml:"burst"`
}

type CrawlConfig struct {
	PageSize    int    `yaml:"page_size"`    // profiles per graph page
	MaxPages    int    `yaml:"max_pages"`    // pagination ceiling per actor
	MaxDepth    int    `yaml:"max_depth"`    // frontier depth ceiling
	PhrasesPath string `yaml:"phrases_path"` // newline-separated phrase file
	CredsPath   string `yaml:"creds_path"`   // two-line handle/password file
}

type LoggingConfig struct {
	Dir  string `yaml:"dir"`  // empty disables file logging
	JSON bool   `yaml:"json"` // JSON on stderr instead of text
}

func DefaultConfig() SkygraphConfig {
	dotDir := ".skygraph"
	if home, err := os.UserHomeDir(); err == nil {
		dotDir = filepath.Join(home, ".skygraph")
	}
	return SkygraphConfig{
		Service: ServiceConfig{
			URL:               "https://bsky.social",
			RequestsPerSecond: 8,
			Burst:             8,
		},
		Crawl: CrawlConfig{
			PageSize:    25,
			MaxPages:    100,
			MaxDepth:    2,
			PhrasesPath: filepath.Join(dotDir, "phrases.txt"),
			CredsPath:   filepath.Join(dotDir, "credentials"),
		},
		Logging: LoggingConfig{
			Dir:  filepath.Join(dotDir, "logs"),
			JSON: false,
		},
	}
}
