// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/skygraph/cmd/skygraph/config"
	"github.com/AleutianAI/skygraph/cmd/skygraph/internal/atproto"
	"github.com/AleutianAI/skygraph/cmd/skygraph/internal/match"
	"github.com/AleutianAI/skygraph/pkg/logging"
)

// =============================================================================
// SHARED COMMAND SETUP
// =============================================================================

// establishSession builds the run logger and a logged-in XRPC client
// from config plus CLI overrides. Every log line of the run carries a
// fresh run_id so interleaved runs can be separated afterwards.
func establishSession(ctx context.Context, service string) (*atproto.Client, *logging.Logger, error) {
	cfg := config.Global

	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	logger := logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.Dir,
		Service: service,
		JSON:    jsonLogs || cfg.Logging.JSON,
	})
	runLogger := logger.With("run_id", uuid.NewString())

	creds, err := config.LoadCredentials(resolve(credsPath, cfg.Crawl.CredsPath))
	if err != nil {
		logger.Close()
		return nil, nil, err
	}

	client := atproto.NewClient(
		resolve(serviceURL, cfg.Service.URL),
		atproto.WithLogger(runLogger),
		atproto.WithRateLimit(cfg.Service.RequestsPerSecond, cfg.Service.Burst),
	)
	if err := client.CreateSession(ctx, creds.Handle, creds.Password); err != nil {
		logger.Close()
		return nil, nil, fmt.Errorf("login as %s: %w", creds.Handle, err)
	}
	runLogger.Info("session created", "handle", client.Handle(), "did", client.DID())
	return client, runLogger, nil
}

// loadPhraseSet reads the configured phrase file.
func loadPhraseSet() (match.PhraseSet, error) {
	path := resolve(phrasesPath, config.Global.Crawl.PhrasesPath)
	set, err := match.LoadPhrases(path)
	if err != nil {
		return match.PhraseSet{}, fmt.Errorf("load phrases from %s: %w", path, err)
	}
	return set, nil
}

// serveMetrics starts the prometheus listener when --metrics-addr is
// set. Listener errors are logged, not fatal; metrics are a
// convenience, not a dependency.
func serveMetrics(log *logging.Logger) {
	if metricsAddr == "" {
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		log.Info("metrics listener started", "addr", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Warn("metrics listener stopped", "error", err)
		}
	}()
}
