// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

// Package main is the entry point for the AIDJ server.
//
// AIDJ generates contextual music recommendations for a personal library:
// it prompts a language model with the listener's playback state, matches
// the suggestions against the library with a fuzzy cascade, ranks them
// against a learned taste profile, and enforces artist fatigue so batches
// stay varied.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, then config.yaml, then AIDJ_ environment
//     variables (Koanf v2)
//  2. Database: DuckDB for play history, taste profiles, compound scores,
//     and the recommendation audit log
//  3. Similarity cache: BadgerDB store of track similarity edges
//  4. Clients: LLM generation endpoint (behind a circuit breaker) and the
//     music library API
//  5. Engine: ranking, matching, fatigue, and compound scoring wired into
//     the orchestrator
//  6. HTTP server: chi router with the DJ API and Prometheus metrics
//  7. Supervisor tree: the HTTP server plus background taste-refresh and
//     compound-recalculation services under suture supervision
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (AIDJ_ prefix, e.g. AIDJ_SERVER_PORT)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (shutdown_timeout)
//   - Stops background services and closes the stores
//
// # Example Usage
//
//	export AIDJ_LLM_URL=http://localhost:8080/v1/generate
//	export AIDJ_LIBRARY_URL=http://localhost:4533
//	export AIDJ_DATABASE_PATH=/data/aidj.duckdb
//	./aidj
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/aidj/internal/api"
	"github.com/tomtom215/aidj/internal/config"
	"github.com/tomtom215/aidj/internal/database"
	"github.com/tomtom215/aidj/internal/library"
	"github.com/tomtom215/aidj/internal/llm"
	"github.com/tomtom215/aidj/internal/logging"
	"github.com/tomtom215/aidj/internal/recommend"
	"github.com/tomtom215/aidj/internal/recommend/compound"
	"github.com/tomtom215/aidj/internal/recommend/fatigue"
	"github.com/tomtom215/aidj/internal/recommend/matching"
	"github.com/tomtom215/aidj/internal/recommend/ranking"
	"github.com/tomtom215/aidj/internal/simcache"
	"github.com/tomtom215/aidj/internal/supervisor"
	"github.com/tomtom215/aidj/internal/supervisor/services"
	"github.com/tomtom215/aidj/internal/taste"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("llm_url", cfg.LLM.URL).
		Str("library_url", cfg.Library.URL).
		Str("db_path", cfg.Database.Path).
		Msg("Starting AIDJ")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	cache, err := simcache.Open(&cfg.SimCache)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open similarity cache")
	}
	defer func() {
		if err := cache.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing similarity cache")
		}
	}()

	// Circuit breakers stop hammering down collaborators; open-circuit
	// calls fail fast instead of stacking client timeouts.
	generator := llm.NewCircuitBreakerClient(llm.NewClient(&cfg.LLM))
	libClient := library.NewCircuitBreakerClient(library.NewClient(&cfg.Library))

	// A non-zero seed makes matching and fallback sampling reproducible.
	var rng *rand.Rand
	if cfg.Engine.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Engine.Seed))
	}

	tracker := fatigue.NewTracker(cfg.Fatigue.Cooldown, cfg.Fatigue.MaxPerDay, cfg.Fatigue.MaxPerSession, nil)
	scorer := compound.New(db, cache, db, &cfg.Compound, nil)

	engine := recommend.NewEngine(recommend.EngineDeps{
		Generator: generator,
		Catalog:   libClient,
		Profiles:  db,
		Ranker:    ranking.New(),
		Matcher:   matching.New(rng),
		Fatigue:   tracker,
		Booster:   scorer,
		Auditor:   db,
	}, &cfg.Engine, &cfg.LLM, nil)

	router := api.NewRouter(api.NewHandler(engine, db, cache))
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)

	tree.AddAPIService(services.NewHTTPService(server, cfg.Server.ShutdownTimeout))
	tree.AddBackgroundService(services.NewTasteService(
		taste.NewBuilder(cfg.Taste.TopKeywords), libClient, db, db, cfg.Taste.RefreshInterval))
	tree.AddBackgroundService(services.NewCompoundService(scorer, db, cfg.Compound.RecalcInterval))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Server listening")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree exited with error")
		return
	}
	logging.Info().Msg("Shutdown complete")
}
