// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aidj/internal/logging"
	"github.com/tomtom215/aidj/internal/recommend"
)

// StatusProbe reports engine health for the status endpoint.
type StatusProbe interface {
	Ping(ctx context.Context) error
}

// EdgeCounter counts similarity-cache entries.
type EdgeCounter interface {
	Count(ctx context.Context) (int, error)
}

// Handler serves the DJ endpoints.
type Handler struct {
	engine *recommend.Engine
	probe  StatusProbe
	edges  EdgeCounter
}

// NewHandler creates the handler. probe and edges may be nil; the status
// endpoint then reports what it can.
func NewHandler(engine *recommend.Engine, probe StatusProbe, edges EdgeCounter) *Handler {
	return &Handler{engine: engine, probe: probe, edges: edges}
}

// Recommendations handles POST /api/v1/dj/recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	djCtx := recommend.DJContext{
		UserID:           req.UserID,
		NowPlaying:       req.NowPlaying,
		RecentQueue:      req.RecentQueue,
		SessionDuration:  req.SessionDuration(),
		TracksPlayed:     req.TracksPlayed,
		ExcludedTrackIDs: req.ExcludedTrackIDs,
		ExcludedArtists:  req.ExcludedArtists,
	}

	result, err := h.engine.GetContextualRecommendations(r.Context(), djCtx, recommend.Options{
		BatchSize:     req.BatchSize,
		CompoundBoost: req.CompoundBoost,
	})
	if err != nil {
		status, code := engineErrorStatus(err)
		logging.Warn().Err(err).Str("user_id", req.UserID).Msg("recommendation request failed")
		respondError(w, status, code, err.Error())
		return
	}

	queue := h.engine.TagForQueue(result.Tracks, req.UserID, result.Strategies)

	respondJSON(w, http.StatusOK, &RecommendResponse{
		Tracks:     result.Tracks,
		Queue:      queue,
		Shortfall:  result.Shortfall,
		Partial:    result.Partial(),
		Strategies: result.Strategies,
	})
}

// engineErrorStatus maps the failure taxonomy onto HTTP.
func engineErrorStatus(err error) (int, string) {
	var engErr *recommend.EngineError
	if !errors.As(err, &engErr) {
		return http.StatusInternalServerError, "INTERNAL"
	}

	switch engErr.Reason {
	case recommend.FailureTimeout:
		return http.StatusGatewayTimeout, string(engErr.Reason)
	case recommend.FailureNoRecommendations, recommend.FailureNoLibraryMatch:
		return http.StatusBadGateway, string(engErr.Reason)
	default:
		return http.StatusInternalServerError, string(engErr.Reason)
	}
}

// Status handles GET /api/v1/dj/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{Healthy: true}

	if h.probe != nil {
		if err := h.probe.Ping(r.Context()); err != nil {
			resp.Healthy = false
		}
	}
	if h.edges != nil {
		if n, err := h.edges.Count(r.Context()); err == nil {
			resp.SimilarityEdges = n
		}
	}

	status := http.StatusOK
	if !resp.Healthy {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, &resp)
}

// HealthLive handles GET /healthz: process liveness only.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthReady handles GET /readyz: storage reachability.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.probe != nil {
		if err := h.probe.Ping(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "NOT_READY", "database unreachable")
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
