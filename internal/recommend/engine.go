// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package recommend

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/aidj/internal/config"
	"github.com/tomtom215/aidj/internal/llm"
	"github.com/tomtom215/aidj/internal/logging"
	"github.com/tomtom215/aidj/internal/metrics"
	"github.com/tomtom215/aidj/internal/models"
	"github.com/tomtom215/aidj/internal/recommend/matching"
	"github.com/tomtom215/aidj/internal/textmatch"
)

// degradedScore is assigned to suggestions when ranking is unavailable.
const degradedScore = 0.5

// relevanceBonus lifts fallback candidates sharing a token with the
// current song above purely random picks.
const relevanceBonus = 1.0

// blockedArtists are never recommended regardless of profile or model
// output.
var blockedArtists = map[string]struct{}{
	"unknown artist":  {},
	"various artists": {},
}

// Engine orchestrates one recommendation request end to end. Safe for
// concurrent use across users; overlapping requests for the same user
// may mildly over-count fatigue, self-correcting within one cooldown.
type Engine struct {
	generator llm.Generator
	catalog   Catalog
	profiles  ProfileSource
	ranker    Ranker
	matcher   *matching.Matcher
	fatigue   FatigueTracker
	booster   Booster
	auditor   Auditor

	engineCfg *config.EngineConfig
	llmCfg    *config.LLMConfig

	rngMu sync.Mutex
	rng   *rand.Rand
	now   func() time.Time
}

// EngineDeps collects the engine's collaborators.
type EngineDeps struct {
	Generator llm.Generator
	Catalog   Catalog
	Profiles  ProfileSource
	Ranker    Ranker
	Matcher   *matching.Matcher
	Fatigue   FatigueTracker
	Booster   Booster
	Auditor   Auditor
}

// NewEngine creates the orchestrator. The fallback random source is
// seeded from configuration so batches are reproducible under test.
func NewEngine(deps EngineDeps, engineCfg *config.EngineConfig, llmCfg *config.LLMConfig, clock func() time.Time) *Engine {
	if clock == nil {
		clock = time.Now
	}

	seed := engineCfg.Seed
	if seed == 0 {
		seed = 1
	}

	return &Engine{
		generator: deps.Generator,
		catalog:   deps.Catalog,
		profiles:  deps.Profiles,
		ranker:    deps.Ranker,
		matcher:   deps.Matcher,
		fatigue:   deps.Fatigue,
		booster:   deps.Booster,
		auditor:   deps.Auditor,
		engineCfg: engineCfg,
		llmCfg:    llmCfg,
		rng:       rand.New(rand.NewSource(seed)),
		now:       clock,
	}
}

// GetContextualRecommendations runs the full pipeline and returns the
// assembled batch. A *EngineError is returned only on total failure;
// shortfall is reported on the Result.
func (e *Engine) GetContextualRecommendations(ctx context.Context, djCtx DJContext, opts Options) (*Result, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = e.engineCfg.DefaultBatchSize
	}
	if batchSize > e.engineCfg.MaxBatchSize {
		batchSize = e.engineCfg.MaxBatchSize
	}

	threshold := opts.RankThreshold
	if threshold <= 0 {
		threshold = e.engineCfg.RankThreshold
	}

	// Step 1: context assembly. Pure, cannot fail.
	prompt := BuildPrompt(djCtx)

	// Step 2: language model with a bounded timeout.
	resp, err := e.generator.Generate(ctx, llm.GenerateRequest{
		Prompt:         prompt,
		UserID:         djCtx.UserID,
		ExcludeArtists: djCtx.ExcludedArtists,
	}, e.llmCfg.DJContextTimeout)
	if err != nil {
		// Timeouts and transport errors both land here; the taxonomy
		// treats them as one terminal reason.
		metrics.RecommendationRequests.WithLabelValues("failure").Inc()
		return nil, failure(FailureTimeout, err)
	}
	if len(resp.Recommendations) == 0 {
		metrics.RecommendationRequests.WithLabelValues("failure").Inc()
		return nil, failure(FailureNoRecommendations, nil)
	}

	// Step 3: exclusion filters before ranking.
	suggestions := e.filterSuggestions(resp.Recommendations, djCtx)

	// Step 4: rank if a profile exists; degrade rather than abort.
	scored := e.rankOrDegrade(ctx, djCtx.UserID, suggestions, threshold)

	library, err := e.catalog.AllTracks(ctx)
	if err != nil {
		// Matching is impossible without the library.
		metrics.RecommendationRequests.WithLabelValues("failure").Inc()
		return nil, failure(FailureNoLibraryMatch, err)
	}

	if opts.CompoundBoost && e.booster != nil {
		scored = e.applyCompoundBoost(ctx, djCtx.UserID, scored, library)
	}

	// Step 5: match the top batchSize suggestions.
	session := matching.NewSession()
	result := &Result{Strategies: make(map[string]string)}

	candidates := scored
	if len(candidates) > batchSize {
		candidates = candidates[:batchSize]
	}

	matchable := e.filterLibrary(library, djCtx)
	for _, s := range candidates {
		track, strategyName := e.matcher.Match(s.SongText, matchable, session)
		if track == nil {
			continue
		}
		session.Accept(*track)
		result.Tracks = append(result.Tracks, *track)
		result.Strategies[track.ID] = strategyName
		e.fatigue.Record(track.Artist)
	}

	// Step 6: fill shortfall from a relevance-scored random sample.
	if len(result.Tracks) < batchSize {
		e.fillShortfall(result, matchable, session, batchSize, djCtx)
	}

	if len(result.Tracks) == 0 {
		metrics.RecommendationRequests.WithLabelValues("failure").Inc()
		return nil, failure(FailureNoLibraryMatch, nil)
	}

	result.Shortfall = batchSize - len(result.Tracks)
	if result.Partial() {
		metrics.RecommendationRequests.WithLabelValues("partial").Inc()
	} else {
		metrics.RecommendationRequests.WithLabelValues("success").Inc()
	}
	metrics.RecommendationTracks.Observe(float64(len(result.Tracks)))

	return result, nil
}

// filterSuggestions drops suggestions for excluded, blocked, or fatigued
// artists before they spend ranking and matching effort.
func (e *Engine) filterSuggestions(suggestions []models.RawSuggestion, djCtx DJContext) []models.RawSuggestion {
	excluded := make(map[string]struct{}, len(djCtx.ExcludedArtists))
	for _, a := range djCtx.ExcludedArtists {
		excluded[strings.ToLower(a)] = struct{}{}
	}

	out := make([]models.RawSuggestion, 0, len(suggestions))
	for _, s := range suggestions {
		artist := strings.ToLower(s.SuggestedArtist())
		if artist != "" {
			if _, ok := excluded[artist]; ok {
				continue
			}
			if _, ok := blockedArtists[artist]; ok {
				continue
			}
			if e.fatigue.IsFatigued(artist) {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

// rankOrDegrade ranks against the user's profile, substituting raw
// suggestions with a default score when the profile is missing, the
// store fails, or ranking starves.
func (e *Engine) rankOrDegrade(ctx context.Context, userID string, suggestions []models.RawSuggestion, threshold float64) []models.ScoredSuggestion {
	profile, err := e.profiles.Profile(ctx, userID)
	if err == nil && profile != nil {
		if scored := e.ranker.Rank(profile, suggestions, threshold); len(scored) > 0 {
			return scored
		}
	}
	if err != nil {
		logging.Warn().Err(err).Str("user_id", userID).Msg("profile load failed, ranking degraded")
	}

	metrics.RankingDegraded.Inc()
	out := make([]models.ScoredSuggestion, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, models.ScoredSuggestion{RawSuggestion: s, GenreScore: degradedScore})
	}
	return out
}

// applyCompoundBoost reorders scored suggestions by blending compound
// boosts of the tracks their text tentatively resolves to. Best-effort:
// suggestions that resolve to nothing keep their rank score.
func (e *Engine) applyCompoundBoost(ctx context.Context, userID string, scored []models.ScoredSuggestion, library []models.Track) []models.ScoredSuggestion {
	probe := matching.NewSession()
	suggestionTrack := make(map[int]string, len(scored))
	var trackIDs []string

	for i, s := range scored {
		if track, _ := e.matcher.Match(s.SongText, library, probe); track != nil {
			suggestionTrack[i] = track.ID
			trackIDs = append(trackIDs, track.ID)
		}
	}
	if len(trackIDs) == 0 {
		return scored
	}

	boosts := e.booster.GetBoosts(ctx, userID, trackIDs)

	blended := make([]models.ScoredSuggestion, len(scored))
	copy(blended, scored)
	for i := range blended {
		if id, ok := suggestionTrack[i]; ok {
			blended[i].GenreScore = e.booster.BlendRank(blended[i].GenreScore, boosts[id])
		}
	}

	sort.SliceStable(blended, func(i, j int) bool {
		return blended[i].GenreScore > blended[j].GenreScore
	})
	return blended
}

// filterLibrary removes excluded ids/artists and blocked artists from
// the matchable library.
func (e *Engine) filterLibrary(library []models.Track, djCtx DJContext) []models.Track {
	excludedIDs := make(map[string]struct{}, len(djCtx.ExcludedTrackIDs))
	for _, id := range djCtx.ExcludedTrackIDs {
		excludedIDs[id] = struct{}{}
	}
	excludedArtists := make(map[string]struct{}, len(djCtx.ExcludedArtists))
	for _, a := range djCtx.ExcludedArtists {
		excludedArtists[strings.ToLower(a)] = struct{}{}
	}

	out := make([]models.Track, 0, len(library))
	for _, t := range library {
		if _, ok := excludedIDs[t.ID]; ok {
			continue
		}
		artist := strings.ToLower(t.Artist)
		if _, ok := excludedArtists[artist]; ok {
			continue
		}
		if _, ok := blockedArtists[artist]; ok {
			continue
		}
		out = append(out, t)
	}
	return out
}

// fillShortfall samples a pool of random unaccepted tracks, scores each
// with a light relevance heuristic against the current song, and fills
// from the top. Filled tracks also count toward fatigue.
func (e *Engine) fillShortfall(result *Result, library []models.Track, session *matching.Session, batchSize int, djCtx DJContext) {
	need := batchSize - len(result.Tracks)

	var pool []models.Track
	for _, t := range library {
		if session.Taken(t) {
			continue
		}
		if session.ArtistCount(t.Artist) > 0 {
			continue
		}
		pool = append(pool, t)
	}
	if len(pool) == 0 {
		return
	}

	sampleSize := need * e.engineCfg.FallbackSampleMultiplier
	if sampleSize > len(pool) {
		sampleSize = len(pool)
	}

	e.rngMu.Lock()
	e.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	e.rngMu.Unlock()
	sample := pool[:sampleSize]

	type scoredTrack struct {
		track models.Track
		score float64
	}
	scoredSample := make([]scoredTrack, 0, len(sample))
	for _, t := range sample {
		scoredSample = append(scoredSample, scoredTrack{track: t, score: e.relevance(t, djCtx.NowPlaying)})
	}
	sort.SliceStable(scoredSample, func(i, j int) bool {
		return scoredSample[i].score > scoredSample[j].score
	})

	for _, st := range scoredSample {
		if len(result.Tracks) >= batchSize {
			break
		}
		if session.Taken(st.track) || session.ArtistCount(st.track.Artist) > 0 {
			continue
		}
		session.Accept(st.track)
		result.Tracks = append(result.Tracks, st.track)
		result.Strategies[st.track.ID] = "fallback_fill"
		e.fatigue.Record(st.track.Artist)
		metrics.FallbackFill.Inc()
	}
}

// relevance scores a fallback candidate: a bonus when it shares a
// significant token with the current song's artist or title, plus random
// jitter to break ties.
func (e *Engine) relevance(t models.Track, nowPlaying *models.Track) float64 {
	e.rngMu.Lock()
	score := e.rng.Float64() * 0.1
	e.rngMu.Unlock()

	if nowPlaying == nil {
		return score
	}

	candTokens := textmatch.SignificantTokens(t.CanonicalName(), 2)
	nowTokens := textmatch.SignificantTokens(nowPlaying.CanonicalName(), 2)
	for _, ct := range candTokens {
		for _, nt := range nowTokens {
			if textmatch.TokensOverlap(ct, nt) {
				return score + relevanceBonus
			}
		}
	}
	return score
}

// TagForQueue produces queue metadata for an accepted batch: one shared
// timestamp and batch id across all tracks, write-once. strategies maps
// track id to the matcher strategy that produced it and may be nil.
func (e *Engine) TagForQueue(tracks []models.Track, userID string, strategies map[string]string) []models.QueueMetadata {
	queuedAt := e.now()
	batchID := uuid.NewString()

	out := make([]models.QueueMetadata, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, models.QueueMetadata{
			TrackID:  t.ID,
			AIQueued: true,
			QueuedAt: queuedAt,
			QueuedBy: userID,
			BatchID:  batchID,
		})
	}

	e.audit(tracks, userID, batchID, strategies, queuedAt)
	return out
}

// audit writes the recommendation log for a tagged batch. Best-effort.
func (e *Engine) audit(tracks []models.Track, userID, batchID string, strategies map[string]string, at time.Time) {
	if e.auditor == nil {
		return
	}

	records := make([]models.RecommendationRecord, 0, len(tracks))
	for _, t := range tracks {
		records = append(records, models.RecommendationRecord{
			UserID:    userID,
			TrackID:   t.ID,
			BatchID:   batchID,
			Strategy:  strategies[t.ID],
			CreatedAt: at,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.auditor.InsertRecommendations(ctx, records); err != nil {
		logging.Warn().Err(err).Str("batch_id", batchID).Msg("recommendation audit write failed")
	}
}
