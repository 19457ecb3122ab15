// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package recommend

import (
	"fmt"
	"strings"
	"time"
)

// maxRecentInPrompt caps how many queue entries the prompt carries.
const maxRecentInPrompt = 5

// BuildPrompt turns playback state into the prompt text sent to the
// language model. Pure assembly: no lookups, no failure path.
func BuildPrompt(djCtx DJContext) string {
	var b strings.Builder

	b.WriteString("You are a DJ selecting the next songs for a personal music library.\n")

	if djCtx.NowPlaying != nil {
		fmt.Fprintf(&b, "Now playing: %s\n", djCtx.NowPlaying.CanonicalName())
	}

	if len(djCtx.RecentQueue) > 0 {
		b.WriteString("Recently queued:\n")
		recent := djCtx.RecentQueue
		if len(recent) > maxRecentInPrompt {
			recent = recent[:maxRecentInPrompt]
		}
		for _, t := range recent {
			fmt.Fprintf(&b, "- %s\n", t.CanonicalName())
		}
	}

	if djCtx.TracksPlayed > 0 || djCtx.SessionDuration > 0 {
		fmt.Fprintf(&b, "Session: %d tracks over %s.\n",
			djCtx.TracksPlayed, djCtx.SessionDuration.Round(time.Second))
	}

	if len(djCtx.ExcludedArtists) > 0 {
		fmt.Fprintf(&b, "Avoid these artists: %s.\n", strings.Join(djCtx.ExcludedArtists, ", "))
	}

	b.WriteString("Suggest songs as \"Artist - Title\" with a short explanation for each.")
	return b.String()
}
