package recommend

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/moodreel/moodreel/lib/tmdb"
	"github.com/moodreel/moodreel/models"
)

// maxSeedItems bounds how many watchlist entries seed candidate generation.
// Intentional rate-limit mitigation, not a bug.
const maxSeedItems = 5

// GatherCandidates fans out to the metadata provider for the first few
// watchlist items and merges their similar + recommendations results into one
// deduplicated list. Items already on the watchlist are excluded. Order is
// insertion order; ranking happens later.
func (r *Recommender) GatherCandidates(ctx context.Context, watchlist []models.ContentItem) []models.Candidate {
	watchlistIDs := make(map[string]struct{}, len(watchlist))
	for _, item := range watchlist {
		watchlistIDs[item.ID] = struct{}{}
	}

	merged := make(map[string]models.Candidate)
	var order []string

	seeds := watchlist
	if len(seeds) > maxSeedItems {
		seeds = seeds[:maxSeedItems]
	}

	for _, item := range seeds {
		providerID, mediaType, ok := tmdb.ParseLocalID(item.ID)
		if !ok {
			continue
		}

		similar, err := r.metadata.GetSimilar(ctx, mediaType, providerID)
		similar = tmdb.CandidatesOrEmpty(similar, err, r.logger, "similar")

		recs, err := r.metadata.GetRecommendations(ctx, mediaType, providerID)
		recs = tmdb.CandidatesOrEmpty(recs, err, r.logger, "recommendations")

		for _, candidate := range append(similar, recs...) {
			key := fmt.Sprintf("%s-%d", candidateMediaType(candidate), candidate.ID)
			if _, seen := merged[key]; !seen {
				order = append(order, key)
			}
			// Last write wins; payloads for the same id are equivalent.
			merged[key] = candidate
		}
	}

	candidates := make([]models.Candidate, 0, len(order))
	for _, key := range order {
		candidate := merged[key]
		localID := tmdb.LocalID(candidateMediaType(candidate), candidate.ID)
		if _, onList := watchlistIDs[localID]; onList {
			continue
		}
		candidates = append(candidates, candidate)
	}

	r.logger.Debug("gathered candidates",
		slog.Int("seeds", len(seeds)),
		slog.Int("count", len(candidates)))

	return candidates
}

// candidateMediaType defaults a missing provider media type to "movie",
// matching the local id reconstruction rule.
func candidateMediaType(c models.Candidate) string {
	if c.MediaType == "" {
		return "movie"
	}
	return c.MediaType
}
