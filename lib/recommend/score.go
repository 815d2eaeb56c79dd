package recommend

import (
	"context"

	"github.com/moodreel/moodreel/lib/tmdb"
	"github.com/moodreel/moodreel/models"
)

// candidateCast bounds how many top-billed cast entries of a candidate are
// compared against the profile.
const candidateCast = 5

// ScoreContent computes the five partial scores for one candidate against the
// profile. Pure with respect to the profile; the credit and keyword fetches
// soft-fail, leaving those signals at zero.
func (r *Recommender) ScoreContent(ctx context.Context, candidate models.Candidate, profile *models.UserProfile) models.SignalScores {
	var scores models.SignalScores

	// Presence signal: anything that came back from similar/recommendations
	// already passed the provider's own relevance filter.
	scores.Similarity = 1.0

	mediaType := candidateMediaType(candidate)

	rawCredits, err := r.metadata.GetCredits(ctx, mediaType, candidate.ID)
	credits := tmdb.CreditsOrEmpty(rawCredits, err, r.logger, "candidate credits")

	actorIDs := make(map[int]struct{}, len(profile.FavoriteActors))
	for _, p := range profile.FavoriteActors {
		actorIDs[p.ID] = struct{}{}
	}
	directorIDs := make(map[int]struct{}, len(profile.FavoriteDirectors))
	for _, p := range profile.FavoriteDirectors {
		directorIDs[p.ID] = struct{}{}
	}

	var actorMatches, directorMatches int
	for i, person := range credits.Cast {
		if i >= candidateCast {
			break
		}
		if _, ok := actorIDs[person.ID]; ok {
			actorMatches++
		}
	}
	for _, person := range credits.Crew {
		if person.Job != "Director" {
			continue
		}
		if _, ok := directorIDs[person.ID]; ok {
			directorMatches++
		}
	}
	scores.CastCrew = 0.5*float64(actorMatches) + 0.5*float64(directorMatches)

	rawKeywords, err := r.metadata.GetKeywords(ctx, mediaType, candidate.ID)
	keywords := tmdb.KeywordsOrEmpty(rawKeywords, err, r.logger, "candidate keywords")

	keywordIDs := make(map[int]struct{}, len(profile.CommonKeywords))
	for _, k := range profile.CommonKeywords {
		keywordIDs[k.ID] = struct{}{}
	}
	var keywordMatches int
	for _, kw := range keywords {
		if _, ok := keywordIDs[kw.ID]; ok {
			keywordMatches++
		}
	}
	scores.Keyword = 0.3 * float64(keywordMatches)

	scores.Genre = r.genreScore(candidate, profile)

	if candidate.VoteAverage >= profile.AvgRating {
		scores.Rating = 1.0
	} else {
		scores.Rating = candidate.VoteAverage / profile.AvgRating
	}

	return scores
}

// genreScore sums the profile weights of the candidate's genres.
//
// In the default mode the candidate's numeric provider genre ids are compared
// directly against the profile's label-hash ids. The id spaces are disjoint,
// so the sum is structurally zero; this preserves the behavior of the system
// this engine reproduces. GenreMatchLabels resolves provider ids to labels
// first and matches on the label hash, which is what the comparison was
// presumably meant to do.
func (r *Recommender) genreScore(candidate models.Candidate, profile *models.UserProfile) float64 {
	var score float64
	for _, genreID := range candidate.GenreIDs {
		matchID := uint32(genreID)
		if r.genreMatch == GenreMatchLabels {
			label := tmdb.GenreName(genreID)
			if label == "" {
				continue
			}
			matchID = GenreID(label)
		}
		for _, g := range profile.FavoriteGenres {
			if g.ID == matchID {
				score += g.Weight
				break
			}
		}
	}
	return score
}
