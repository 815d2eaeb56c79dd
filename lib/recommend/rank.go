package recommend

import (
	"fmt"
	"sort"

	"github.com/moodreel/moodreel/models"
)

// DefaultLimit is the result count used when the caller passes limit <= 0.
const DefaultLimit = 20

// Final score weights. These must not change: downstream consumers treat the
// 0-100 score as comparable across releases.
const (
	weightSimilarity = 0.30
	weightCastCrew   = 0.25
	weightKeyword    = 0.20
	weightGenre      = 0.15
	weightRating     = 0.10
)

type scoredCandidate struct {
	candidate models.Candidate
	scores    models.SignalScores
}

// FinalScore combines the partial signals into the 0-100 ranking score.
func FinalScore(s models.SignalScores) float64 {
	return 100 * (weightSimilarity*s.Similarity +
		weightCastCrew*s.CastCrew +
		weightKeyword*s.Keyword +
		weightGenre*s.Genre +
		weightRating*s.Rating)
}

// Reasons renders the human-readable justification for a candidate's score.
// At least one reason is always returned.
func Reasons(s models.SignalScores, candidate models.Candidate) []string {
	var reasons []string
	if s.CastCrew > 0.5 {
		reasons = append(reasons, "Features actors/directors you love")
	}
	if s.Keyword > 0.3 {
		reasons = append(reasons, "Similar themes to your favorites")
	}
	if s.Genre > 0.5 {
		reasons = append(reasons, "Top pick for genre fans")
	}
	if s.Rating > 0.9 {
		reasons = append(reasons, fmt.Sprintf("Highly rated (%.1f★)", candidate.VoteAverage))
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "Recommended for you")
	}
	return reasons
}

// Rank sorts scored candidates descending by final score and truncates to
// limit. The sort is stable so equal scores keep their gathering order and
// repeated calls produce identical output.
func Rank(scored []scoredCandidate, limit int) []models.RecommendationResult {
	if limit <= 0 {
		limit = DefaultLimit
	}

	results := make([]models.RecommendationResult, 0, len(scored))
	for _, sc := range scored {
		results = append(results, models.RecommendationResult{
			Candidate: sc.candidate,
			Score:     FinalScore(sc.scores),
			Reasons:   Reasons(sc.scores, sc.candidate),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
