package recommend

import (
	"context"

	"log/slog"

	"github.com/sourcegraph/conc/pool"

	"github.com/moodreel/moodreel/models"
)

// MetadataAPI is the slice of the metadata provider the engine needs.
// Satisfied by *tmdb.Client; tests substitute a fake.
type MetadataAPI interface {
	GetSimilar(ctx context.Context, mediaType string, id int) ([]models.Candidate, error)
	GetRecommendations(ctx context.Context, mediaType string, id int) ([]models.Candidate, error)
	GetCredits(ctx context.Context, mediaType string, id int) (*models.Credits, error)
	GetKeywords(ctx context.Context, mediaType string, id int) ([]models.Keyword, error)
}

// GenreMatchMode selects how candidate genres are matched against the profile.
type GenreMatchMode int

const (
	// GenreMatchProviderIDs compares provider numeric genre ids against the
	// profile's label-hash ids. The spaces are disjoint, so the genre signal
	// is structurally zero. Kept as the default for behavioral parity with
	// the system this engine reproduces.
	GenreMatchProviderIDs GenreMatchMode = iota
	// GenreMatchLabels resolves provider genre ids to labels and matches on
	// the label hash, making the genre signal meaningful.
	GenreMatchLabels
)

const defaultScoreWorkers = 4

// Recommender runs the hybrid multi-signal recommendation pipeline. All state
// is request-local; a Recommender is safe for concurrent use.
type Recommender struct {
	metadata     MetadataAPI
	logger       *slog.Logger
	genreMatch   GenreMatchMode
	scoreWorkers int
}

// Option configures a Recommender.
type Option func(*Recommender)

// WithGenreMatchMode overrides the genre matching mode.
func WithGenreMatchMode(mode GenreMatchMode) Option {
	return func(r *Recommender) { r.genreMatch = mode }
}

// WithScoreWorkers bounds how many candidates are scored concurrently.
func WithScoreWorkers(n int) Option {
	return func(r *Recommender) {
		if n > 0 {
			r.scoreWorkers = n
		}
	}
}

func New(metadata MetadataAPI, logger *slog.Logger, opts ...Option) *Recommender {
	r := &Recommender{
		metadata:     metadata,
		logger:       logger,
		genreMatch:   GenreMatchProviderIDs,
		scoreWorkers: defaultScoreWorkers,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetHybridRecommendations builds the user profile from the watchlist,
// gathers candidates, scores them and returns the top results. An empty
// watchlist returns nil without touching the network. Given identical
// upstream responses the output is deterministic.
func (r *Recommender) GetHybridRecommendations(ctx context.Context, watchlist []models.ContentItem, limit int) []models.RecommendationResult {
	if len(watchlist) == 0 {
		return nil
	}

	profile := r.BuildUserProfile(ctx, watchlist)
	candidates := r.GatherCandidates(ctx, watchlist)

	// Candidates are independent; score them through a bounded worker pool.
	// Results are written by index so output order matches gathering order.
	scored := make([]scoredCandidate, len(candidates))
	p := pool.New().WithMaxGoroutines(r.scoreWorkers)
	for i, candidate := range candidates {
		p.Go(func() {
			scored[i] = scoredCandidate{
				candidate: candidate,
				scores:    r.ScoreContent(ctx, candidate, profile),
			}
		})
	}
	p.Wait()

	results := Rank(scored, limit)

	r.logger.Info("generated recommendations",
		slog.Int("watchlist", len(watchlist)),
		slog.Int("candidates", len(candidates)),
		slog.Int("results", len(results)))

	return results
}
