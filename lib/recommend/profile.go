package recommend

import (
	"context"
	"hash/fnv"
	"sort"
	"strings"

	"log/slog"

	"github.com/moodreel/moodreel/lib/tmdb"
	"github.com/moodreel/moodreel/models"
)

const (
	topActors       = 10
	topDirectors    = 5
	topKeywords     = 15
	castPerItem     = 3
	keywordsPerItem = 10
	defaultRating   = 7.0
)

// GenreID hashes a genre label into the profile's genre id space. The hash is
// stable across runs so profiles built from the same watchlist compare equal.
func GenreID(label string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(label)))
	return h.Sum32()
}

// BuildUserProfile derives the taste model from the watchlist. Genre counts
// and the rating average need no network calls and are always present; cast,
// crew and keyword signals come from per-item credit/keyword fetches that
// soft-fail item by item. Items run sequentially to bound outbound calls.
func (r *Recommender) BuildUserProfile(ctx context.Context, watchlist []models.ContentItem) *models.UserProfile {
	genreCounts := make(map[uint32]*models.GenreWeight)
	var genreOrder []uint32
	actorCounts := make(map[int]*models.PersonCount)
	var actorOrder []int
	directorCounts := make(map[int]*models.PersonCount)
	var directorOrder []int
	keywordCounts := make(map[int]*models.KeywordCount)
	var keywordOrder []int

	var ratingSum float64

	for _, item := range watchlist {
		ratingSum += item.Rating

		for _, label := range item.Genres {
			id := GenreID(label)
			if g, ok := genreCounts[id]; ok {
				g.Weight++
			} else {
				genreCounts[id] = &models.GenreWeight{ID: id, Label: label, Weight: 1}
				genreOrder = append(genreOrder, id)
			}
		}

		providerID, mediaType, ok := tmdb.ParseLocalID(item.ID)
		if !ok {
			// Provider-foreign id (anime etc); genre and rating signals only.
			continue
		}

		rawCredits, err := r.metadata.GetCredits(ctx, mediaType, providerID)
		credits := tmdb.CreditsOrEmpty(rawCredits, err, r.logger, "credits")
		for i, person := range credits.Cast {
			if i >= castPerItem {
				break
			}
			if p, ok := actorCounts[person.ID]; ok {
				p.Count++
			} else {
				actorCounts[person.ID] = &models.PersonCount{ID: person.ID, Name: person.Name, Count: 1}
				actorOrder = append(actorOrder, person.ID)
			}
		}
		for _, person := range credits.Crew {
			if person.Job != "Director" {
				continue
			}
			if p, ok := directorCounts[person.ID]; ok {
				p.Count++
			} else {
				directorCounts[person.ID] = &models.PersonCount{ID: person.ID, Name: person.Name, Count: 1}
				directorOrder = append(directorOrder, person.ID)
			}
		}

		rawKeywords, err := r.metadata.GetKeywords(ctx, mediaType, providerID)
		keywords := tmdb.KeywordsOrEmpty(rawKeywords, err, r.logger, "keywords")
		for i, kw := range keywords {
			if i >= keywordsPerItem {
				break
			}
			if k, ok := keywordCounts[kw.ID]; ok {
				k.Count++
			} else {
				keywordCounts[kw.ID] = &models.KeywordCount{ID: kw.ID, Name: kw.Name, Count: 1}
				keywordOrder = append(keywordOrder, kw.ID)
			}
		}
	}

	profile := &models.UserProfile{AvgRating: defaultRating}
	if len(watchlist) > 0 {
		profile.AvgRating = ratingSum / float64(len(watchlist))
	}

	size := float64(len(watchlist))
	for _, id := range genreOrder {
		g := *genreCounts[id]
		g.Weight /= size
		profile.FavoriteGenres = append(profile.FavoriteGenres, g)
	}
	sort.SliceStable(profile.FavoriteGenres, func(i, j int) bool {
		return profile.FavoriteGenres[i].Weight > profile.FavoriteGenres[j].Weight
	})

	profile.FavoriteActors = topPeople(actorCounts, actorOrder, topActors)
	profile.FavoriteDirectors = topPeople(directorCounts, directorOrder, topDirectors)

	for _, id := range keywordOrder {
		profile.CommonKeywords = append(profile.CommonKeywords, *keywordCounts[id])
	}
	sort.SliceStable(profile.CommonKeywords, func(i, j int) bool {
		return profile.CommonKeywords[i].Count > profile.CommonKeywords[j].Count
	})
	if len(profile.CommonKeywords) > topKeywords {
		profile.CommonKeywords = profile.CommonKeywords[:topKeywords]
	}

	r.logger.Debug("built user profile",
		slog.Int("genres", len(profile.FavoriteGenres)),
		slog.Int("actors", len(profile.FavoriteActors)),
		slog.Int("directors", len(profile.FavoriteDirectors)),
		slog.Int("keywords", len(profile.CommonKeywords)),
		slog.Float64("avg_rating", profile.AvgRating))

	return profile
}

// topPeople converts an occurrence counter into a descending, stably ordered
// list truncated to n entries.
func topPeople(counts map[int]*models.PersonCount, order []int, n int) []models.PersonCount {
	people := make([]models.PersonCount, 0, len(order))
	for _, id := range order {
		people = append(people, *counts[id])
	}
	sort.SliceStable(people, func(i, j int) bool {
		return people[i].Count > people[j].Count
	})
	if len(people) > n {
		people = people[:n]
	}
	return people
}
