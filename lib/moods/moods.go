package moods

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"log/slog"

	"github.com/moodreel/moodreel/lib/anilist"
	"github.com/moodreel/moodreel/lib/tmdb"
	"github.com/moodreel/moodreel/models"
)

// moodGenres maps each browsing mood to genre labels. Labels double as
// provider genre names for both the movie/TV and anime providers.
var moodGenres = map[string][]string{
	"happy":     {"Comedy", "Family"},
	"sad":       {"Drama"},
	"excited":   {"Action", "Adventure"},
	"scared":    {"Horror", "Thriller"},
	"romantic":  {"Romance"},
	"curious":   {"Mystery", "Documentary"},
	"chill":     {"Animation", "Comedy"},
	"nostalgic": {"Fantasy", "Adventure"},
}

// Names lists the supported moods in stable order.
func Names() []string {
	names := make([]string, 0, len(moodGenres))
	for name := range moodGenres {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Genres returns the genre labels behind a mood, or false for unknown moods.
func Genres(mood string) ([]string, bool) {
	genres, ok := moodGenres[mood]
	return genres, ok
}

// Browser resolves a mood into titles from the metadata providers.
type Browser struct {
	metadata *tmdb.Client
	anilist  *anilist.Client
	logger   *slog.Logger
}

func NewBrowser(metadata *tmdb.Client, anilistClient *anilist.Client, logger *slog.Logger) *Browser {
	return &Browser{metadata: metadata, anilist: anilistClient, logger: logger}
}

// Browse lists popular titles matching the mood for the given media type
// (movie, tv or anime).
func (b *Browser) Browse(ctx context.Context, mood, mediaType string) ([]models.ContentItem, error) {
	genres, ok := Genres(mood)
	if !ok {
		return nil, fmt.Errorf("unknown mood: %s", mood)
	}

	if mediaType == "anime" {
		// The anime provider takes one genre per query; the first label is
		// the mood's primary genre.
		return b.anilist.SearchByGenre(ctx, genres[0], 1)
	}

	candidates, err := b.metadata.DiscoverByGenres(ctx, mediaType, tmdb.GenreIDsForLabels(genres))
	if err != nil {
		return nil, fmt.Errorf("failed to browse mood %s: %w", mood, err)
	}

	items := make([]models.ContentItem, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, b.toContentItem(c))
	}
	return items, nil
}

func (b *Browser) toContentItem(c models.Candidate) models.ContentItem {
	contentType := "movie"
	if c.MediaType == "tv" {
		contentType = "series"
	}

	var genres []string
	for _, id := range c.GenreIDs {
		if label := tmdb.GenreName(id); label != "" {
			genres = append(genres, label)
		}
	}

	year := 0
	if len(c.ReleaseDate) >= 4 {
		year, _ = strconv.Atoi(c.ReleaseDate[:4])
	}

	return models.ContentItem{
		ID:          tmdb.LocalID(c.MediaType, c.ID),
		Title:       c.DisplayTitle(),
		ContentType: contentType,
		Genres:      genres,
		Rating:      c.VoteAverage,
		Year:        year,
		PosterURL:   b.metadata.GetPosterURL(c.PosterPath),
		Overview:    c.Overview,
	}
}
