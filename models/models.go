package models

import (
	"gorm.io/gorm"
)

// WatchlistItem is a saved title in the user's watchlist. The LocalID uses the
// app-wide id scheme: "m-603" (movie), "s-1396" (series), "a-21" (anime).
type WatchlistItem struct {
	gorm.Model
	LocalID     string `gorm:"uniqueIndex"`
	Title       string
	ContentType string // "movie", "series", "anime", "kdrama", "cdrama"
	Genres      string // comma-separated labels, e.g. "Action, Drama"
	Language    string
	Rating      float64
	Year        int
	PosterURL   string
	Overview    string
	TrailerURL  string
}

// ContentItem is the in-memory shape of a title as the pipeline sees it.
// Immutable once built from a provider response or a watchlist row.
type ContentItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	ContentType string   `json:"content_type"`
	Genres      []string `json:"genres"`
	Language    string   `json:"language,omitempty"`
	Rating      float64  `json:"rating"`
	Year        int      `json:"year"`
	PosterURL   string   `json:"poster_url,omitempty"`
	Overview    string   `json:"overview,omitempty"`
	TrailerURL  string   `json:"trailer_url,omitempty"`
	Providers   []string `json:"providers,omitempty"`
	Cast        []string `json:"cast,omitempty"`
}

// Candidate is a title proposed by the metadata provider's similar or
// recommendations endpoints. Fields mirror the provider payload.
type Candidate struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Name        string  `json:"name"`
	MediaType   string  `json:"media_type"`
	GenreIDs    []int   `json:"genre_ids"`
	VoteAverage float64 `json:"vote_average"`
	PosterPath  string  `json:"poster_path"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
}

// DisplayTitle returns the movie title or the TV name, whichever is set.
func (c Candidate) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Name
}

// Person is a cast or crew entry from the credits endpoint.
type Person struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Job  string `json:"job,omitempty"`
}

// Credits groups the cast and crew of a single title.
type Credits struct {
	Cast []Person `json:"cast"`
	Crew []Person `json:"crew"`
}

// Keyword is a provider keyword tag.
type Keyword struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreWeight is one entry of a profile's genre affinity list. The ID is a
// stable hash of the genre label, not a provider genre id.
type GenreWeight struct {
	ID     uint32
	Label  string
	Weight float64
}

// PersonCount is one entry of a profile's favorite actors/directors list,
// keyed by provider person id.
type PersonCount struct {
	ID    int
	Name  string
	Count int
}

// KeywordCount is one entry of a profile's common keywords list, keyed by
// provider keyword id.
type KeywordCount struct {
	ID    int
	Name  string
	Count int
}

// UserProfile is the taste model derived from the watchlist. It is rebuilt on
// every recommendation request and never cached. All lists are sorted
// descending by their ranking key; ties keep first-encountered order.
type UserProfile struct {
	FavoriteGenres    []GenreWeight
	FavoriteActors    []PersonCount
	FavoriteDirectors []PersonCount
	CommonKeywords    []KeywordCount
	AvgRating         float64
}

// SignalScores holds the five independent partial scores for one candidate.
type SignalScores struct {
	Similarity float64
	CastCrew   float64
	Keyword    float64
	Genre      float64
	Rating     float64
}

// RecommendationResult is one ranked entry returned to the caller.
type RecommendationResult struct {
	Candidate Candidate `json:"candidate"`
	Score     float64   `json:"score"`
	Reasons   []string  `json:"reasons"`
}
