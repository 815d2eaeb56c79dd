package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/moodreel/moodreel/lib/anilist"
	"github.com/moodreel/moodreel/lib/moods"
	"github.com/moodreel/moodreel/lib/recommend"
	"github.com/moodreel/moodreel/lib/scene"
	"github.com/moodreel/moodreel/lib/tmdb"
	"github.com/moodreel/moodreel/lib/validation"
	"github.com/moodreel/moodreel/lib/watchlist"
	"github.com/moodreel/moodreel/models"
)

// maxUploadBytes caps identify uploads; a single frame never needs more.
const maxUploadBytes = 10 << 20

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", slog.Any("error", err))
	}
}

// HandleRecommendations runs the hybrid engine over the stored watchlist.
// An empty watchlist is a valid state and returns an empty list.
func HandleRecommendations(store *watchlist.Store, recommender *recommend.Recommender) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		limit := recommend.DefaultLimit
		if raw := req.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				validation.WriteError(w, fmt.Errorf("limit must be a number"), http.StatusBadRequest)
				return
			}
			if err := validation.ValidateLimit(parsed); err != nil {
				validation.WriteError(w, err, http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		items, err := store.List(req.Context())
		if err != nil {
			slog.Error("Failed to load watchlist", slog.Any("error", err))
			validation.WriteError(w, fmt.Errorf("failed to load recommendations"), http.StatusInternalServerError)
			return
		}

		results := recommender.GetHybridRecommendations(req.Context(), watchlist.ContentItems(items), limit)
		if results == nil {
			results = []models.RecommendationResult{}
		}
		writeJSON(w, http.StatusOK, results)
	}
}

// HandleWatchlist lists the stored watchlist in insertion order.
func HandleWatchlist(store *watchlist.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		items, err := store.List(req.Context())
		if err != nil {
			slog.Error("Failed to load watchlist", slog.Any("error", err))
			validation.WriteError(w, fmt.Errorf("failed to load watchlist"), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, watchlist.ContentItems(items))
	}
}

// HandleWatchlistAdd saves a swiped title to the watchlist.
func HandleWatchlistAdd(store *watchlist.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			ID          string   `json:"id"`
			Title       string   `json:"title"`
			ContentType string   `json:"content_type"`
			Genres      []string `json:"genres"`
			Language    string   `json:"language"`
			Rating      float64  `json:"rating"`
			Year        int      `json:"year"`
			PosterURL   string   `json:"poster_url"`
			Overview    string   `json:"overview"`
			TrailerURL  string   `json:"trailer_url"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			validation.WriteError(w, fmt.Errorf("invalid request body"), http.StatusBadRequest)
			return
		}
		if err := validation.ValidateLocalID(body.ID); err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}
		if body.Title == "" {
			validation.WriteError(w, fmt.Errorf("title is required"), http.StatusBadRequest)
			return
		}

		item := models.WatchlistItem{
			LocalID:     body.ID,
			Title:       body.Title,
			ContentType: body.ContentType,
			Genres:      joinGenres(body.Genres),
			Language:    body.Language,
			Rating:      body.Rating,
			Year:        body.Year,
			PosterURL:   body.PosterURL,
			Overview:    body.Overview,
			TrailerURL:  body.TrailerURL,
		}
		if err := store.Add(req.Context(), item); err != nil {
			if errors.Is(err, watchlist.ErrDuplicate) {
				validation.WriteError(w, err, http.StatusConflict)
				return
			}
			slog.Error("Failed to add watchlist item", slog.Any("error", err))
			validation.WriteError(w, fmt.Errorf("failed to save watchlist item"), http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{"id": body.ID})
	}
}

// HandleWatchlistRemove deletes a title from the watchlist.
func HandleWatchlistRemove(store *watchlist.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		if err := validation.ValidateLocalID(id); err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		if err := store.Remove(req.Context(), id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				validation.WriteError(w, fmt.Errorf("not on watchlist: %s", id), http.StatusNotFound)
				return
			}
			slog.Error("Failed to remove watchlist item", slog.Any("error", err))
			validation.WriteError(w, fmt.Errorf("failed to remove watchlist item"), http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleSearch runs a free-text search against the matching provider.
func HandleSearch(metadata *tmdb.Client, anilistClient *anilist.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		query := req.URL.Query().Get("query")
		if query == "" {
			validation.WriteError(w, fmt.Errorf("query is required"), http.StatusBadRequest)
			return
		}
		mediaType := req.URL.Query().Get("type")
		if mediaType == "" {
			mediaType = "movie"
		}
		if err := validation.ValidateMediaType(mediaType); err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		if mediaType == "anime" {
			items, err := anilistClient.Search(req.Context(), query, 1)
			if err != nil {
				slog.Error("Anime search failed", slog.Any("error", err))
				validation.WriteError(w, fmt.Errorf("search failed"), http.StatusBadGateway)
				return
			}
			writeJSON(w, http.StatusOK, items)
			return
		}

		var (
			results []models.Candidate
			err     error
		)
		if mediaType == "movie" {
			results, err = metadata.SearchMovies(req.Context(), query)
		} else {
			results, err = metadata.SearchTV(req.Context(), query)
		}
		if err != nil {
			slog.Error("Search failed", slog.Any("error", err))
			validation.WriteError(w, fmt.Errorf("search failed"), http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, results)
	}
}

// HandleMoods lists the supported browsing moods.
func HandleMoods() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]string{"moods": moods.Names()})
	}
}

// HandleMoodBrowse lists titles for one mood and media type.
func HandleMoodBrowse(browser *moods.Browser) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		mood := chi.URLParam(req, "mood")
		mediaType := req.URL.Query().Get("type")
		if mediaType == "" {
			mediaType = "movie"
		}
		if err := validation.ValidateMediaType(mediaType); err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		items, err := browser.Browse(req.Context(), mood, mediaType)
		if err != nil {
			if _, known := moods.Genres(mood); !known {
				validation.WriteError(w, err, http.StatusNotFound)
				return
			}
			slog.Error("Mood browse failed", slog.String("mood", mood), slog.Any("error", err))
			validation.WriteError(w, fmt.Errorf("failed to load titles"), http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// HandleIdentify answers "what is this scene" for an uploaded frame.
func HandleIdentify(identifier *scene.Identifier) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		req.Body = http.MaxBytesReader(w, req.Body, maxUploadBytes)
		if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
			validation.WriteError(w, fmt.Errorf("invalid upload"), http.StatusBadRequest)
			return
		}

		file, header, err := req.FormFile("image")
		if err != nil {
			validation.WriteError(w, fmt.Errorf("image field is required"), http.StatusBadRequest)
			return
		}
		defer func() {
			if err := file.Close(); err != nil {
				slog.Error("Failed to close upload", slog.Any("error", err))
			}
		}()

		image, err := io.ReadAll(file)
		if err != nil {
			validation.WriteError(w, fmt.Errorf("failed to read upload"), http.StatusBadRequest)
			return
		}

		result, err := identifier.Identify(req.Context(), image, header.Filename)
		if err != nil {
			if errors.Is(err, scene.ErrNoMatch) {
				validation.WriteError(w, err, http.StatusNotFound)
				return
			}
			slog.Error("Identification failed", slog.Any("error", err))
			validation.WriteError(w, fmt.Errorf("identification failed"), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func joinGenres(genres []string) string {
	return strings.Join(genres, ", ")
}
