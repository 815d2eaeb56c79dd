package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/moodreel/moodreel/lib/recommend"
	"github.com/moodreel/moodreel/lib/watchlist"
	"github.com/moodreel/moodreel/models"
)

// noMetadata satisfies recommend.MetadataAPI without hitting any network.
type noMetadata struct{}

func (noMetadata) GetSimilar(ctx context.Context, mediaType string, id int) ([]models.Candidate, error) {
	return nil, nil
}
func (noMetadata) GetRecommendations(ctx context.Context, mediaType string, id int) ([]models.Candidate, error) {
	return nil, nil
}
func (noMetadata) GetCredits(ctx context.Context, mediaType string, id int) (*models.Credits, error) {
	return &models.Credits{}, nil
}
func (noMetadata) GetKeywords(ctx context.Context, mediaType string, id int) ([]models.Keyword, error) {
	return nil, nil
}

func newTestStore(t *testing.T) *watchlist.Store {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&models.WatchlistItem{}))
	return watchlist.NewStore(gormDB, slog.New(slog.DiscardHandler))
}

func TestWatchlistAddValidation(t *testing.T) {
	handler := HandleWatchlistAdd(newTestStore(t))

	tests := map[string]string{
		"bad id":        `{"id":"603","title":"The Matrix"}`,
		"missing title": `{"id":"m-603"}`,
		"not json":      `not json`,
	}
	for name, body := range tests {
		req := httptest.NewRequest("POST", "/api/watchlist", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestWatchlistAddListRemoveFlow(t *testing.T) {
	store := newTestStore(t)

	body := `{"id":"m-603","title":"The Matrix","content_type":"movie","genres":["Action","Science Fiction"],"rating":8.2,"year":1999}`
	req := httptest.NewRequest("POST", "/api/watchlist", strings.NewReader(body))
	rec := httptest.NewRecorder()
	HandleWatchlistAdd(store)(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate add conflicts.
	req = httptest.NewRequest("POST", "/api/watchlist", strings.NewReader(body))
	rec = httptest.NewRecorder()
	HandleWatchlistAdd(store)(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	req = httptest.NewRequest("GET", "/api/watchlist", nil)
	rec = httptest.NewRecorder()
	HandleWatchlist(store)(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var items []models.ContentItem
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.Equal(t, "m-603", items[0].ID)
	assert.Equal(t, []string{"Action", "Science Fiction"}, items[0].Genres)

	// Remove through the router so the URL param binds.
	router := chi.NewRouter()
	router.Delete("/api/watchlist/{id}", HandleWatchlistRemove(store))

	req = httptest.NewRequest("DELETE", "/api/watchlist/m-603", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest("DELETE", "/api/watchlist/m-603", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecommendationsEmptyWatchlist(t *testing.T) {
	store := newTestStore(t)
	recommender := recommend.New(noMetadata{}, slog.New(slog.DiscardHandler))

	req := httptest.NewRequest("GET", "/api/recommendations", nil)
	rec := httptest.NewRecorder()
	HandleRecommendations(store, recommender)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String(), "empty watchlist yields an empty list, not an error")
}

func TestRecommendationsLimitValidation(t *testing.T) {
	store := newTestStore(t)
	recommender := recommend.New(noMetadata{}, slog.New(slog.DiscardHandler))

	for _, raw := range []string{"abc", "0", "999"} {
		req := httptest.NewRequest("GET", "/api/recommendations?limit="+raw, nil)
		rec := httptest.NewRecorder()
		HandleRecommendations(store, recommender)(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, raw)
	}
}

func TestMoodsList(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/moods", nil)
	rec := httptest.NewRecorder()
	HandleMoods()(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotEmpty(t, body["moods"])
}
