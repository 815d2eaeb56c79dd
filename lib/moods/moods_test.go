package moods

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"log/slog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodreel/moodreel/lib/anilist"
	"github.com/moodreel/moodreel/lib/tmdb"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestNamesStableAndComplete(t *testing.T) {
	names := Names()
	assert.Equal(t, names, Names(), "order must be stable")
	assert.Contains(t, names, "happy")
	assert.Contains(t, names, "scared")

	for _, name := range names {
		genres, ok := Genres(name)
		assert.True(t, ok)
		assert.NotEmpty(t, genres)
	}
}

func TestUnknownMood(t *testing.T) {
	_, ok := Genres("hangry")
	assert.False(t, ok)

	browser := NewBrowser(tmdb.NewClient("k", testLogger()), anilist.NewClient(testLogger()), testLogger())
	_, err := browser.Browse(context.Background(), "hangry", "movie")
	assert.Error(t, err)
}

func TestBrowseMoviesByMood(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/discover/movie", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("with_genres"))
		fmt.Fprint(w, `{"results":[
			{"id":105,"title":"Back to the Future","genre_ids":[12,878],"vote_average":8.3,"release_date":"1985-07-03","poster_path":"/bttf.jpg"}
		]}`)
	}))
	t.Cleanup(server.Close)

	metadata := tmdb.NewClient("k", testLogger()).WithBaseURL(server.URL)
	browser := NewBrowser(metadata, anilist.NewClient(testLogger()), testLogger())

	items, err := browser.Browse(context.Background(), "excited", "movie")

	require.NoError(t, err)
	require.Len(t, items, 1)
	got := items[0]
	assert.Equal(t, "m-105", got.ID)
	assert.Equal(t, "Back to the Future", got.Title)
	assert.Equal(t, "movie", got.ContentType)
	assert.Equal(t, []string{"Adventure", "Science Fiction"}, got.Genres)
	assert.Equal(t, 1985, got.Year)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/bttf.jpg", got.PosterURL)
}

func TestBrowseAnimeUsesAnimeProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"Page":{"media":[{"id":21,"title":{"romaji":"One Piece"},"genres":["Action"]}]}}}`)
	}))
	t.Cleanup(server.Close)

	anilistClient := anilist.NewClient(testLogger()).WithEndpoint(server.URL)
	browser := NewBrowser(tmdb.NewClient("k", testLogger()), anilistClient, testLogger())

	items, err := browser.Browse(context.Background(), "excited", "anime")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a-21", items[0].ID)
}
