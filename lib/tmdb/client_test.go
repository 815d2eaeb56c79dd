package tmdb

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"log/slog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("test-key", testLogger()).WithBaseURL(server.URL)
}

func TestGetSimilarFillsMediaType(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/603/similar", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		fmt.Fprint(w, `{"results":[{"id":604,"title":"Sequel","vote_average":7.2,"genre_ids":[28,878]}]}`)
	})

	candidates, err := client.GetSimilar(context.Background(), "movie", 603)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, 604, candidates[0].ID)
	assert.Equal(t, "movie", candidates[0].MediaType, "missing media_type defaults to the request type")
	assert.Equal(t, []int{28, 878}, candidates[0].GenreIDs)
}

func TestGetKeywordsNormalizesMovieAndTVShapes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/1/keywords":
			fmt.Fprint(w, `{"id":1,"keywords":[{"id":11,"name":"heist"}]}`)
		case "/tv/2/keywords":
			fmt.Fprint(w, `{"id":2,"results":[{"id":22,"name":"space"}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	movieKeywords, err := client.GetKeywords(context.Background(), "movie", 1)
	require.NoError(t, err)
	require.Len(t, movieKeywords, 1)
	assert.Equal(t, 11, movieKeywords[0].ID)

	tvKeywords, err := client.GetKeywords(context.Background(), "tv", 2)
	require.NoError(t, err)
	require.Len(t, tvKeywords, 1)
	assert.Equal(t, 22, tvKeywords[0].ID)
}

func TestNon200IsAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.GetSimilar(context.Background(), "movie", 603)

	assert.Error(t, err)
}

func TestParseLocalID(t *testing.T) {
	tests := []struct {
		input     string
		id        int
		mediaType string
		ok        bool
	}{
		{"m-603", 603, "movie", true},
		{"s-1396", 1396, "tv", true},
		{"a-21", 0, "", false},
		{"x-5", 0, "", false},
		{"m-abc", 0, "", false},
		{"603", 0, "", false},
		{"", 0, "", false},
	}
	for _, tt := range tests {
		id, mediaType, ok := ParseLocalID(tt.input)
		assert.Equal(t, tt.ok, ok, "ParseLocalID(%q)", tt.input)
		assert.Equal(t, tt.id, id, "ParseLocalID(%q)", tt.input)
		assert.Equal(t, tt.mediaType, mediaType, "ParseLocalID(%q)", tt.input)
	}
}

func TestLocalIDRoundTrip(t *testing.T) {
	assert.Equal(t, "m-603", LocalID("movie", 603))
	assert.Equal(t, "s-1396", LocalID("tv", 1396))
	assert.Equal(t, "s-1396", LocalID("series", 1396))
	assert.Equal(t, "m-300", LocalID("", 300), "unknown types reconstruct as movies")
}

func TestOrEmptyCombinators(t *testing.T) {
	logger := testLogger()
	err := fmt.Errorf("upstream down")

	assert.Empty(t, CandidatesOrEmpty(nil, err, logger, "similar"))
	assert.NotNil(t, CreditsOrEmpty(nil, err, logger, "credits"))
	assert.Empty(t, CreditsOrEmpty(nil, err, logger, "credits").Cast)
	assert.Empty(t, KeywordsOrEmpty(nil, err, logger, "keywords"))
}

func TestGenreNameTable(t *testing.T) {
	assert.Equal(t, "Action", GenreName(28))
	assert.Equal(t, "Sci-Fi & Fantasy", GenreName(10765))
	assert.Empty(t, GenreName(424242))

	ids := GenreIDsForLabels([]string{"Action", "Not A Genre", "Drama"})
	assert.ElementsMatch(t, []int{28, 18}, ids)
}

func TestGetPosterURL(t *testing.T) {
	client := NewClient("k", testLogger())
	assert.Empty(t, client.GetPosterURL(""))
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", client.GetPosterURL("/abc.jpg"))
}
