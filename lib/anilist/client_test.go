package anilist

import (
	"context"
	"encoding/json"
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

const mediaJSON = `{
	"id": 21,
	"title": {"romaji": "One Piece", "english": "ONE PIECE"},
	"genres": ["Action", "Adventure"],
	"averageScore": 88,
	"seasonYear": 1999,
	"description": "Gold Roger was known as the <i>Pirate King</i>.<br>The strongest.",
	"coverImage": {"large": "https://img.example/one-piece.jpg"},
	"trailer": {"id": "abc123", "site": "youtube"},
	"externalLinks": [{"site": "Crunchyroll", "url": "https://cr.example"}]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(testLogger()).WithEndpoint(server.URL)
}

func TestSearchNormalizesMedia(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Query, "media(search: $search")
		assert.Equal(t, "one piece", req.Variables["search"])

		fmt.Fprintf(w, `{"data":{"Page":{"media":[%s]}}}`, mediaJSON)
	})

	items, err := client.Search(context.Background(), "one piece", 1)

	require.NoError(t, err)
	require.Len(t, items, 1)
	got := items[0]
	assert.Equal(t, "a-21", got.ID)
	assert.Equal(t, "ONE PIECE", got.Title, "english title preferred")
	assert.Equal(t, "anime", got.ContentType)
	assert.Equal(t, []string{"Action", "Adventure"}, got.Genres)
	assert.InDelta(t, 8.8, got.Rating, 1e-9, "0-100 provider score rescaled to 0-10")
	assert.Equal(t, 1999, got.Year)
	assert.Equal(t, "Gold Roger was known as the Pirate King.The strongest.", got.Overview)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", got.TrailerURL)
	assert.Equal(t, []string{"Crunchyroll"}, got.Providers)
}

func TestRomajiFallbackWhenEnglishMissing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"Page":{"media":[{"id":5,"title":{"romaji":"Sousou no Frieren","english":""}}]}}}`)
	})

	items, err := client.Search(context.Background(), "frieren", 1)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Sousou no Frieren", items[0].Title)
}

func TestGraphQLErrorsSurface(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"Page":{"media":[]}},"errors":[{"message":"rate limited"}]}`)
	})

	_, err := client.Search(context.Background(), "x", 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestGetByIDNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"Page":{"media":[]}}}`)
	})

	_, err := client.GetByID(context.Background(), 404404)

	assert.Error(t, err)
}
