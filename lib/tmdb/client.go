package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/moodreel/moodreel/models"
)

// Client talks to the movie/TV metadata provider. All fetches are read-only
// and idempotent; callers that want the soft-fail policy go through the
// OrEmpty combinators below.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type listResult struct {
	Results []models.Candidate `json:"results"`
}

type keywordsResult struct {
	// Movie responses use "keywords", TV responses use "results". Both are
	// decoded so callers see a single shape.
	Keywords []models.Keyword `json:"keywords"`
	Results  []models.Keyword `json:"results"`
}

func NewClient(apiKey string, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    "https://api.themoviedb.org/3",
		httpClient: &http.Client{Timeout: 8 * time.Second},
		logger:     logger,
	}
}

// WithBaseURL points the client at a different provider host. Used by tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", slog.Any("error", err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetSimilar fetches titles the provider considers similar to the given one.
func (c *Client) GetSimilar(ctx context.Context, mediaType string, id int) ([]models.Candidate, error) {
	var result listResult
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/similar", providerType(mediaType), id), nil, &result); err != nil {
		return nil, err
	}
	return withMediaType(result.Results, mediaType), nil
}

// GetRecommendations fetches the provider's recommendations for the given title.
func (c *Client) GetRecommendations(ctx context.Context, mediaType string, id int) ([]models.Candidate, error) {
	var result listResult
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/recommendations", providerType(mediaType), id), nil, &result); err != nil {
		return nil, err
	}
	return withMediaType(result.Results, mediaType), nil
}

// GetCredits fetches the cast and crew of the given title.
func (c *Client) GetCredits(ctx context.Context, mediaType string, id int) (*models.Credits, error) {
	var credits models.Credits
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/credits", providerType(mediaType), id), nil, &credits); err != nil {
		return nil, err
	}
	return &credits, nil
}

// GetKeywords fetches the provider keywords of the given title, normalized to
// one slice regardless of media type.
func (c *Client) GetKeywords(ctx context.Context, mediaType string, id int) ([]models.Keyword, error) {
	var result keywordsResult
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/keywords", providerType(mediaType), id), nil, &result); err != nil {
		return nil, err
	}
	if len(result.Keywords) > 0 {
		return result.Keywords, nil
	}
	return result.Results, nil
}

// SearchMovies runs a free-text movie search.
func (c *Client) SearchMovies(ctx context.Context, query string) ([]models.Candidate, error) {
	return c.search(ctx, "movie", query)
}

// SearchTV runs a free-text TV search.
func (c *Client) SearchTV(ctx context.Context, query string) ([]models.Candidate, error) {
	return c.search(ctx, "tv", query)
}

func (c *Client) search(ctx context.Context, mediaType, query string) ([]models.Candidate, error) {
	q := url.Values{}
	q.Set("query", query)
	var result listResult
	if err := c.get(ctx, "/search/"+providerType(mediaType), q, &result); err != nil {
		return nil, err
	}
	return withMediaType(result.Results, mediaType), nil
}

// DiscoverByGenres lists titles matching the given provider genre ids,
// ordered by provider popularity. Backs the mood browsing surface.
func (c *Client) DiscoverByGenres(ctx context.Context, mediaType string, genreIDs []int) ([]models.Candidate, error) {
	ids := make([]string, len(genreIDs))
	for i, id := range genreIDs {
		ids[i] = strconv.Itoa(id)
	}
	q := url.Values{}
	q.Set("with_genres", strings.Join(ids, ","))
	q.Set("sort_by", "popularity.desc")

	var result listResult
	if err := c.get(ctx, "/discover/"+providerType(mediaType), q, &result); err != nil {
		return nil, err
	}
	return withMediaType(result.Results, mediaType), nil
}

// GetPosterURL builds the full image URL for a provider poster path.
func (c *Client) GetPosterURL(posterPath string) string {
	if posterPath == "" {
		return ""
	}
	return fmt.Sprintf("https://image.tmdb.org/t/p/w500%s", posterPath)
}

// providerType maps an app media type onto the provider's URL segment.
func providerType(mediaType string) string {
	if mediaType == "tv" || mediaType == "series" {
		return "tv"
	}
	return "movie"
}

// withMediaType fills MediaType on results that omit it. Similar and
// recommendations payloads usually do.
func withMediaType(candidates []models.Candidate, mediaType string) []models.Candidate {
	for i := range candidates {
		if candidates[i].MediaType == "" {
			candidates[i].MediaType = providerType(mediaType)
		}
	}
	return candidates
}

// ParseLocalID parses the app-wide "{typeLetter}-{numericID}" scheme back into
// the provider's id/type pair. ok is false for anime ids ("a-") and anything
// malformed, meaning the item cannot be enriched through this provider.
func ParseLocalID(localID string) (id int, mediaType string, ok bool) {
	prefix, rest, found := strings.Cut(localID, "-")
	if !found {
		return 0, "", false
	}

	switch prefix {
	case "m":
		mediaType = "movie"
	case "s":
		mediaType = "tv"
	default:
		return 0, "", false
	}

	id, err := strconv.Atoi(rest)
	if err != nil {
		return 0, "", false
	}
	return id, mediaType, true
}

// LocalID builds a local id from a provider media type and numeric id.
// Anything that is not TV is treated as a movie, matching ParseLocalID.
func LocalID(mediaType string, id int) string {
	if mediaType == "tv" || mediaType == "series" {
		return fmt.Sprintf("s-%d", id)
	}
	return fmt.Sprintf("m-%d", id)
}

// CandidatesOrEmpty applies the soft-fail policy to a candidate fetch: the
// error is logged and an empty list returned, never propagated.
func CandidatesOrEmpty(candidates []models.Candidate, err error, logger *slog.Logger, op string) []models.Candidate {
	if err != nil {
		logger.Warn("metadata fetch failed", slog.String("op", op), slog.Any("error", err))
		return nil
	}
	return candidates
}

// CreditsOrEmpty applies the soft-fail policy to a credits fetch.
func CreditsOrEmpty(credits *models.Credits, err error, logger *slog.Logger, op string) *models.Credits {
	if err != nil || credits == nil {
		if err != nil {
			logger.Warn("metadata fetch failed", slog.String("op", op), slog.Any("error", err))
		}
		return &models.Credits{}
	}
	return credits
}

// KeywordsOrEmpty applies the soft-fail policy to a keywords fetch.
func KeywordsOrEmpty(keywords []models.Keyword, err error, logger *slog.Logger, op string) []models.Keyword {
	if err != nil {
		logger.Warn("metadata fetch failed", slog.String("op", op), slog.Any("error", err))
		return nil
	}
	return keywords
}
