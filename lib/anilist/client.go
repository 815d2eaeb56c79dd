package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/moodreel/moodreel/models"
)

// Client talks to the anime metadata provider's single GraphQL endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(logger *slog.Logger) *Client {
	return &Client{
		endpoint:   "https://graphql.anilist.co",
		httpClient: &http.Client{Timeout: 8 * time.Second},
		logger:     logger,
	}
}

// WithEndpoint points the client at a different GraphQL endpoint. Used by tests.
func (c *Client) WithEndpoint(endpoint string) *Client {
	c.endpoint = endpoint
	return c
}

const mediaFields = `
id
title { romaji english }
genres
averageScore
seasonYear
description
coverImage { large }
trailer { id site }
externalLinks { site url }
`

var searchQuery = fmt.Sprintf(`query ($search: String, $page: Int) {
  Page(page: $page, perPage: 20) {
    media(search: $search, type: ANIME, sort: POPULARITY_DESC) { %s }
  }
}`, mediaFields)

var genreQuery = fmt.Sprintf(`query ($genre: String, $page: Int) {
  Page(page: $page, perPage: 20) {
    media(genre: $genre, type: ANIME, sort: POPULARITY_DESC) { %s }
  }
}`, mediaFields)

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type media struct {
	ID    int `json:"id"`
	Title struct {
		Romaji  string `json:"romaji"`
		English string `json:"english"`
	} `json:"title"`
	Genres       []string `json:"genres"`
	AverageScore int      `json:"averageScore"`
	SeasonYear   int      `json:"seasonYear"`
	Description  string   `json:"description"`
	CoverImage   struct {
		Large string `json:"large"`
	} `json:"coverImage"`
	Trailer struct {
		ID   string `json:"id"`
		Site string `json:"site"`
	} `json:"trailer"`
	ExternalLinks []struct {
		Site string `json:"site"`
		URL  string `json:"url"`
	} `json:"externalLinks"`
}

type graphqlResponse struct {
	Data struct {
		Page struct {
			Media []media `json:"media"`
		} `json:"Page"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) query(ctx context.Context, query string, variables map[string]any) ([]media, error) {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", slog.Any("error", err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from anime provider", resp.StatusCode)
	}

	var result graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", result.Errors[0].Message)
	}

	return result.Data.Page.Media, nil
}

// Search runs a free-text anime search.
func (c *Client) Search(ctx context.Context, search string, page int) ([]models.ContentItem, error) {
	if page < 1 {
		page = 1
	}
	found, err := c.query(ctx, searchQuery, map[string]any{"search": search, "page": page})
	if err != nil {
		return nil, err
	}
	return toContentItems(found), nil
}

// SearchByGenre lists popular anime in the given genre.
func (c *Client) SearchByGenre(ctx context.Context, genre string, page int) ([]models.ContentItem, error) {
	if page < 1 {
		page = 1
	}
	found, err := c.query(ctx, genreQuery, map[string]any{"genre": genre, "page": page})
	if err != nil {
		return nil, err
	}
	return toContentItems(found), nil
}

// GetByID fetches a single title, used to resolve scene-identification matches.
func (c *Client) GetByID(ctx context.Context, id int) (*models.ContentItem, error) {
	query := fmt.Sprintf(`query ($id: Int) { Page(page: 1, perPage: 1) { media(id: $id, type: ANIME) { %s } } }`, mediaFields)
	found, err := c.query(ctx, query, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("anime %d not found", id)
	}
	item := toContentItem(found[0])
	return &item, nil
}

func toContentItems(found []media) []models.ContentItem {
	items := make([]models.ContentItem, 0, len(found))
	for _, m := range found {
		items = append(items, toContentItem(m))
	}
	return items
}

func toContentItem(m media) models.ContentItem {
	title := m.Title.English
	if title == "" {
		title = m.Title.Romaji
	}

	var trailer string
	if m.Trailer.Site == "youtube" && m.Trailer.ID != "" {
		trailer = "https://www.youtube.com/watch?v=" + m.Trailer.ID
	}

	var providers []string
	for _, link := range m.ExternalLinks {
		providers = append(providers, link.Site)
	}

	return models.ContentItem{
		ID:          fmt.Sprintf("a-%d", m.ID),
		Title:       title,
		ContentType: "anime",
		Genres:      m.Genres,
		Language:    "ja",
		Rating:      float64(m.AverageScore) / 10.0, // provider reports 0-100
		Year:        m.SeasonYear,
		PosterURL:   m.CoverImage.Large,
		Overview:    stripHTML(m.Description),
		TrailerURL:  trailer,
		Providers:   providers,
	}
}

// stripHTML drops the markup tags the anime provider embeds in descriptions.
func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
