package watchlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"log/slog"

	"gorm.io/gorm"

	"github.com/moodreel/moodreel/models"
)

// ErrDuplicate is returned when a title is already on the watchlist.
var ErrDuplicate = errors.New("already on watchlist")

// Store persists the user's watchlist. Insertion order is preserved: List
// returns rows ordered by creation, which is what the recommendation pipeline
// consumes.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewStore(db *gorm.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Add saves a title to the watchlist. Duplicate local ids are rejected.
func (s *Store) Add(ctx context.Context, item models.WatchlistItem) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.WatchlistItem{}).
		Where("local_id = ?", item.LocalID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check watchlist: %w", err)
	}
	if count > 0 {
		return ErrDuplicate
	}

	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return fmt.Errorf("failed to save watchlist item: %w", err)
	}

	s.logger.Debug("added to watchlist", slog.String("id", item.LocalID), slog.String("title", item.Title))
	return nil
}

// Remove deletes a title from the watchlist by its local id.
func (s *Store) Remove(ctx context.Context, localID string) error {
	result := s.db.WithContext(ctx).Where("local_id = ?", localID).Delete(&models.WatchlistItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove watchlist item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Has reports whether a local id is on the watchlist.
func (s *Store) Has(ctx context.Context, localID string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.WatchlistItem{}).
		Where("local_id = ?", localID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check watchlist: %w", err)
	}
	return count > 0, nil
}

// List returns the watchlist in insertion order.
func (s *Store) List(ctx context.Context) ([]models.WatchlistItem, error) {
	var items []models.WatchlistItem
	if err := s.db.WithContext(ctx).Order("created_at asc, id asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}
	return items, nil
}

// Clear removes every watchlist row.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&models.WatchlistItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear watchlist: %w", err)
	}
	return nil
}

// ContentItems converts stored rows into the pipeline's in-memory shape.
func ContentItems(items []models.WatchlistItem) []models.ContentItem {
	out := make([]models.ContentItem, 0, len(items))
	for _, item := range items {
		out = append(out, models.ContentItem{
			ID:          item.LocalID,
			Title:       item.Title,
			ContentType: item.ContentType,
			Genres:      splitGenres(item.Genres),
			Language:    item.Language,
			Rating:      item.Rating,
			Year:        item.Year,
			PosterURL:   item.PosterURL,
			Overview:    item.Overview,
			TrailerURL:  item.TrailerURL,
		})
	}
	return out
}

func splitGenres(joined string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			genres = append(genres, trimmed)
		}
	}
	return genres
}
