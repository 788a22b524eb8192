package repository

import (
	"context"
	"fmt"
	"time"

	"collab-match-backend/internal/models"
)

// SwipeRepository is an append-only log of swipes
type SwipeRepository struct {
	items *Collection[models.Swipe]
}

// NewSwipeRepository creates a new swipe repository
func NewSwipeRepository(ids *IDGenerator, now func() time.Time) *SwipeRepository {
	return &SwipeRepository{items: newCollection(schema[models.Swipe]{
		prefix: "swipe",
		id:     func(s *models.Swipe) *string { return &s.ID },
		stamp: func(s *models.Swipe, t time.Time) {
			if s.CreatedAt.IsZero() {
				s.CreatedAt = t
			}
		},
	}, ids, now)}
}

// Create appends a swipe
func (r *SwipeRepository) Create(ctx context.Context, swipe *models.Swipe) error {
	created, err := r.items.Create(*swipe)
	if err != nil {
		return fmt.Errorf("failed to create swipe: %w", err)
	}
	*swipe = created
	return nil
}

// LatestBySwiper returns the most recent swipe per listing made by swiperID, keyed by listing ID.
// Later records win, so a right swipe after a left swipe replaces it.
func (r *SwipeRepository) LatestBySwiper(ctx context.Context, swiperID string) map[string]models.Swipe {
	latest := make(map[string]models.Swipe)
	for _, s := range r.items.Query(func(s *models.Swipe) bool { return s.SwiperID == swiperID }) {
		latest[s.ListingID] = s
	}
	return latest
}

// Latest returns the most recent swipe of swiperID on listingID
func (r *SwipeRepository) Latest(ctx context.Context, swiperID, listingID string) (*models.Swipe, error) {
	found := r.items.Query(func(s *models.Swipe) bool {
		return s.SwiperID == swiperID && s.ListingID == listingID
	})
	if len(found) == 0 {
		return nil, fmt.Errorf("swipe by %s on %s: %w", swiperID, listingID, ErrNotFound)
	}
	return &found[len(found)-1], nil
}
