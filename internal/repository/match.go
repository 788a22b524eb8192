package repository

import (
	"context"
	"fmt"
	"time"

	"collab-match-backend/internal/models"
)

// MatchRepository handles storage operations for matches
type MatchRepository struct {
	items *Collection[models.Match]
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(ids *IDGenerator, now func() time.Time) *MatchRepository {
	return &MatchRepository{items: newCollection(schema[models.Match]{
		prefix: "match",
		id:     func(m *models.Match) *string { return &m.ID },
		stamp: func(m *models.Match, t time.Time) {
			if m.CreatedAt.IsZero() {
				m.CreatedAt = t
			}
		},
	}, ids, now)}
}

// Create stores a new match
func (r *MatchRepository) Create(ctx context.Context, match *models.Match) error {
	created, err := r.items.Create(*match)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	*match = created
	return nil
}

// GetByID retrieves a match by ID
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	match, ok := r.items.Get(id)
	if !ok {
		return nil, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	return &match, nil
}

// FindByPair returns the match pairing the two listings in either order
func (r *MatchRepository) FindByPair(ctx context.Context, listingA, listingB string) (*models.Match, error) {
	found := r.items.Query(func(m *models.Match) bool {
		return m.Involves(listingA) && m.Involves(listingB)
	})
	if len(found) == 0 {
		return nil, fmt.Errorf("match for %s/%s: %w", listingA, listingB, ErrNotFound)
	}
	return &found[0], nil
}

// ListByListings returns matches involving any of the given listings, oldest first
func (r *MatchRepository) ListByListings(ctx context.Context, listingIDs []string) []models.Match {
	set := make(map[string]struct{}, len(listingIDs))
	for _, id := range listingIDs {
		set[id] = struct{}{}
	}
	return r.items.Query(func(m *models.Match) bool {
		_, a := set[m.ListingAID]
		_, b := set[m.ListingBID]
		return a || b
	})
}

// UpdateStatus sets the status of a match
func (r *MatchRepository) UpdateStatus(ctx context.Context, id string, status models.MatchStatus) (*models.Match, error) {
	match, err := r.items.Update(id, func(m *models.Match) error {
		m.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &match, nil
}
