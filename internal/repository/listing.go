package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"collab-match-backend/internal/models"
)

// ListingRepository handles storage operations for listings
type ListingRepository struct {
	items *Collection[models.Listing]
}

// NewListingRepository creates a new listing repository
func NewListingRepository(ids *IDGenerator, now func() time.Time) *ListingRepository {
	return &ListingRepository{items: newCollection(schema[models.Listing]{
		prefix: "listing",
		id:     func(l *models.Listing) *string { return &l.ID },
		stamp: func(l *models.Listing, t time.Time) {
			if l.CreatedAt.IsZero() {
				l.CreatedAt = t
			}
		},
		clone: func(l models.Listing) models.Listing {
			l.Skills = cloneStrings(l.Skills)
			return l
		},
	}, ids, now)}
}

// Create stores a new listing
func (r *ListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	created, err := r.items.Create(*listing)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	*listing = created
	return nil
}

// GetByID retrieves a listing by ID
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	listing, ok := r.items.Get(id)
	if !ok {
		return nil, fmt.Errorf("listing %s: %w", id, ErrNotFound)
	}
	return &listing, nil
}

// Update applies mutate to the stored listing
func (r *ListingRepository) Update(ctx context.Context, id string, mutate func(*models.Listing) error) (*models.Listing, error) {
	listing, err := r.items.Update(id, mutate)
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// ListByOwner returns the listings owned by userID, oldest first
func (r *ListingRepository) ListByOwner(ctx context.Context, userID string) []models.Listing {
	listings := r.items.Query(func(l *models.Listing) bool { return l.OwnerID == userID })
	sortListings(listings)
	return listings
}

// ListActive returns every active listing, oldest first
func (r *ListingRepository) ListActive(ctx context.Context) []models.Listing {
	listings := r.items.Query(func(l *models.Listing) bool { return l.Status == models.ListingActive })
	sortListings(listings)
	return listings
}

// sortListings orders by creation time, then by id so equal timestamps stay deterministic
func sortListings(listings []models.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		if !listings[i].CreatedAt.Equal(listings[j].CreatedAt) {
			return listings[i].CreatedAt.Before(listings[j].CreatedAt)
		}
		return listings[i].ID < listings[j].ID
	})
}
