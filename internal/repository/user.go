package repository

import (
	"context"
	"fmt"
	"time"

	"collab-match-backend/internal/models"
)

// UserRepository handles storage operations for users
type UserRepository struct {
	items *Collection[models.User]
}

// NewUserRepository creates a new user repository
func NewUserRepository(ids *IDGenerator, now func() time.Time) *UserRepository {
	return &UserRepository{items: newCollection(schema[models.User]{
		prefix: "user",
		id:     func(u *models.User) *string { return &u.ID },
		stamp: func(u *models.User, t time.Time) {
			if u.CreatedAt.IsZero() {
				u.CreatedAt = t
			}
		},
		clone: func(u models.User) models.User {
			u.ListingIDs = cloneStrings(u.ListingIDs)
			u.PushToken = cloneStringPtr(u.PushToken)
			return u
		},
	}, ids, now)}
}

// Create stores a new user. A caller-supplied ID is kept as-is.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	created, err := r.items.Create(*user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	*user = created
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := r.items.Get(id)
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return &user, nil
}

// GetByExternalID retrieves a user by the identity provider's handle
func (r *UserRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	found := r.items.Query(func(u *models.User) bool {
		return externalID != "" && u.ExternalID == externalID
	})
	if len(found) == 0 {
		return nil, fmt.Errorf("user with external id %s: %w", externalID, ErrNotFound)
	}
	return &found[0], nil
}

// Exists checks whether a user with the given ID exists
func (r *UserRepository) Exists(ctx context.Context, id string) bool {
	_, ok := r.items.Get(id)
	return ok
}

// Update applies mutate to the stored user
func (r *UserRepository) Update(ctx context.Context, id string, mutate func(*models.User) error) (*models.User, error) {
	user, err := r.items.Update(id, mutate)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AddListing appends a listing ID to the user's owned listings
func (r *UserRepository) AddListing(ctx context.Context, userID, listingID string) error {
	_, err := r.items.Update(userID, func(u *models.User) error {
		for _, id := range u.ListingIDs {
			if id == listingID {
				return nil
			}
		}
		u.ListingIDs = append(u.ListingIDs, listingID)
		return nil
	})
	return err
}
