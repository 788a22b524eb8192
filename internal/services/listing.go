package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"collab-match-backend/internal/models"
	"collab-match-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// ListingInput holds the fields of a new listing
type ListingInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Vision      string   `json:"vision"`
	WorkStyle   string   `json:"work_style"`
	Skills      []string `json:"skills"`
	ImageURL    string   `json:"image_url"`
}

// ListingPatch is a partial listing update
type ListingPatch struct {
	Title       *string               `json:"title"`
	Description *string               `json:"description"`
	Vision      *string               `json:"vision"`
	WorkStyle   *string               `json:"work_style"`
	Skills      []string              `json:"skills"`
	Status      *models.ListingStatus `json:"status"`
	ImageURL    *string               `json:"image_url"`
}

// ListingService handles listing publication and discovery
type ListingService struct {
	store  *repository.Store
	limits Limits
}

// NewListingService creates a new listing service
func NewListingService(store *repository.Store, limits Limits) *ListingService {
	return &ListingService{store: store, limits: limits.withDefaults()}
}

// CreateListing publishes an active listing owned by ownerID
func (s *ListingService) CreateListing(ctx context.Context, ownerID string, in ListingInput) (*models.Listing, error) {
	if !s.store.Users.Exists(ctx, ownerID) {
		return nil, notFound("user", ownerID)
	}
	title, err := s.checkText(in.Title, in.Description)
	if err != nil {
		return nil, err
	}

	listing := &models.Listing{
		OwnerID:     ownerID,
		Title:       title,
		Description: in.Description,
		Vision:      in.Vision,
		WorkStyle:   in.WorkStyle,
		Skills:      normalizeSkills(in.Skills),
		Status:      models.ListingActive,
		ImageURL:    in.ImageURL,
	}
	if err := s.store.Listings.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}
	if err := s.store.Users.AddListing(ctx, ownerID, listing.ID); err != nil {
		return nil, fmt.Errorf("failed to link listing to owner: %w", err)
	}

	log.Info().
		Str("listing_id", listing.ID).
		Str("owner_id", ownerID).
		Msg("Listing created")

	return listing, nil
}

// GetListing retrieves a listing by ID
func (s *ListingService) GetListing(ctx context.Context, listingID string) (*models.Listing, error) {
	listing, err := s.store.Listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, notFound("listing", listingID)
	}
	return listing, nil
}

// UpdateListing applies patch; only the owner may edit a listing
func (s *ListingService) UpdateListing(ctx context.Context, listingID, userID string, patch ListingPatch) (*models.Listing, error) {
	current, err := s.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if current.OwnerID != userID {
		return nil, ErrForbidden
	}

	title := current.Title
	if patch.Title != nil {
		title = *patch.Title
	}
	description := current.Description
	if patch.Description != nil {
		description = *patch.Description
	}
	title, err = s.checkText(title, description)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, invalidf("unknown listing status %q", *patch.Status)
	}

	listing, err := s.store.Listings.Update(ctx, listingID, func(l *models.Listing) error {
		l.Title = title
		l.Description = description
		if patch.Vision != nil {
			l.Vision = *patch.Vision
		}
		if patch.WorkStyle != nil {
			l.WorkStyle = *patch.WorkStyle
		}
		if patch.Skills != nil {
			l.Skills = normalizeSkills(patch.Skills)
		}
		if patch.Status != nil {
			l.Status = *patch.Status
		}
		if patch.ImageURL != nil {
			l.ImageURL = *patch.ImageURL
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("listing", listingID)
		}
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}
	return listing, nil
}

// ListByOwner returns the user's listings, oldest first
func (s *ListingService) ListByOwner(ctx context.Context, userID string) ([]models.Listing, error) {
	if !s.store.Users.Exists(ctx, userID) {
		return nil, notFound("user", userID)
	}
	return s.store.Listings.ListByOwner(ctx, userID), nil
}

// Discover returns active listings the user does not own and has not swiped on yet
func (s *ListingService) Discover(ctx context.Context, userID string) ([]models.Listing, error) {
	if !s.store.Users.Exists(ctx, userID) {
		return nil, notFound("user", userID)
	}
	seen := s.store.Swipes.LatestBySwiper(ctx, userID)

	active := s.store.Listings.ListActive(ctx)
	feed := make([]models.Listing, 0, len(active))
	for _, l := range active {
		if l.OwnerID == userID {
			continue
		}
		if _, ok := seen[l.ID]; ok {
			continue
		}
		feed = append(feed, l)
	}
	return feed, nil
}

func (s *ListingService) checkText(title, description string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalidf("listing title is required")
	}
	if utf8.RuneCountInString(title) > s.limits.TitleMax {
		return "", invalidf("listing title longer than %d characters", s.limits.TitleMax)
	}
	if utf8.RuneCountInString(description) > s.limits.DescriptionMax {
		return "", invalidf("listing description longer than %d characters", s.limits.DescriptionMax)
	}
	return title, nil
}

func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, skill)
	}
	return out
}
