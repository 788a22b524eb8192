package services

import (
	"context"
	"fmt"

	"collab-match-backend/internal/models"
	"collab-match-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// SwipeResult is the outcome of a recorded swipe. Match is nil unless the swipe created one.
type SwipeResult struct {
	Swipe *models.Swipe `json:"swipe"`
	Match *models.Match `json:"match,omitempty"`
}

// SwipeService records interest signals and triggers match resolution
type SwipeService struct {
	store   *repository.Store
	matches *MatchService
}

// NewSwipeService creates a new swipe service
func NewSwipeService(store *repository.Store, matches *MatchService) *SwipeService {
	return &SwipeService{store: store, matches: matches}
}

// RecordSwipe stores the swipe and, on a right swipe, resolves a possible match
func (s *SwipeService) RecordSwipe(ctx context.Context, swiperID, listingID string, direction models.SwipeDirection) (*SwipeResult, error) {
	if !s.store.Users.Exists(ctx, swiperID) {
		return nil, notFound("user", swiperID)
	}
	listing, err := s.store.Listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, notFound("listing", listingID)
	}
	if listing.OwnerID == swiperID {
		return nil, ErrSelfInteraction
	}
	if !direction.Valid() {
		return nil, invalidf("unknown swipe direction %q", direction)
	}

	if prev, err := s.store.Swipes.Latest(ctx, swiperID, listingID); err == nil && prev.Direction != direction {
		log.Info().
			Str("swiper_id", swiperID).
			Str("listing_id", listingID).
			Str("from", string(prev.Direction)).
			Str("to", string(direction)).
			Msg("Swipe decision changed")
	}

	swipe := &models.Swipe{
		SwiperID:  swiperID,
		ListingID: listingID,
		Direction: direction,
	}
	if err := s.store.Swipes.Create(ctx, swipe); err != nil {
		return nil, fmt.Errorf("failed to record swipe: %w", err)
	}

	log.Debug().
		Str("swiper_id", swiperID).
		Str("listing_id", listingID).
		Str("direction", string(direction)).
		Msg("Swipe recorded")

	result := &SwipeResult{Swipe: swipe}
	if direction != models.SwipeRight {
		return result, nil
	}

	match, err := s.matches.Resolve(ctx, swiperID, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve match: %w", err)
	}
	result.Match = match
	return result, nil
}
