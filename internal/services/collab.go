package services

import (
	"context"
	"errors"
	"fmt"

	"collab-match-backend/internal/models"
	"collab-match-backend/internal/repository"
)

// CollaborationService guards access to the chat and task board of a match
type CollaborationService struct {
	store *repository.Store
}

// NewCollaborationService creates a new collaboration service
func NewCollaborationService(store *repository.Store) *CollaborationService {
	return &CollaborationService{store: store}
}

// GetMatch returns the match regardless of its status
func (s *CollaborationService) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	match, err := s.store.Matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
		}
		return nil, err
	}
	return match, nil
}

// ActiveMatch returns the match only if it exists and is active
func (s *CollaborationService) ActiveMatch(ctx context.Context, matchID string) (*models.Match, error) {
	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchActive {
		return nil, fmt.Errorf("%w: %s", ErrMatchArchived, matchID)
	}
	return match, nil
}

// Participants returns the owners of listing A and listing B
func (s *CollaborationService) Participants(ctx context.Context, match *models.Match) (string, string, error) {
	listingA, err := s.store.Listings.GetByID(ctx, match.ListingAID)
	if err != nil {
		return "", "", notFound("listing", match.ListingAID)
	}
	listingB, err := s.store.Listings.GetByID(ctx, match.ListingBID)
	if err != nil {
		return "", "", notFound("listing", match.ListingBID)
	}
	return listingA.OwnerID, listingB.OwnerID, nil
}

// IsParticipant reports whether userID owns one of the matched listings
func (s *CollaborationService) IsParticipant(ctx context.Context, match *models.Match, userID string) (bool, error) {
	ownerA, ownerB, err := s.Participants(ctx, match)
	if err != nil {
		return false, err
	}
	return userID == ownerA || userID == ownerB, nil
}

// ResolveCounterpart returns the user on the other side of the match
func (s *CollaborationService) ResolveCounterpart(ctx context.Context, matchID, userID string) (string, error) {
	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return "", err
	}
	ownerA, ownerB, err := s.Participants(ctx, match)
	if err != nil {
		return "", err
	}
	switch userID {
	case ownerA:
		return ownerB, nil
	case ownerB:
		return ownerA, nil
	default:
		return "", ErrNotParticipant
	}
}

// RequireParticipant returns the active match if userID takes part in it
func (s *CollaborationService) RequireParticipant(ctx context.Context, matchID, userID string) (*models.Match, error) {
	match, err := s.ActiveMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	ok, err := s.IsParticipant(ctx, match, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}
	return match, nil
}
